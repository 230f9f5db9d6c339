package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactor/internal/config"
	rerrors "github.com/vango-dev/reactor/internal/errors"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(configInitCmd(), configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		asYAML bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the current directory",
		Long: `Write the default configuration to reactor.json, or to
reactor.yaml with --yaml.

Examples:
  reactor config init
  reactor config init --yaml --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := config.JSONFileName
			if asYAML {
				name = config.YAMLFileName
			}
			if _, err := os.Stat(name); err == nil && !force {
				return rerrors.New(rerrors.CodeConfigInvalid).
					WithDetail(name + " already exists").
					WithSuggestion("Use --force to overwrite it")
			}
			if err := config.Default().SaveTo(name); err != nil {
				return err
			}
			success("Wrote %s", name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Write YAML instead of JSON")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func configShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			source := cfg.Path()
			if source == "" {
				source = "defaults"
			}

			var out []byte
			if asJSON {
				out, err = json.MarshalIndent(cfg, "", "  ")
				out = append(out, '\n')
			} else {
				out, err = yaml.Marshal(cfg)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "# source: %s\n", source)
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of YAML")

	return cmd
}
