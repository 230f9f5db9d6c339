package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vango-dev/reactor/internal/config"
	rerrors "github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/telemetry"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬─┐┌─┐┌─┐┌─┐┌┬┐┌─┐┬─┐
  ├┬┘├┤ ├─┤│   │ │ │├┬┘
  ┴└─└─┘┴ ┴└─┘ ┴ └─┘┴└─
`

var (
	configPath string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reactor",
		Short: "Reactive state and virtual tree reconciliation for Go",
		Long: `Reactor tracks reads of reactive state, batches writes into
scheduler flushes, and patches a host tree with the minimal set of
operations.

  • Dependency tracking with computed values and watchers
  • Batched, ordered flushes with an infinite-loop bound
  • Keyed list reconciliation
  • Components with props, lifecycle hooks and keep-alive`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: reactor.json or reactor.yaml, searched upwards)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level")

	// Add commands
	rootCmd.AddCommand(
		demoCmd(),
		benchCmd(),
		configCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		rerrors.PrintError(err)
		os.Exit(1)
	}
}

// loadConfig resolves --config, then a file found from the working
// directory upwards, then the defaults.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case configPath != "":
		cfg, err = config.Load(configPath)
	default:
		path, findErr := config.FindConfig(".")
		if findErr != nil {
			cfg = config.Default()
			break
		}
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newRuntime builds a runtime wired to zap for errors, slog for debug
// output and the given instrumentation.
func newRuntime(cfg *config.Config, inst reactive.Instrumentation) (*reactive.Runtime, *zap.Logger, error) {
	logger, err := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	opts := []reactive.Option{
		reactive.WithLogger(slog.New(handler)),
		reactive.WithErrorHandler(telemetry.ZapHandler(logger)),
		reactive.WithMaxUpdateCount(cfg.MaxUpdateCount),
	}
	if inst != nil {
		opts = append(opts, reactive.WithInstrumentation(inst))
	}
	return reactive.NewRuntime(opts...), logger, nil
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
