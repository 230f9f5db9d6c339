package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/pkg/vdom"
	"github.com/vango-dev/reactor/pkg/wire"
)

// trackedModules are the dependencies whose versions the build reports.
var trackedModules = []string{
	"github.com/prometheus/client_golang",
	"go.opentelemetry.io/otel",
	"go.uber.org/zap",
}

type buildInfo struct {
	Version         string            `json:"version"`
	Commit          string            `json:"commit"`
	Built           string            `json:"built"`
	GoVersion       string            `json:"go_version"`
	Platform        string            `json:"platform"`
	MaxUpdateCount  int               `json:"max_update_count"`
	PatchOps        []string          `json:"patch_ops"`
	MaxFramePatches int               `json:"max_frame_patches"`
	Modules         map[string]string `json:"modules,omitempty"`
}

func currentBuild() buildInfo {
	b := buildInfo{
		Version:         version,
		Commit:          commit,
		Built:           date,
		GoVersion:       runtime.Version(),
		Platform:        runtime.GOOS + "/" + runtime.GOARCH,
		MaxUpdateCount:  config.DefaultMaxUpdateCount,
		MaxFramePatches: wire.MaxPatches,
	}
	for _, op := range vdom.AllOps {
		b.PatchOps = append(b.PatchOps, op.String())
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, dep := range info.Deps {
		for _, path := range trackedModules {
			if dep.Path == path {
				if b.Modules == nil {
					b.Modules = make(map[string]string)
				}
				b.Modules[path] = dep.Version
			}
		}
	}
	return b
}

func (b buildInfo) print(w io.Writer) {
	fmt.Fprintf(w, "  Version:      %s\n", b.Version)
	fmt.Fprintf(w, "  Commit:       %s\n", b.Commit)
	fmt.Fprintf(w, "  Built:        %s\n", b.Built)
	fmt.Fprintf(w, "  Go version:   %s\n", b.GoVersion)
	fmt.Fprintf(w, "  OS/Arch:      %s\n", b.Platform)
	fmt.Fprintf(w, "  Update bound: %d runs per watcher per flush\n", b.MaxUpdateCount)
	fmt.Fprintf(w, "  Wire frames:  %s (max %d patches)\n", strings.Join(b.PatchOps, ", "), b.MaxFramePatches)
	for _, path := range trackedModules {
		if v, ok := b.Modules[path]; ok {
			fmt.Fprintf(w, "  %-13s %s\n", path[strings.LastIndex(path, "/")+1:]+":", v)
		}
	}
}

func versionCmd() *cobra.Command {
	var (
		short  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the reactor version together with the runtime defaults it was
built with: the per-flush update bound, the host operations a wire
frame can carry and the versions of the telemetry libraries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := currentBuild()
			switch {
			case short:
				fmt.Println(b.Version)
			case asJSON:
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(b)
			default:
				printBanner()
				fmt.Println()
				b.print(os.Stdout)
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")

	return cmd
}
