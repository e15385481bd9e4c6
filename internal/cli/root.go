// Package cli implements the kpieval command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/okian/kpieval/internal/config"
	"github.com/okian/kpieval/pkg/logger"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

type globalFlags struct {
	configPath string
	logLevel   string
	noColor    bool
}

// NewRootCommand builds the kpieval command tree.
func NewRootCommand() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "kpieval",
		Short: "Weighted KPI scoring from spreadsheet files",
		Long: `kpieval scores KPI sheets by weight and polarity and rates the final
score as ISTIMEWA, SANGAT BAIK, BAIK, CUKUP or KURANG.

Input files may be CSV, TSV or XLSX. Headers are matched against the
aliases in the configuration (NAMA KPI, BOBOT, TARGET TW TERKAIT,
REALISASI TW TERKAIT, POLARITAS by default).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", os.Getenv(config.EnvFile), "YAML config file")
	pf.StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.BoolVar(&g.noColor, "no-color", false, "disable colored output")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return logger.SetLevelString(g.logLevel)
	}

	root.AddCommand(
		newScoreCommand(&g),
		newSampleCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context) {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the layered configuration, preferring --config over
// the environment.
func (g *globalFlags) loadConfig(ctx context.Context) (*config.Config, error) {
	return config.LoadFile(ctx, g.configPath)
}

// colorEnabled reports whether w is a terminal and color was not disabled.
func (g *globalFlags) colorEnabled(w io.Writer) bool {
	if g.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
