package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/statetrack/internal/config"
	"github.com/vango-dev/statetrack/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "statetrack",
		Short: "Fine-grained reactive state tracking",
		Long: `statetrack demonstrates and inspects the reactive runtime.

Stores hold trackable fields; selectors derive values from them and
recompute only when a field they actually read changes.

  • scenario   run the built-in walkthroughs
  • serve      start the inspector with live demo stores`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ./"+config.ConfigFileName+")")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	rootCmd.AddCommand(
		scenarioCmd(load),
		serveCmd(load),
		versionCmd(),
	)
	return rootCmd
}

// loader loads and validates configuration.
type loader func() (*config.Config, error)

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
