package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docsync/internal/version"
)

var (
	// Persistent flags
	mappingPath string
	verbose     bool
	noColor     bool

	// Logger, built once in PersistentPreRunE and handed to the app.
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "Generate verified documentation patches from code diffs",
	Long: `docsync turns a code diff into validated unified-diff patches against
the documentation files your mapping rules route it to.

A generative model proposes each document rewrite; docsync converts the
proposal into a patch, checks that it applies mechanically, repairs or
escalates it when it does not, and writes only verified patches. Patches
are advisory until a human applies them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		color.NoColor = color.NoColor || noColor

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&mappingPath, "config", "c", "docsync.yaml", "mapping rules file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
