package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docsync/internal/app"
	"docsync/internal/config"
	"docsync/internal/report"
	"docsync/internal/source"
	"docsync/internal/tui"
	"docsync/internal/ui"
)

var (
	syncDiffPath    string
	syncOutDir      string
	syncRef         string
	syncModel       string
	syncReplay      string
	syncReview      bool
	syncNoAnimation bool
)

func init() {
	syncCmd.Flags().StringVar(&syncDiffPath, "diff", "", "read the code diff from this file instead of stdin or the clipboard")
	syncCmd.Flags().StringVarP(&syncOutDir, "out", "o", config.DefaultOutDir, "directory for patch artifacts and the run report")
	syncCmd.Flags().StringVar(&syncRef, "ref", "", "git ref documents are fetched at (default: the mapping file's doc_ref)")
	syncCmd.Flags().StringVarP(&syncModel, "model", "m", config.DefaultModel, "generative model name")
	syncCmd.Flags().StringVar(&syncReplay, "replay", "", "replay a canned model response from this file instead of calling the API")
	syncCmd.Flags().BoolVar(&syncReview, "review", false, "load generated documents into Neovim buffers after the run")
	syncCmd.Flags().BoolVar(&syncNoAnimation, "no-animation", false, "plain output instead of the spinner TUI")
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the full pipeline and write verified patches",
	Long: `Reads a code diff (from --diff, piped stdin, or the clipboard), resolves
documentation targets from the mapping rules, generates candidate
rewrites, and writes every patch that passes validation under --out
along with a JSON run report.

A run with zero valid targets still exits 0 with an explanatory summary.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	cfg.MappingPath = mappingPath
	cfg.DiffPath = syncDiffPath
	cfg.OutDir = syncOutDir
	cfg.DocRef = syncRef
	cfg.Model = syncModel
	cfg.ReplayPath = syncReplay
	cfg.Review = syncReview
	cfg.NoAnimation = syncNoAnimation
	cfg.Verbose = verbose
	cfg.ApplyEnvOverrides()

	mapping, err := config.LoadMapping(cfg.MappingPath)
	if err != nil {
		return err
	}

	rawDiff, err := source.New(cfg.DiffPath).GetContent()
	if err != nil {
		return err
	}
	if strings.TrimSpace(rawDiff) == "" {
		ui.Warning("Diff is empty. Nothing to process.")
		return nil
	}

	a, err := app.New(cmd.Context(), cfg, mapping, logger)
	if err != nil {
		return err
	}
	exec := func() (*report.Run, error) {
		return a.Run(cmd.Context(), rawDiff)
	}

	var run *report.Run
	if isTerminal(os.Stdout) && !cfg.NoAnimation {
		final, err := tea.NewProgram(tui.New(exec)).Run()
		if err != nil {
			return fmt.Errorf("error running program: %w", err)
		}
		model := final.(tui.Model)
		if model.Err() != nil {
			return model.Err()
		}
		run = model.Run()
	} else {
		var bar *ui.ProgressBar
		a.SetProgressCallback(func(current, total int) {
			if bar == nil {
				bar = ui.NewProgressBar(total, "Syncing")
				bar.Start()
				return
			}
			bar.Increment()
			if current == total {
				bar.Finish()
			}
		})
		run, err = exec()
		if err != nil {
			var detailed *app.DetailedError
			if errors.As(err, &detailed) {
				fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
			}
			return err
		}
		printPlainSummary(run)
	}

	if run != nil && cfg.Review {
		return a.Review()
	}
	return nil
}

func printPlainSummary(run *report.Run) {
	if run.Message != "" {
		ui.Info(run.Message)
		return
	}
	ui.PrintRunSummary(
		run.ByOutcome(report.OutcomeGenerated),
		run.ByOutcome(report.OutcomeNoChange),
		run.ByOutcome(report.OutcomeFetchFailed),
		run.ByOutcome(report.OutcomeInvalid),
	)
}
