package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docsync/internal/codediff"
	"docsync/internal/config"
	"docsync/internal/resolve"
	"docsync/internal/source"
	"docsync/internal/ui"
)

var checkDiffPath string

func init() {
	checkCmd.Flags().StringVar(&checkDiffPath, "diff", "", "resolve targets for this diff file (default: stdin or clipboard)")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the mapping config and show target resolution",
	Long: `Loads and validates the mapping rules, then indexes the diff and prints
which documentation targets it would resolve to. Nothing is fetched and
nothing is generated. Exits non-zero when the mapping is invalid.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	mapping, err := config.LoadMapping(mappingPath)
	if err != nil {
		return err
	}
	ui.Success("Mapping OK: %d rule(s)", len(mapping.Rules))
	if mapping.AggregateDoc != "" {
		ui.Info("Aggregate document: %s", mapping.AggregateDoc)
	}

	rawDiff, err := source.New(checkDiffPath).GetContent()
	if err != nil {
		return err
	}
	if strings.TrimSpace(rawDiff) == "" {
		ui.Warning("No diff provided; skipping target resolution.")
		return nil
	}

	segments, skipped := codediff.Index(rawDiff)
	for _, header := range skipped {
		logger.Debug("dropping diff block without a destination path",
			zap.String("header", header))
	}
	targets, err := resolve.Targets(codediff.ChangedPaths(segments), mapping.Rules)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		ui.Info("No documentation targets matched this diff.")
		return nil
	}

	ui.Header("--- Resolved targets ---")
	for _, target := range targets {
		label := target.DocPath
		if target.Anchor != "" {
			label += " § " + target.Anchor
		}
		ui.Path("- %s", label)
		for _, file := range target.MatchedFiles {
			ui.Path("    <- %s", file)
		}
	}
	return nil
}
