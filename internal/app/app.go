// Package app orchestrates one documentation sync run: index the diff,
// resolve targets, and take each target through synthesis, validation,
// and the fallback tiers. Failures stay local to their target.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"

	"docsync/internal/codediff"
	"docsync/internal/config"
	"docsync/internal/docpatch"
	"docsync/internal/docsource"
	"docsync/internal/fallback"
	"docsync/internal/generate"
	"docsync/internal/report"
	"docsync/internal/resolve"
	"docsync/internal/section"
)

// App wires the pipeline's collaborators for one run.
type App struct {
	cfg       *config.Config
	mapping   *config.Mapping
	log       *zap.Logger
	fetcher   docsource.Fetcher
	oracle    docpatch.Oracle
	generator generate.Generator
	fallback  *fallback.Generator
	sink      *report.Sink

	styleGuide string

	// reviewDocs collects each generated target's updated content for
	// the optional editor handoff after the run.
	reviewDocs []reviewDoc

	progress ProgressUpdate
}

type reviewDoc struct {
	Path    string
	Content string
}

// ProgressUpdate is a callback function to report progress.
type ProgressUpdate func(current, total int)

// SetProgressCallback sets a function to be called as targets finish.
func (a *App) SetProgressCallback(cb ProgressUpdate) {
	a.progress = cb
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

// New creates an App from the run configuration. The generator is the
// replay source when configured, the Gemini client otherwise.
func New(ctx context.Context, cfg *config.Config, mapping *config.Mapping, log *zap.Logger) (*App, error) {
	ref := cfg.DocRef
	if ref == "" {
		ref = mapping.DocRef
	}

	a := &App{
		cfg:      cfg,
		mapping:  mapping,
		log:      log,
		fetcher:  docsource.New(ref),
		oracle:   docpatch.GitOracle{},
		fallback: fallback.New(),
		sink:     report.NewSink(cfg.OutDir),
	}

	if cfg.ReplayPath != "" {
		a.generator = generate.Replay{Path: cfg.ReplayPath}
	} else {
		gen, err := generate.NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		a.generator = gen
	}

	if mapping.StyleGuide != "" {
		data, err := os.ReadFile(mapping.StyleGuide)
		if err != nil {
			return nil, fmt.Errorf("style guide: %w", err)
		}
		a.styleGuide = string(data)
	}
	return a, nil
}

// Run executes the pipeline over one raw diff blob. Per-target failures
// are recorded in the run report and never abort the run; the returned
// error covers run-level problems only. A run with zero valid targets
// is still a successful run.
func (a *App) Run(ctx context.Context, rawDiff string) (run *report.Run, err error) {
	// Centralized panic recovery to provide stack traces for unexpected errors.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	run = report.NewRun()

	segments, skipped := codediff.Index(rawDiff)
	for _, header := range skipped {
		a.log.Debug("dropping diff block without a destination path",
			zap.String("header", header))
	}
	if len(segments) == 0 {
		run.Message = "No file changes found in the diff."
		return a.finishRun(run)
	}

	targets, err := resolve.Targets(codediff.ChangedPaths(segments), a.mapping.Rules)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		run.Message = "No documentation targets matched this diff."
		return a.finishRun(run)
	}

	a.log.Info("targets resolved",
		zap.Int("changed_files", len(segments)),
		zap.Int("targets", len(targets)),
		zap.String("run_id", run.ID))

	if a.progress != nil {
		a.progress(0, len(targets))
	}
	for i, target := range targets {
		entry := a.processTarget(ctx, target, segments)
		run.Add(entry)
		if a.progress != nil {
			a.progress(i+1, len(targets))
		}
		a.log.Info("target processed",
			zap.String("doc", entry.DocPath),
			zap.String("outcome", string(entry.Outcome)),
			zap.String("reason", entry.Reason))
	}
	return a.finishRun(run)
}

func (a *App) finishRun(run *report.Run) (*report.Run, error) {
	run.Finish()
	if err := a.sink.WriteReport(run); err != nil {
		return run, err
	}
	return run, nil
}

// processTarget takes one resolved target to its terminal outcome.
func (a *App) processTarget(ctx context.Context, target resolve.Target, segments []codediff.Segment) report.Target {
	entry := report.Target{
		DocPath:      target.DocPath,
		Anchor:       target.Anchor,
		MatchedFiles: target.MatchedFiles,
	}

	matched := make(map[string]bool, len(target.MatchedFiles))
	for _, path := range target.MatchedFiles {
		matched[path] = true
	}
	var contributing []codediff.Segment
	deleteOnly := true
	for _, seg := range segments {
		if !matched[seg.FilePath] {
			continue
		}
		contributing = append(contributing, seg)
		if !seg.IsDelete {
			deleteOnly = false
		}
	}

	isAggregate := a.mapping.AggregateDoc != "" && target.DocPath == a.mapping.AggregateDoc
	deleteOnly = deleteOnly && len(contributing) > 0 && !isAggregate

	content, err := a.fetcher.Fetch(ctx, target.DocPath)
	exists := err == nil
	if err != nil && !errors.Is(err, docsource.ErrNotFound) {
		entry.Outcome = report.OutcomeFetchFailed
		entry.Reason = err.Error()
		return entry
	}
	oldContent := docpatch.NormalizeContent(content)

	if deleteOnly {
		req := docpatch.Request{
			DocPath:    target.DocPath,
			OldContent: oldContent,
			Exists:     exists,
			DeleteOnly: true,
		}
		validated, err := docpatch.Build(ctx, a.oracle, req)
		if errors.Is(err, docpatch.ErrNoChange) {
			entry.Outcome = report.OutcomeNoChange
			entry.Reason = err.Error()
			return entry
		}
		if err != nil {
			return a.recordFailure(entry, err)
		}
		return a.persist(entry, validated, "")
	}

	base := oldContent
	if !exists {
		base = seedContent(target.DocPath)
	}

	prompt := generate.BuildPrompt(generate.PromptInput{
		DocPath:    target.DocPath,
		Exists:     exists,
		Section:    section.Extract(base, target.Anchor),
		StyleGuide: a.styleGuide,
		Segments:   contributing,
	})

	synthErr := func() error {
		response, err := a.generator.Generate(ctx, prompt)
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}
		newContent := docpatch.NormalizeContent(generate.ExtractDocument(response))
		validated, err := docpatch.Build(ctx, a.oracle, docpatch.Request{
			DocPath:    target.DocPath,
			OldContent: oldContent,
			NewContent: newContent,
			Exists:     exists,
		})
		if err != nil {
			return err
		}
		entry = a.persist(entry, validated, newContent)
		return nil
	}()
	if synthErr == nil {
		return entry
	}
	if errors.Is(synthErr, docpatch.ErrNoChange) {
		entry.Outcome = report.OutcomeNoChange
		entry.Reason = synthErr.Error()
		return entry
	}

	// The deterministic fallback covers exactly one document and fires
	// only after the generative tier errored, never after NoChange.
	if !isAggregate {
		return a.recordFailure(entry, synthErr)
	}
	a.log.Warn("generative synthesis failed for the aggregate document, using deterministic fallback",
		zap.String("doc", target.DocPath),
		zap.Error(synthErr))

	newContent := docpatch.NormalizeContent(a.fallback.Rewrite(oldContent, generate.CombineSegments(contributing)))
	validated, err := docpatch.Build(ctx, a.oracle, docpatch.Request{
		DocPath:    target.DocPath,
		OldContent: oldContent,
		NewContent: newContent,
		Exists:     exists,
	})
	if errors.Is(err, docpatch.ErrNoChange) {
		entry.Outcome = report.OutcomeNoChange
		entry.Reason = "fallback produced an identical document"
		return entry
	}
	if err != nil {
		return a.recordFailure(entry, err)
	}
	return a.persist(entry, validated, newContent)
}

// recordFailure marks a target skipped after every synthesis tier has
// been exhausted.
func (a *App) recordFailure(entry report.Target, err error) report.Target {
	entry.Outcome = report.OutcomeInvalid
	entry.Reason = err.Error()
	return entry
}

// persist writes the validated patch artifact and fills in the entry's
// terminal state. Non-delete targets are queued for editor review.
func (a *App) persist(entry report.Target, validated docpatch.Validated, newContent string) report.Target {
	name, err := a.sink.WritePatch(validated.TargetPath, validated.Text)
	if err != nil {
		entry.Outcome = report.OutcomeInvalid
		entry.Reason = err.Error()
		return entry
	}
	entry.Outcome = report.OutcomeGenerated
	entry.Shape = validated.Shape.String()
	entry.PatchFile = name
	if validated.Shape != docpatch.ShapeDelete {
		a.reviewDocs = append(a.reviewDocs, reviewDoc{Path: validated.TargetPath, Content: newContent})
	}
	return entry
}

// seedContent derives the synthetic baseline for a document that does
// not exist yet: a single title line from the path's basename.
func seedContent(docPath string) string {
	base := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	title := strings.Join(words, " ")
	if title == "" {
		title = "Documentation"
	}
	return "# " + title + "\n"
}
