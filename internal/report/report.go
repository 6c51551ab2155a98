// Package report records per-target outcomes and persists run artifacts:
// one .patch file per generated target plus a JSON run report.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal state of one resolved target.
type Outcome string

const (
	OutcomeGenerated   Outcome = "generated"
	OutcomeInvalid     Outcome = "skipped_invalid_patch"
	OutcomeFetchFailed Outcome = "fetch_failed"
	OutcomeNoChange    Outcome = "skipped_no_change"
)

// Target is one resolved target's report entry.
type Target struct {
	DocPath      string   `json:"doc_path"`
	Anchor       string   `json:"anchor,omitempty"`
	MatchedFiles []string `json:"matched_files"`
	Outcome      Outcome  `json:"outcome"`
	Reason       string   `json:"reason,omitempty"`
	Shape        string   `json:"shape,omitempty"`
	PatchFile    string   `json:"patch_file,omitempty"`
}

// Run aggregates one pipeline run. Generated counts targets that ended
// with a persisted patch.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Message    string    `json:"message,omitempty"`
	Targets    []Target  `json:"targets"`
	Generated  int       `json:"generated"`
}

// NewRun starts an empty run with a fresh ID.
func NewRun() *Run {
	return &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// Add appends a target result and keeps the generated count current.
func (r *Run) Add(t Target) {
	r.Targets = append(r.Targets, t)
	if t.Outcome == OutcomeGenerated {
		r.Generated++
	}
}

// Finish stamps the end of the run.
func (r *Run) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// ByOutcome returns "docPath (reason)" display lines for every target
// that ended in the given outcome.
func (r *Run) ByOutcome(outcome Outcome) []string {
	var lines []string
	for _, t := range r.Targets {
		if t.Outcome != outcome {
			continue
		}
		line := t.DocPath
		if t.Reason != "" {
			line = fmt.Sprintf("%s (%s)", t.DocPath, t.Reason)
		}
		lines = append(lines, line)
	}
	return lines
}

// Sink writes run artifacts under one output directory.
type Sink struct {
	Dir string
}

func NewSink(dir string) *Sink {
	return &Sink{Dir: dir}
}

// ArtifactName flattens a document path into a patch filename: path
// separators become double underscores and a .patch suffix is added.
func ArtifactName(docPath string) string {
	flat := strings.ReplaceAll(docPath, "/", "__")
	flat = strings.ReplaceAll(flat, "\\", "__")
	return flat + ".patch"
}

// WritePatch persists one validated patch and returns its filename
// relative to the sink directory. The text is written verbatim; it
// already carries its single trailing newline.
func (s *Sink) WritePatch(docPath, patchText string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create %s: %w", s.Dir, err)
	}
	name := ArtifactName(docPath)
	if err := os.WriteFile(filepath.Join(s.Dir, name), []byte(patchText), 0o644); err != nil {
		return "", fmt.Errorf("report: write patch for %s: %w", docPath, err)
	}
	return name, nil
}

// WriteReport persists the JSON run report as report.json.
func (s *Sink) WriteReport(run *Run) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("report: create %s: %w", s.Dir, err)
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal run %s: %w", run.ID, err)
	}
	path := filepath.Join(s.Dir, "report.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
