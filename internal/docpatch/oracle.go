package docpatch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Oracle is the external verdict on whether a candidate patch applies
// cleanly to a document staged with oldContent (or absent, for creates).
// Implementations return nil for "applies" and a diagnostic error
// otherwise; no write happens either way.
type Oracle interface {
	Check(ctx context.Context, docPath, oldContent string, exists bool, patchText string) error
}

// GitOracle stages the document under a throwaway directory and asks
// `git apply --check` for the verdict. a/ and b/ prefixes resolve
// against the staging root; new-file and deleted-file headers get their
// usual create/delete semantics.
type GitOracle struct{}

func (GitOracle) Check(ctx context.Context, docPath, oldContent string, exists bool, patchText string) error {
	dir, err := os.MkdirTemp("", "docsync-stage-")
	if err != nil {
		return fmt.Errorf("oracle: stage dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if exists {
		full := filepath.Join(dir, filepath.FromSlash(docPath))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return fmt.Errorf("oracle: stage %s: %w", docPath, err)
		}
		if err := os.WriteFile(full, []byte(oldContent), 0o644); err != nil {
			return fmt.Errorf("oracle: stage %s: %w", docPath, err)
		}
	}

	cmd := exec.CommandContext(ctx, "git", "apply", "--check", "--whitespace=nowarn")
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(patchText)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("git apply --check: %s", msg)
	}
	return nil
}
