// Package docsource fetches documentation content for a run.
package docsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound reports that a document does not exist at the source. It
// is the only recoverable fetch error: modify-style targets fall back to
// seed content and delete-only targets count as already absent. Any
// other fetch error is fatal for its target.
var ErrNotFound = errors.New("document not found")

// Fetcher retrieves the current content of one document.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (string, error)
}

// WorktreeRef selects the filesystem fetcher instead of a git ref.
const WorktreeRef = "worktree"

// New picks a fetcher for ref: the working tree for WorktreeRef,
// otherwise documents are pinned to the given git ref.
func New(ref string) Fetcher {
	if ref == WorktreeRef {
		return FSFetcher{}
	}
	return GitFetcher{Ref: ref}
}

// GitFetcher reads documents at a fixed ref via `git show`, so every
// fetch in a run sees the same commit regardless of concurrent edits.
type GitFetcher struct {
	// Dir is the repository root; empty means the working directory.
	Dir string
	Ref string
}

func (f GitFetcher) Fetch(ctx context.Context, path string) (string, error) {
	ref := f.Ref
	if ref == "" {
		ref = "HEAD"
	}

	cmd := exec.CommandContext(ctx, "git", "show", ref+":"+path)
	cmd.Dir = f.Dir

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		// `git show` reports a missing path distinctly from a bad ref;
		// only the former is recoverable.
		if strings.Contains(msg, "does not exist in") ||
			strings.Contains(msg, "exists on disk, but not in") {
			return "", fmt.Errorf("%s at %s: %w", path, ref, ErrNotFound)
		}
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("docsource: git show %s:%s: %s", ref, path, msg)
	}
	return out.String(), nil
}

// FSFetcher reads documents straight from the working tree.
type FSFetcher struct {
	// Root is the directory document paths resolve against; empty means
	// the working directory.
	Root string
}

func (f FSFetcher) Fetch(_ context.Context, path string) (string, error) {
	full := filepath.Join(f.Root, filepath.FromSlash(path))
	data, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("docsource: read %s: %w", path, err)
	}
	return string(data), nil
}
