// Package source provides the raw code diff for a run: an explicit
// file when given, stdin when piped, the clipboard otherwise.
package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"docsync/internal/ui"
)

// Provider retrieves the diff blob to process.
type Provider struct {
	// Path optionally names a diff file, taking priority over stdin and
	// the clipboard.
	Path string
}

func New(path string) *Provider {
	return &Provider{Path: path}
}

// GetContent returns the raw diff. An empty result means there is
// nothing to process, not an error.
func (p *Provider) GetContent() (string, error) {
	if p.Path != "" {
		data, err := os.ReadFile(p.Path)
		if err != nil {
			return "", fmt.Errorf("failed to read diff file: %w", err)
		}
		return string(data), nil
	}

	stat, _ := os.Stdin.Stat()
	isPiped := (stat.Mode() & os.ModeCharDevice) == 0

	if isPiped {
		ui.Header("--- Reading diff from stdin ---")
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), nil
	}

	ui.Header("--- Reading diff from clipboard ---")
	content, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		ui.Warning("Clipboard is empty. Nothing to process.")
		return "", nil
	}
	return content, nil
}
