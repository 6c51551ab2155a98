// Package fallback is the rule-based updater for the aggregate document,
// used only after generative synthesis has failed for it.
package fallback

import (
	"fmt"
	"strings"
	"time"
)

// maxLines caps how many added and removed lines the notes section
// quotes from the contributing diff.
const maxLines = 8

// SectionHeading delimits the generated notes. Everything from this
// heading to the end of the document belongs to the generator and is
// replaced wholesale on the next run.
const SectionHeading = "## Automated Sync Notes"

// Generator rewrites the aggregate document deterministically. The
// clock is a field so tests can pin timestamps.
type Generator struct {
	Now func() time.Time
}

func New() *Generator {
	return &Generator{Now: time.Now}
}

// Rewrite returns the aggregate document's new full content: the current
// content with its sync-notes section replaced, or with a fresh section
// appended after a blank separator when none exists. It never fails; the
// result still flows through normal patch synthesis and validation.
func (g *Generator) Rewrite(current, combinedDiff string) string {
	added, removed := pickLines(combinedDiff)

	var b strings.Builder
	b.WriteString(SectionHeading + "\n\n")
	fmt.Fprintf(&b, "Last sync: %s\n", g.Now().UTC().Format(time.RFC3339))
	writeList(&b, "Added in source:", added)
	writeList(&b, "Removed from source:", removed)
	section := b.String()

	if idx := sectionStart(current); idx >= 0 {
		return current[:idx] + section
	}
	base := strings.TrimRight(current, "\n")
	if base == "" {
		return section
	}
	return base + "\n\n" + section
}

// pickLines extracts up to maxLines added and removed raw lines from the
// combined diff, in order, dropping blanks and the +++/--- file markers.
func pickLines(combinedDiff string) (added, removed []string) {
	for _, line := range strings.Split(combinedDiff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			continue
		case strings.HasPrefix(line, "+"):
			if content := line[1:]; strings.TrimSpace(content) != "" && len(added) < maxLines {
				added = append(added, content)
			}
		case strings.HasPrefix(line, "-"):
			if content := line[1:]; strings.TrimSpace(content) != "" && len(removed) < maxLines {
				removed = append(removed, content)
			}
		}
	}
	return added, removed
}

func writeList(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString("\n" + title + "\n\n")
	for _, line := range lines {
		// Indented code block, so raw diff lines survive untouched.
		b.WriteString("    " + line + "\n")
	}
}

func sectionStart(doc string) int {
	if strings.HasPrefix(doc, SectionHeading) {
		return 0
	}
	if i := strings.Index(doc, "\n"+SectionHeading); i >= 0 {
		return i + 1
	}
	return -1
}
