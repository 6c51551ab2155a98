package generate

import (
	"fmt"
	"strings"

	"docsync/internal/codediff"
)

// promptPreamble frames every documentation request. The model is told
// to return the complete document so patch math stays on our side.
const promptPreamble = `You are a technical writer keeping documentation in sync with code.

You will be given the current content of a documentation file and the
code changes that affect it. Rewrite the documentation so it reflects
the code changes. Preserve the existing tone, structure, and headings
wherever they are still accurate.

Respond with the COMPLETE updated document inside a single fenced code
block tagged ` + "```markdown" + `. Do not add commentary outside the block.
If no documentation change is needed, return the document unchanged.`

// createPreamble replaces the rewrite framing when the document does
// not exist yet.
const createPreamble = `You are a technical writer creating a new documentation file for
recent code changes.

Respond with the COMPLETE new document inside a single fenced code
block tagged ` + "```markdown" + `. Do not add commentary outside the block.`

// PromptInput is everything one target contributes to its prompt. The
// Section slice is advisory context only; it may be truncated and must
// never be used for patch math.
type PromptInput struct {
	DocPath    string
	Exists     bool
	Section    string
	StyleGuide string
	Segments   []codediff.Segment
}

// BuildPrompt assembles the generation prompt for one target.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	if in.Exists {
		b.WriteString(promptPreamble)
	} else {
		b.WriteString(createPreamble)
	}
	b.WriteString("\n")

	if in.StyleGuide != "" {
		b.WriteString("\n## Style Guide\n\n")
		b.WriteString(strings.TrimSpace(in.StyleGuide))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n## Documentation File: %s\n\n", in.DocPath)
	if in.Exists {
		b.WriteString("Current content (may be truncated):\n\n")
	} else {
		b.WriteString("This file does not exist yet. Seed content:\n\n")
	}
	b.WriteString("```markdown\n")
	b.WriteString(strings.TrimRight(in.Section, "\n"))
	b.WriteString("\n```\n")

	b.WriteString("\n## Code Changes\n")
	for _, seg := range in.Segments {
		fmt.Fprintf(&b, "\n### %s\n\n", seg.FilePath)
		b.WriteString("```diff\n")
		b.WriteString(strings.TrimRight(seg.RawText, "\n"))
		b.WriteString("\n```\n")
	}

	return b.String()
}

// CombineSegments joins the raw diff text of a target's contributing
// files, in their original diff order.
func CombineSegments(segments []codediff.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, strings.TrimRight(seg.RawText, "\n"))
	}
	return strings.Join(parts, "\n")
}
