package docpatch

import (
	"context"
	"fmt"
	"strings"
)

// Request carries one target's synthesis inputs. OldContent and
// NewContent must already be normalized (NormalizeContent).
type Request struct {
	DocPath    string
	OldContent string
	NewContent string

	// Exists reports whether the document is present at the source ref.
	Exists bool

	// DeleteOnly marks a target whose every contributing code diff is a
	// deletion. The caller never sets it for the aggregate document.
	DeleteOnly bool
}

// Synthesize selects the patch shape for req and renders the candidate.
// It returns ErrNoChange when old and new content coincide, when a
// delete-only target is already absent, and for the degenerate empty
// create and empty delete cases where a patch would carry no lines.
func Synthesize(req Request) (Candidate, error) {
	switch {
	case req.DeleteOnly:
		if !req.Exists {
			return Candidate{}, fmt.Errorf("%s already absent: %w", req.DocPath, ErrNoChange)
		}
		if req.OldContent == "" {
			return Candidate{}, fmt.Errorf("%s already empty: %w", req.DocPath, ErrNoChange)
		}
		return Candidate{
			TargetPath: req.DocPath,
			Shape:      ShapeDelete,
			Text:       renderDelete(req.DocPath, req.OldContent),
		}, nil

	case !req.Exists:
		if req.NewContent == "" {
			return Candidate{}, fmt.Errorf("%s: nothing to create: %w", req.DocPath, ErrNoChange)
		}
		return Candidate{
			TargetPath: req.DocPath,
			Shape:      ShapeCreate,
			Text:       renderCreate(req.DocPath, req.NewContent),
		}, nil

	case req.OldContent == req.NewContent:
		return Candidate{}, fmt.Errorf("%s unchanged: %w", req.DocPath, ErrNoChange)

	default:
		hunks := computeHunks(req.OldContent, req.NewContent)
		if len(hunks) == 0 {
			return Candidate{}, fmt.Errorf("%s unchanged: %w", req.DocPath, ErrNoChange)
		}
		return Candidate{
			TargetPath: req.DocPath,
			Shape:      ShapeModify,
			Text:       renderModify(req.DocPath, hunks),
		}, nil
	}
}

// ReplaceAll renders the whole-file replacement candidate: one hunk
// removing every old line and adding every new line. Structurally valid
// by construction since its ranges equal the total line counts, at the
// cost of an unreadable diff. Always oldStart=1, newStart=1.
func ReplaceAll(req Request) Candidate {
	oldLines := contentLines(req.OldContent)
	newLines := contentLines(req.NewContent)

	var b strings.Builder
	writeFileHeader(&b, req.DocPath)
	fmt.Fprintf(&b, "@@ -1,%d +1,%d @@\n", len(oldLines), len(newLines))
	for _, line := range oldLines {
		b.WriteString("-")
		b.WriteString(line)
		b.WriteString("\n")
	}
	for _, line := range newLines {
		b.WriteString("+")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return Candidate{TargetPath: req.DocPath, Shape: ShapeReplaceAll, Text: b.String()}
}

// Build runs synthesis and validation for one request, escalating a
// rejected Modify to ReplaceAll exactly once. Together with the header
// repair inside Validate this bounds retries per target.
func Build(ctx context.Context, oracle Oracle, req Request) (Validated, error) {
	cand, err := Synthesize(req)
	if err != nil {
		return Validated{}, err
	}

	validated, err := Validate(ctx, oracle, req.DocPath, req.OldContent, req.Exists, cand)
	if err == nil {
		return validated, nil
	}
	if cand.Shape != ShapeModify {
		return Validated{}, err
	}
	return Validate(ctx, oracle, req.DocPath, req.OldContent, req.Exists, ReplaceAll(req))
}

func renderModify(docPath string, hunks []hunk) string {
	var b strings.Builder
	writeFileHeader(&b, docPath)
	for _, h := range hunks {
		renderHunk(&b, h)
	}
	return b.String()
}

func renderCreate(docPath, newContent string) string {
	lines := contentLines(newContent)

	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", docPath, docPath)
	b.WriteString("new file mode 100644\n")
	b.WriteString("--- /dev/null\n")
	fmt.Fprintf(&b, "+++ b/%s\n", docPath)
	fmt.Fprintf(&b, "@@ -0,0 +1,%d @@\n", len(lines))
	for _, line := range lines {
		b.WriteString("+")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func renderDelete(docPath, oldContent string) string {
	lines := contentLines(oldContent)

	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", docPath, docPath)
	b.WriteString("deleted file mode 100644\n")
	fmt.Fprintf(&b, "--- a/%s\n", docPath)
	b.WriteString("+++ /dev/null\n")
	fmt.Fprintf(&b, "@@ -1,%d +0,0 @@\n", len(lines))
	for _, line := range lines {
		b.WriteString("-")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func writeFileHeader(b *strings.Builder, docPath string) {
	fmt.Fprintf(b, "diff --git a/%s b/%s\n", docPath, docPath)
	fmt.Fprintf(b, "--- a/%s\n", docPath)
	fmt.Fprintf(b, "+++ b/%s\n", docPath)
}
