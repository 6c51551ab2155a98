// Package docpatch synthesizes and validates unified-diff patches
// against documentation files.
package docpatch

import (
	"errors"
	"strings"
)

// Shape tags the form a candidate patch takes. The validator and the
// reporter switch on it exhaustively; there are no ad-hoc flags.
type Shape int

const (
	ShapeModify Shape = iota
	ShapeCreate
	ShapeDelete
	ShapeReplaceAll
)

func (s Shape) String() string {
	switch s {
	case ShapeModify:
		return "modify"
	case ShapeCreate:
		return "create"
	case ShapeDelete:
		return "delete"
	case ShapeReplaceAll:
		return "replace_all"
	default:
		return "unknown"
	}
}

// Candidate is a synthesized patch that has not yet passed the oracle.
type Candidate struct {
	TargetPath string
	Shape      Shape
	Text       string
}

// Validated is a Candidate the applicability oracle accepted. Only
// validated patches are persisted or emitted.
type Validated struct {
	Candidate
}

// ErrNoChange reports that old and new content are identical, so no
// patch exists. It is terminal for a target, never retried.
var ErrNoChange = errors.New("no change")

// InvalidPatchError carries the oracle's diagnostic after every repair
// tier has been exhausted for a target.
type InvalidPatchError struct {
	TargetPath string
	Diagnostic string
}

func (e *InvalidPatchError) Error() string {
	return "invalid patch for " + e.TargetPath + ": " + e.Diagnostic
}

// NormalizeContent converts CRLF and lone CR line endings to LF and
// guarantees non-empty content ends with a newline. Document content
// must pass through here before any diff math.
func NormalizeContent(s string) string {
	s = normalizeEndings(s)
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

// normalizePatchText normalizes endings and forces exactly one trailing
// newline, the form the artifact format requires.
func normalizePatchText(s string) string {
	s = normalizeEndings(s)
	return strings.TrimRight(s, "\n") + "\n"
}

func normalizeEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// contentLines splits normalized content into lines without the
// trailing empty element. Empty content has zero lines.
func contentLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
