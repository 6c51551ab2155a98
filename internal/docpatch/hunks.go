package docpatch

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the amount of surrounding context in Modify hunks.
const contextLines = 3

type lineType int

const (
	lineContext lineType = iota
	lineAdded
	lineRemoved
)

// operation is a single line of the line-level diff, carrying the
// 0-based old and new positions it occupies.
type operation struct {
	typ     lineType
	oldLine int
	newLine int
	text    string
}

// hunk is one contiguous change region with its range header values.
type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []operation
}

var dmp = func() *diffmatchpatch.DiffMatchPatch {
	d := diffmatchpatch.New()
	d.DiffTimeout = 0
	return d
}()

// computeHunks diffs normalized old and new content line-wise and groups
// the result into hunks with contextLines of context. Identical inputs
// yield no hunks.
func computeHunks(oldContent, newContent string) []hunk {
	if oldContent == newContent {
		return nil
	}

	// Line-level reduction avoids newline boundary artifacts when
	// converting the character diff back to line operations.
	a, b, lineArray := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	return groupHunks(diffsToOperations(diffs), contextLines)
}

func diffsToOperations(diffs []diffmatchpatch.Diff) []operation {
	var ops []operation
	oldN, newN := 0, 0

	for _, diff := range diffs {
		lines := strings.Split(diff.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		for _, line := range lines {
			switch diff.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, operation{typ: lineContext, oldLine: oldN, newLine: newN, text: line})
				oldN++
				newN++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, operation{typ: lineRemoved, oldLine: oldN, newLine: newN, text: line})
				oldN++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, operation{typ: lineAdded, oldLine: oldN, newLine: newN, text: line})
				newN++
			}
		}
	}
	return ops
}

// groupHunks splits operations into hunks. Change runs separated by more
// than 2*context unchanged lines go into separate hunks; anything closer
// shares one hunk so fragments never overlap.
func groupHunks(ops []operation, context int) []hunk {
	var hunks []hunk
	var cur *hunk
	lastChange := -1

	flush := func(trailing int) {
		if trailing > context {
			cur.lines = cur.lines[:len(cur.lines)-(trailing-context)]
		}
		finishHunk(cur)
		hunks = append(hunks, *cur)
		cur = nil
	}

	for i, op := range ops {
		if op.typ == lineContext {
			if cur != nil {
				cur.lines = append(cur.lines, op)
				if i-lastChange > 2*context {
					flush(i - lastChange)
				}
			}
			continue
		}

		if cur == nil {
			cur = &hunk{}
			start := i - context
			if start < 0 {
				start = 0
			}
			// Everything between hunks is context, so this backfill
			// can only pick up context lines.
			cur.lines = append(cur.lines, ops[start:i]...)
		}
		cur.lines = append(cur.lines, op)
		lastChange = i
	}
	if cur != nil {
		flush(len(ops) - 1 - lastChange)
	}
	return hunks
}

// finishHunk fills in the range header values from the hunk body.
// A side with zero lines gets start 0, matching apply semantics for
// pure insertions and pure removals.
func finishHunk(h *hunk) {
	for _, op := range h.lines {
		if op.typ != lineAdded {
			h.oldCount++
		}
		if op.typ != lineRemoved {
			h.newCount++
		}
	}
	first := h.lines[0]
	h.oldStart = first.oldLine + 1
	h.newStart = first.newLine + 1
	if h.oldCount == 0 {
		h.oldStart = first.oldLine
	}
	if h.newCount == 0 {
		h.newStart = first.newLine
	}
}

func renderHunk(b *strings.Builder, h hunk) {
	fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@\n", h.oldStart, h.oldCount, h.newStart, h.newCount)
	for _, op := range h.lines {
		switch op.typ {
		case lineAdded:
			b.WriteString("+")
		case lineRemoved:
			b.WriteString("-")
		default:
			b.WriteString(" ")
		}
		b.WriteString(op.text)
		b.WriteString("\n")
	}
}
