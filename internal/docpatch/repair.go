package docpatch

import (
	"fmt"
	"regexp"
	"strings"
)

// bareHunkRegex matches the malformed '@@' / '@@ @@' headers generative
// models are known to produce in place of real ranges.
var bareHunkRegex = regexp.MustCompile(`(?m)^@@\s*(?:@@)?\s*$`)

// hasBareHunkHeader reports whether candidate text carries at least one
// rangeless hunk header, the one failure mode repair can fix.
func hasBareHunkHeader(text string) bool {
	return bareHunkRegex.MatchString(text)
}

// repairHeaders rebuilds every hunk header of a candidate patch from its
// body. Counts come from scanning added/removed/context lines; the old
// start comes from locating the hunk's context and removed lines in the
// old document, whitespace-insensitively, falling back to line 1 when
// the block cannot be found (0 for hunks with no old-side lines). New
// starts carry a running offset across hunks. Hunk bodies are preserved
// verbatim; file headers are rebuilt for docPath.
func repairHeaders(oldContent, candidateText, docPath string) (string, error) {
	hunks := splitHunkBodies(strings.Split(candidateText, "\n"))
	if len(hunks) == 0 {
		return "", fmt.Errorf("repair: no hunk bodies in candidate")
	}
	sourceLines := contentLines(oldContent)

	var b strings.Builder
	writeFileHeader(&b, docPath)

	offset := 0
	for _, body := range hunks {
		addCount, removeCount := 0, 0
		for _, line := range body {
			switch {
			case strings.HasPrefix(line, "+"):
				addCount++
			case strings.HasPrefix(line, "-"):
				removeCount++
			}
		}
		contextCount := len(body) - addCount - removeCount
		oldCount := contextCount + removeCount
		newCount := contextCount + addCount

		oldStart := 0
		if oldCount > 0 {
			oldStart = matchBlock(sourceLines, targetBlock(body))
			if oldStart == -1 {
				oldStart = 1
			}
		}
		newStart := oldStart + offset
		switch {
		case oldCount == 0:
			// Pure insertion: new content begins on the line after the
			// anchor point.
			newStart++
		case newCount == 0:
			newStart--
		}
		if newStart < 0 {
			newStart = 0
		}

		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
		for _, line := range body {
			b.WriteString(line)
			b.WriteString("\n")
		}
		offset += newCount - oldCount
	}
	return b.String(), nil
}

// splitHunkBodies collects the body lines of each hunk, dropping all
// header lines. A body line is one prefixed with '+', '-', or ' '.
func splitHunkBodies(lines []string) [][]string {
	var hunks [][]string
	var current []string

	for _, line := range lines {
		// File headers carry a space after the marker ('--- a/...'),
		// which keeps removed lines whose content starts with '--'
		// out of this branch.
		if strings.HasPrefix(line, "diff --git") ||
			strings.HasPrefix(line, "--- ") ||
			strings.HasPrefix(line, "+++ ") ||
			strings.HasPrefix(line, "new file mode") ||
			strings.HasPrefix(line, "deleted file mode") ||
			strings.HasPrefix(line, "index ") {
			continue
		}
		if strings.HasPrefix(line, "@@") {
			if len(current) > 0 {
				hunks = append(hunks, current)
			}
			current = nil
			continue
		}
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") || strings.HasPrefix(line, " ") {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		hunks = append(hunks, current)
	}
	return hunks
}

// targetBlock builds the search pattern for a hunk: the lines guaranteed
// to be present in the old document (context and removed lines), with
// blanks dropped so whitespace-only drift does not break matching.
func targetBlock(body []string) []string {
	var block []string
	for _, line := range body {
		var content string
		switch {
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, " "):
			content = line[1:]
		default:
			continue
		}
		if strings.TrimSpace(content) != "" {
			block = append(block, content)
		}
	}
	return block
}

// matchBlock finds the 1-based line where block begins within source.
// Blank source lines are skipped and every comparison collapses internal
// whitespace, so the match survives reflowed indentation. Returns -1
// when the block does not occur.
func matchBlock(source, block []string) int {
	if len(block) == 0 {
		return -1
	}

	normalized := make([]string, len(block))
	for i, line := range block {
		normalized[i] = normalizeForMatch(line)
	}

	var filtered []string
	var lineNums []int
	for i, line := range source {
		if n := normalizeForMatch(line); n != "" {
			filtered = append(filtered, n)
			lineNums = append(lineNums, i+1)
		}
	}

	for i := 0; i+len(normalized) <= len(filtered); i++ {
		match := true
		for j := range normalized {
			if filtered[i+j] != normalized[j] {
				match = false
				break
			}
		}
		if match {
			return lineNums[i]
		}
	}
	return -1
}

func normalizeForMatch(line string) string {
	return strings.Join(strings.Fields(line), " ")
}
