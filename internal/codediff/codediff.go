// Package codediff splits a raw multi-file unified diff into per-file
// segments keyed by their destination path.
package codediff

import (
	"regexp"
	"strings"
)

// Segment is one file's verbatim block of a multi-file diff.
type Segment struct {
	// FilePath is the destination ("b/") path of the block.
	FilePath string
	// RawText is the block exactly as it appeared, headers included.
	RawText string
	// IsDelete reports whether the block removes the file entirely.
	IsDelete bool
}

var (
	// fileHeaderRegex matches the per-file 'diff --git a/... b/...' marker.
	fileHeaderRegex = regexp.MustCompile(`^diff --git a/(?P<old>.*?) b/(?P<new>.*)$`)

	// destPathRegex extracts the file path from a '+++ b/...' line.
	destPathRegex = regexp.MustCompile(`(?m)^\+\+\+ b/(?P<path>.*?)(\s|$)`)

	deletedFileRegex = regexp.MustCompile(`(?m)^deleted file mode `)
	devNullDestRegex = regexp.MustCompile(`(?m)^\+\+\+ /dev/null(\s|$)`)
)

// Index splits raw into ordered per-file segments. A blob with no file
// headers yields no segments, which callers treat as "no changes". Blocks
// whose destination path cannot be determined are dropped; their header
// lines are returned so the caller can log them.
func Index(raw string) (segments []Segment, skipped []string) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	lines := strings.Split(raw, "\n")
	start := -1

	flush := func(end int) {
		block := strings.Join(lines[start:end], "\n")
		path := destPath(block)
		if path == "" {
			skipped = append(skipped, lines[start])
			return
		}
		segments = append(segments, Segment{
			FilePath: path,
			RawText:  block,
			IsDelete: deletedFileRegex.MatchString(block) || devNullDestRegex.MatchString(block),
		})
	}

	for i, line := range lines {
		if strings.HasPrefix(line, "diff --git ") {
			if start >= 0 {
				flush(i)
			}
			start = i
		}
	}
	if start >= 0 {
		flush(len(lines))
	}
	return segments, skipped
}

// ChangedPaths returns the segment paths in their original order.
func ChangedPaths(segments []Segment) []string {
	paths := make([]string, 0, len(segments))
	for _, seg := range segments {
		paths = append(paths, seg.FilePath)
	}
	return paths
}

// destPath finds the destination path of a single file block. The
// '+++ b/' line wins when present so renames resolve to the new name;
// deletions carry '+++ /dev/null' and fall back to the header's b/ side.
func destPath(block string) string {
	if match := destPathRegex.FindStringSubmatch(block); len(match) > 1 {
		return strings.TrimSpace(match[1])
	}
	header, _, _ := strings.Cut(block, "\n")
	if match := fileHeaderRegex.FindStringSubmatch(header); len(match) > 2 {
		return strings.TrimSpace(match[2])
	}
	return ""
}
