// Package section isolates the part of a document relevant to a prompt.
package section

import "strings"

// MaxChars bounds the extracted slice to keep prompts small. The cutoff
// is a hard one, not word-boundary aware.
const MaxChars = 2400

// Extract returns the slice of doc rooted at the heading matching anchor,
// running to the end of the document. Anchor comparison strips leading
// '#' markers and surrounding whitespace and ignores case; only heading
// lines (lines starting with '#') are candidates. When anchor is empty or
// not found the whole document is the slice. The result is advisory
// prompt context only; patch math always uses full content.
func Extract(doc, anchor string) string {
	slice := doc
	if cleaned := clean(anchor); cleaned != "" {
		lines := strings.Split(doc, "\n")
		for i, line := range lines {
			if !strings.HasPrefix(strings.TrimSpace(line), "#") {
				continue
			}
			if clean(line) == cleaned {
				slice = strings.Join(lines[i:], "\n")
				break
			}
		}
	}
	if len(slice) > MaxChars {
		slice = slice[:MaxChars]
	}
	return slice
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "#")
	s = strings.TrimSpace(s)
	return strings.ToLower(s)
}
