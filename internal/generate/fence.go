package generate

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// docFenceTags are the fence info strings that mark a block as the
// proposed document. Matched case-insensitively; an untagged fence also
// counts.
var docFenceTags = map[string]bool{
	"":         true,
	"patch":    true,
	"markdown": true,
	"md":       true,
}

// ExtractDocument pulls the proposed document out of a model response.
// Models wrap their answer in a fenced block as often as not, so the
// markdown AST is walked for the first fence carrying a document tag;
// when no such fence exists the whole response, trimmed, is the answer.
func ExtractDocument(response string) string {
	source := []byte(response)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var found string
	var ok bool

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || ok {
			return ast.WalkContinue, nil
		}
		fenced, isFence := node.(*ast.FencedCodeBlock)
		if !isFence {
			return ast.WalkContinue, nil
		}

		var lang string
		if fenced.Info != nil {
			lang = strings.ToLower(strings.TrimSpace(string(fenced.Info.Text(source))))
		}
		if !docFenceTags[lang] {
			return ast.WalkSkipChildren, nil
		}

		var content bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(source))
		}
		found = content.String()
		ok = true
		return ast.WalkStop, nil
	}

	if err := ast.Walk(root, walker); err != nil || !ok {
		return strings.TrimSpace(response)
	}
	return found
}
