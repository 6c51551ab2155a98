package docpatch

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

// acceptAll approves every candidate.
type acceptAll struct{}

func (acceptAll) Check(context.Context, string, string, bool, string) error { return nil }

// rejectBare mimics a strict apply tool: it rejects candidates still
// carrying a rangeless '@@' header and accepts everything else.
type rejectBare struct{}

func (rejectBare) Check(_ context.Context, _, _ string, _ bool, patchText string) error {
	if hasBareHunkHeader(patchText) {
		return errors.New("corrupt patch: hunk header without ranges")
	}
	return nil
}

// fullReplaceOnly accepts only single-hunk patches that remove the whole
// old document and carry no context lines.
type fullReplaceOnly struct{}

var hunkHeaderRe = regexp.MustCompile(`(?m)^@@ -(\d+),(\d+) \+(\d+),(\d+) @@$`)

func (fullReplaceOnly) Check(_ context.Context, _, oldContent string, _ bool, patchText string) error {
	headers := hunkHeaderRe.FindAllStringSubmatch(patchText, -1)
	if len(headers) != 1 {
		return errors.New("stub: want exactly one hunk")
	}
	oldStart, _ := strconv.Atoi(headers[0][1])
	oldCount, _ := strconv.Atoi(headers[0][2])
	if oldStart != 1 || oldCount != len(contentLines(oldContent)) {
		return errors.New("stub: hunk does not span the whole file")
	}
	for _, line := range strings.Split(patchText, "\n") {
		if strings.HasPrefix(line, " ") {
			return errors.New("stub: context lines not accepted")
		}
	}
	return nil
}

// applyUnified is a reference applier used to verify round-trips. It
// trusts hunk positions, checks context and removed lines against the
// old content, and fails the test on any mismatch.
func applyUnified(t *testing.T, oldContent, patchText string) string {
	t.Helper()

	oldLines := contentLines(oldContent)
	var out []string
	cursor := 0

	lines := strings.Split(strings.TrimSuffix(patchText, "\n"), "\n")
	i := 0
	for i < len(lines) {
		m := hunkHeaderRe.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		oldStart, _ := strconv.Atoi(m[1])
		startIdx := oldStart - 1
		if oldStart == 0 {
			startIdx = 0
		}
		if startIdx < cursor {
			t.Fatalf("hunk %q overlaps previous hunk (cursor %d)", lines[i], cursor)
		}
		for cursor < startIdx {
			out = append(out, oldLines[cursor])
			cursor++
		}
		i++
		for i < len(lines) && !strings.HasPrefix(lines[i], "@@") {
			line := lines[i]
			switch {
			case strings.HasPrefix(line, "+"):
				out = append(out, line[1:])
			case strings.HasPrefix(line, "-"):
				if cursor >= len(oldLines) || oldLines[cursor] != line[1:] {
					t.Fatalf("removed line %q does not match old line %d", line[1:], cursor+1)
				}
				cursor++
			case strings.HasPrefix(line, " "):
				if cursor >= len(oldLines) || oldLines[cursor] != line[1:] {
					t.Fatalf("context line %q does not match old line %d", line[1:], cursor+1)
				}
				out = append(out, oldLines[cursor])
				cursor++
			default:
				i = len(lines)
				continue
			}
			i++
		}
	}
	for cursor < len(oldLines) {
		out = append(out, oldLines[cursor])
		cursor++
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

func TestSynthesizeCreate(t *testing.T) {
	req := Request{
		DocPath:    "docs/api.md",
		NewContent: "# API\n\nHello.\n",
		Exists:     false,
	}
	cand, err := Synthesize(req)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if cand.Shape != ShapeCreate {
		t.Fatalf("shape = %s, want create", cand.Shape)
	}
	for _, want := range []string{
		"new file mode 100644",
		"--- /dev/null",
		"+++ b/docs/api.md",
		"@@ -0,0 +1,3 @@",
		"+# API",
	} {
		if !strings.Contains(cand.Text, want) {
			t.Errorf("create patch missing %q:\n%s", want, cand.Text)
		}
	}
	if got := applyUnified(t, "", cand.Text); got != req.NewContent {
		t.Errorf("create round-trip = %q, want %q", got, req.NewContent)
	}
}

func TestSynthesizeDelete(t *testing.T) {
	req := Request{
		DocPath:    "docs/legacy.md",
		OldContent: "# Legacy\n\nGone soon.\n",
		Exists:     true,
		DeleteOnly: true,
	}
	cand, err := Synthesize(req)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if cand.Shape != ShapeDelete {
		t.Fatalf("shape = %s, want delete", cand.Shape)
	}
	for _, want := range []string{
		"deleted file mode 100644",
		"--- a/docs/legacy.md",
		"+++ /dev/null",
		"@@ -1,3 +0,0 @@",
		"-# Legacy",
		"-Gone soon.",
	} {
		if !strings.Contains(cand.Text, want) {
			t.Errorf("delete patch missing %q:\n%s", want, cand.Text)
		}
	}
	if got := applyUnified(t, req.OldContent, cand.Text); got != "" {
		t.Errorf("delete round-trip left content %q", got)
	}
}

func TestSynthesizeDeleteOnlyAbsentTarget(t *testing.T) {
	_, err := Synthesize(Request{DocPath: "docs/gone.md", DeleteOnly: true, Exists: false})
	if !errors.Is(err, ErrNoChange) {
		t.Fatalf("want ErrNoChange for already-absent delete, got %v", err)
	}
}

func TestSynthesizeNoChange(t *testing.T) {
	content := "# Same\n\nNothing moved.\n"
	_, err := Synthesize(Request{
		DocPath:    "docs/same.md",
		OldContent: content,
		NewContent: content,
		Exists:     true,
	})
	if !errors.Is(err, ErrNoChange) {
		t.Fatalf("want ErrNoChange, got %v", err)
	}
}

func TestSynthesizeModifyEndToEnd(t *testing.T) {
	// A generated document adding a section after the title yields one
	// hunk adding two lines after line 1.
	cand, err := Synthesize(Request{
		DocPath:    "docs/api.md",
		OldContent: "# API\n",
		NewContent: "# API\n\n## Widgets\n",
		Exists:     true,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if cand.Shape != ShapeModify {
		t.Fatalf("shape = %s, want modify", cand.Shape)
	}
	want := "@@ -1,1 +1,3 @@\n # API\n+\n+## Widgets\n"
	if !strings.Contains(cand.Text, want) {
		t.Fatalf("patch body mismatch:\n%s", cand.Text)
	}
	if n := len(hunkHeaderRe.FindAllString(cand.Text, -1)); n != 1 {
		t.Errorf("hunk count = %d, want 1", n)
	}
}

func TestModifyRoundTrip(t *testing.T) {
	cases := map[string]struct{ old, new string }{
		"midEdit": {
			old: "alpha\nbeta\ngamma\ndelta\n",
			new: "alpha\nBETA\ngamma\ndelta\n",
		},
		"append": {
			old: "# Doc\n\nBody.\n",
			new: "# Doc\n\nBody.\n\nMore body.\n",
		},
		"removeTail": {
			old: "one\ntwo\nthree\nfour\n",
			new: "one\ntwo\n",
		},
		"blankLines": {
			old: "a\n\n\nb\n",
			new: "a\n\nmiddle\n\nb\n",
		},
		"fullRewrite": {
			old: "completely\ndifferent\ntext\n",
			new: "nothing\nshared\nat\nall\n",
		},
		"farApartEdits": {
			old: "l01\nl02\nl03\nl04\nl05\nl06\nl07\nl08\nl09\nl10\nl11\nl12\nl13\nl14\nl15\nl16\nl17\nl18\nl19\nl20\n",
			new: "l01\nEDIT-A\nl03\nl04\nl05\nl06\nl07\nl08\nl09\nl10\nl11\nl12\nl13\nl14\nl15\nl16\nl17\nEDIT-B\nl19\nl20\n",
		},
		"closeEdits": {
			old: "l1\nl2\nl3\nl4\nl5\nl6\nl7\n",
			new: "l1\nX2\nl3\nl4\nl5\nX6\nl7\n",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cand, err := Synthesize(Request{
				DocPath:    "docs/rt.md",
				OldContent: tc.old,
				NewContent: tc.new,
				Exists:     true,
			})
			if err != nil {
				t.Fatalf("Synthesize: %v", err)
			}
			if got := applyUnified(t, tc.old, cand.Text); got != tc.new {
				t.Errorf("round-trip mismatch:\npatch:\n%s\ngot:  %q\nwant: %q", cand.Text, got, tc.new)
			}
		})
	}
}

func TestFarApartEditsMakeTwoHunks(t *testing.T) {
	old := "l01\nl02\nl03\nl04\nl05\nl06\nl07\nl08\nl09\nl10\nl11\nl12\nl13\nl14\nl15\nl16\nl17\nl18\nl19\nl20\n"
	new := strings.Replace(old, "l02", "EDIT-A", 1)
	new = strings.Replace(new, "l18", "EDIT-B", 1)

	hunks := computeHunks(old, new)
	if len(hunks) != 2 {
		t.Fatalf("hunk count = %d, want 2", len(hunks))
	}
	// Hunks must not overlap: second starts after the first ends.
	endOfFirst := hunks[0].oldStart + hunks[0].oldCount
	if hunks[1].oldStart < endOfFirst {
		t.Errorf("hunks overlap: first ends at %d, second starts at %d", endOfFirst, hunks[1].oldStart)
	}
}

func TestCloseEditsShareOneHunk(t *testing.T) {
	old := "l1\nl2\nl3\nl4\nl5\nl6\nl7\n"
	new := "l1\nX2\nl3\nl4\nl5\nX6\nl7\n"
	hunks := computeHunks(old, new)
	if len(hunks) != 1 {
		t.Fatalf("hunk count = %d, want 1 for edits four lines apart", len(hunks))
	}
}

func TestBuildEscalatesToReplaceAll(t *testing.T) {
	req := Request{
		DocPath:    "docs/guide.md",
		OldContent: "alpha\nbeta\ngamma\n",
		NewContent: "alpha\nBETA\ngamma\n",
		Exists:     true,
	}
	validated, err := Build(context.Background(), fullReplaceOnly{}, req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if validated.Shape != ShapeReplaceAll {
		t.Fatalf("shape = %s, want replace_all", validated.Shape)
	}
	if !strings.Contains(validated.Text, "@@ -1,3 +1,3 @@") {
		t.Errorf("replace-all header missing:\n%s", validated.Text)
	}
	if got := applyUnified(t, req.OldContent, validated.Text); got != req.NewContent {
		t.Errorf("replace-all round-trip = %q, want %q", got, req.NewContent)
	}
}

func TestBuildNoChangeIsTerminal(t *testing.T) {
	content := "stable\n"
	_, err := Build(context.Background(), acceptAll{}, Request{
		DocPath:    "docs/s.md",
		OldContent: content,
		NewContent: content,
		Exists:     true,
	})
	if !errors.Is(err, ErrNoChange) {
		t.Fatalf("want ErrNoChange, got %v", err)
	}
}

func TestValidateRepairsBareHeader(t *testing.T) {
	t.Run("pureAddition", func(t *testing.T) {
		cand := Candidate{
			TargetPath: "docs/notes.md",
			Shape:      ShapeModify,
			Text:       "--- a/docs/notes.md\n+++ b/docs/notes.md\n@@\n+alpha\n+beta\n+gamma\n",
		}
		validated, err := Validate(context.Background(), rejectBare{}, "docs/notes.md", "", true, cand)
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if !strings.Contains(validated.Text, "@@ -0,0 +1,3 @@") {
			t.Fatalf("repaired header missing, got:\n%s", validated.Text)
		}
	})

	t.Run("matchedBlock", func(t *testing.T) {
		old := "one\ntwo\nthree\nfour\nfive\nsix\n"
		cand := Candidate{
			TargetPath: "docs/notes.md",
			Shape:      ShapeModify,
			Text:       "--- a/docs/notes.md\n+++ b/docs/notes.md\n@@ @@\n three\n-four\n+FOUR\n five\n",
		}
		validated, err := Validate(context.Background(), rejectBare{}, "docs/notes.md", old, true, cand)
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if !strings.Contains(validated.Text, "@@ -3,3 +3,3 @@") {
			t.Fatalf("expected block matched at line 3, got:\n%s", validated.Text)
		}
		want := "one\ntwo\nthree\nFOUR\nfive\nsix\n"
		if got := applyUnified(t, old, validated.Text); got != want {
			t.Errorf("repaired round-trip = %q, want %q", got, want)
		}
	})

	t.Run("irreparable", func(t *testing.T) {
		// No hunk body at all: repair has nothing to rebuild.
		cand := Candidate{TargetPath: "docs/x.md", Shape: ShapeModify, Text: "@@\n"}
		_, err := Validate(context.Background(), rejectBare{}, "docs/x.md", "", true, cand)
		var invalid *InvalidPatchError
		if !errors.As(err, &invalid) {
			t.Fatalf("want InvalidPatchError, got %v", err)
		}
		if invalid.Diagnostic == "" {
			t.Error("diagnostic text must carry the oracle message")
		}
	})
}

func TestNormalizeContent(t *testing.T) {
	cases := map[string]struct{ in, want string }{
		"crlf":            {"a\r\nb\r\n", "a\nb\n"},
		"loneCR":          {"a\rb\r", "a\nb\n"},
		"missingTrailing": {"a\nb", "a\nb\n"},
		"empty":           {"", ""},
		"keepsBlankRuns":  {"a\n\n\n", "a\n\n\n"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := NormalizeContent(tc.in); got != tc.want {
				t.Errorf("NormalizeContent(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizePatchText(t *testing.T) {
	if got := normalizePatchText("--- a/x\r\n+++ b/x\r\n@@ -1,1 +1,1 @@\r\n-a\r\n+b\r\n\r\n\r\n"); !strings.HasSuffix(got, "+b\n") {
		t.Errorf("trailing newlines not collapsed: %q", got)
	}
	if got := normalizePatchText("+x"); got != "+x\n" {
		t.Errorf("missing trailing newline not added: %q", got)
	}
}

func TestShapeString(t *testing.T) {
	want := map[Shape]string{
		ShapeModify:     "modify",
		ShapeCreate:     "create",
		ShapeDelete:     "delete",
		ShapeReplaceAll: "replace_all",
		Shape(42):       "unknown",
	}
	for shape, s := range want {
		if shape.String() != s {
			t.Errorf("Shape(%d).String() = %q, want %q", int(shape), shape.String(), s)
		}
	}
}
