package codediff

import (
	"strings"
	"testing"
)

const twoFileDiff = `diff --git a/src/api/widgets.ts b/src/api/widgets.ts
index 1111111..2222222 100644
--- a/src/api/widgets.ts
+++ b/src/api/widgets.ts
@@ -1,3 +1,4 @@
 export function list() {
+  return [];
 }
diff --git a/src/api/gears.ts b/src/api/gears.ts
index 3333333..4444444 100644
--- a/src/api/gears.ts
+++ b/src/api/gears.ts
@@ -1,2 +1,2 @@
-const n = 1;
+const n = 2;
`

func TestIndexSplitsPerFile(t *testing.T) {
	segments, skipped := Index(twoFileDiff)
	if len(skipped) != 0 {
		t.Fatalf("expected no skipped blocks, got %v", skipped)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}

	if segments[0].FilePath != "src/api/widgets.ts" {
		t.Errorf("first segment path = %q", segments[0].FilePath)
	}
	if segments[1].FilePath != "src/api/gears.ts" {
		t.Errorf("second segment path = %q", segments[1].FilePath)
	}

	// Each segment holds only its own block's lines.
	if strings.Contains(segments[0].RawText, "gears.ts") {
		t.Errorf("first segment leaked lines from the second block:\n%s", segments[0].RawText)
	}
	if strings.Contains(segments[1].RawText, "widgets.ts") {
		t.Errorf("second segment leaked lines from the first block:\n%s", segments[1].RawText)
	}
	if !strings.HasPrefix(segments[1].RawText, "diff --git a/src/api/gears.ts") {
		t.Errorf("second segment missing its header:\n%s", segments[1].RawText)
	}
}

func TestIndexEmptyInput(t *testing.T) {
	for name, raw := range map[string]string{
		"blank":     "",
		"spaces":    "  \n\t\n",
		"noHeaders": "just some text\nwith no diff markers\n",
	} {
		t.Run(name, func(t *testing.T) {
			segments, skipped := Index(raw)
			if len(segments) != 0 || len(skipped) != 0 {
				t.Fatalf("expected empty result, got %d segments, %d skipped", len(segments), len(skipped))
			}
		})
	}
}

func TestIndexDropsMalformedHeader(t *testing.T) {
	raw := "diff --git garbage-no-paths\nsome body\n" + twoFileDiff
	segments, skipped := Index(raw)
	if len(segments) != 2 {
		t.Fatalf("expected malformed block dropped, got %d segments", len(segments))
	}
	if len(skipped) != 1 || skipped[0] != "diff --git garbage-no-paths" {
		t.Fatalf("expected the malformed header recorded, got %v", skipped)
	}
}

func TestIndexDetectsDeletions(t *testing.T) {
	t.Run("deletedFileMode", func(t *testing.T) {
		raw := "diff --git a/old.go b/old.go\n" +
			"deleted file mode 100644\n" +
			"index 1234567..0000000\n" +
			"--- a/old.go\n" +
			"+++ /dev/null\n" +
			"@@ -1,2 +0,0 @@\n" +
			"-package old\n" +
			"-\n"
		segments, _ := Index(raw)
		if len(segments) != 1 {
			t.Fatalf("expected 1 segment, got %d", len(segments))
		}
		if segments[0].FilePath != "old.go" {
			t.Errorf("path = %q, want old.go", segments[0].FilePath)
		}
		if !segments[0].IsDelete {
			t.Error("expected IsDelete for a deleted file block")
		}
	})

	t.Run("modifyIsNotDelete", func(t *testing.T) {
		segments, _ := Index(twoFileDiff)
		for _, seg := range segments {
			if seg.IsDelete {
				t.Errorf("segment %s wrongly flagged as delete", seg.FilePath)
			}
		}
	})
}

func TestIndexRenameUsesDestination(t *testing.T) {
	raw := "diff --git a/docs/old-name.md b/docs/new-name.md\n" +
		"similarity index 90%\n" +
		"rename from docs/old-name.md\n" +
		"rename to docs/new-name.md\n" +
		"--- a/docs/old-name.md\n" +
		"+++ b/docs/new-name.md\n" +
		"@@ -1 +1 @@\n" +
		"-# Old\n" +
		"+# New\n"
	segments, _ := Index(raw)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].FilePath != "docs/new-name.md" {
		t.Errorf("path = %q, want docs/new-name.md", segments[0].FilePath)
	}
}

func TestChangedPaths(t *testing.T) {
	segments, _ := Index(twoFileDiff)
	paths := ChangedPaths(segments)
	if len(paths) != 2 || paths[0] != "src/api/widgets.ts" || paths[1] != "src/api/gears.ts" {
		t.Fatalf("unexpected paths %v", paths)
	}
}
