// Package resolve maps changed code paths to documentation targets.
package resolve

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"docsync/internal/config"
)

// Target is one documentation destination with the set of changed files
// that routed to it. Immutable once resolution returns.
type Target struct {
	DocPath      string
	Anchor       string
	MatchedFiles []string
}

// Key identifies the merge bucket a rule match lands in.
func (t Target) Key() string {
	return t.DocPath + "\x00" + t.Anchor
}

// Targets matches every changed path against every rule and merges the
// results by (docPath, anchor). MatchedFiles accumulates with set
// semantics across rules sharing a key. The returned order is sorted by
// (docPath, anchor) so identical input always yields identical output.
// Dot-files are matchable; doublestar does not special-case them.
func Targets(changed []string, rules []config.Rule) ([]Target, error) {
	byKey := make(map[string]*Target)
	seen := make(map[string]map[string]bool)

	for _, rule := range rules {
		var matched []string
		for _, path := range changed {
			ok, err := doublestar.Match(rule.Code, path)
			if err != nil {
				return nil, fmt.Errorf("resolve: glob %q: %w", rule.Code, err)
			}
			if ok {
				matched = append(matched, path)
			}
		}
		if len(matched) == 0 {
			continue
		}

		for _, doc := range rule.Docs {
			target := Target{DocPath: doc.Path, Anchor: doc.Anchor}
			key := target.Key()
			existing, ok := byKey[key]
			if !ok {
				existing = &target
				byKey[key] = existing
				seen[key] = make(map[string]bool)
			}
			for _, path := range matched {
				if !seen[key][path] {
					seen[key][path] = true
					existing.MatchedFiles = append(existing.MatchedFiles, path)
				}
			}
		}
	}

	targets := make([]Target, 0, len(byKey))
	for _, t := range byKey {
		sort.Strings(t.MatchedFiles)
		targets = append(targets, *t)
	}
	sort.Slice(targets, func(i, j int) bool {
		if targets[i].DocPath != targets[j].DocPath {
			return targets[i].DocPath < targets[j].DocPath
		}
		return targets[i].Anchor < targets[j].Anchor
	})
	return targets, nil
}
