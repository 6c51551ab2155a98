package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Mapping is the static rule file routing code changes to documents.
// It is read once at startup and never mutated afterward.
type Mapping struct {
	// StyleGuide optionally names a file whose text is prepended to
	// generation prompts.
	StyleGuide string `yaml:"style_guide,omitempty"`

	// AggregateDoc names the single document eligible for the
	// deterministic sync-notes fallback.
	AggregateDoc string `yaml:"aggregate_doc,omitempty"`

	// DocRef is the git ref documents are fetched at.
	DocRef string `yaml:"doc_ref,omitempty"`

	Rules []Rule `yaml:"rules"`
}

// Rule maps one code glob to one or more documentation targets. A
// rule-level anchor applies to every target that does not set its own.
type Rule struct {
	Code   string  `yaml:"code"`
	Docs   DocList `yaml:"docs"`
	Anchor string  `yaml:"anchor,omitempty"`
}

// DocTarget is a single documentation destination.
type DocTarget struct {
	Path   string `yaml:"path"`
	Anchor string `yaml:"anchor,omitempty"`
}

// DocList accepts the three YAML shapes a rule's docs entry may take:
// a bare path, a list of paths, or a list of {path, anchor} mappings.
type DocList []DocTarget

func (l *DocList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var targets []DocTarget
		if err := value.Decode(&targets); err != nil {
			return err
		}
		*l = targets
		return nil
	}
	var single DocTarget
	if err := single.UnmarshalYAML(value); err != nil {
		return err
	}
	*l = DocList{single}
	return nil
}

func (t *DocTarget) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var path string
		if err := value.Decode(&path); err != nil {
			return err
		}
		t.Path = path
		return nil
	}
	type rawTarget DocTarget
	var raw rawTarget
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*t = DocTarget(raw)
	return nil
}

// LoadMapping reads, parses, and validates the mapping file. Any error
// here is fatal to the run; nothing is processed against a bad mapping.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mapping: read %s: %w", path, err)
	}
	return ParseMapping(data)
}

// ParseMapping parses and validates mapping YAML.
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("mapping: parse: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.normalize()
	return &m, nil
}

// Validate checks every rule before any target processing starts.
func (m *Mapping) Validate() error {
	if len(m.Rules) == 0 {
		return fmt.Errorf("mapping: no rules defined")
	}
	for i, rule := range m.Rules {
		code := strings.TrimSpace(rule.Code)
		if code == "" {
			return fmt.Errorf("mapping: rule %d: empty code glob", i)
		}
		if !doublestar.ValidatePattern(code) {
			return fmt.Errorf("mapping: rule %d: invalid glob %q", i, rule.Code)
		}
		if len(rule.Docs) == 0 {
			return fmt.Errorf("mapping: rule %d (%s): empty docs list", i, code)
		}
		for j, doc := range rule.Docs {
			if strings.TrimSpace(doc.Path) == "" {
				return fmt.Errorf("mapping: rule %d (%s): docs[%d]: empty path", i, code, j)
			}
		}
	}
	return nil
}

func (m *Mapping) normalize() {
	m.StyleGuide = strings.TrimSpace(m.StyleGuide)
	m.AggregateDoc = strings.TrimSpace(m.AggregateDoc)
	m.DocRef = strings.TrimSpace(m.DocRef)
	if m.DocRef == "" {
		m.DocRef = DefaultDocRef
	}
	for i := range m.Rules {
		rule := &m.Rules[i]
		rule.Code = strings.TrimSpace(rule.Code)
		rule.Anchor = strings.TrimSpace(rule.Anchor)
		for j := range rule.Docs {
			doc := &rule.Docs[j]
			doc.Path = strings.TrimSpace(doc.Path)
			doc.Anchor = strings.TrimSpace(doc.Anchor)
			if doc.Anchor == "" {
				doc.Anchor = rule.Anchor
			}
		}
	}
}
