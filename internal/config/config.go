// Package config holds the one explicit configuration object for a run.
// It is constructed once at startup from flags, the mapping file, and the
// environment; no other package reads ambient state.
package config

import "os"

// Defaults applied when neither flags nor environment say otherwise.
const (
	DefaultModel  = "gemini-2.5-flash"
	DefaultOutDir = ".docsync"
	DefaultDocRef = "HEAD"
)

// Config carries every knob the pipeline needs for a single run.
type Config struct {
	// MappingPath locates the YAML mapping file.
	MappingPath string

	// DiffPath optionally names a file holding the code diff. When empty
	// the diff is read from stdin if piped, else from the clipboard.
	DiffPath string

	// OutDir is where patch artifacts and the run report are written.
	OutDir string

	// DocRef pins the document source to a git ref. Empty means the
	// mapping file's doc_ref, falling back to DefaultDocRef.
	DocRef string

	// Model names the generative model.
	Model string

	// APIKey authenticates the generative service.
	APIKey string

	// ReplayPath names a file holding a canned model response. When set
	// the generator is replaced by a replay source and no API call is made.
	ReplayPath string

	// Review loads generated documents into Neovim buffers after the run.
	Review bool

	// NoAnimation disables the spinner TUI in favor of plain output.
	NoAnimation bool

	Verbose bool
}

// Default returns a Config with defaults filled in.
func Default() *Config {
	return &Config{
		MappingPath: "docsync.yaml",
		OutDir:      DefaultOutDir,
		Model:       DefaultModel,
	}
}

// ApplyEnvOverrides layers environment values over the config. Flags win
// over the environment, so only empty fields are filled.
func (c *Config) ApplyEnvOverrides() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if v := os.Getenv("DOCSYNC_MODEL"); v != "" && c.Model == DefaultModel {
		c.Model = v
	}
	if v := os.Getenv("DOCSYNC_OUT_DIR"); v != "" && c.OutDir == DefaultOutDir {
		c.OutDir = v
	}
}
