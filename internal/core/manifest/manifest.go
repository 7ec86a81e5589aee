// Package manifest loads the plugin marketplace manifest that lists which
// skill directories each plugin owns.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// DefaultPath is the project-relative manifest location used when none is given.
const DefaultPath = ".claude-plugin/marketplace.json"

// Manifest is the root marketplace document.
type Manifest struct {
	Name    string   `json:"name"`
	Owner   Owner    `json:"owner"`
	Plugins []Plugin `json:"plugins"`
}

// Owner identifies who publishes the marketplace.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Plugin is a named group of skills sharing a source root.
// Skills holds raw relative paths such as "./skills/commit-messages".
type Plugin struct {
	Name        string   `json:"name"`
	Source      string   `json:"source"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills"`
}

// SkillCount returns the number of skill references across all plugins.
func (m *Manifest) SkillCount() int {
	n := 0
	for _, p := range m.Plugins {
		n += len(p.Skills)
	}
	return n
}

// ReadError reports that the manifest file could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading manifest %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ParseError reports malformed JSON or a document of the wrong shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	m, err := Parse(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return m, nil
}

// Parse decodes manifest bytes. Comments and trailing commas are accepted;
// unknown keys are ignored.
func Parse(data []byte) (*Manifest, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(std, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
