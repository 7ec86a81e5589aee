package skill

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Metadata is the informational part of a SKILL.md frontmatter. The packager
// never requires it; list and show use it when it parses.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	License     string `yaml:"license,omitempty"`
	Metadata    struct {
		Author  string `yaml:"author,omitempty"`
		Version string `yaml:"version,omitempty"`
	} `yaml:"metadata,omitempty"`
}

// ReadDocument returns the raw SKILL.md bytes of a skill directory.
func ReadDocument(dir string) ([]byte, error) {
	return os.ReadFile(filepath.Join(dir, FileName))
}

// ReadMetadata parses the YAML frontmatter of dir/SKILL.md.
func ReadMetadata(dir string) (*Metadata, error) {
	data, err := ReadDocument(dir)
	if err != nil {
		return nil, err
	}
	fm, _, ok := SplitFrontmatter(data)
	if !ok {
		return nil, fmt.Errorf("no frontmatter in %s", filepath.Join(dir, FileName))
	}

	var md Metadata
	if err := yaml.Unmarshal(fm, &md); err != nil {
		return nil, fmt.Errorf("parsing frontmatter in %s: %w", filepath.Join(dir, FileName), err)
	}
	return &md, nil
}

// SplitFrontmatter separates a leading "---" delimited YAML block from the
// markdown body. ok is false when the document has no frontmatter, in which
// case body is the whole document.
func SplitFrontmatter(data []byte) (fm, body []byte, ok bool) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	lines := bytes.SplitAfter(data, []byte("\n"))
	if len(lines) == 0 || string(bytes.TrimSpace(lines[0])) != "---" {
		return nil, data, false
	}

	offset := len(lines[0])
	for _, line := range lines[1:] {
		if string(bytes.TrimSpace(line)) == "---" {
			return data[len(lines[0]):offset], data[offset+len(line):], true
		}
		offset += len(line)
	}
	return nil, data, false
}
