// Package skill turns manifest skill references into on-disk skill
// directories, checks their shape, and walks their contents.
//
// A skill is a directory holding a SKILL.md file plus any supporting files.
// The package never writes to the filesystem.
package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the file every skill directory must contain.
const FileName = "SKILL.md"

// Ref is a manifest skill entry resolved against its plugin.
type Ref struct {
	Plugin     string // owning plugin name
	Raw        string // path exactly as written in the manifest
	Name       string // last path segment of Raw
	SourceDir  string // absolute skill directory
	OutputName string // artifact name, optionally plugin-prefixed
}

// NotFoundError reports a skill directory that does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil && !os.IsNotExist(e.Err) {
		return fmt.Sprintf("skill directory not found: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("skill directory not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// MetadataMissingError reports a skill directory without a SKILL.md file.
type MetadataMissingError struct {
	Path string
}

func (e *MetadataMissingError) Error() string {
	return fmt.Sprintf("%s missing in %s", FileName, e.Path)
}

// InvalidNameError reports an output name that is not a single path segment,
// typically a prefixed name built from a plugin name with separators in it.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid output name %q: must be a single path segment", e.Name)
}

// CheckOutputName verifies that name joins onto an output root as exactly one
// path segment.
func CheckOutputName(name string) error {
	switch {
	case name == "", name == ".", name == "..", strings.ContainsAny(name, "/\\\x00"):
		return &InvalidNameError{Name: name}
	}
	return nil
}

// Check verifies that dir is a directory containing a regular SKILL.md.
// It is the single validation used by both real and dry runs.
func Check(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return &NotFoundError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return &NotFoundError{Path: dir, Err: fmt.Errorf("not a directory")}
	}

	md, err := os.Stat(filepath.Join(dir, FileName))
	if err != nil || !md.Mode().IsRegular() {
		return &MetadataMissingError{Path: dir}
	}
	return nil
}

// Name extracts the skill name from a raw manifest path: its last segment.
// Both slash styles and trailing separators are accepted. It returns "" when
// no usable segment exists.
func Name(raw string) string {
	s := strings.ReplaceAll(strings.TrimSpace(raw), `\`, "/")
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	switch s {
	case "", ".", "..":
		return ""
	}
	return s
}
