package skill

import (
	"fmt"
	"path/filepath"

	"github.com/barysiuk/skillpack/internal/core/manifest"
)

// Mode selects how a raw manifest path becomes a skill directory.
type Mode string

const (
	// ModePlugin recombines the skill name as <base>/<plugin.source>/skills/<name>,
	// ignoring the other segments of the raw path.
	ModePlugin Mode = "plugin"
	// ModeDirect resolves the raw path as written, relative to the base directory.
	ModeDirect Mode = "direct"
)

// ParseMode converts a flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePlugin, ModeDirect:
		return Mode(s), nil
	case "":
		return ModePlugin, nil
	default:
		return "", fmt.Errorf("unknown resolution mode %q (want %q or %q)", s, ModePlugin, ModeDirect)
	}
}

// skillsSubdir is where ModePlugin expects skills under a plugin source.
const skillsSubdir = "skills"

// Resolver maps manifest skill references to Refs. One Resolver, with one
// mode, is used for a whole invocation.
type Resolver struct {
	mode    Mode
	baseDir string
	prefix  bool
}

// NewResolver creates a Resolver. baseDir anchors relative paths and is made
// absolute; prefix enables "<plugin>-<skill>" output names.
func NewResolver(mode Mode, baseDir string, prefix bool) (*Resolver, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = ModePlugin
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}
	return &Resolver{mode: mode, baseDir: abs, prefix: prefix}, nil
}

// Mode returns the resolution mode in use.
func (r *Resolver) Mode() Mode { return r.mode }

// OutputName returns the artifact name for a raw path without touching disk.
func (r *Resolver) OutputName(p manifest.Plugin, raw string) string {
	name := Name(raw)
	if r.prefix && name != "" {
		return p.Name + "-" + name
	}
	return name
}

// Locate computes the Ref for a raw path without checking the filesystem.
// The output name must be a single path segment.
func (r *Resolver) Locate(p manifest.Plugin, raw string) (*Ref, error) {
	name := Name(raw)
	if name == "" {
		return nil, &NotFoundError{Path: raw, Err: fmt.Errorf("no skill name in path")}
	}
	output := r.OutputName(p, raw)
	if err := CheckOutputName(output); err != nil {
		return nil, err
	}

	var dir string
	switch r.mode {
	case ModeDirect:
		dir = r.abs(raw)
	default:
		dir = filepath.Join(r.abs(p.Source), skillsSubdir, name)
	}

	return &Ref{
		Plugin:     p.Name,
		Raw:        raw,
		Name:       name,
		SourceDir:  dir,
		OutputName: output,
	}, nil
}

// Resolve locates the skill and verifies its directory and SKILL.md.
func (r *Resolver) Resolve(p manifest.Plugin, raw string) (*Ref, error) {
	ref, err := r.Locate(p, raw)
	if err != nil {
		return nil, err
	}
	if err := Check(ref.SourceDir); err != nil {
		return nil, err
	}
	return ref, nil
}

func (r *Resolver) abs(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.baseDir, p)
}
