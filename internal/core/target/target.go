// Package target materializes resolved skills into their distribution form.
//
// A Target is one output strategy: a synced directory tree (copy or
// symlink), per-skill zip archives, or a dry run that only validates.
// Targets are handed fully resolved skill.Refs and never look at the manifest.
package target

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/barysiuk/skillpack/internal/core/skill"
	"github.com/barysiuk/skillpack/internal/logger"
	"github.com/sirupsen/logrus"
)

// Target defines how resolved skills are written out.
type Target interface {
	// Name is a short human label: "copy", "symlink", "archive", "dry-run".
	Name() string
	// Root is the directory artifacts are written under.
	Root() string
	// Prepare makes the output root usable. It runs once before any skill.
	Prepare() error
	// ArtifactPath is where the artifact for ref ends up.
	ArtifactPath(ref *skill.Ref) string
	// Materialize writes the artifact for one skill.
	Materialize(ref *skill.Ref) (Result, error)
}

// Result describes what materializing one skill produced.
type Result struct {
	Path     string // artifact path
	Files    int    // regular files written
	Bytes    int64  // file bytes written (uncompressed)
	Links    int    // symlinks created
	Archives int    // archives created
}

// Option configures a target.
type Option func(*options)

type options struct {
	walker *skill.Walker
	log    *logrus.Entry
}

// WithWalker sets the walker used to enumerate skill contents, e.g. one with
// exclude patterns.
func WithWalker(w *skill.Walker) Option {
	return func(o *options) { o.walker = w }
}

// WithLogger sets the entry used for per-file debug logging.
func WithLogger(l *logrus.Entry) Option {
	return func(o *options) { o.log = l }
}

func newOptions(opts []Option) options {
	o := options{log: logger.L}
	for _, opt := range opts {
		opt(&o)
	}
	if o.walker == nil {
		o.walker, _ = skill.NewWalker(nil)
	}
	return o
}

// SyncError reports an I/O failure while syncing one skill.
type SyncError struct {
	Path string
	Err  error
}

func (e *SyncError) Error() string { return fmt.Sprintf("syncing %s: %v", e.Path, e.Err) }
func (e *SyncError) Unwrap() error { return e.Err }

// PackageError reports an I/O failure while archiving one skill.
type PackageError struct {
	Path string
	Err  error
}

func (e *PackageError) Error() string { return fmt.Sprintf("packaging %s: %v", e.Path, e.Err) }
func (e *PackageError) Unwrap() error { return e.Err }

// removeExisting deletes whatever is at path: file, directory or symlink.
// A symlink is removed without touching what it points to.
func removeExisting(path string) error {
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.RemoveAll(path)
}

// overlaps reports whether a and b are the same path or one contains the other.
func overlaps(a, b string) bool {
	return within(a, b) || within(b, a)
}

// within reports whether child is parent or lies below it.
func within(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// realPath resolves symlinks in the existing prefix of p, so that overlap
// checks see through linked parents.
func realPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		return r
	}
	parent, base := filepath.Split(abs)
	parent = filepath.Clean(parent)
	if parent == abs {
		return abs
	}
	return filepath.Join(realPath(parent), base)
}
