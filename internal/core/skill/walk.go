package skill

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Entry is a directory or regular file found inside a skill.
type Entry struct {
	Rel  string      // slash-separated path relative to the skill root
	Path string      // path to read from
	Info fs.FileInfo // info of the entry, with symlinks followed
}

// Walker visits skill contents depth-first in lexical order.
//
// Symlinks inside a skill are followed: a link to a file is reported as that
// file, a link to a directory is walked as a directory. Links that form a
// cycle or point nowhere are errors. Entries other than directories and
// regular files (sockets, devices) are skipped.
type Walker struct {
	exclude []string
}

// NewWalker creates a Walker that skips entries whose relative path matches
// any of the doublestar patterns in exclude.
func NewWalker(exclude []string) (*Walker, error) {
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return &Walker{exclude: exclude}, nil
}

// Walk calls fn for every directory and regular file below root. The root
// itself is not reported.
func (w *Walker) Walk(root string, fn func(Entry) error) error {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", root, err)
	}
	ancestors := map[string]bool{resolved: true}
	return w.walkDir(root, "", ancestors, fn)
}

func (w *Walker) walkDir(dir, rel string, ancestors map[string]bool, fn func(Entry) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	for _, d := range entries {
		childRel := path.Join(rel, d.Name())
		if w.excluded(childRel) {
			continue
		}
		full := filepath.Join(dir, d.Name())

		info, err := os.Stat(full)
		if err != nil {
			if d.Type()&fs.ModeSymlink != 0 {
				return fmt.Errorf("following link %s: %w", full, err)
			}
			return fmt.Errorf("stat %s: %w", full, err)
		}

		switch {
		case info.IsDir():
			resolved, err := filepath.EvalSymlinks(full)
			if err != nil {
				return fmt.Errorf("resolving %s: %w", full, err)
			}
			if ancestors[resolved] {
				return fmt.Errorf("symlink cycle at %s", full)
			}
			if err := fn(Entry{Rel: childRel, Path: full, Info: info}); err != nil {
				return err
			}
			ancestors[resolved] = true
			err = w.walkDir(full, childRel, ancestors, fn)
			delete(ancestors, resolved)
			if err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := fn(Entry{Rel: childRel, Path: full, Info: info}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Walker) excluded(rel string) bool {
	for _, p := range w.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// CountFiles returns the number of regular files Walk would report under root.
func (w *Walker) CountFiles(root string) (int, error) {
	n := 0
	err := w.Walk(root, func(e Entry) error {
		if !e.Info.IsDir() {
			n++
		}
		return nil
	})
	return n, err
}
