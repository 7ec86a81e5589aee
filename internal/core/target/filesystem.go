package target

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/barysiuk/skillpack/internal/core/skill"
	"github.com/sirupsen/logrus"
)

// SyncMode selects how a skill directory is replicated.
type SyncMode string

const (
	ModeSymlink SyncMode = "symlink"
	ModeCopy    SyncMode = "copy"
)

// Filesystem syncs skills into <root>/<output-name>/ by copy or symlink.
type Filesystem struct {
	root string
	mode SyncMode
	opts []Option
}

// NewFilesystem creates a filesystem sync target.
func NewFilesystem(root string, mode SyncMode, opts ...Option) *Filesystem {
	return &Filesystem{root: root, mode: mode, opts: opts}
}

func (f *Filesystem) Name() string { return string(f.mode) }
func (f *Filesystem) Root() string { return f.root }

// Prepare creates the output root.
func (f *Filesystem) Prepare() error {
	return os.MkdirAll(f.root, 0o755)
}

func (f *Filesystem) ArtifactPath(ref *skill.Ref) string {
	return filepath.Join(f.root, ref.OutputName)
}

func (f *Filesystem) Materialize(ref *skill.Ref) (Result, error) {
	return Sync(ref, f.root, f.mode, f.opts...)
}

// Sync replaces <root>/<ref.OutputName> with a fresh copy of, or a symlink
// to, ref.SourceDir. Any previous artifact at that path is removed first.
func Sync(ref *skill.Ref, root string, mode SyncMode, opts ...Option) (Result, error) {
	o := newOptions(opts)
	if mode != ModeCopy && mode != ModeSymlink {
		return Result{}, fmt.Errorf("unknown sync mode %q", mode)
	}
	if err := skill.CheckOutputName(ref.OutputName); err != nil {
		return Result{}, &SyncError{Path: root, Err: err}
	}
	dst := filepath.Join(root, ref.OutputName)
	if overlaps(filepath.Join(realPath(root), ref.OutputName), realPath(ref.SourceDir)) {
		return Result{}, &SyncError{Path: dst, Err: fmt.Errorf("destination overlaps source %s", ref.SourceDir)}
	}
	if err := removeExisting(dst); err != nil {
		return Result{}, &SyncError{Path: dst, Err: err}
	}

	if mode == ModeSymlink {
		return symlinkSkill(ref, root, dst)
	}
	return copySkill(ref, dst, o)
}

func symlinkSkill(ref *skill.Ref, root, dst string) (Result, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Result{}, &SyncError{Path: root, Err: err}
	}
	if err := os.Symlink(ref.SourceDir, dst); err != nil {
		return Result{}, &SyncError{Path: dst, Err: err}
	}
	return Result{Path: dst, Links: 1}, nil
}

// copySkill mirrors the skill tree into dst. Directory modes are applied after
// their contents are written so read-only source directories still copy.
// On failure the partially written dst is removed.
func copySkill(ref *skill.Ref, dst string, o options) (res Result, err error) {
	res.Path = dst
	log := o.log.WithFields(logrus.Fields{"skill": ref.OutputName})

	rootInfo, err := os.Stat(ref.SourceDir)
	if err != nil {
		return res, &SyncError{Path: ref.SourceDir, Err: err}
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return res, &SyncError{Path: dst, Err: err}
	}
	defer func() {
		if err != nil {
			_ = os.Chmod(dst, 0o755)
			if rmErr := os.RemoveAll(dst); rmErr != nil {
				log.WithError(rmErr).Warn("failed to remove partial copy")
			}
		}
	}()

	type dirMode struct {
		path string
		mode fs.FileMode
	}
	dirs := []dirMode{{dst, rootInfo.Mode().Perm()}}

	err = o.walker.Walk(ref.SourceDir, func(e skill.Entry) error {
		target := filepath.Join(dst, filepath.FromSlash(e.Rel))
		if e.Info.IsDir() {
			if err := os.Mkdir(target, 0o755); err != nil {
				return &SyncError{Path: target, Err: err}
			}
			dirs = append(dirs, dirMode{target, e.Info.Mode().Perm()})
			return nil
		}

		n, err := copyFile(e.Path, target, e.Info.Mode().Perm())
		if err != nil {
			return &SyncError{Path: target, Err: err}
		}
		res.Files++
		res.Bytes += n
		log.WithField("file", e.Rel).Debug("copied")
		return nil
	})
	if err != nil {
		return res, asSyncError(err, ref.SourceDir)
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Chmod(dirs[i].path, dirs[i].mode); err != nil {
			return res, &SyncError{Path: dirs[i].path, Err: err}
		}
	}
	return res, nil
}

func asSyncError(err error, path string) error {
	if se, ok := err.(*SyncError); ok {
		return se
	}
	return &SyncError{Path: path, Err: err}
}

// copyFile copies src to dst with the given permission bits and returns the
// number of bytes written.
func copyFile(src, dst string, perm fs.FileMode) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, err
	}
	defer func() { _ = dstFile.Close() }()

	n, err := io.Copy(dstFile, srcFile)
	if err != nil {
		return n, err
	}
	if err := dstFile.Chmod(perm); err != nil {
		return n, err
	}
	return n, dstFile.Close()
}
