package target

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/barysiuk/skillpack/internal/core/skill"
	"github.com/klauspost/compress/flate"
	"github.com/sirupsen/logrus"
)

const archiveExt = ".zip"

// Archive writes one <output-name>.zip per skill into root.
type Archive struct {
	root string
	opts []Option
}

// NewArchive creates an archive target.
func NewArchive(root string, opts ...Option) *Archive {
	return &Archive{root: root, opts: opts}
}

func (a *Archive) Name() string { return "archive" }
func (a *Archive) Root() string { return a.root }

// Prepare creates the output directory.
func (a *Archive) Prepare() error {
	return os.MkdirAll(a.root, 0o755)
}

func (a *Archive) ArtifactPath(ref *skill.Ref) string {
	return filepath.Join(a.root, ref.OutputName+archiveExt)
}

func (a *Archive) Materialize(ref *skill.Ref) (Result, error) {
	return Package(ref, a.root, a.opts...)
}

// Package builds outDir/<ref.OutputName>.zip. Every entry is rooted at
// "<OutputName>/" and DEFLATE compressed; directories get no entries.
//
// The archive is written to a temporary file next to the destination and
// renamed into place only when complete, so a failed run never leaves a
// truncated zip at the destination path.
func Package(ref *skill.Ref, outDir string, opts ...Option) (res Result, err error) {
	o := newOptions(opts)
	if err := skill.CheckOutputName(ref.OutputName); err != nil {
		return res, &PackageError{Path: outDir, Err: err}
	}
	zipPath := filepath.Join(outDir, ref.OutputName+archiveExt)
	res.Path = zipPath

	if within(realPath(ref.SourceDir), realPath(outDir)) {
		return res, &PackageError{Path: zipPath, Err: fmt.Errorf("output directory is inside source %s", ref.SourceDir)}
	}

	tmp, err := os.CreateTemp(outDir, "."+ref.OutputName+".zip-*")
	if err != nil {
		return res, &PackageError{Path: zipPath, Err: err}
	}
	tmpPath := tmp.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})

	log := o.log.WithFields(logrus.Fields{"skill": ref.OutputName})
	walkErr := o.walker.Walk(ref.SourceDir, func(e skill.Entry) error {
		if e.Info.IsDir() {
			return nil
		}
		name := ref.OutputName + "/" + e.Rel
		n, err := addFile(zw, name, e)
		if err != nil {
			return &PackageError{Path: e.Path, Err: err}
		}
		res.Files++
		res.Bytes += n
		log.WithField("entry", name).Debug("archived")
		return nil
	})
	if walkErr != nil {
		_ = zw.Close()
		return res, asPackageError(walkErr, ref.SourceDir)
	}

	if err = zw.Close(); err != nil {
		return res, &PackageError{Path: zipPath, Err: err}
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return res, &PackageError{Path: zipPath, Err: err}
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return res, &PackageError{Path: zipPath, Err: err}
	}
	if info, statErr := os.Lstat(zipPath); statErr == nil && info.IsDir() {
		if err = os.RemoveAll(zipPath); err != nil {
			return res, &PackageError{Path: zipPath, Err: err}
		}
	}
	if err = os.Rename(tmpPath, zipPath); err != nil {
		return res, &PackageError{Path: zipPath, Err: err}
	}

	res.Archives = 1
	return res, nil
}

// addFile streams one file into the archive under name.
func addFile(zw *zip.Writer, name string, e skill.Entry) (int64, error) {
	hdr, err := zip.FileInfoHeader(e.Info)
	if err != nil {
		return 0, err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(e.Path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	return io.Copy(w, f)
}

func asPackageError(err error, path string) error {
	if pe, ok := err.(*PackageError); ok {
		return pe
	}
	return &PackageError{Path: path, Err: err}
}
