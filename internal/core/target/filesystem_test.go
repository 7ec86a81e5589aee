package target

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/barysiuk/skillpack/internal/core/skill"
)

// readTree returns relative path -> content for every regular file under root.
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	got := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			t.Errorf("%s is not a regular file (%s)", path, d.Type())
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		got[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walking %s: %v", root, err)
	}
	return got
}

func TestSync_CopyRoundTrip(t *testing.T) {
	ref := newSkill(t, "commit-messages", sampleFiles)
	root := filepath.Join(t.TempDir(), "out")

	res, err := Sync(ref, root, ModeCopy)
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}

	if res.Files != len(sampleFiles) {
		t.Errorf("Files = %d, want %d", res.Files, len(sampleFiles))
	}
	if res.Links != 0 {
		t.Errorf("Links = %d, want 0", res.Links)
	}
	wantPath := filepath.Join(root, "commit-messages")
	if res.Path != wantPath {
		t.Errorf("Path = %q, want %q", res.Path, wantPath)
	}

	got := readTree(t, wantPath)
	if len(got) != len(sampleFiles) {
		t.Fatalf("copied %d files, want %d: %v", len(got), len(sampleFiles), got)
	}
	var total int64
	for rel, want := range sampleFiles {
		if got[rel] != want {
			t.Errorf("%s = %q, want %q", rel, got[rel], want)
		}
		total += int64(len(want))
	}
	if res.Bytes != total {
		t.Errorf("Bytes = %d, want %d", res.Bytes, total)
	}
}

func TestSync_CopyPreservesModes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not portable to windows")
	}
	ref := newSkill(t, "modes", sampleFiles)
	script := filepath.Join(ref.SourceDir, "scripts", "validate.sh")
	if err := os.Chmod(script, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(filepath.Join(ref.SourceDir, "scripts"), 0o750); err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	if _, err := Sync(ref, root, ModeCopy); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}

	info, err := os.Stat(filepath.Join(root, "modes", "scripts", "validate.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("script mode = %v, want 0755", info.Mode().Perm())
	}
	dirInfo, err := os.Stat(filepath.Join(root, "modes", "scripts"))
	if err != nil {
		t.Fatal(err)
	}
	if dirInfo.Mode().Perm() != 0o750 {
		t.Errorf("dir mode = %v, want 0750", dirInfo.Mode().Perm())
	}
}

func TestSync_CopyReplacesStaleArtifact(t *testing.T) {
	ref := newSkill(t, "commit-messages", sampleFiles)
	root := t.TempDir()
	stale := filepath.Join(root, "commit-messages", "old-file.md")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Sync(ref, root, ModeCopy); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file should be removed by a fresh sync")
	}
}

func TestSync_Idempotent(t *testing.T) {
	ref := newSkill(t, "commit-messages", sampleFiles)
	root := t.TempDir()

	if _, err := Sync(ref, root, ModeCopy); err != nil {
		t.Fatalf("first Sync() error: %v", err)
	}
	first := readTree(t, filepath.Join(root, "commit-messages"))

	res, err := Sync(ref, root, ModeCopy)
	if err != nil {
		t.Fatalf("second Sync() error: %v", err)
	}
	second := readTree(t, filepath.Join(root, "commit-messages"))

	if len(first) != len(second) || res.Files != len(sampleFiles) {
		t.Fatalf("file sets differ: %v vs %v", first, second)
	}
	for rel, content := range first {
		if second[rel] != content {
			t.Errorf("%s changed between runs", rel)
		}
	}
}

func TestSync_Symlink(t *testing.T) {
	ref := newSkill(t, "commit-messages", sampleFiles)
	root := filepath.Join(t.TempDir(), "nested", "out")

	res, err := Sync(ref, root, ModeSymlink)
	if err != nil {
		t.Skipf("symlink sync unavailable: %v", err)
	}
	if res.Files != 0 || res.Links != 1 {
		t.Errorf("Files/Links = %d/%d, want 0/1", res.Files, res.Links)
	}

	dst := filepath.Join(root, "commit-messages")
	info, err := os.Lstat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatalf("%s is not a symlink", dst)
	}
	target, err := os.Readlink(dst)
	if err != nil {
		t.Fatal(err)
	}
	if target != ref.SourceDir {
		t.Errorf("link target = %q, want %q", target, ref.SourceDir)
	}

	// A second run replaces the link with an identical one.
	if _, err := Sync(ref, root, ModeSymlink); err != nil {
		t.Fatalf("second Sync() error: %v", err)
	}
	again, _ := os.Readlink(dst)
	if again != target {
		t.Errorf("link target after resync = %q, want %q", again, target)
	}
}

func TestSync_SwitchModes(t *testing.T) {
	ref := newSkill(t, "commit-messages", sampleFiles)
	root := t.TempDir()

	if _, err := Sync(ref, root, ModeSymlink); err != nil {
		t.Skipf("symlink sync unavailable: %v", err)
	}
	if _, err := Sync(ref, root, ModeCopy); err != nil {
		t.Fatalf("copy over symlink: %v", err)
	}

	dst := filepath.Join(root, "commit-messages")
	info, err := os.Lstat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Fatalf("expected a real directory after copy, got mode %s", info.Mode())
	}
	// Removing the link must not have removed the source.
	if err := skill.Check(ref.SourceDir); err != nil {
		t.Errorf("source damaged: %v", err)
	}
}

func TestSync_CopyMaterializesInnerLinks(t *testing.T) {
	ref := newSkill(t, "linked", sampleFiles)
	shared := filepath.Join(t.TempDir(), "shared.md")
	if err := os.WriteFile(shared, []byte("shared content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(shared, filepath.Join(ref.SourceDir, "shared.md")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	root := t.TempDir()
	res, err := Sync(ref, root, ModeCopy)
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if res.Files != len(sampleFiles)+1 {
		t.Errorf("Files = %d, want %d", res.Files, len(sampleFiles)+1)
	}

	copied := filepath.Join(root, "linked", "shared.md")
	info, err := os.Lstat(copied)
	if err != nil {
		t.Fatal(err)
	}
	if !info.Mode().IsRegular() {
		t.Errorf("inner link copied as %s, want regular file", info.Mode())
	}
	data, _ := os.ReadFile(copied)
	if !bytes.Equal(data, []byte("shared content")) {
		t.Errorf("content = %q, want %q", data, "shared content")
	}
}

func TestSync_Exclude(t *testing.T) {
	files := map[string]string{"SKILL.md": "x", ".DS_Store": "junk", "notes/.DS_Store": "junk", "notes/a.md": "a"}
	ref := newSkill(t, "tidy", files)
	w, err := skill.NewWalker([]string{"**/.DS_Store"})
	if err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	res, err := Sync(ref, root, ModeCopy, WithWalker(w))
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if res.Files != 2 {
		t.Errorf("Files = %d, want 2", res.Files)
	}
	got := readTree(t, filepath.Join(root, "tidy"))
	if _, ok := got[".DS_Store"]; ok {
		t.Error(".DS_Store should be excluded")
	}
}

func TestSync_OverlapRejected(t *testing.T) {
	ref := newSkill(t, "self", sampleFiles)

	// Output root is the parent of the skill, so the destination is the source.
	_, err := Sync(ref, filepath.Dir(ref.SourceDir), ModeCopy)
	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("Sync() error = %v, want *SyncError", err)
	}
	if err := skill.Check(ref.SourceDir); err != nil {
		t.Errorf("source must survive an overlapping sync: %v", err)
	}
}

func TestSync_IOErrorIsSyncError(t *testing.T) {
	ref := newSkill(t, "ok", sampleFiles)
	root := t.TempDir()
	blocker := filepath.Join(root, "file-not-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// The output root is a regular file, so nothing can be created under it.
	_, err := Sync(ref, blocker, ModeCopy)
	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("Sync() error = %v, want *SyncError", err)
	}
	if syncErr.Path == "" {
		t.Error("SyncError.Path should name the offending path")
	}
}

func TestSync_RejectsNameOutsideRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "out")
	precious := filepath.Join(base, "victim-foo", "precious.txt")
	if err := os.MkdirAll(filepath.Dir(precious), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(precious, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, mode := range []SyncMode{ModeCopy, ModeSymlink} {
		for _, name := range []string{"../victim-foo", "acme/tools-foo"} {
			ref := newSkill(t, "foo", sampleFiles)
			ref.OutputName = name

			_, err := Sync(ref, root, mode)
			var syncErr *SyncError
			var invalid *skill.InvalidNameError
			if !errors.As(err, &syncErr) || !errors.As(err, &invalid) {
				t.Errorf("Sync(%s, %q) error = %v, want *SyncError wrapping *skill.InvalidNameError", mode, name, err)
			}
		}
	}

	if data, err := os.ReadFile(precious); err != nil || string(data) != "keep" {
		t.Errorf("file outside the output root was touched: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "victim-foo", skill.FileName)); !os.IsNotExist(err) {
		t.Error("nothing may be written outside the output root")
	}
	if _, err := os.Stat(filepath.Join(root, "acme")); !os.IsNotExist(err) {
		t.Error("a separator in the output name must not create nested directories")
	}
}

func TestSync_CopyFailureRemovesPartialTree(t *testing.T) {
	ref := newSkill(t, "broken", sampleFiles)
	if err := os.Symlink(filepath.Join(ref.SourceDir, "missing.md"), filepath.Join(ref.SourceDir, "zz-dangling.md")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	root := t.TempDir()

	_, err := Sync(ref, root, ModeCopy)
	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("Sync() error = %v, want *SyncError", err)
	}
	if _, err := os.Lstat(filepath.Join(root, "broken")); !os.IsNotExist(err) {
		t.Errorf("partial copy left behind: %v", err)
	}
}

func TestSync_UnknownMode(t *testing.T) {
	ref := newSkill(t, "ok", sampleFiles)
	if _, err := Sync(ref, t.TempDir(), SyncMode("hardlink")); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestFilesystem_Target(t *testing.T) {
	root := filepath.Join(t.TempDir(), "skills")
	fsTarget := NewFilesystem(root, ModeCopy)

	if fsTarget.Name() != "copy" {
		t.Errorf("Name() = %q, want %q", fsTarget.Name(), "copy")
	}
	if err := fsTarget.Prepare(); err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Fatalf("Prepare() did not create root: %v", err)
	}

	ref := newSkill(t, "commit-messages", sampleFiles)
	if got, want := fsTarget.ArtifactPath(ref), filepath.Join(root, "commit-messages"); got != want {
		t.Errorf("ArtifactPath() = %q, want %q", got, want)
	}
	res, err := fsTarget.Materialize(ref)
	if err != nil {
		t.Fatalf("Materialize() error: %v", err)
	}
	if res.Files != len(sampleFiles) {
		t.Errorf("Files = %d, want %d", res.Files, len(sampleFiles))
	}
}
