package target

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/barysiuk/skillpack/internal/core/skill"
)

func TestDryRun_NoMutation(t *testing.T) {
	root := filepath.Join(t.TempDir(), "never-created")
	targets := []Target{
		NewFilesystem(root, ModeCopy),
		NewFilesystem(root, ModeSymlink),
		NewArchive(root),
	}

	for _, planned := range targets {
		t.Run(planned.Name(), func(t *testing.T) {
			d := NewDryRun(planned)
			if err := d.Prepare(); err != nil {
				t.Fatalf("Prepare() error: %v", err)
			}

			ref := newSkill(t, "commit-messages", sampleFiles)
			res, err := d.Materialize(ref)
			if err != nil {
				t.Fatalf("Materialize() error: %v", err)
			}
			if res.Path != planned.ArtifactPath(ref) {
				t.Errorf("Path = %q, want %q", res.Path, planned.ArtifactPath(ref))
			}
			if res.Files != 0 || res.Links != 0 || res.Archives != 0 {
				t.Errorf("dry run reported writes: %+v", res)
			}
			if _, err := os.Stat(root); !os.IsNotExist(err) {
				t.Errorf("dry run created %s", root)
			}
		})
	}
}

func TestDryRun_SameFailuresAsRealRun(t *testing.T) {
	ref := newSkill(t, "no-metadata", map[string]string{"README.md": "# hi\n"})
	root := t.TempDir()

	_, dryErr := NewDryRun(NewFilesystem(root, ModeCopy)).Materialize(ref)
	var missing *skill.MetadataMissingError
	if !errors.As(dryErr, &missing) {
		t.Fatalf("dry run error = %v, want *skill.MetadataMissingError", dryErr)
	}

	gone := &skill.Ref{Name: "gone", OutputName: "gone", SourceDir: filepath.Join(root, "gone")}
	_, dryErr = NewDryRun(NewArchive(root)).Materialize(gone)
	var notFound *skill.NotFoundError
	if !errors.As(dryErr, &notFound) {
		t.Fatalf("dry run error = %v, want *skill.NotFoundError", dryErr)
	}
}

func TestDryRun_RejectsInvalidOutputName(t *testing.T) {
	ref := newSkill(t, "foo", sampleFiles)
	ref.OutputName = "../victim-foo"
	root := filepath.Join(t.TempDir(), "out")

	_, err := NewDryRun(NewFilesystem(root, ModeCopy)).Materialize(ref)
	var invalid *skill.InvalidNameError
	if !errors.As(err, &invalid) {
		t.Fatalf("dry run error = %v, want *skill.InvalidNameError", err)
	}
}

func TestDryRun_Name(t *testing.T) {
	d := NewDryRun(NewArchive("dist"))
	if d.Name() != "dry-run" {
		t.Errorf("Name() = %q, want dry-run", d.Name())
	}
	if d.Root() != "dist" {
		t.Errorf("Root() = %q, want dist", d.Root())
	}
}
