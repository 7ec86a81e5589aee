package target

import (
	"github.com/barysiuk/skillpack/internal/core/skill"
)

// DryRun validates skills exactly as a real run would resolve them and
// reports where the wrapped target would write, without touching disk.
type DryRun struct {
	planned Target
}

// NewDryRun wraps the target a real run would use.
func NewDryRun(planned Target) *DryRun {
	return &DryRun{planned: planned}
}

func (d *DryRun) Name() string { return "dry-run" }
func (d *DryRun) Root() string { return d.planned.Root() }

// Prepare does nothing; a dry run never creates the output root.
func (d *DryRun) Prepare() error { return nil }

func (d *DryRun) ArtifactPath(ref *skill.Ref) string {
	return d.planned.ArtifactPath(ref)
}

func (d *DryRun) Materialize(ref *skill.Ref) (Result, error) {
	if err := Validate(ref); err != nil {
		return Result{}, err
	}
	return Result{Path: d.ArtifactPath(ref)}, nil
}

// Validate runs the checks a real run would apply to ref: a single-segment
// output name and a directory holding a regular SKILL.md.
func Validate(ref *skill.Ref) error {
	if err := skill.CheckOutputName(ref.OutputName); err != nil {
		return err
	}
	return skill.Check(ref.SourceDir)
}
