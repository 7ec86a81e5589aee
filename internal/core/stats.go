package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/barysiuk/skillpack/internal/core/target"
	"github.com/hashicorp/go-multierror"
)

// RunStats accumulates the outcome of one Run. It is safe for concurrent
// updates through its methods; read the fields only after Run returns.
type RunStats struct {
	mu sync.Mutex

	Total          int // skills scheduled
	Succeeded      int
	Failed         int
	SkippedPlugins int // plugins with an empty skills list

	Files    int
	Bytes    int64
	Links    int
	Archives int

	Artifacts []Artifact
	Failures  []Failure
}

// Artifact is one successfully materialized skill.
type Artifact struct {
	Index      int // position in manifest order
	Plugin     string
	Skill      string // raw path from the manifest
	OutputName string
	Path       string
	Files      int
	Bytes      int64
	Links      int
}

// Failure is one skill that could not be materialized.
type Failure struct {
	Index  int
	Plugin string
	Skill  string
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s (plugin %s): %v", f.Skill, f.Plugin, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

func (s *RunStats) succeed(a Artifact, res target.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Succeeded++
	s.Files += res.Files
	s.Bytes += res.Bytes
	s.Links += res.Links
	s.Archives += res.Archives
	s.Artifacts = append(s.Artifacts, a)
}

func (s *RunStats) fail(f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed++
	s.Failures = append(s.Failures, f)
}

// sort puts artifacts and failures back into manifest order after a
// concurrent run.
func (s *RunStats) sort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.Slice(s.Artifacts, func(i, j int) bool { return s.Artifacts[i].Index < s.Artifacts[j].Index })
	sort.Slice(s.Failures, func(i, j int) bool { return s.Failures[i].Index < s.Failures[j].Index })
}

// Err aggregates every failure into one error, or returns nil when all
// skills succeeded.
func (s *RunStats) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result *multierror.Error
	for _, f := range s.Failures {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}
