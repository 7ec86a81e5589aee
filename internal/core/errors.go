package core

import "fmt"

// OutputRootError reports an output root that could not be created or used.
// It aborts the run before any skill is processed.
type OutputRootError struct {
	Path string
	Err  error
}

func (e *OutputRootError) Error() string {
	return fmt.Sprintf("preparing output root %s: %v", e.Path, e.Err)
}

func (e *OutputRootError) Unwrap() error { return e.Err }
