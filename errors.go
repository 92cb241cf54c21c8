package finalize

import "fmt"

// Stage identifies where in a finalization run an error occurred.
type Stage string

const (
	StageRead    Stage = "read"    // interim discovery or record streaming
	StageWrite   Stage = "write"   // parallel write of output files
	StageCleanup Stage = "cleanup" // deletion of interim files
)

// Error is a job-level finalization failure. It names the stage that
// failed and wraps the underlying cause, so callers can branch with
// errors.As on the type and inspect Stage, or errors.Is on the cause.
//
// Cleanup failures are never returned from Run as an Error: they are
// logged, and the run's outcome is decided by the write stage alone.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("finalize %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// BudgetError reports a worker budget string that could not be
// resolved to a positive worker count. Value holds the raw input as
// the caller supplied it.
type BudgetError struct {
	Value string
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("finalize: invalid worker budget %q", e.Value)
}
