package lvrebal

import (
	"errors"
	"fmt"
)

// ErrNoSelection is returned when the operator makes no selection. It is
// fatal for the whole run; the caller must not re-prompt.
var ErrNoSelection = errors.New("no volume selected")

// ErrDeclined is returned when the operator answers no (or nothing) at a
// confirmation gate.
var ErrDeclined = errors.New("operation not confirmed")

// PlanError reports a plan that is invalid on its face, before any
// precondition is checked against the system.
type PlanError struct {
	Reason string
}

func (e *PlanError) Error() string {
	return "invalid plan: " + e.Reason
}

// PreconditionError reports a plan whose preconditions do not hold against
// the live system. Nothing has been mutated when it is returned.
type PreconditionError struct {
	LV     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed for %s: %s", e.LV, e.Reason)
}

// ConsistencyError reports a failed filesystem check during the offline
// shrink path. The logical volume has not been touched. Mounted reports the
// mount state the volume was left in.
type ConsistencyError struct {
	LV      string
	Mounted bool
	Err     error
}

func (e *ConsistencyError) Error() string {
	state := "left unmounted"
	if e.Mounted {
		state = "still mounted"
	}

	return fmt.Sprintf("filesystem check failed on %s (%s): %s", e.LV, state, e.Err)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

// StepError wraps a failure of one stage of a rebalance with the volume and
// the shrink state it occurred in. The underlying tool's diagnostics are
// preserved verbatim in Err.
type StepError struct {
	LV    string
	State ShrinkState
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %s failed: %s", e.LV, e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
