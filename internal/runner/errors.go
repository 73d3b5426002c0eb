package runner

import "errors"

var (
	// ErrReinitForbidden rejects a second Init while reinitialization is
	// disallowed. State and on-disk artifacts stay untouched.
	ErrReinitForbidden = errors.New("cannot initialize the action more than once")

	// ErrStartAlreadyTriggered rejects a second NotifyStart without an
	// intervening successful Init.
	ErrStartAlreadyTriggered = errors.New("cannot trigger start of the action more than once")

	// ErrNoBinary means no executable artifact exists at the configured
	// binary path, either after Init or as a Run precondition.
	ErrNoBinary = errors.New("no action binary located")
)

// RunError reports that a Run produced no usable result: the action's last
// output line was not a JSON object, or the process could not be spawned
// or communicated with at all.
type RunError struct {
	// Line carries the offending output line, or the transport error text.
	Line string
}

func (e *RunError) Error() string {
	return e.Line
}
