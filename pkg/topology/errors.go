package topology

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateNode = fmt.Errorf("duplicate node")
	ErrUnknownNode   = fmt.Errorf("unknown node")
	ErrFanIn         = fmt.Errorf("node has more than one producer")
	ErrFanOut        = fmt.Errorf("node has more than one consumer")
	ErrUnseededCycle = fmt.Errorf("feedback cycle has no seeded or non-blocking node")
	ErrNotStarted    = fmt.Errorf("network not started")
)

// NodeError attributes an error to the node it happened on.
type NodeError struct {
	Node string
	Err  error
}

func (e NodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Node, e.Err)
}

func (e NodeError) Unwrap() error {
	return e.Err
}

// ErrorSet collects every problem found while validating a network.
type ErrorSet struct {
	Errs []error
}

func newErrorSet() *ErrorSet {
	return new(ErrorSet)
}

func (e *ErrorSet) Add(err error) {
	var subErrs *ErrorSet
	if errors.As(err, &subErrs) {
		e.Errs = append(e.Errs, subErrs.Unwrap()...)
	} else {
		e.Errs = append(e.Errs, err)
	}
}

func (e ErrorSet) Error() string {
	return errors.Join(e.Errs...).Error()
}

func (e ErrorSet) Unwrap() []error {
	return e.Errs
}

// Err returns nil when nothing was collected.
func (e *ErrorSet) Err() error {
	if len(e.Errs) == 0 {
		return nil
	}

	return e
}
