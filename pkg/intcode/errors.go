package intcode

import (
	"fmt"
)

var (
	ErrUnknownOpcode = fmt.Errorf("unknown opcode")
	ErrUnknownMode   = fmt.Errorf("unknown parameter mode")
	ErrInputClosed   = fmt.Errorf("input closed")
	ErrBadAccess     = fmt.Errorf("bad memory access")
)

// Fault is the error a machine stops with when it cannot continue. It is
// never recovered from inside the machine.
type Fault struct {
	PC   int64
	Cell int64
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("intcode fault at pc %d (cell %d): %v", f.PC, f.Cell, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
