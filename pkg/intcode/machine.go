package intcode

import (
	"log/slog"
)

// Machine is one Intcode VM instance. It owns its memory and relative base
// exclusively. A Machine must not be executed by more than one goroutine
// at a time.
type Machine struct {
	logger *slog.Logger

	mem  *Memory
	pc   int64
	base int64

	hasDefault   bool
	defaultInput int64

	steps int64
}

type Option func(*Machine)

// WithDefaultInput switches opcode 3 to non-blocking mode: when no input
// is pending the machine reads v instead of waiting. The fallback applies
// to every starved read, not only the first.
func WithDefaultInput(v int64) Option {
	return func(m *Machine) {
		m.hasDefault = true
		m.defaultInput = v
	}
}

// WithLogger sets the logger used for lifecycle records and, at debug
// level, per-instruction traces.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// New creates a machine for program. The program is copied; the caller's
// slice is never modified.
func New(program []int64, opts ...Option) *Machine {
	m := &Machine{
		logger: slog.New(slog.DiscardHandler),
		mem:    NewMemory(program),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Machine) Memory() *Memory {
	return m.mem
}

func (m *Machine) PC() int64 {
	return m.pc
}

func (m *Machine) RelativeBase() int64 {
	return m.base
}

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() int64 {
	return m.steps
}
