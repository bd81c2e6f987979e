package intcode

import (
	"context"
)

// Handle tracks a machine running on its own goroutine.
type Handle struct {
	done chan struct{}
	err  error
}

// Spawn starts the machine on a new goroutine and returns immediately. The
// caller owns in and out and is responsible for wiring and draining them.
func (m *Machine) Spawn(ctx context.Context, in Input, out Output) *Handle {
	h := &Handle{
		done: make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		h.err = m.Exec(ctx, in, out)
	}()

	return h
}

// Done is closed once the machine has stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the machine stops and returns why it stopped: nil on
// halt, a *Fault, or the context error.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Run feeds inputs to the machine, runs it to completion on its own
// goroutine and returns everything it printed. The input stream is closed
// after inputs, so a blocking read past the end faults with ErrInputClosed.
// Output produced before a fault is returned along with the error.
func (m *Machine) Run(ctx context.Context, inputs ...int64) ([]int64, error) {
	in := NewPipe(inputs...)
	in.Close()

	out := NewPipe()

	err := m.Spawn(ctx, in, out).Wait()

	return out.Drain(), err
}

// RunProgram is a shorthand for New(program, opts...).Run(ctx, inputs...).
func RunProgram(ctx context.Context, program []int64, inputs []int64, opts ...Option) ([]int64, error) {
	return New(program, opts...).Run(ctx, inputs...)
}
