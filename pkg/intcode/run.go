package intcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// Exec runs the machine on the calling goroutine until it halts, faults or
// ctx is cancelled. out is closed when Exec returns, whatever the reason,
// so consumers downstream see the end of the stream.
//
// Machine errors are returned as *Fault. Cancellation is returned as
// ctx.Err() unwrapped.
func (m *Machine) Exec(ctx context.Context, in Input, out Output) (err error) {
	defer out.Close()

	var cell int64

	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(runtime.Error)
			if !ok {
				panic(r)
			}
			err = &Fault{PC: m.pc, Cell: cell, Err: fmt.Errorf("%w: %v", ErrBadAccess, rerr)}
		}

		if err != nil {
			m.logger.Debug("machine stopped", "pc", m.pc, "steps", m.steps, "err", err)
		}
	}()

	debug := m.logger.Enabled(ctx, slog.LevelDebug)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cell = m.mem.Read(m.pc)
		insn := Decode(cell)

		n, ok := insn.Op.Operands()
		if !ok {
			return &Fault{PC: m.pc, Cell: cell, Err: ErrUnknownOpcode}
		}

		for i := range n {
			if !insn.Modes[i].valid() {
				return &Fault{PC: m.pc, Cell: cell, Err: fmt.Errorf("%w %d for parameter %d", ErrUnknownMode, int64(insn.Modes[i]), i+1)}
			}
		}

		if debug {
			m.trace(ctx)
		}

		m.steps++

		switch insn.Op {
		case OpAdd:
			m.store(insn, 3, m.load(insn, 1)+m.load(insn, 2))
			m.pc += 4
		case OpMul:
			m.store(insn, 3, m.load(insn, 1)*m.load(insn, 2))
			m.pc += 4
		case OpIn:
			v, err := m.input(ctx, in)
			if err != nil {
				if errors.Is(err, ErrInputClosed) {
					return &Fault{PC: m.pc, Cell: cell, Err: err}
				}
				return err
			}
			m.store(insn, 1, v)
			m.pc += 2
		case OpOut:
			out.Send(m.load(insn, 1))
			m.pc += 2
		case OpJumpIfTrue:
			if m.load(insn, 1) != 0 {
				m.pc = m.load(insn, 2)
			} else {
				m.pc += 3
			}
		case OpJumpIfFalse:
			if m.load(insn, 1) == 0 {
				m.pc = m.load(insn, 2)
			} else {
				m.pc += 3
			}
		case OpLessThan:
			m.store(insn, 3, boolCell(m.load(insn, 1) < m.load(insn, 2)))
			m.pc += 4
		case OpEquals:
			m.store(insn, 3, boolCell(m.load(insn, 1) == m.load(insn, 2)))
			m.pc += 4
		case OpAdjustBase:
			m.base += m.load(insn, 1)
			m.pc += 2
		case OpHalt:
			m.logger.Debug("machine halted", "pc", m.pc, "steps", m.steps)
			return nil
		}
	}
}

func (m *Machine) input(ctx context.Context, in Input) (int64, error) {
	if !m.hasDefault {
		return in.Recv(ctx)
	}

	if v, ok := in.TryRecv(); ok {
		return v, nil
	}

	return m.defaultInput, nil
}

// operand returns the raw value of parameter i (1-based) of the current
// instruction.
func (m *Machine) operand(i int) int64 {
	return m.mem.Read(m.pc + int64(i))
}

// load resolves parameter i to a value.
func (m *Machine) load(insn Instruction, i int) int64 {
	raw := m.operand(i)

	switch insn.Modes[i-1] {
	case Immediate:
		return raw
	case Relative:
		return m.mem.Read(m.base + raw)
	default:
		return m.mem.Read(raw)
	}
}

// address resolves parameter i to a write address. Immediate destinations
// are treated like Position ones; well-formed programs never use them.
func (m *Machine) address(insn Instruction, i int) int64 {
	raw := m.operand(i)

	if insn.Modes[i-1] == Relative {
		return m.base + raw
	}

	return raw
}

func (m *Machine) store(insn Instruction, i int, val int64) {
	m.mem.Write(m.address(insn, i), val)
}

func (m *Machine) trace(ctx context.Context) {
	var b strings.Builder
	DisassembleInstruction(&b, m.mem, m.pc)

	m.logger.Log(ctx, slog.LevelDebug, "step", "pc", m.pc, "base", m.base, "insn", b.String())
}

func boolCell(b bool) int64 {
	if b {
		return 1
	}

	return 0
}
