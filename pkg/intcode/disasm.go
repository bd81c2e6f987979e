package intcode

import (
	"fmt"
	"io"
)

// DisassembleInstruction writes the instruction at pc to w and returns the
// address of the next one. Unknown opcodes and invalid modes are written as
// a raw data cell.
//
// Parameters are written as 17 for immediate, [17] for position and
// [rb+17] for relative mode.
func DisassembleInstruction(w io.Writer, mem *Memory, pc int64) int64 {
	cell := mem.Read(pc)
	insn := Decode(cell)

	n, ok := insn.Op.Operands()
	if ok {
		for i := range n {
			if !insn.Modes[i].valid() {
				ok = false
				break
			}
		}
	}

	if !ok {
		fmt.Fprintf(w, ".data %d", cell)
		return pc + 1
	}

	fmt.Fprintf(w, "%s", insn.Op)
	for i := range n {
		if i == 0 {
			fmt.Fprint(w, " ")
		} else {
			fmt.Fprint(w, ", ")
		}

		raw := mem.Read(pc + int64(i) + 1)
		switch insn.Modes[i] {
		case Immediate:
			fmt.Fprintf(w, "%d", raw)
		case Relative:
			fmt.Fprintf(w, "[rb%+d]", raw)
		default:
			fmt.Fprintf(w, "[%d]", raw)
		}
	}

	return pc + int64(n) + 1
}

// Disassemble writes a linear listing of program, one instruction per
// line. Data mixed with code is decoded as instructions where it happens
// to look like one.
func Disassemble(w io.Writer, program []int64) error {
	mem := NewMemory(program)
	for pc := int64(0); pc < int64(mem.Len()); {
		if _, err := fmt.Fprintf(w, "%5d\t", pc); err != nil {
			return err
		}

		pc = DisassembleInstruction(w, mem, pc)

		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	return nil
}
