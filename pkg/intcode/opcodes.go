package intcode

import "fmt"

type Opcode int64

const (
	OpAdd         Opcode = 1
	OpMul         Opcode = 2
	OpIn          Opcode = 3
	OpOut         Opcode = 4
	OpJumpIfTrue  Opcode = 5
	OpJumpIfFalse Opcode = 6
	OpLessThan    Opcode = 7
	OpEquals      Opcode = 8
	OpAdjustBase  Opcode = 9
	OpHalt        Opcode = 99
)

var opcodeNames = map[Opcode]string{
	OpAdd:         "add",
	OpMul:         "mul",
	OpIn:          "in",
	OpOut:         "out",
	OpJumpIfTrue:  "jnz",
	OpJumpIfFalse: "jz",
	OpLessThan:    "lt",
	OpEquals:      "eq",
	OpAdjustBase:  "arb",
	OpHalt:        "halt",
}

var opcodeOperands = map[Opcode]int{
	OpAdd:         3,
	OpMul:         3,
	OpIn:          1,
	OpOut:         1,
	OpJumpIfTrue:  2,
	OpJumpIfFalse: 2,
	OpLessThan:    3,
	OpEquals:      3,
	OpAdjustBase:  1,
	OpHalt:        0,
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}

	return fmt.Sprintf("op(%d)", int64(o))
}

// Operands returns the number of parameters following the instruction cell
// and whether the opcode is known at all.
func (o Opcode) Operands() (int, bool) {
	n, ok := opcodeOperands[o]
	return n, ok
}

// Mode is a parameter addressing mode.
type Mode int64

const (
	Position  Mode = 0
	Immediate Mode = 1
	Relative  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	default:
		return fmt.Sprintf("mode(%d)", int64(m))
	}
}

func (m Mode) valid() bool {
	return m >= Position && m <= Relative
}

// Instruction is a decoded instruction cell.
type Instruction struct {
	Op    Opcode
	Modes [3]Mode
}

// Decode splits an instruction cell into its opcode (the two low decimal
// digits) and the modes of parameters 1 to 3 (the following digits, least
// significant first). Missing digits decode as Position.
func Decode(cell int64) Instruction {
	return Instruction{
		Op: Opcode(cell % 100),
		Modes: [3]Mode{
			Mode(cell / 100 % 10),
			Mode(cell / 1000 % 10),
			Mode(cell / 10000 % 10),
		},
	}
}
