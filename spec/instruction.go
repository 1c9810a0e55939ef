package spec

import "fmt"

// InstructionSize is the size of an encoded Instruction in bytes.
const InstructionSize = 1 + 4

// Instruction is a single operation and its operand.
type Instruction struct {
	Op      Op
	Operand uint32
}

// I is shorthand for constructing an Instruction
func I(op Op, operand uint32) Instruction {
	return Instruction{Op: op, Operand: operand}
}

func (in Instruction) String() string {
	info, ok := in.Op.Info()
	if !ok || info.Operand == OperandNone {
		return in.Op.String()
	}
	if info.Operand == OperandInt {
		return fmt.Sprintf("%v %d", in.Op, int32(in.Operand))
	}
	return fmt.Sprintf("%v %d", in.Op, in.Operand)
}
