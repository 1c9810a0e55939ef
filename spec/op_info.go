package spec

import "fmt"

// OperandKind describes what an instruction's operand refers to.
type OperandKind uint8

const (
	// OperandNone means the operand is ignored.
	OperandNone OperandKind = iota
	// OperandInt is an immediate 32 bit integer.
	OperandInt
	// OperandVar is an index into the current frame's vars.
	OperandVar
	// OperandAddress is an index into the instruction stream.
	OperandAddress
	// OperandClass is a Class entry in the constant pool.
	OperandClass
	// OperandField is a Field entry in the constant pool.
	OperandField
	// OperandMethod is a Method entry in the constant pool.
	OperandMethod
	// OperandString is a String entry in the constant pool.
	OperandString
)

// Info is information about Operations
type Info struct {
	Name    string
	Operand OperandKind
	// InDegree is the number of values the operation needs on the operand stack.
	// It is -1 for Call, which depends on the method.
	InDegree int
}

func (o Op) Info() (Info, bool) {
	info, ok := infos[o]
	return info, ok
}

// Valid returns true if o is a known operation.
func (o Op) Valid() bool {
	_, ok := infos[o]
	return ok
}

func (o Op) String() string {
	if info, ok := infos[o]; ok {
		return info.Name
	}
	return fmt.Sprintf("Op(0x%02x)", uint8(o))
}

// ParseOp returns the operation with the given name.
func ParseOp(name string) (Op, error) {
	for op, info := range infos {
		if info.Name == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

var infos = map[Op]Info{
	Push:       {"PUSH", OperandInt, 0},
	PushString: {"PUSH_STRING", OperandString, 0},
	PushVar:    {"PUSH_VAR", OperandVar, 0},
	PushField:  {"PUSH_FIELD", OperandField, 1},

	Pop:      {"POP", OperandNone, 1},
	PopVar:   {"POP_VAR", OperandVar, 1},
	PopField: {"POP_FIELD", OperandField, 2},

	Add: {"ADD", OperandNone, 2},
	Sub: {"SUB", OperandNone, 2},
	Mul: {"MUL", OperandNone, 2},
	Div: {"DIV", OperandNone, 2},

	Call:   {"CALL", OperandMethod, -1},
	Return: {"RETURN", OperandNone, 0},

	New: {"NEW", OperandClass, 0},
	Dup: {"DUP", OperandNone, 1},

	Jump:   {"JUMP", OperandAddress, 0},
	JumpEq: {"JUMP_EQ", OperandAddress, 2},
	JumpNe: {"JUMP_NE", OperandAddress, 2},
	JumpLt: {"JUMP_LT", OperandAddress, 2},
	JumpLe: {"JUMP_LE", OperandAddress, 2},
	JumpGt: {"JUMP_GT", OperandAddress, 2},
	JumpGe: {"JUMP_GE", OperandAddress, 2},
}
