// package spec contains the instruction set and constant pool layout shared by
// the executor, the file format and the tools.
package spec

// OpBits is the number of bits needed to encode an Op
const OpBits = 8

// JumpBit is set on exactly the branch operations.
// After a branch operation executes, the executor pops a flag and jumps to the operand
// if the flag is non-zero.
const JumpBit Op = 0x80

// Op is an operation code
type Op uint8

const (
	// Push: () -> (n)
	Push Op = iota
	// PushString: () -> (String)
	// The operand is a String entry in the constant pool.
	PushString
	// PushVar: () -> (vars[i])
	PushVar
	// PushField: (obj) -> (obj.field)
	// The operand is a Field entry in the constant pool.
	PushField

	// Pop: (x) -> ()
	Pop
	// PopVar: (x) -> (), vars[i] = x
	PopVar
	// PopField: (obj, x) -> (), obj.field = x
	PopField

	// Add: (l, r) -> (l + r)
	Add
	// Sub: (l, r) -> (l - r)
	Sub
	// Mul: (l, r) -> (l * r)
	Mul
	// Div: (l, r) -> (l / r)
	Div

	// Call: (args...) -> ()
	// The operand is a Method entry. The method actually invoked is found in the vtable
	// of the receiver's class.
	Call
	// Return pops the current frame.
	Return

	// New: () -> (obj)
	// The operand is a Class entry.
	New
	// Dup: (x) -> (x, x)
	Dup
)

const (
	// Jump: () -> (1), then branch
	Jump Op = JumpBit | iota
	// JumpEq: (l, r) -> (l == r), then branch
	JumpEq
	// JumpNe: (l, r) -> (l != r), then branch
	JumpNe
	// JumpLt: (l, r) -> (l < r), then branch
	JumpLt
	// JumpLe: (l, r) -> (l <= r), then branch
	JumpLe
	// JumpGt: (l, r) -> (l > r), then branch
	JumpGt
	// JumpGe: (l, r) -> (l >= r), then branch
	JumpGe
)

// IsJump returns true if the operation has the jump bit set.
func (o Op) IsJump() bool {
	return o&JumpBit != 0
}

// TransfersControl returns true for the operations which set the program counter themselves.
func (o Op) TransfersControl() bool {
	return o == Call || o == Return
}
