// Package lvmtests contains a program builder and sample programs
// used by the tests of the other packages and by the demo command.
package lvmtests

import (
	"fmt"

	"litenvm.org/litenvm/lvmpool"
	"litenvm.org/litenvm/spec"
)

// Builder assembles a constant pool and an instruction stream.
// Jump targets can refer to labels which are defined later.
type Builder struct {
	entries []lvmpool.Entry
	code    []spec.Instruction

	labels map[string]uint32
	fixups map[int]string
}

func NewBuilder() *Builder {
	return &Builder{
		labels: make(map[string]uint32),
		fixups: make(map[int]string),
	}
}

func (b *Builder) add(ent lvmpool.Entry) uint32 {
	b.entries = append(b.entries, ent)
	return uint32(len(b.entries))
}

// Class adds a class entry and returns its index.
func (b *Builder) Class(name string, parent uint32, fields, methods uint32) uint32 {
	return b.add(&lvmpool.Class{Name: name, Parent: parent, Fields: fields, Methods: methods})
}

// Field adds a field entry and returns its index.
func (b *Builder) Field(name string, class, index uint32) uint32 {
	return b.add(&lvmpool.Field{Name: name, Class: class, Index: index})
}

// Method adds a method entry and returns its index.
// The address is set by Begin.
func (b *Builder) Method(name string, class, args, locals uint32) uint32 {
	return b.add(&lvmpool.Method{Name: name, Class: class, Args: args, Locals: locals})
}

// String adds a string literal and returns its index.
func (b *Builder) String(x string) uint32 {
	return b.add(&lvmpool.String{Value: x})
}

// Addr returns the address of the next instruction.
func (b *Builder) Addr() uint32 {
	return uint32(len(b.code))
}

// Begin sets the address of the method at index to the next instruction.
func (b *Builder) Begin(method uint32) {
	m, ok := b.entries[method-1].(*lvmpool.Method)
	if !ok {
		panic(fmt.Sprintf("entry #%d is not a method", method))
	}
	m.Address = b.Addr()
}

// Label names the address of the next instruction.
func (b *Builder) Label(name string) {
	if _, exists := b.labels[name]; exists {
		panic(fmt.Sprintf("label %q defined twice", name))
	}
	b.labels[name] = b.Addr()
}

// I appends an instruction.
func (b *Builder) I(op spec.Op, operand uint32) *Builder {
	b.code = append(b.code, spec.I(op, operand))
	return b
}

// Push appends PUSH x.
func (b *Builder) Push(x int32) *Builder {
	return b.I(spec.Push, uint32(x))
}

// Op appends an instruction without an operand.
func (b *Builder) Op(op spec.Op) *Builder {
	return b.I(op, 0)
}

// Jump appends a jump instruction to label.
func (b *Builder) Jump(op spec.Op, label string) *Builder {
	if !op.IsJump() {
		panic(fmt.Sprintf("%v is not a jump", op))
	}
	b.fixups[len(b.code)] = label
	return b.I(op, 0)
}

// Build resolves labels and returns the pool and code.
func (b *Builder) Build() (*lvmpool.Pool, []spec.Instruction) {
	code := append([]spec.Instruction{}, b.code...)
	for i, label := range b.fixups {
		addr, ok := b.labels[label]
		if !ok {
			panic(fmt.Sprintf("undefined label %q", label))
		}
		code[i].Operand = addr
	}
	return lvmpool.FromEntries(b.entries...), code
}
