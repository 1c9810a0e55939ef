package lvmpool

import (
	"fmt"

	"litenvm.org/litenvm/spec"
)

// Entry is a constant pool entry.
// It is one of *Class, *Field, *Method, or *String
type Entry interface {
	Kind() spec.Kind
	isEntry()
}

type baseEntry struct{}

func (baseEntry) isEntry() {}

type Class struct {
	Name   string
	Parent uint32
	// Fields is the number of fields declared by the class itself.
	Fields uint32
	// Methods is the number of methods declared by the class itself.
	Methods uint32

	// VTable is set by ComputeVTables
	VTable *VTable

	baseEntry
}

func (*Class) Kind() spec.Kind { return spec.KindClass }

func (c *Class) String() string {
	return fmt.Sprintf("%s (parent=%d, fields=%d, methods=%d)", c.Name, c.Parent, c.Fields, c.Methods)
}

type Field struct {
	Name  string
	Class uint32
	// Index is the slot of the field within an object.
	Index uint32

	baseEntry
}

func (*Field) Kind() spec.Kind { return spec.KindField }

func (f *Field) String() string {
	return fmt.Sprintf("%s (class=%d, index=%d)", f.Name, f.Class, f.Index)
}

type Method struct {
	Name string
	// Class is the declaring class, or spec.NoIndex for free functions.
	Class   uint32
	Address uint32
	// Args includes the receiver for methods declared on a class.
	Args   uint32
	Locals uint32

	baseEntry
}

func (*Method) Kind() spec.Kind { return spec.KindMethod }

func (m *Method) String() string {
	return fmt.Sprintf("%s (class=%d, address=%d, args=%d, locals=%d)", m.Name, m.Class, m.Address, m.Args, m.Locals)
}

// Vars is the size of a frame for the method.
// It is computed in 64 bits so that it can not wrap around.
func (m *Method) Vars() uint64 {
	return uint64(m.Args) + uint64(m.Locals)
}

// IsFree returns true if the method does not belong to a class.
// Free methods are called directly, without dispatch.
func (m *Method) IsFree() bool {
	return m.Class == spec.NoIndex
}

// String is a string literal
type String struct {
	Value string

	baseEntry
}

func (*String) Kind() spec.Kind { return spec.KindString }

func (s *String) String() string {
	return fmt.Sprintf("%q", s.Value)
}
