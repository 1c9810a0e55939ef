package lvmheap

import (
	"fmt"
	"strconv"
)

type ValueKind uint8

const (
	KindInt ValueKind = iota
	KindRef
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindRef:
		return "ref"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// Value is a runtime value, held on the operand stack, in frame vars and in object fields.
// It is either a 32 bit signed integer or a reference to a heap object.
// The zero Value is the integer 0.
type Value struct {
	kind ValueKind
	i    int32
	ref  Ref
}

func Int(x int32) Value {
	return Value{kind: KindInt, i: x}
}

// Bool returns 1 for true and 0 for false.
func Bool(x bool) Value {
	if x {
		return Int(1)
	}
	return Int(0)
}

func RefValue(r Ref) Value {
	return Value{kind: KindRef, ref: r}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsInt() bool {
	return v.kind == KindInt
}

func (v Value) IsRef() bool {
	return v.kind == KindRef
}

// AsInt returns the integer, and false if v is a reference.
func (v Value) AsInt() (int32, bool) {
	return v.i, v.kind == KindInt
}

// AsRef returns the reference, and false if v is an integer.
func (v Value) AsRef() (Ref, bool) {
	return v.ref, v.kind == KindRef
}

// Truthy returns true for non-zero integers and non-null references.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindInt:
		return v.i != 0
	default:
		return !v.ref.IsNull()
	}
}

// Equal compares the tag and then the payload.
// An integer is never equal to a reference.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == other.i
	default:
		return v.ref == other.ref
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(int64(v.i), 10)
	default:
		return v.ref.String()
	}
}
