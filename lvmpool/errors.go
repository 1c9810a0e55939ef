package lvmpool

import (
	"errors"
	"fmt"

	"litenvm.org/litenvm/spec"
)

var ErrVTableFull = errors.New("vtable is full")

// ErrBadIndex is returned for an index outside of the loaded pool.
type ErrBadIndex struct {
	Index uint32
	Len   uint32
}

func (e ErrBadIndex) Error() string {
	return fmt.Sprintf("constant pool index %d out of range (len=%d)", e.Index, e.Len)
}

// ErrWrongKind is returned when an entry is not of the kind the caller needs.
type ErrWrongKind struct {
	Index uint32
	Have  spec.Kind
	Want  spec.Kind
}

func (e ErrWrongKind) Error() string {
	return fmt.Sprintf("constant pool entry #%d is a %v, need %v", e.Index, e.Have, e.Want)
}

// ErrOrdering is returned by ComputeVTables when an entry refers to a class which is
// not declared before it.
type ErrOrdering struct {
	Index uint32
	Ref   uint32
}

func (e ErrOrdering) Error() string {
	return fmt.Sprintf("constant pool entry #%d refers to #%d which is not declared before it", e.Index, e.Ref)
}
