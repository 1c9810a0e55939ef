package lvmheap

import (
	"errors"
	"fmt"
)

var ErrOutOfMemory = errors.New("heap: out of memory")

// ErrDanglingRef is returned for a reference to an object which was freed, or never allocated.
type ErrDanglingRef struct {
	Ref Ref
}

func (e ErrDanglingRef) Error() string {
	return fmt.Sprintf("heap: dangling reference %v", e.Ref)
}

// ErrNotString is returned when an intrinsic operation gets an object of the wrong class.
type ErrNotString struct {
	Ref   Ref
	Class uint32
	Want  uint32
}

func (e ErrNotString) Error() string {
	return fmt.Sprintf("heap: object %v has class #%d, need #%d", e.Ref, e.Class, e.Want)
}

// ErrBadField is returned for a field slot outside of the object.
type ErrBadField struct {
	Ref   Ref
	Index uint32
	Len   int
}

func (e ErrBadField) Error() string {
	return fmt.Sprintf("heap: object %v has %d fields, no field %d", e.Ref, e.Len, e.Index)
}

// ErrObjectTooLarge is returned when an object would have more fields than the heap allows.
// It matches ErrOutOfMemory with errors.Is.
type ErrObjectTooLarge struct {
	Fields uint32
	Max    int
}

func (e ErrObjectTooLarge) Error() string {
	return fmt.Sprintf("object with %d fields exceeds the limit of %d", e.Fields, e.Max)
}

func (e ErrObjectTooLarge) Unwrap() error {
	return ErrOutOfMemory
}
