// Package lvmheap implements the object model of the virtual machine.
//
// Objects live in an arena owned by a Heap and are addressed by Ref handles.
// A Ref carries the generation of its slot, so use after Free is detected
// instead of silently reading whatever object reused the slot.
package lvmheap

import (
	"fmt"
)

// Ref is a handle to a heap object.  The zero Ref is null.
type Ref struct {
	Slot uint32
	Gen  uint32
}

func (r Ref) IsNull() bool {
	return r.Slot == 0
}

func (r Ref) String() string {
	if r.IsNull() {
		return "null"
	}
	return fmt.Sprintf("@%d.%d", r.Slot, r.Gen)
}

// Object is a heap allocated instance of a class.
type Object struct {
	// Class is the constant pool index of the object's runtime class.
	Class  uint32
	Fields []Value

	// text is the buffer owned by String objects.
	text []byte
	// escaped is set on a String once it has been handed out by a StringBuilder.
	escaped bool
}

type slot struct {
	gen uint32
	obj *Object
}

type Heap struct {
	// slots[0] is never used, so the zero Ref is never valid.
	slots []slot
	free  []uint32
	live  int
	max   int

	maxFields int
}

// NewHeap creates an empty heap.
// If maxObjects > 0 then allocating more than maxObjects live objects fails with ErrOutOfMemory.
// If maxFields > 0 then allocating an object with more than maxFields fields fails with ErrObjectTooLarge.
func NewHeap(maxObjects, maxFields int) *Heap {
	return &Heap{
		slots:     make([]slot, 1),
		max:       maxObjects,
		maxFields: maxFields,
	}
}

// New allocates an object of class with nfields slots, all holding the integer 0.
func (h *Heap) New(class uint32, nfields uint32) (Ref, error) {
	if h.max > 0 && h.live >= h.max {
		return Ref{}, ErrOutOfMemory
	}
	if h.maxFields > 0 && uint64(nfields) > uint64(h.maxFields) {
		return Ref{}, ErrObjectTooLarge{Fields: nfields, Max: h.maxFields}
	}
	obj := &Object{
		Class:  class,
		Fields: make([]Value, nfields),
	}
	var idx uint32
	if n := len(h.free); n > 0 {
		idx = h.free[n-1]
		h.free = h.free[:n-1]
	} else {
		h.slots = append(h.slots, slot{gen: 1})
		idx = uint32(len(h.slots) - 1)
	}
	h.slots[idx].obj = obj
	h.live++
	return Ref{Slot: idx, Gen: h.slots[idx].gen}, nil
}

// Get returns the object referred to by ref.
func (h *Heap) Get(ref Ref) (*Object, error) {
	if ref.IsNull() || int(ref.Slot) >= len(h.slots) {
		return nil, ErrDanglingRef{Ref: ref}
	}
	s := &h.slots[ref.Slot]
	if s.obj == nil || s.gen != ref.Gen {
		return nil, ErrDanglingRef{Ref: ref}
	}
	return s.obj, nil
}

// Class returns the class index of the object referred to by ref
func (h *Heap) Class(ref Ref) (uint32, error) {
	obj, err := h.Get(ref)
	if err != nil {
		return 0, err
	}
	return obj.Class, nil
}

// Field returns a pointer to field slot i of the object.
// The pointer is valid until the object is freed.
func (h *Heap) Field(ref Ref, i uint32) (*Value, error) {
	obj, err := h.Get(ref)
	if err != nil {
		return nil, err
	}
	if int(i) >= len(obj.Fields) {
		return nil, ErrBadField{Ref: ref, Index: i, Len: len(obj.Fields)}
	}
	return &obj.Fields[i], nil
}

// Free releases the object.
// Freeing a String releases its buffer.  Freeing a StringBuilder also frees
// its current String, unless that String has escaped through BuilderString.
func (h *Heap) Free(ref Ref) error {
	obj, err := h.Get(ref)
	if err != nil {
		return err
	}
	if isBuilder(obj) {
		if cur, ok := obj.Fields[0].AsRef(); ok {
			if s, err := h.Get(cur); err == nil && !s.escaped {
				h.release(cur)
			}
		}
	}
	h.release(ref)
	return nil
}

func (h *Heap) release(ref Ref) {
	s := &h.slots[ref.Slot]
	s.obj.text = nil
	s.obj.Fields = nil
	s.obj = nil
	s.gen++
	h.free = append(h.free, ref.Slot)
	h.live--
}

// Len returns the number of live objects.
func (h *Heap) Len() int {
	return h.live
}

// Reset frees every object.  All previously returned Refs become dangling.
func (h *Heap) Reset() {
	for i := 1; i < len(h.slots); i++ {
		if h.slots[i].obj != nil {
			h.release(Ref{Slot: uint32(i), Gen: h.slots[i].gen})
		}
	}
}
