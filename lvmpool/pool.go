// Package lvmpool implements the constant pool of a program.
//
// The pool holds the classes, fields, methods and string literals that
// instructions refer to by index.  Indices are 1-based; 0 means "none".
// The highest indices are reserved for the intrinsic classes and methods,
// see spec.IsIntrinsic.
package lvmpool

import (
	"fmt"
	"iter"

	"litenvm.org/litenvm/spec"
)

type Pool struct {
	entries  []Entry
	computed bool
}

// New creates a pool with room for length entries.
// Entries must be filled with Add before the pool is used.
func New(length uint32) *Pool {
	return &Pool{entries: make([]Entry, length)}
}

// FromEntries creates a pool from entries, the first element gets index 1.
func FromEntries(ents ...Entry) *Pool {
	p := New(uint32(len(ents)))
	copy(p.entries, ents)
	return p
}

// Len returns the number of entries, not counting the intrinsics.
func (p *Pool) Len() uint32 {
	return uint32(len(p.entries))
}

// Add sets the entry at index.
func (p *Pool) Add(index uint32, ent Entry) error {
	if err := p.checkIndex(index); err != nil {
		return err
	}
	if ent == nil {
		return fmt.Errorf("cannot add nil entry at #%d", index)
	}
	p.entries[index-1] = ent
	p.computed = false
	return nil
}

// Get returns the entry at index.
// Reserved indices return the statically constructed intrinsic entries.
func (p *Pool) Get(index uint32) (Entry, error) {
	if spec.IsIntrinsic(index) {
		return intrinsicEntries[index-spec.IntrinsicBase], nil
	}
	if err := p.checkIndex(index); err != nil {
		return nil, err
	}
	ent := p.entries[index-1]
	if ent == nil {
		return nil, fmt.Errorf("constant pool entry #%d was never added", index)
	}
	return ent, nil
}

func (p *Pool) Class(index uint32) (*Class, error) {
	return getAs[*Class](p, index, spec.KindClass)
}

func (p *Pool) Field(index uint32) (*Field, error) {
	return getAs[*Field](p, index, spec.KindField)
}

func (p *Pool) Method(index uint32) (*Method, error) {
	return getAs[*Method](p, index, spec.KindMethod)
}

func (p *Pool) String(index uint32) (*String, error) {
	return getAs[*String](p, index, spec.KindString)
}

func getAs[T Entry](p *Pool, index uint32, want spec.Kind) (T, error) {
	var zero T
	ent, err := p.Get(index)
	if err != nil {
		return zero, err
	}
	x, ok := ent.(T)
	if !ok {
		return zero, ErrWrongKind{Index: index, Have: ent.Kind(), Want: want}
	}
	return x, nil
}

// Entries iterates over the loaded entries in index order.
// Entries which were never added are skipped.
func (p *Pool) Entries() iter.Seq2[uint32, Entry] {
	return func(yield func(uint32, Entry) bool) {
		for i, ent := range p.entries {
			if ent == nil {
				continue
			}
			if !yield(uint32(i+1), ent) {
				return
			}
		}
	}
}

// Computed returns true if ComputeVTables has succeeded since the last Add.
func (p *Pool) Computed() bool {
	return p.computed
}

// ComputeVTables builds the vtable of every class in a single pass over the pool.
//
// A class starts with a copy of its parent's vtable, then each method that follows
// is put into the vtable of its owner, replacing an inherited method with the same name.
// This requires parents to come before their subclasses, and classes to come before
// their methods.  Methods without an owner are free functions and are not put into any vtable.
func (p *Pool) ComputeVTables() error {
	p.computed = false
	for i, ent := range p.entries {
		index := uint32(i + 1)
		switch x := ent.(type) {
		case nil:
			return fmt.Errorf("constant pool entry #%d was never added", index)
		case *Class:
			var parent *Class
			if x.Parent != spec.NoIndex {
				var err error
				if parent, err = p.declaredClass(index, x.Parent); err != nil {
					return err
				}
			}
			capacity := int(x.Methods)
			if parent != nil {
				capacity += parent.VTable.Size()
			}
			x.VTable = NewVTable(2 * capacity)
			if parent != nil {
				if err := parent.VTable.CopyInto(x.VTable); err != nil {
					return fmt.Errorf("class #%d %s: %w", index, x.Name, err)
				}
			}
		case *Method:
			if x.IsFree() {
				continue
			}
			owner, err := p.declaredClass(index, x.Class)
			if err != nil {
				return err
			}
			if err := owner.VTable.Put(x.Name, index); err != nil {
				return fmt.Errorf("method #%d %s on class #%d %s: %w", index, x.Name, x.Class, owner.Name, err)
			}
		}
	}
	p.computed = true
	return nil
}

// declaredClass returns the class at ref, which must come before index.
func (p *Pool) declaredClass(index, ref uint32) (*Class, error) {
	if ref >= index || spec.IsIntrinsic(ref) {
		return nil, ErrOrdering{Index: index, Ref: ref}
	}
	return p.Class(ref)
}

func (p *Pool) checkIndex(index uint32) error {
	if index == spec.NoIndex || index > p.Len() {
		return ErrBadIndex{Index: index, Len: p.Len()}
	}
	return nil
}
