package lvm1

import "litenvm.org/litenvm/lvmheap"

// Frame is an entry on the call stack.
type Frame struct {
	// ReturnAddress is where execution continues after RETURN.
	ReturnAddress uint32
	// Method is the constant pool index of the method running in the frame.
	Method uint32
	// Vars holds the arguments followed by the locals.
	Vars []lvmheap.Value
}

func (f *Frame) getVar(i uint32) (lvmheap.Value, error) {
	if int(i) >= len(f.Vars) {
		return lvmheap.Value{}, ErrBadVar{Index: i, Len: len(f.Vars)}
	}
	return f.Vars[i], nil
}

func (f *Frame) setVar(i uint32, v lvmheap.Value) error {
	if int(i) >= len(f.Vars) {
		return ErrBadVar{Index: i, Len: len(f.Vars)}
	}
	f.Vars[i] = v
	return nil
}
