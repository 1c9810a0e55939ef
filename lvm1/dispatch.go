package lvm1

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"

	"litenvm.org/litenvm/lvmheap"
	"litenvm.org/litenvm/lvmpool"
	"litenvm.org/litenvm/spec"
)

type dispatchKey struct {
	class uint32
	name  string
}

func newDispatchCache(size int) *simplelru.LRU[dispatchKey, uint32] {
	c, err := simplelru.NewLRU[dispatchKey, uint32](size, nil)
	if err != nil {
		panic(err)
	}
	return c
}

// resolve returns the index of the method that a call to m on recv runs.
// The lookup is by name in the vtable of the receiver's runtime class,
// so it finds the most derived override.
func (vm *VM) resolve(recv lvmheap.Value, m *lvmpool.Method) (uint32, error) {
	ref, ok := recv.AsRef()
	if !ok {
		return 0, ErrTypeMismatch{Op: spec.Call, Want: lvmheap.KindRef, Have: recv}
	}
	classIdx, err := vm.heap.Class(ref)
	if err != nil {
		return 0, err
	}
	key := dispatchKey{class: classIdx, name: m.Name}
	if idx, ok := vm.dispatch.Get(key); ok {
		return idx, nil
	}
	class, err := vm.pool.Class(classIdx)
	if err != nil {
		return 0, err
	}
	if class.VTable == nil {
		return 0, ErrMethodNotFound{Class: class.Name, Method: m.Name}
	}
	idx, ok := class.VTable.Get(m.Name)
	if !ok {
		return 0, ErrMethodNotFound{Class: class.Name, Method: m.Name}
	}
	vm.dispatch.Add(key, idx)
	return idx, nil
}
