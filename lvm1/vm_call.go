package lvm1

import (
	"fmt"

	"litenvm.org/litenvm/internal/stack"
	"litenvm.org/litenvm/lvmheap"
	"litenvm.org/litenvm/lvmpool"
	"litenvm.org/litenvm/spec"
)

// call invokes the method at index.
//
// Methods declared on a class are dispatched on the runtime class of the receiver,
// which is the first of the method's arguments on the stack.
// Free functions and methods without arguments are invoked directly.
func (vm *VM) call(index uint32) {
	m, err := vm.pool.Method(index)
	if err != nil {
		vm.fail(err)
		return
	}
	target := index
	if !m.IsFree() && m.Args > 0 {
		recv, err := vm.stack.Peek(int(m.Args - 1))
		if err != nil {
			vm.fail(fmt.Errorf("receiver of %s: %w", m.Name, err))
			return
		}
		if target, err = vm.resolve(recv, m); err != nil {
			vm.fail(err)
			return
		}
		if m, err = vm.pool.Method(target); err != nil {
			vm.fail(err)
			return
		}
	}
	if spec.IsIntrinsic(target) {
		vm.callNative(target, m)
		return
	}
	vm.invoke(target, m)
}

// popArgs pops n arguments, the last pushed becomes the last element.
func (vm *VM) popArgs(vars []lvmheap.Value, n uint32) bool {
	if vm.stack.Len() < int(n) {
		vm.fail(fmt.Errorf("need %d arguments, have %d: %w", n, vm.stack.Len(), stack.ErrUnderflow))
		return false
	}
	for i := int(n) - 1; i >= 0; i-- {
		vars[i], _ = vm.stack.Pop()
	}
	return true
}

// invoke pushes a frame for m and jumps to its code.
func (vm *VM) invoke(index uint32, m *lvmpool.Method) {
	if vm.cfg.MaxCallDepth > 0 && vm.calls.Len() >= vm.cfg.MaxCallDepth {
		vm.fail(ErrCallDepth{Depth: vm.cfg.MaxCallDepth})
		return
	}
	if int(m.Address) >= len(vm.code) {
		vm.fail(ErrPCOutOfRange{PC: m.Address, Len: len(vm.code)})
		return
	}
	if !vm.checkFrame(m, m.Vars()) {
		return
	}
	vars := make([]lvmheap.Value, m.Vars())
	if !vm.popArgs(vars, m.Args) {
		return
	}
	vm.calls.Push(Frame{
		ReturnAddress: vm.pc + 1,
		Method:        index,
		Vars:          vars,
	})
	vm.pc = m.Address
}

// callNative runs the native body of an intrinsic method in place of a frame.
func (vm *VM) callNative(index uint32, m *lvmpool.Method) {
	fn, ok := vm.cfg.Intrinsics[index]
	if !ok {
		vm.fail(ErrMethodNotFound{Class: vm.className(m.Class), Method: m.Name})
		return
	}
	if !vm.checkFrame(m, uint64(m.Args)) {
		return
	}
	args := make([]lvmheap.Value, m.Args)
	if !vm.popArgs(args, m.Args) {
		return
	}
	out, err := fn(Env{Heap: vm.heap, Console: vm.cfg.Console}, args)
	if err != nil {
		vm.fail(fmt.Errorf("%s: %w", m.Name, err))
		return
	}
	for _, v := range out {
		vm.push(v)
	}
	vm.pc++
}

func (vm *VM) checkFrame(m *lvmpool.Method, vars uint64) bool {
	if vars > uint64(vm.cfg.MaxFrameVars) {
		vm.fail(ErrFrameTooLarge{Method: m.Name, Vars: vars, Max: vm.cfg.MaxFrameVars})
		return false
	}
	return true
}

// ret pops the current frame and continues at its return address.
// Returning from the outermost frame halts the VM.
func (vm *VM) ret() {
	f, err := vm.calls.Pop()
	if err != nil {
		vm.fail(fmt.Errorf("return without frame: %w", err))
		return
	}
	vm.pc = f.ReturnAddress
	if vm.calls.Len() == 0 {
		vm.halted = true
	}
}

func (vm *VM) className(index uint32) string {
	if c, err := vm.pool.Class(index); err == nil {
		return c.Name
	}
	return fmt.Sprintf("#%d", index)
}
