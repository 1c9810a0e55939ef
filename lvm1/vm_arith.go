package lvm1

import (
	"litenvm.org/litenvm/lvmheap"
	"litenvm.org/litenvm/spec"
)

func (vm *VM) popInts(op spec.Op) (left, right int32, ok bool) {
	l, r, ok := vm.pop2()
	if !ok {
		return 0, 0, false
	}
	if left, ok = l.AsInt(); !ok {
		vm.fail(ErrTypeMismatch{Op: op, Want: lvmheap.KindInt, Have: l})
		return 0, 0, false
	}
	if right, ok = r.AsInt(); !ok {
		vm.fail(ErrTypeMismatch{Op: op, Want: lvmheap.KindInt, Have: r})
		return 0, 0, false
	}
	return left, right, true
}

// arith pops right, then left, and pushes left op right.
// Overflow wraps around.
func (vm *VM) arith(op spec.Op) {
	l, r, ok := vm.popInts(op)
	if !ok {
		return
	}
	var out int32
	switch op {
	case spec.Add:
		out = l + r
	case spec.Sub:
		out = l - r
	case spec.Mul:
		out = l * r
	case spec.Div:
		if r == 0 {
			vm.fail(ErrDivideByZero)
			return
		}
		out = l / r
	}
	vm.push(lvmheap.Int(out))
}

// equal compares the two values on top of the stack, including their kind.
func (vm *VM) equal(op spec.Op) {
	l, r, ok := vm.pop2()
	if !ok {
		return
	}
	eq := l.Equal(r)
	if op == spec.JumpNe {
		eq = !eq
	}
	vm.push(lvmheap.Bool(eq))
}

func (vm *VM) compare(op spec.Op) {
	l, r, ok := vm.popInts(op)
	if !ok {
		return
	}
	var out bool
	switch op {
	case spec.JumpLt:
		out = l < r
	case spec.JumpLe:
		out = l <= r
	case spec.JumpGt:
		out = l > r
	case spec.JumpGe:
		out = l >= r
	}
	vm.push(lvmheap.Bool(out))
}
