// Package lvm1 implements the LitenVM executor.
//
// A VM runs a program made of a constant pool and an instruction stream on an operand stack,
// with a call stack of frames and a heap of objects.
// Execution starts at address 0, which is expected to CALL the entry method,
// and ends when the outermost frame returns.
package lvm1

import (
	"context"
	"fmt"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"litenvm.org/litenvm/internal/stack"
	"litenvm.org/litenvm/lvmheap"
	"litenvm.org/litenvm/lvmpool"
	"litenvm.org/litenvm/spec"
)

// ctxCheckInterval is the number of steps between checks of the context in Run
const ctxCheckInterval = 1024

type VM struct {
	cfg  Config
	pool *lvmpool.Pool
	code []spec.Instruction

	pc     uint32
	stack  *stack.Stack[lvmheap.Value]
	calls  *stack.Stack[Frame]
	heap   *lvmheap.Heap
	steps  uint64
	halted bool
	err    error

	dispatch *simplelru.LRU[dispatchKey, uint32]
}

// New creates a VM to run code against pool.
// The vtables of the pool are computed if that has not been done yet.
func New(pool *lvmpool.Pool, code []spec.Instruction, cfg Config) (*VM, error) {
	if !pool.Computed() {
		if err := pool.ComputeVTables(); err != nil {
			return nil, fmt.Errorf("loading constant pool: %w", err)
		}
	}
	cfg = cfg.withDefaults()
	return &VM{
		cfg:  cfg,
		pool: pool,
		code: code,

		stack:    stack.New[lvmheap.Value](cfg.MinStackCapacity),
		calls:    stack.New[Frame](cfg.MinStackCapacity),
		heap:     lvmheap.NewHeap(cfg.MaxObjects, cfg.MaxObjectFields),
		dispatch: newDispatchCache(cfg.DispatchCacheSize),
	}, nil
}

// Reset puts the VM back into its initial state, ready to run the program again.
func (vm *VM) Reset() {
	vm.pc = 0
	vm.stack.Reset()
	vm.calls.Reset()
	vm.heap.Reset()
	vm.steps = 0
	vm.halted = false
	vm.err = nil
}

// Close releases the heap.
func (vm *VM) Close() {
	vm.heap.Reset()
	vm.stack.Reset()
	vm.calls.Reset()
}

func (vm *VM) Pool() *lvmpool.Pool {
	return vm.pool
}

func (vm *VM) Code() []spec.Instruction {
	return vm.code
}

func (vm *VM) Heap() *lvmheap.Heap {
	return vm.heap
}

// Stack returns a copy of the operand stack, bottom first.
func (vm *VM) Stack() []lvmheap.Value {
	return vm.stack.Slice()
}

// Frames returns a copy of the call stack, outermost frame first.
func (vm *VM) Frames() []Frame {
	return vm.calls.Slice()
}

func (vm *VM) PC() uint32 {
	return vm.pc
}

// Steps returns the number of instructions executed.
func (vm *VM) Steps() uint64 {
	return vm.steps
}

// Halted returns true once the outermost frame has returned.
func (vm *VM) Halted() bool {
	return vm.halted
}

// Err returns the Fault which stopped the VM, or nil.
func (vm *VM) Err() error {
	return vm.err
}

// Fault returns the Fault which stopped the VM, or nil.
func (vm *VM) Fault() *Fault {
	f, _ := vm.err.(*Fault)
	return f
}

func (vm *VM) isAlive() bool {
	return !vm.halted && vm.err == nil
}

// Run executes the VM for a maximum of maxSteps.
// The number of steps taken is returned.
// If Run returns 0, then nothing happened and the machine has halted or faulted.
func (vm *VM) Run(ctx context.Context, maxSteps uint64) uint64 {
	start := vm.steps
	wasAlive := vm.isAlive()
	for i := uint64(0); i < maxSteps && vm.isAlive(); i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				vm.fail(err)
				break
			}
		}
		vm.Step()
	}
	steps := vm.steps - start
	if wasAlive {
		switch {
		case vm.err != nil:
			logctx.Error(ctx, "vm fault", zap.Error(vm.err), zap.Uint64("steps", vm.steps))
		case vm.halted:
			logctx.Debug(ctx, "vm halted", zap.Uint64("steps", vm.steps), zap.Int("stack", vm.stack.Len()))
		}
	}
	return steps
}

// RunToCompletion steps the VM until the outermost frame returns, or it faults.
// If Config.MaxSteps is set, the VM faults once that many steps have been executed.
func (vm *VM) RunToCompletion(ctx context.Context) error {
	for vm.isAlive() {
		budget := uint64(ctxCheckInterval)
		if vm.cfg.MaxSteps > 0 {
			if vm.steps >= vm.cfg.MaxSteps {
				vm.fail(ErrStepLimit{Steps: vm.cfg.MaxSteps})
				logctx.Error(ctx, "vm fault", zap.Error(vm.err))
				break
			}
			budget = min(budget, vm.cfg.MaxSteps-vm.steps)
		}
		if vm.Run(ctx, budget) == 0 && vm.isAlive() {
			break
		}
	}
	return vm.err
}

// Step executes a single instruction.
// It returns false if the VM has halted, either because the outermost frame
// returned or because of a fault.
func (vm *VM) Step() bool {
	if !vm.isAlive() {
		return false
	}
	if int(vm.pc) >= len(vm.code) {
		vm.fail(ErrPCOutOfRange{PC: vm.pc, Len: len(vm.code)})
		return false
	}
	ix := vm.code[vm.pc]
	vm.steps++
	if info, ok := ix.Op.Info(); ok && info.InDegree > vm.stack.Len() {
		vm.fail(fmt.Errorf("%v needs %d operands, have %d: %w", ix.Op, info.InDegree, vm.stack.Len(), stack.ErrUnderflow))
		return false
	}
	vm.exec(ix)
	if !vm.isAlive() {
		return false
	}
	switch {
	case ix.Op.IsJump():
		flag, err := vm.stack.Pop()
		if err != nil {
			vm.fail(err)
			return false
		}
		if flag.Truthy() {
			vm.pc = ix.Operand
		} else {
			vm.pc++
		}
	case ix.Op.TransfersControl():
		// CALL and RETURN have set the program counter
	default:
		vm.pc++
	}
	return true
}

func (vm *VM) exec(ix spec.Instruction) {
	switch ix.Op {
	case spec.Push:
		vm.push(lvmheap.Int(int32(ix.Operand)))
	case spec.PushString:
		vm.pushString(ix.Operand)
	case spec.PushVar:
		vm.pushVar(ix.Operand)
	case spec.PushField:
		vm.pushField(ix.Operand)
	case spec.Pop:
		vm.pop()
	case spec.PopVar:
		vm.popVar(ix.Operand)
	case spec.PopField:
		vm.popField(ix.Operand)

	case spec.Add, spec.Sub, spec.Mul, spec.Div:
		vm.arith(ix.Op)

	case spec.Jump:
		vm.push(lvmheap.Int(1))
	case spec.JumpEq, spec.JumpNe:
		vm.equal(ix.Op)
	case spec.JumpLt, spec.JumpLe, spec.JumpGt, spec.JumpGe:
		vm.compare(ix.Op)

	case spec.Call:
		vm.call(ix.Operand)
	case spec.Return:
		vm.ret()

	case spec.New:
		vm.newObject(ix.Operand)
	case spec.Dup:
		vm.dup()

	default:
		vm.fail(fmt.Errorf("unknown opcode %v", ix.Op))
	}
}

// fail stops the VM with a Fault for the current instruction.
func (vm *VM) fail(err error) {
	f := &Fault{
		Kind:  classify(err),
		PC:    vm.pc,
		Cause: err,
	}
	if int(vm.pc) < len(vm.code) {
		f.Instruction = vm.code[vm.pc]
	}
	vm.err = f
}

func (vm *VM) push(v lvmheap.Value) {
	vm.stack.Push(v)
}

func (vm *VM) pop() (lvmheap.Value, bool) {
	v, err := vm.stack.Pop()
	if err != nil {
		vm.fail(err)
		return lvmheap.Value{}, false
	}
	return v, true
}

// pop2 pops the right operand, then the left.
func (vm *VM) pop2() (left, right lvmheap.Value, ok bool) {
	if vm.stack.Len() < 2 {
		vm.fail(fmt.Errorf("need 2 operands, have %d: %w", vm.stack.Len(), stack.ErrUnderflow))
		return left, right, false
	}
	right, _ = vm.stack.Pop()
	left, _ = vm.stack.Pop()
	return left, right, true
}

func (vm *VM) popRef(op spec.Op) (lvmheap.Ref, bool) {
	v, ok := vm.pop()
	if !ok {
		return lvmheap.Ref{}, false
	}
	ref, isRef := v.AsRef()
	if !isRef {
		vm.fail(ErrTypeMismatch{Op: op, Want: lvmheap.KindRef, Have: v})
		return lvmheap.Ref{}, false
	}
	return ref, true
}

// frame returns the current frame.
// The returned Frame shares its Vars with the frame on the call stack.
func (vm *VM) frame() (*Frame, bool) {
	f, err := vm.calls.Top()
	if err != nil {
		vm.fail(fmt.Errorf("no frame: %w", err))
		return nil, false
	}
	return &f, true
}

func (vm *VM) dup() {
	v, err := vm.stack.Top()
	if err != nil {
		vm.fail(err)
		return
	}
	vm.push(v)
}

func (vm *VM) pushString(index uint32) {
	lit, err := vm.pool.String(index)
	if err != nil {
		vm.fail(err)
		return
	}
	ref, err := vm.heap.NewString(lit.Value)
	if err != nil {
		vm.fail(err)
		return
	}
	vm.push(lvmheap.RefValue(ref))
}

func (vm *VM) pushVar(i uint32) {
	f, ok := vm.frame()
	if !ok {
		return
	}
	v, err := f.getVar(i)
	if err != nil {
		vm.fail(err)
		return
	}
	vm.push(v)
}

func (vm *VM) popVar(i uint32) {
	f, ok := vm.frame()
	if !ok {
		return
	}
	if int(i) >= len(f.Vars) {
		vm.fail(ErrBadVar{Index: i, Len: len(f.Vars)})
		return
	}
	v, ok := vm.pop()
	if !ok {
		return
	}
	if err := f.setVar(i, v); err != nil {
		vm.fail(err)
	}
}

func (vm *VM) pushField(index uint32) {
	field, err := vm.pool.Field(index)
	if err != nil {
		vm.fail(err)
		return
	}
	ref, ok := vm.popRef(spec.PushField)
	if !ok {
		return
	}
	slot, err := vm.heap.Field(ref, field.Index)
	if err != nil {
		vm.fail(err)
		return
	}
	vm.push(*slot)
}

func (vm *VM) popField(index uint32) {
	field, err := vm.pool.Field(index)
	if err != nil {
		vm.fail(err)
		return
	}
	v, ok := vm.pop()
	if !ok {
		return
	}
	ref, ok := vm.popRef(spec.PopField)
	if !ok {
		return
	}
	slot, err := vm.heap.Field(ref, field.Index)
	if err != nil {
		vm.fail(err)
		return
	}
	*slot = v
}

func (vm *VM) newObject(index uint32) {
	class, err := vm.pool.Class(index)
	if err != nil {
		vm.fail(err)
		return
	}
	var ref lvmheap.Ref
	switch index {
	case spec.ClassString:
		ref, err = vm.heap.NewString("")
	case spec.ClassStringBuilder:
		ref, err = vm.heap.NewBuilder()
	default:
		ref, err = vm.heap.New(index, class.Fields)
	}
	if err != nil {
		vm.fail(err)
		return
	}
	vm.push(lvmheap.RefValue(ref))
}
