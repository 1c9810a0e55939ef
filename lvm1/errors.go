package lvm1

import (
	"context"
	"errors"
	"fmt"

	"litenvm.org/litenvm/internal/stack"
	"litenvm.org/litenvm/lvmheap"
	"litenvm.org/litenvm/lvmpool"
	"litenvm.org/litenvm/spec"
)

var ErrDivideByZero = errors.New("integer division by zero")

// ErrMethodNotFound is returned when a receiver's class has no method with the called name.
type ErrMethodNotFound struct {
	Class  string
	Method string
}

func (e ErrMethodNotFound) Error() string {
	return fmt.Sprintf("class %s has no method %q", e.Class, e.Method)
}

// ErrTypeMismatch is returned when an instruction gets a value of the wrong kind.
type ErrTypeMismatch struct {
	Op   spec.Op
	Want lvmheap.ValueKind
	Have lvmheap.Value
}

func (e ErrTypeMismatch) Error() string {
	return fmt.Sprintf("%v: need %v, have %v (%v)", e.Op, e.Want, e.Have.Kind(), e.Have)
}

// ErrBadVar is returned for a variable index outside of the current frame.
type ErrBadVar struct {
	Index uint32
	Len   int
}

func (e ErrBadVar) Error() string {
	return fmt.Sprintf("frame has %d vars, no var %d", e.Len, e.Index)
}

// ErrPCOutOfRange is returned when control reaches an address outside of the program.
type ErrPCOutOfRange struct {
	PC  uint32
	Len int
}

func (e ErrPCOutOfRange) Error() string {
	return fmt.Sprintf("program counter %d out of range (len=%d)", e.PC, e.Len)
}

// ErrCallDepth is returned when a call would exceed Config.MaxCallDepth
type ErrCallDepth struct {
	Depth int
}

func (e ErrCallDepth) Error() string {
	return fmt.Sprintf("call depth limit %d exceeded", e.Depth)
}

// ErrFrameTooLarge is returned when a method declares more vars than Config.MaxFrameVars
type ErrFrameTooLarge struct {
	Method string
	Vars   uint64
	Max    int
}

func (e ErrFrameTooLarge) Error() string {
	return fmt.Sprintf("method %s needs %d vars, the limit is %d", e.Method, e.Vars, e.Max)
}

// ErrStepLimit is returned by RunToCompletion when Config.MaxSteps is exhausted.
type ErrStepLimit struct {
	Steps uint64
}

func (e ErrStepLimit) Error() string {
	return fmt.Sprintf("step limit %d reached", e.Steps)
}

type FaultKind uint8

const (
	FaultUnknown FaultKind = iota
	FaultStackUnderflow
	FaultBadPoolRef
	FaultArithmetic
	FaultDispatch
	FaultAllocation
	FaultTypeMismatch
	FaultBadAddress
	FaultCancelled
)

func (k FaultKind) String() string {
	switch k {
	case FaultStackUnderflow:
		return "stack underflow"
	case FaultBadPoolRef:
		return "bad constant pool reference"
	case FaultArithmetic:
		return "arithmetic"
	case FaultDispatch:
		return "dispatch"
	case FaultAllocation:
		return "allocation"
	case FaultTypeMismatch:
		return "type mismatch"
	case FaultBadAddress:
		return "bad address"
	case FaultCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Fault is the error which stops a VM.
type Fault struct {
	Kind        FaultKind
	PC          uint32
	Instruction spec.Instruction
	Cause       error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%v fault at %d (%v): %v", f.Kind, f.PC, f.Instruction, f.Cause)
}

func (f *Fault) Unwrap() error {
	return f.Cause
}

// classify returns the FaultKind for an error produced while executing an instruction.
func classify(err error) FaultKind {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &ErrStepLimit{}):
		return FaultCancelled
	case errors.Is(err, stack.ErrUnderflow):
		return FaultStackUnderflow
	case errors.Is(err, ErrDivideByZero):
		return FaultArithmetic
	case errors.As(err, &ErrMethodNotFound{}):
		return FaultDispatch
	case errors.Is(err, lvmheap.ErrOutOfMemory),
		errors.Is(err, lvmpool.ErrVTableFull),
		errors.As(err, &ErrCallDepth{}),
		errors.As(err, &ErrFrameTooLarge{}):
		return FaultAllocation
	case errors.As(err, &lvmpool.ErrBadIndex{}),
		errors.As(err, &lvmpool.ErrWrongKind{}),
		errors.As(err, &lvmpool.ErrOrdering{}),
		errors.As(err, &lvmheap.ErrBadField{}),
		errors.As(err, &ErrBadVar{}):
		return FaultBadPoolRef
	case errors.As(err, &ErrTypeMismatch{}),
		errors.As(err, &lvmheap.ErrDanglingRef{}),
		errors.As(err, &lvmheap.ErrNotString{}):
		return FaultTypeMismatch
	case errors.As(err, &ErrPCOutOfRange{}):
		return FaultBadAddress
	default:
		return FaultUnknown
	}
}
