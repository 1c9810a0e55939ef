package lvm1

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/exp/maps"

	"litenvm.org/litenvm/lvmheap"
	"litenvm.org/litenvm/spec"
)

// Env is the part of the VM available to native method bodies.
type Env struct {
	Heap    *lvmheap.Heap
	Console io.Writer
}

// IntrinsicFunc is the native body of an intrinsic method.
// args holds the arguments in declaration order, receiver first.
// The returned values are pushed onto the operand stack in order.
type IntrinsicFunc = func(env Env, args []lvmheap.Value) ([]lvmheap.Value, error)

// DefaultIntrinsics returns a new map with the bodies of the built in methods.
func DefaultIntrinsics() map[uint32]IntrinsicFunc {
	return maps.Clone(defaultIntrinsics)
}

var defaultIntrinsics = map[uint32]IntrinsicFunc{
	spec.MethodConsolePrintln: func(env Env, args []lvmheap.Value) ([]lvmheap.Value, error) {
		text, err := Display(env.Heap, args[1])
		if err != nil {
			return nil, err
		}
		_, err = io.WriteString(env.Console, text+"\n")
		return nil, err
	},
	spec.MethodStringBuilderAppendString: func(env Env, args []lvmheap.Value) ([]lvmheap.Value, error) {
		sb, err := argRef(args[0])
		if err != nil {
			return nil, err
		}
		s, err := argRef(args[1])
		if err != nil {
			return nil, err
		}
		return nil, env.Heap.AppendString(sb, s)
	},
	spec.MethodStringBuilderAppendInt: func(env Env, args []lvmheap.Value) ([]lvmheap.Value, error) {
		sb, err := argRef(args[0])
		if err != nil {
			return nil, err
		}
		x, err := argInt(args[1])
		if err != nil {
			return nil, err
		}
		return nil, env.Heap.AppendInt(sb, x)
	},
	spec.MethodStringBuilderAppendBool: func(env Env, args []lvmheap.Value) ([]lvmheap.Value, error) {
		sb, err := argRef(args[0])
		if err != nil {
			return nil, err
		}
		x, err := argInt(args[1])
		if err != nil {
			return nil, err
		}
		return nil, env.Heap.AppendBool(sb, x != 0)
	},
	spec.MethodStringBuilderToString: func(env Env, args []lvmheap.Value) ([]lvmheap.Value, error) {
		sb, err := argRef(args[0])
		if err != nil {
			return nil, err
		}
		s, err := env.Heap.BuilderString(sb)
		if err != nil {
			return nil, err
		}
		return []lvmheap.Value{lvmheap.RefValue(s)}, nil
	},
}

// Display returns the text println writes for v.
// Integers are written in decimal, Strings and StringBuilders as their text.
func Display(h *lvmheap.Heap, v lvmheap.Value) (string, error) {
	if x, ok := v.AsInt(); ok {
		return strconv.FormatInt(int64(x), 10), nil
	}
	ref, _ := v.AsRef()
	class, err := h.Class(ref)
	if err != nil {
		return "", err
	}
	switch class {
	case spec.ClassString:
		return h.Text(ref)
	case spec.ClassStringBuilder:
		return h.BuilderText(ref)
	default:
		return fmt.Sprintf("<object #%d %v>", class, ref), nil
	}
}

func argRef(v lvmheap.Value) (lvmheap.Ref, error) {
	ref, ok := v.AsRef()
	if !ok {
		return lvmheap.Ref{}, ErrTypeMismatch{Op: spec.Call, Want: lvmheap.KindRef, Have: v}
	}
	return ref, nil
}

func argInt(v lvmheap.Value) (int32, error) {
	x, ok := v.AsInt()
	if !ok {
		return 0, ErrTypeMismatch{Op: spec.Call, Want: lvmheap.KindInt, Have: v}
	}
	return x, nil
}
