package lvm1

import (
	"io"
	"os"

	"litenvm.org/litenvm/internal/stack"
	"litenvm.org/litenvm/spec"
)

const DefaultDispatchCacheSize = 256

// Config holds the limits and the environment of a VM.
// The zero value of each numeric field means "use the default" or "no limit".
type Config struct {
	// MinStackCapacity is the capacity the operand and call stacks never shrink below.
	MinStackCapacity int
	// MaxCallDepth bounds the number of frames.  0 is unbounded.
	MaxCallDepth int
	// MaxObjects bounds the number of live heap objects.  0 is unbounded.
	MaxObjects int
	// MaxObjectFields bounds the number of fields of a single object.
	// 0 means spec.MaxFields.
	MaxObjectFields int
	// MaxFrameVars bounds the arguments plus locals of a single frame.
	// 0 means spec.MaxVars.
	MaxFrameVars int
	// DispatchCacheSize is the number of resolved (class, method name) pairs kept by the VM.
	DispatchCacheSize int
	// MaxSteps bounds RunToCompletion.  0 is unbounded.
	MaxSteps uint64

	// Console receives the output of Console.println.
	Console io.Writer
	// Intrinsics maps reserved method indices to native bodies.
	// If nil, DefaultIntrinsics is used.
	Intrinsics map[uint32]IntrinsicFunc
}

func DefaultConfig() Config {
	return Config{
		MinStackCapacity:  stack.DefaultMinCap,
		MaxObjectFields:   spec.MaxFields,
		MaxFrameVars:      spec.MaxVars,
		DispatchCacheSize: DefaultDispatchCacheSize,
		Console:           os.Stdout,
	}
}

func (c Config) withDefaults() Config {
	if c.MinStackCapacity <= 0 {
		c.MinStackCapacity = stack.DefaultMinCap
	}
	if c.MaxObjectFields <= 0 {
		c.MaxObjectFields = spec.MaxFields
	}
	if c.MaxFrameVars <= 0 {
		c.MaxFrameVars = spec.MaxVars
	}
	if c.DispatchCacheSize <= 0 {
		c.DispatchCacheSize = DefaultDispatchCacheSize
	}
	if c.Console == nil {
		c.Console = io.Discard
	}
	if c.Intrinsics == nil {
		c.Intrinsics = DefaultIntrinsics()
	}
	return c
}
