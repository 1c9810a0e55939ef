package spec

import "math"

// NoIndex is the constant pool index meaning "none".
// It is used for classes without a parent and for free functions.
const NoIndex = 0

// IntrinsicCount is the number of reserved constant pool indices.
const IntrinsicCount = 8

// IntrinsicBase is the lowest reserved index.
// Reserved indices never occupy storage in a loaded pool.
const IntrinsicBase = math.MaxUint32 - (IntrinsicCount - 1)

const (
	ClassString = IntrinsicBase + iota
	ClassConsole
	MethodConsolePrintln
	ClassStringBuilder
	MethodStringBuilderAppendString
	MethodStringBuilderAppendInt
	MethodStringBuilderAppendBool
	MethodStringBuilderToString
)

// IsIntrinsic returns true if index is reserved for a built in entry.
func IsIntrinsic(index uint32) bool {
	return index >= IntrinsicBase
}
