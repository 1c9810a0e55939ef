package spec

import "fmt"

// Kind is the type tag of a constant pool entry.
// It is encoded as a single byte.
type Kind uint8

const (
	KindClass = Kind(iota)
	KindField
	KindMethod
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "CLASS"
	case KindField:
		return "FIELD"
	case KindMethod:
		return "METHOD"
	case KindString:
		return "STRING"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) Valid() bool {
	return k <= KindString
}
