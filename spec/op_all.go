package spec

import "slices"

// All returns every valid operation in ascending order.
func All() (ret []Op) {
	for i := 0; i < (1 << OpBits); i++ {
		if p := Op(i); p.Valid() {
			ret = append(ret, p)
		}
	}
	return ret
}

// AllJumps contains all the branch operations
func AllJumps() []Op {
	return []Op{Jump, JumpEq, JumpNe, JumpLt, JumpLe, JumpGt, JumpGe}
}

// AllArith contains the integer arithmetic operations
func AllArith() []Op {
	return []Op{Add, Sub, Mul, Div}
}

// IsArith returns true for Add, Sub, Mul and Div
func (o Op) IsArith() bool {
	return slices.Contains(AllArith(), o)
}
