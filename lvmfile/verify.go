package lvmfile

import (
	"errors"
	"fmt"
	"slices"

	"litenvm.org/litenvm/lvmpool"
	"litenvm.org/litenvm/spec"
)

// Problem is a single error found by Verify.
type Problem struct {
	// Where is "#i" for a pool entry or "@addr" for an instruction.
	Where string
	Err   error
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s: %v", p.Where, p.Err)
}

func (p Problem) Unwrap() error {
	return p.Err
}

// Verify checks a program without running it.
// The vtables are computed, and every operand is checked against the pool and the code.
// Variable operands are checked against the method whose code contains the instruction.
// All problems found are returned, joined.
func Verify(p *Program) error {
	var errs []error
	add := func(where string, err error) {
		errs = append(errs, Problem{Where: where, Err: err})
	}
	if err := p.Pool.ComputeVTables(); err != nil {
		add("pool", err)
	}
	codeLen := uint32(len(p.Code))
	var methods []*lvmpool.Method
	for i, ent := range p.Pool.Entries() {
		where := fmt.Sprintf("#%d", i)
		switch x := ent.(type) {
		case *lvmpool.Class:
			if x.Fields > spec.MaxFields {
				add(where, fmt.Errorf("class %s: %d fields, the limit is %d", x.Name, x.Fields, spec.MaxFields))
			}
		case *lvmpool.Method:
			if x.Vars() > spec.MaxVars {
				add(where, fmt.Errorf("method %s: %d args + %d locals, the limit is %d", x.Name, x.Args, x.Locals, spec.MaxVars))
				continue
			}
			if x.Address >= codeLen {
				add(where, fmt.Errorf("method %s: address %d out of range (len=%d)", x.Name, x.Address, codeLen))
				continue
			}
			methods = append(methods, x)
		case *lvmpool.Field:
			c, err := p.Pool.Class(x.Class)
			if err != nil {
				add(where, err)
				continue
			}
			if x.Index >= c.Fields {
				add(where, fmt.Errorf("field %s: index %d, class %s declares %d fields", x.Name, x.Index, c.Name, c.Fields))
			}
		}
	}
	slices.SortStableFunc(methods, func(a, b *lvmpool.Method) int {
		return int(a.Address) - int(b.Address)
	})

	for addr, ix := range p.Code {
		where := fmt.Sprintf("@%d", addr)
		info, ok := ix.Op.Info()
		if !ok {
			add(where, fmt.Errorf("unknown opcode %v", ix.Op))
			continue
		}
		var err error
		switch info.Operand {
		case spec.OperandAddress:
			if ix.Operand >= codeLen {
				err = fmt.Errorf("%v: target out of range (len=%d)", ix, codeLen)
			}
		case spec.OperandClass:
			_, err = p.Pool.Class(ix.Operand)
		case spec.OperandField:
			_, err = p.Pool.Field(ix.Operand)
		case spec.OperandMethod:
			_, err = p.Pool.Method(ix.Operand)
		case spec.OperandString:
			_, err = p.Pool.String(ix.Operand)
		case spec.OperandVar:
			if m := enclosing(methods, uint32(addr)); m != nil && uint64(ix.Operand) >= m.Vars() {
				err = fmt.Errorf("%v: method %s has %d vars", ix, m.Name, m.Vars())
			}
		}
		if err != nil {
			add(where, err)
		}
	}
	return errors.Join(errs...)
}

// enclosing returns the method with the highest address <= addr
func enclosing(methods []*lvmpool.Method, addr uint32) *lvmpool.Method {
	i, found := slices.BinarySearchFunc(methods, addr, func(m *lvmpool.Method, addr uint32) int {
		return int(m.Address) - int(addr)
	})
	if found {
		// several methods can share an address, take the last one
		for i+1 < len(methods) && methods[i+1].Address == addr {
			i++
		}
		return methods[i]
	}
	if i == 0 {
		return nil
	}
	return methods[i-1]
}
