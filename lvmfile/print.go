package lvmfile

import (
	"fmt"
	"io"
	"text/tabwriter"

	"litenvm.org/litenvm/spec"
)

// Print writes a human readable listing of the constant pool and the instruction stream.
func Print(w io.Writer, p *Program) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Constant pool:")
	for i, ent := range p.Pool.Entries() {
		fmt.Fprintf(tw, "#%d\t%v\t%v\n", i, ent.Kind(), ent)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Instruction stream:")
	for addr, ix := range p.Code {
		fmt.Fprintf(tw, "%d\t%v\t%s\n", addr, ix.Op, operandString(ix))
	}
	return tw.Flush()
}

func operandString(ix spec.Instruction) string {
	info, ok := ix.Op.Info()
	switch {
	case !ok:
		return fmt.Sprint(ix.Operand)
	case info.Operand == spec.OperandNone:
		return ""
	case info.Operand == spec.OperandInt:
		return fmt.Sprint(int32(ix.Operand))
	case spec.IsIntrinsic(ix.Operand):
		return fmt.Sprintf("%d (intrinsic)", ix.Operand)
	default:
		return fmt.Sprint(ix.Operand)
	}
}
