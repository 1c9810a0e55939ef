package lvmcmd

import (
	"context"
	"fmt"
	"io"

	"go.brendoncarroll.net/star"

	"litenvm.org/litenvm/lvmfile"
)

var printCmd = star.Command{
	Metadata: star.Metadata{
		Short: "disassemble a program file",
	},
	Flags: []star.IParam{ConfigParam, LogLevelParam},
	Pos:   []star.IParam{fileParam},
	F: func(c star.Context) error {
		cfg := loadConfig(c)
		ctx, flush, err := withLogger(c.Context, cfg)
		if err != nil {
			return err
		}
		defer flush()
		return Print(ctx, c.StdOut, fileParam.Load(c))
	},
}

// Print writes the fingerprint and the listing of the program at p.
func Print(ctx context.Context, out io.Writer, p string) error {
	prog, err := lvmfile.Load(ctx, p)
	if err != nil {
		return err
	}
	fp, err := prog.Fingerprint()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", headerColor.Sprint("FINGERPRINT"), fp)
	fmt.Fprintf(out, "%s %d entries, %d instructions\n\n", headerColor.Sprint("SIZE"), prog.Pool.Len(), len(prog.Code))
	return lvmfile.Print(out, prog)
}
