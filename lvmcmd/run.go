package lvmcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.brendoncarroll.net/star"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"litenvm.org/litenvm/lvm1"
	"litenvm.org/litenvm/lvmfile"
)

var runCmd = star.Command{
	Metadata: star.Metadata{
		Short: "run a program file until it returns from its entry method",
	},
	Flags: []star.IParam{ConfigParam, MaxStepsParam, LogLevelParam},
	Pos:   []star.IParam{fileParam},
	F: func(c star.Context) error {
		cfg := loadConfig(c)
		if n := MaxStepsParam.Load(c); n > 0 {
			cfg.MaxSteps = n
		}
		ctx, flush, err := withLogger(c.Context, cfg)
		if err != nil {
			return err
		}
		defer flush()
		return Run(ctx, c.StdOut, fileParam.Load(c), cfg)
	},
}

// Run loads the program at p, verifies it and runs it to completion.
// Console output goes to out, followed by a summary of the final state.
func Run(ctx context.Context, out io.Writer, p string, cfg Config) error {
	prog, err := lvmfile.Load(ctx, p)
	if err != nil {
		return err
	}
	if err := lvmfile.Verify(prog); err != nil {
		return fmt.Errorf("verifying %s: %w", p, err)
	}
	fp, err := prog.Fingerprint()
	if err != nil {
		return err
	}
	logctx.Info(ctx, "running", zap.String("path", p), zap.Stringer("fingerprint", fp))
	vm, err := lvm1.New(prog.Pool, prog.Code, cfg.VMConfig(out))
	if err != nil {
		return err
	}
	defer vm.Close()
	runErr := vm.RunToCompletion(ctx)
	if err := writeSummary(out, vm); err != nil {
		return err
	}
	return runErr
}

func writeSummary(w io.Writer, vm *lvm1.VM) error {
	var sb strings.Builder
	if f := vm.Fault(); f != nil {
		fmt.Fprintf(&sb, "%s %v at pc=%d: %v\n", faultColor.Sprint("FAULT"), f.Kind, f.PC, f.Instruction)
		fmt.Fprintf(&sb, "  %v\n", f.Cause)
	} else {
		fmt.Fprintf(&sb, "%s after %d steps\n", okColor.Sprint("HALTED"), vm.Steps())
	}
	fmt.Fprintf(&sb, "%s\n", headerColor.Sprint("STACK"))
	stack := vm.Stack()
	for i := len(stack) - 1; i >= 0; i-- {
		s, err := lvm1.Display(vm.Heap(), stack[i])
		if err != nil {
			s = stack[i].String()
		}
		fmt.Fprintf(&sb, "  %d\t%s\n", len(stack)-1-i, s)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// IsFault returns true if err was produced by a program faulting,
// as opposed to the program not loading.
func IsFault(err error) bool {
	var f *lvm1.Fault
	return errors.As(err, &f)
}
