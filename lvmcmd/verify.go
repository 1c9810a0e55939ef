package lvmcmd

import (
	"context"
	"fmt"
	"io"

	"go.brendoncarroll.net/star"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"litenvm.org/litenvm/lvmfile"
)

var verifyCmd = star.Command{
	Metadata: star.Metadata{
		Short: "check program files without running them",
	},
	Flags: []star.IParam{ConfigParam, LogLevelParam},
	Pos:   []star.IParam{filesParam},
	F: func(c star.Context) error {
		cfg := loadConfig(c)
		ctx, flush, err := withLogger(c.Context, cfg)
		if err != nil {
			return err
		}
		defer flush()
		return Verify(ctx, c.StdOut, filesParam.LoadAll(c))
	},
}

// Verify loads and checks each file concurrently.
// The result for each file is written to out in the order given.
// The error reports how many files failed.
func Verify(ctx context.Context, out io.Writer, paths []string) error {
	results := make([]error, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(8)
	for i, p := range paths {
		eg.Go(func() error {
			prog, err := lvmfile.Load(ctx, p)
			if err == nil {
				err = lvmfile.Verify(prog)
			}
			if err != nil {
				logctx.Warn(ctx, "verify failed", zap.String("path", p), zap.Error(err))
			}
			results[i] = err
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	var failed int
	for i, p := range paths {
		if err := results[i]; err != nil {
			failed++
			fmt.Fprintf(out, "%s %s\n", faultColor.Sprint("FAIL"), p)
			fmt.Fprintf(out, "  %v\n", err)
		} else {
			fmt.Fprintf(out, "%s %s\n", okColor.Sprint("OK"), p)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed verification", failed, len(paths))
	}
	return nil
}
