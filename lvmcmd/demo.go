package lvmcmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.brendoncarroll.net/star"

	"litenvm.org/litenvm"
	"litenvm.org/litenvm/lvmfile"
	"litenvm.org/litenvm/lvmtests"
)

var demoCmd = star.Command{
	Metadata: star.Metadata{
		Short: "write one of the sample programs to a file. " +
			"samples: " + strings.Join(lvmtests.Names(), ", "),
	},
	Pos: []star.IParam{demoNameParam, outParam},
	F: func(c star.Context) error {
		return WriteDemo(c.StdOut, demoNameParam.Load(c), outParam.Load(c))
	},
}

var demoNameParam = star.Param[string]{
	Name:  "name",
	Parse: star.ParseString,
}

var outParam = star.Param[string]{
	Name:  "out",
	Parse: star.ParseString,
}

// WriteDemo encodes the sample program called name to the file at p.
// If p has no extension, litenvm.DefaultExtension is added.
func WriteDemo(out io.Writer, name, p string) error {
	sample, err := lvmtests.Get(name)
	if err != nil {
		return err
	}
	if filepath.Ext(p) == "" {
		p += litenvm.DefaultExtension
	}
	prog := &lvmfile.Program{Pool: sample.Pool, Code: sample.Code}
	if err := lvmfile.WriteFile(p, prog); err != nil {
		return err
	}
	fp, err := prog.Fingerprint()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "wrote %s to %s (%s)\n", name, p, fp.Short())
	return err
}
