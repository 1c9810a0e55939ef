// package lvmcmd implements the litenvm command line tool.
package lvmcmd

import (
	"context"
	"strconv"

	"github.com/fatih/color"
	"go.brendoncarroll.net/star"
	"go.brendoncarroll.net/stdctx/logctx"

	"litenvm.org/litenvm"
)

func Root() star.Command {
	return root
}

var root = star.NewDir(star.Metadata{
	Short: "LitenVM object oriented bytecode VM",
}, map[star.Symbol]star.Command{
	"run":    runCmd,
	"print":  printCmd,
	"verify": verifyCmd,
	"demo":   demoCmd,

	"version": versionCmd,
})

var versionCmd = star.Command{
	Metadata: star.Metadata{
		Short: "print the version",
	},
	F: func(c star.Context) error {
		c.Printf("litenvm %s\n", litenvm.Version)
		return nil
	},
}

var ConfigParam = star.Param[Config]{
	Name:    "config",
	Default: star.Ptr(""),
	Parse:   LoadConfig,
}

var MaxStepsParam = star.Param[uint64]{
	Name:    "max-steps",
	Default: star.Ptr("0"),
	Parse: func(x string) (uint64, error) {
		return strconv.ParseUint(x, 10, 64)
	},
}

var LogLevelParam = star.Param[string]{
	Name:    "log-level",
	Default: star.Ptr(""),
	Parse:   star.ParseString,
}

var fileParam = star.Param[string]{
	Name:  "file",
	Parse: star.ParseString,
}

var filesParam = star.Param[string]{
	Name:     "file",
	Repeated: true,
	Parse:    star.ParseString,
}

// loadConfig returns the config file with the flags applied on top.
// The command must declare ConfigParam and LogLevelParam.
func loadConfig(c star.Context) Config {
	cfg := ConfigParam.Load(c)
	if lvl := LogLevelParam.Load(c); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg
}

// withLogger returns ctx carrying a logger for cfg.
// The returned function flushes the logger.
func withLogger(ctx context.Context, cfg Config) (context.Context, func(), error) {
	l, err := cfg.Logger()
	if err != nil {
		return nil, nil, err
	}
	return logctx.NewContext(ctx, l), func() { _ = l.Sync() }, nil
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	faultColor  = color.New(color.FgRed, color.Bold)
	okColor     = color.New(color.FgGreen)
)
