package lvmcmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"litenvm.org/litenvm/lvm1"
)

// Config is the contents of a litenvm.toml file.
// Zero values mean "use the VM's default".
type Config struct {
	MinStackCapacity  int    `toml:"min_stack_capacity"`
	MaxCallDepth      int    `toml:"max_call_depth"`
	MaxObjects        int    `toml:"max_objects"`
	MaxObjectFields   int    `toml:"max_object_fields"`
	MaxFrameVars      int    `toml:"max_frame_vars"`
	DispatchCacheSize int    `toml:"dispatch_cache_size"`
	MaxSteps          uint64 `toml:"max_steps"`
	LogLevel          string `toml:"log_level"`
}

func DefaultConfig() Config {
	d := lvm1.DefaultConfig()
	return Config{
		MinStackCapacity:  d.MinStackCapacity,
		MaxObjectFields:   d.MaxObjectFields,
		MaxFrameVars:      d.MaxFrameVars,
		DispatchCacheSize: d.DispatchCacheSize,
		LogLevel:          "warn",
	}
}

// ParseConfig parses data on top of DefaultConfig.
// Unknown keys are an error.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	if _, err := zap.ParseAtomicLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("log_level: %w", err)
	}
	if cfg.MinStackCapacity < 0 || cfg.MaxCallDepth < 0 || cfg.MaxObjects < 0 ||
		cfg.MaxObjectFields < 0 || cfg.MaxFrameVars < 0 || cfg.DispatchCacheSize < 0 {
		return Config{}, fmt.Errorf("limits must not be negative")
	}
	return cfg, nil
}

// LoadConfig reads the config file at p.
// The empty path returns DefaultConfig.
func LoadConfig(p string) (Config, error) {
	if p == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", p, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse error in %s: %w", p, err)
	}
	return cfg, nil
}

// VMConfig returns the VM configuration, with console receiving Console.println output.
func (c Config) VMConfig(console io.Writer) lvm1.Config {
	vcfg := lvm1.DefaultConfig()
	if c.MinStackCapacity > 0 {
		vcfg.MinStackCapacity = c.MinStackCapacity
	}
	if c.DispatchCacheSize > 0 {
		vcfg.DispatchCacheSize = c.DispatchCacheSize
	}
	if c.MaxObjectFields > 0 {
		vcfg.MaxObjectFields = c.MaxObjectFields
	}
	if c.MaxFrameVars > 0 {
		vcfg.MaxFrameVars = c.MaxFrameVars
	}
	vcfg.MaxCallDepth = c.MaxCallDepth
	vcfg.MaxObjects = c.MaxObjects
	vcfg.MaxSteps = c.MaxSteps
	vcfg.Console = console
	return vcfg
}

// Logger builds a logger writing to stderr at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewDevelopmentConfig()
	if lvl.Level() > zap.DebugLevel {
		zcfg = zap.NewProductionConfig()
		zcfg.Encoding = "console"
	}
	zcfg.Level = lvl
	return zcfg.Build()
}
