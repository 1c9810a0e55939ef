package lvmcmd

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"litenvm.org/litenvm"
	"litenvm.org/litenvm/internal/testutil"
	"litenvm.org/litenvm/lvm1"
	"litenvm.org/litenvm/lvmfile"
	"litenvm.org/litenvm/lvmtests"
	"litenvm.org/litenvm/spec"
)

func TestParseConfig(t *testing.T) {
	type testCase struct {
		Name string
		In   string
		Out  Config
		Err  bool
	}
	def := DefaultConfig()
	tcs := []testCase{
		{Name: "Empty", In: "", Out: def},
		{
			Name: "Limits",
			In: `
max_call_depth = 100
max_objects = 1000
max_steps = 5000
log_level = "debug"
`,
			Out: Config{
				MinStackCapacity:  def.MinStackCapacity,
				MaxObjectFields:   def.MaxObjectFields,
				MaxFrameVars:      def.MaxFrameVars,
				MaxCallDepth:      100,
				MaxObjects:        1000,
				DispatchCacheSize: def.DispatchCacheSize,
				MaxSteps:          5000,
				LogLevel:          "debug",
			},
		},
		{
			Name: "Stack",
			In:   "min_stack_capacity = 32\ndispatch_cache_size = 8\nmax_object_fields = 16\nmax_frame_vars = 64\n",
			Out: Config{
				MinStackCapacity:  32,
				MaxObjectFields:   16,
				MaxFrameVars:      64,
				DispatchCacheSize: 8,
				LogLevel:          def.LogLevel,
			},
		},
		{Name: "UnknownKey", In: "max_stack = 3", Err: true},
		{Name: "BadLevel", In: `log_level = "loud"`, Err: true},
		{Name: "Negative", In: "max_objects = -1", Err: true},
		{Name: "Syntax", In: "max_steps = ", Err: true},
	}
	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tc.In))
			if tc.Err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.Out, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	p := testutil.TempPath(t, "litenvm.toml")
	require.NoError(t, os.WriteFile(p, []byte("max_steps = 10\n"), 0o644))
	cfg, err = LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, uint64(10), cfg.MaxSteps)

	_, err = LoadConfig(p + ".missing")
	require.Error(t, err)
}

func TestVMConfig(t *testing.T) {
	var out bytes.Buffer
	vcfg := Config{MaxCallDepth: 7, MaxSteps: 9, MaxFrameVars: 5}.VMConfig(&out)
	require.Equal(t, 5, vcfg.MaxFrameVars)
	require.Equal(t, lvm1.DefaultConfig().MaxObjectFields, vcfg.MaxObjectFields)
	require.Equal(t, lvm1.DefaultConfig().MinStackCapacity, vcfg.MinStackCapacity)
	require.Equal(t, lvm1.DefaultConfig().DispatchCacheSize, vcfg.DispatchCacheSize)
	require.Equal(t, 7, vcfg.MaxCallDepth)
	require.Equal(t, uint64(9), vcfg.MaxSteps)
	require.Same(t, &out, vcfg.Console)
}

func TestLogger(t *testing.T) {
	for _, lvl := range []string{"", "debug", "info", "warn", "error"} {
		l, err := Config{LogLevel: lvl}.Logger()
		require.NoError(t, err, lvl)
		require.NotNil(t, l)
	}
}

func TestRunDemos(t *testing.T) {
	ctx := testutil.Context(t)
	dir := t.TempDir()
	for _, name := range lvmtests.Names() {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name+".lvm")
			var out bytes.Buffer
			require.NoError(t, WriteDemo(&out, name, p))
			require.Contains(t, out.String(), "wrote "+name)

			out.Reset()
			require.NoError(t, Run(ctx, &out, p, DefaultConfig()))
			sample, err := lvmtests.Get(name)
			require.NoError(t, err)
			require.Contains(t, out.String(), sample.Output)
			require.Contains(t, out.String(), "HALTED")
		})
	}
}

func TestRunHello(t *testing.T) {
	ctx := testutil.Context(t)
	p := testutil.TempPath(t, "hello.lvm")
	require.NoError(t, WriteDemo(&bytes.Buffer{}, "hello", p))

	var out bytes.Buffer
	require.NoError(t, Run(ctx, &out, p, DefaultConfig()))
	require.Contains(t, out.String(), "Hello!true123\nbye\n42\n")
}

func TestRunStepLimit(t *testing.T) {
	ctx := testutil.Context(t)
	p := testutil.TempPath(t, "factorial.lvm")
	require.NoError(t, WriteDemo(&bytes.Buffer{}, "factorial", p))

	cfg := DefaultConfig()
	cfg.MaxSteps = 3
	var out bytes.Buffer
	err := Run(ctx, &out, p, cfg)
	require.Error(t, err)
	require.True(t, IsFault(err))
	require.ErrorAs(t, err, &lvm1.ErrStepLimit{})
	require.Contains(t, out.String(), "FAULT")
	require.Contains(t, out.String(), "STACK")
}

func TestRunBadFile(t *testing.T) {
	ctx := testutil.Context(t)
	p := testutil.TempPath(t, "bad.lvm")
	require.NoError(t, os.WriteFile(p, []byte{0, 0}, 0o644))
	err := Run(ctx, &bytes.Buffer{}, p, DefaultConfig())
	require.Error(t, err)
	require.False(t, IsFault(err))
}

func TestRunRejectsInvalid(t *testing.T) {
	b := lvmtests.NewBuilder()
	main := b.Method(lvmtests.MainName, spec.NoIndex, 0, 0)
	c := b.Class("C", spec.NoIndex, 0, 1)
	m := b.Method("m", c, 2, math.MaxUint32)
	b.I(spec.Call, main)
	b.Begin(main)
	b.I(spec.New, c)
	b.Push(7)
	b.I(spec.Call, m)
	b.Op(spec.Return)
	b.Begin(m)
	b.Op(spec.Return)
	pool, code := b.Build()

	p := testutil.TempPath(t, "wrap.lvm")
	require.NoError(t, lvmfile.WriteFile(p, &lvmfile.Program{Pool: pool, Code: code}))
	var out bytes.Buffer
	err := Run(testutil.Context(t), &out, p, DefaultConfig())
	require.ErrorContains(t, err, "verifying")
	require.False(t, IsFault(err))
	require.Empty(t, out.String())
}

func TestPrint(t *testing.T) {
	ctx := testutil.Context(t)
	p := testutil.TempPath(t, "animals.lvm")
	require.NoError(t, WriteDemo(&bytes.Buffer{}, "animals", p))

	var out bytes.Buffer
	require.NoError(t, Print(ctx, &out, p))
	require.Contains(t, out.String(), "FINGERPRINT")
	require.Contains(t, out.String(), "Constant pool:")
	require.Contains(t, out.String(), "Instruction stream:")
	require.Contains(t, out.String(), "Dog")
}

func TestVerify(t *testing.T) {
	ctx := testutil.Context(t)
	dir := t.TempDir()
	var paths []string
	for _, name := range lvmtests.Names() {
		p := filepath.Join(dir, name+".lvm")
		require.NoError(t, WriteDemo(&bytes.Buffer{}, name, p))
		paths = append(paths, p)
	}
	var out bytes.Buffer
	require.NoError(t, Verify(ctx, &out, paths))
	require.NotContains(t, out.String(), "FAIL")

	bad := filepath.Join(dir, "bad.lvm")
	require.NoError(t, os.WriteFile(bad, []byte{0, 0, 0, 1}, 0o644))
	out.Reset()
	err := Verify(ctx, &out, append(paths, bad))
	require.ErrorContains(t, err, "1 of")
	require.Contains(t, out.String(), "FAIL")
	require.Contains(t, out.String(), bad)
}

func TestWriteDemoExtension(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, WriteDemo(&out, "max", filepath.Join(dir, "max")))
	_, err := os.Stat(filepath.Join(dir, "max"+litenvm.DefaultExtension))
	require.NoError(t, err)
	require.Contains(t, out.String(), "max.lvm")

	require.NoError(t, WriteDemo(&out, "max", filepath.Join(dir, "max.bin")))
	_, err = os.Stat(filepath.Join(dir, "max.bin"))
	require.NoError(t, err)
}

func TestWriteDemoUnknown(t *testing.T) {
	err := WriteDemo(&bytes.Buffer{}, "nope", testutil.TempPath(t, "x.lvm"))
	require.Error(t, err)
}
