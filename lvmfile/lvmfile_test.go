package lvmfile_test

import (
	"bytes"
	"encoding/hex"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"litenvm.org/litenvm/internal/testutil"
	"litenvm.org/litenvm/lvmfile"
	"litenvm.org/litenvm/lvmpool"
	"litenvm.org/litenvm/lvmtests"
	"litenvm.org/litenvm/spec"
)

func TestReadEntries(t *testing.T) {
	prog := &lvmfile.Program{
		Pool: lvmpool.FromEntries(
			&lvmpool.Class{Name: "Animal", Parent: 1, Fields: 2, Methods: 3},
			&lvmpool.Method{Name: "sound", Class: 1, Address: 2, Args: 3, Locals: 4},
			&lvmpool.Field{Name: "age", Class: 1, Index: 0},
			&lvmpool.String{Value: "This is a long string"},
		),
	}
	p := testutil.TempPath(t, "test.lvm")
	require.NoError(t, lvmfile.WriteFile(p, prog))

	actual, err := lvmfile.Load(testutil.Context(t), p)
	require.NoError(t, err)
	require.Equal(t, uint32(4), actual.Pool.Len())
	require.Empty(t, actual.Code)

	c, err := actual.Pool.Class(1)
	require.NoError(t, err)
	require.Equal(t, "Animal", c.Name)
	require.Equal(t, uint32(1), c.Parent)
	require.Equal(t, uint32(2), c.Fields)
	require.Equal(t, uint32(3), c.Methods)

	m, err := actual.Pool.Method(2)
	require.NoError(t, err)
	require.Equal(t, &lvmpool.Method{Name: "sound", Class: 1, Address: 2, Args: 3, Locals: 4}, m)

	f, err := actual.Pool.Field(3)
	require.NoError(t, err)
	require.Equal(t, &lvmpool.Field{Name: "age", Class: 1, Index: 0}, f)

	s, err := actual.Pool.String(4)
	require.NoError(t, err)
	require.Equal(t, "This is a long string", s.Value)
}

func TestEncoding(t *testing.T) {
	prog := &lvmfile.Program{
		Pool: lvmpool.FromEntries(
			&lvmpool.Method{Name: "m", Address: 0x0102, Args: 0, Locals: 1},
			&lvmpool.String{Value: "hi"},
		),
		Code: []spec.Instruction{
			spec.I(spec.Call, 1),
			spec.I(spec.Push, 0xffff_fffe),
			spec.I(spec.Return, 0),
		},
	}
	var buf bytes.Buffer
	require.NoError(t, lvmfile.Encode(&buf, prog))
	want := strings.Join([]string{
		"00000002",
		"02", "00000002", "6d00", "00000000", "00000102", "00000000", "00000001",
		"03", "00000003", "686900",
		"00000003",
		"0b", "00000001",
		"00", "fffffffe",
		"0c", "00000000",
	}, "")
	require.Equal(t, want, hex.EncodeToString(buf.Bytes()))
}

func TestRoundTrip(t *testing.T) {
	for _, p := range lvmtests.Programs() {
		t.Run(p.Name, func(t *testing.T) {
			prog := &lvmfile.Program{Pool: p.Pool, Code: p.Code}
			var buf bytes.Buffer
			require.NoError(t, lvmfile.Encode(&buf, prog))
			data := buf.Bytes()

			actual, err := lvmfile.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			require.Equal(t, p.Code, actual.Code)
			require.Equal(t, p.Pool.Len(), actual.Pool.Len())
			for i, ent := range p.Pool.Entries() {
				ent2, err := actual.Pool.Get(i)
				require.NoError(t, err)
				require.Equal(t, ent.Kind(), ent2.Kind())
				require.Equal(t, fmtEntry(ent), fmtEntry(ent2))
			}

			var buf2 bytes.Buffer
			require.NoError(t, lvmfile.Encode(&buf2, actual))
			require.Equal(t, data, buf2.Bytes())

			fp1, err := prog.Fingerprint()
			require.NoError(t, err)
			fp2, err := actual.Fingerprint()
			require.NoError(t, err)
			require.Equal(t, fp1, fp2)
			require.False(t, fp1.IsZero())
		})
	}
}

func TestTruncated(t *testing.T) {
	p := lvmtests.Animals()
	var buf bytes.Buffer
	require.NoError(t, lvmfile.Encode(&buf, &lvmfile.Program{Pool: p.Pool, Code: p.Code}))
	data := buf.Bytes()
	for n := 0; n < len(data); n++ {
		_, err := lvmfile.Decode(bytes.NewReader(data[:n]))
		require.ErrorIs(t, err, lvmfile.ErrUnexpectedEOF, "n=%d", n)
	}
	_, err := lvmfile.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestMalformed(t *testing.T) {
	type testCase struct {
		Name string
		Hex  string
	}
	tcs := []testCase{
		{Name: "UnknownKind", Hex: "00000001" + "07" + "00000002" + "6100"},
		{Name: "MissingNUL", Hex: "00000001" + "03" + "00000002" + "6161"},
		{Name: "NULInside", Hex: "00000001" + "03" + "00000003" + "610000"},
		{Name: "ZeroLength", Hex: "00000001" + "03" + "00000000"},
		{Name: "HugeText", Hex: "00000001" + "03" + "7fffffff"},
		{Name: "UnknownOpcode", Hex: "00000000" + "00000001" + "7f" + "00000000"},
		{Name: "ReservedPoolLength", Hex: "fffffff9"},
	}
	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			data, err := hex.DecodeString(tc.Hex)
			require.NoError(t, err)
			_, err = lvmfile.Decode(bytes.NewReader(data))
			require.ErrorAs(t, err, &lvmfile.ErrMalformed{})
		})
	}
}

func TestPrint(t *testing.T) {
	prog := &lvmfile.Program{
		Pool: lvmpool.FromEntries(
			&lvmpool.Method{Name: "<main>", Address: 1, Locals: 1},
			&lvmpool.Class{Name: "Animal", Fields: 2, Methods: 3},
			&lvmpool.Field{Name: "age", Class: 2, Index: 0},
			&lvmpool.String{Value: "This is a long string"},
		),
		Code: []spec.Instruction{
			spec.I(spec.Call, 1),
			spec.I(spec.Push, 0xffff_ffff),
			spec.I(spec.JumpGe, 4),
			spec.I(spec.Call, spec.MethodConsolePrintln),
			spec.I(spec.Return, 0),
		},
	}
	var buf bytes.Buffer
	require.NoError(t, lvmfile.Print(&buf, prog))
	want := []string{
		"Constant pool:",
		"#1 METHOD <main> (class=0, address=1, args=0, locals=1)",
		"#2 CLASS Animal (parent=0, fields=2, methods=3)",
		"#3 FIELD age (class=2, index=0)",
		`#4 STRING "This is a long string"`,
		"",
		"Instruction stream:",
		"0 CALL 1",
		"1 PUSH -1",
		"2 JUMP_GE 4",
		"3 CALL 4294967290 (intrinsic)",
		"4 RETURN",
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, len(want))
	for i := range want {
		require.Equal(t, want[i], strings.Join(strings.Fields(lines[i]), " "))
	}
}

func TestVerify(t *testing.T) {
	for _, p := range lvmtests.Programs() {
		require.NoError(t, lvmfile.Verify(&lvmfile.Program{Pool: p.Pool, Code: p.Code}), p.Name)
	}

	b := lvmtests.NewBuilder()
	main := b.Method(lvmtests.MainName, spec.NoIndex, 0, 1)
	class := b.Class("A", spec.NoIndex, 1, 1)
	b.Field("f", class, 4)
	b.Method("far", class, 1, 0)
	b.I(spec.Call, main)
	b.Begin(main)
	b.I(spec.PushVar, 1)
	b.I(spec.New, main)
	b.I(spec.Jump, 100)
	b.I(spec.PushString, 99)
	b.I(spec.Op(0x7f), 0)
	b.Op(spec.Return)
	pool, code := b.Build()
	m, err := pool.Method(4)
	require.NoError(t, err)
	m.Address = 1000

	err = lvmfile.Verify(&lvmfile.Program{Pool: pool, Code: code})
	require.Error(t, err)
	var problems []lvmfile.Problem
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		problems = append(problems, e.(lvmfile.Problem))
	}
	var where []string
	for _, p := range problems {
		where = append(where, p.Where)
	}
	require.Equal(t, []string{"#3", "#4", "@1", "@2", "@3", "@4", "@5"}, where)
	require.ErrorAs(t, problems[3].Err, &lvmpool.ErrWrongKind{})
}

func fmtEntry(ent lvmpool.Entry) string {
	return ent.(interface{ String() string }).String()
}

func TestVerifyLimits(t *testing.T) {
	b := lvmtests.NewBuilder()
	main := b.Method(lvmtests.MainName, spec.NoIndex, 0, 0)
	class := b.Class("Huge", spec.NoIndex, math.MaxUint32, 1)
	b.Method("wrap", class, 2, math.MaxUint32)
	b.I(spec.Call, main)
	b.Begin(main)
	b.Op(spec.Return)
	pool, code := b.Build()

	err := lvmfile.Verify(&lvmfile.Program{Pool: pool, Code: code})
	require.Error(t, err)
	var where []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		where = append(where, e.(lvmfile.Problem).Where)
	}
	require.Equal(t, []string{"#2", "#3"}, where)
}
