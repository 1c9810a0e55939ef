package lvmheap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"litenvm.org/litenvm/spec"
)

func TestNewGet(t *testing.T) {
	h := NewHeap(0, 0)
	ref, err := h.New(3, 2)
	require.NoError(t, err)
	require.False(t, ref.IsNull())
	require.Equal(t, 1, h.Len())

	class, err := h.Class(ref)
	require.NoError(t, err)
	require.Equal(t, uint32(3), class)

	for i := uint32(0); i < 2; i++ {
		f, err := h.Field(ref, i)
		require.NoError(t, err)
		require.Equal(t, Int(0), *f)
	}
	f, err := h.Field(ref, 1)
	require.NoError(t, err)
	*f = Int(42)
	obj, err := h.Get(ref)
	require.NoError(t, err)
	require.Equal(t, Int(42), obj.Fields[1])

	_, err = h.Field(ref, 2)
	require.ErrorAs(t, err, &ErrBadField{})
}

func TestDanglingRef(t *testing.T) {
	h := NewHeap(0, 0)
	_, err := h.Get(Ref{})
	require.ErrorAs(t, err, &ErrDanglingRef{})
	_, err = h.Get(Ref{Slot: 10, Gen: 1})
	require.ErrorAs(t, err, &ErrDanglingRef{})

	a, err := h.New(1, 0)
	require.NoError(t, err)
	require.NoError(t, h.Free(a))
	require.Equal(t, 0, h.Len())
	_, err = h.Get(a)
	require.ErrorAs(t, err, &ErrDanglingRef{})
	require.ErrorAs(t, h.Free(a), &ErrDanglingRef{})

	// the slot is reused with a new generation
	b, err := h.New(2, 0)
	require.NoError(t, err)
	require.Equal(t, a.Slot, b.Slot)
	require.NotEqual(t, a.Gen, b.Gen)
	_, err = h.Get(a)
	require.ErrorAs(t, err, &ErrDanglingRef{})
	class, err := h.Class(b)
	require.NoError(t, err)
	require.Equal(t, uint32(2), class)
}

func TestOutOfMemory(t *testing.T) {
	h := NewHeap(2, 0)
	a, err := h.New(1, 0)
	require.NoError(t, err)
	_, err = h.New(1, 0)
	require.NoError(t, err)
	_, err = h.New(1, 0)
	require.ErrorIs(t, err, ErrOutOfMemory)

	require.NoError(t, h.Free(a))
	_, err = h.New(1, 0)
	require.NoError(t, err)
}

func TestObjectTooLarge(t *testing.T) {
	h := NewHeap(0, 4)
	_, err := h.New(1, 4)
	require.NoError(t, err)

	_, err = h.New(1, math.MaxUint32)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.ErrorAs(t, err, &ErrObjectTooLarge{})
	require.Equal(t, 1, h.Len())
}

func TestReset(t *testing.T) {
	h := NewHeap(0, 0)
	var refs []Ref
	for i := 0; i < 10; i++ {
		ref, err := h.New(1, 1)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	h.Reset()
	require.Equal(t, 0, h.Len())
	for _, ref := range refs {
		_, err := h.Get(ref)
		require.Error(t, err)
	}
}

func TestString(t *testing.T) {
	h := NewHeap(0, 0)
	s, err := h.NewString("This is a long string")
	require.NoError(t, err)
	text, err := h.Text(s)
	require.NoError(t, err)
	require.Equal(t, "This is a long string", text)
	class, err := h.Class(s)
	require.NoError(t, err)
	require.Equal(t, uint32(spec.ClassString), class)

	o, err := h.New(1, 0)
	require.NoError(t, err)
	_, err = h.Text(o)
	require.ErrorAs(t, err, &ErrNotString{})
}

func TestBuilder(t *testing.T) {
	type testCase struct {
		Name  string
		Build func(h *Heap, sb Ref) error
		Want  string
	}
	tcs := []testCase{
		{
			Name:  "Empty",
			Build: func(h *Heap, sb Ref) error { return nil },
			Want:  "",
		},
		{
			Name: "StringBoolInt",
			Build: func(h *Heap, sb Ref) error {
				s, err := h.NewString("Hello!")
				if err != nil {
					return err
				}
				if err := h.AppendString(sb, s); err != nil {
					return err
				}
				if err := h.AppendBool(sb, true); err != nil {
					return err
				}
				return h.AppendInt(sb, 123)
			},
			Want: "Hello!true123",
		},
		{
			Name: "Negative",
			Build: func(h *Heap, sb Ref) error {
				if err := h.AppendInt(sb, -7); err != nil {
					return err
				}
				return h.AppendBool(sb, false)
			},
			Want: "-7false",
		},
	}
	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			h := NewHeap(0, 0)
			sb, err := h.NewBuilder()
			require.NoError(t, err)
			require.NoError(t, tc.Build(h, sb))

			text, err := h.BuilderText(sb)
			require.NoError(t, err)
			require.Equal(t, tc.Want, text)

			s, err := h.BuilderString(sb)
			require.NoError(t, err)
			text, err = h.Text(s)
			require.NoError(t, err)
			require.Equal(t, tc.Want, text)
		})
	}
}

func TestBuilderFreesOldStrings(t *testing.T) {
	h := NewHeap(0, 0)
	sb, err := h.NewBuilder()
	require.NoError(t, err)
	require.Equal(t, 2, h.Len())
	for i := int32(0); i < 10; i++ {
		require.NoError(t, h.AppendInt(sb, i))
	}
	// the builder and its current String
	require.Equal(t, 2, h.Len())

	require.NoError(t, h.Free(sb))
	require.Equal(t, 0, h.Len())
}

func TestBuilderEscape(t *testing.T) {
	h := NewHeap(0, 0)
	sb, err := h.NewBuilder()
	require.NoError(t, err)
	require.NoError(t, h.AppendInt(sb, 1))
	s1, err := h.BuilderString(sb)
	require.NoError(t, err)

	// appending must not free the String handed out above
	require.NoError(t, h.AppendInt(sb, 2))
	text, err := h.Text(s1)
	require.NoError(t, err)
	require.Equal(t, "1", text)

	s2, err := h.BuilderString(sb)
	require.NoError(t, err)
	require.NoError(t, h.Free(sb))
	text, err = h.Text(s2)
	require.NoError(t, err)
	require.Equal(t, "12", text)
	require.Equal(t, 2, h.Len())
}

func TestValueEqual(t *testing.T) {
	r1 := Ref{Slot: 1, Gen: 1}
	r2 := Ref{Slot: 2, Gen: 1}
	type testCase struct {
		A, B  Value
		Equal bool
	}
	tcs := []testCase{
		{Int(0), Int(0), true},
		{Int(1), Int(-1), false},
		{Int(0), Value{}, true},
		{RefValue(r1), RefValue(r1), true},
		{RefValue(r1), RefValue(r2), false},
		{RefValue(Ref{Slot: 1, Gen: 2}), RefValue(r1), false},
		{Int(1), RefValue(Ref{Slot: 1, Gen: 0}), false},
		{Int(0), RefValue(Ref{}), false},
	}
	for i, tc := range tcs {
		require.Equal(t, tc.Equal, tc.A.Equal(tc.B), "case %d: %v == %v", i, tc.A, tc.B)
		require.Equal(t, tc.Equal, tc.B.Equal(tc.A), "case %d: %v == %v", i, tc.B, tc.A)
	}
}

func TestValueString(t *testing.T) {
	require.Equal(t, "-12", Int(-12).String())
	require.Equal(t, "null", RefValue(Ref{}).String())
	require.Equal(t, "@3.1", RefValue(Ref{Slot: 3, Gen: 1}).String())
	require.True(t, Bool(true).Truthy())
	require.False(t, Bool(false).Truthy())
	require.False(t, RefValue(Ref{}).Truthy())
}
