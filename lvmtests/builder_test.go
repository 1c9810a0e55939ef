package lvmtests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"litenvm.org/litenvm/lvmpool"
	"litenvm.org/litenvm/spec"
)

func TestBuilderLabels(t *testing.T) {
	b := NewBuilder()
	main := b.Method(MainName, spec.NoIndex, 0, 0)
	b.I(spec.Call, main)
	b.Begin(main)
	b.Jump(spec.Jump, "end")
	b.Push(-1)
	b.Label("end")
	b.Op(spec.Return)

	pool, code := b.Build()
	require.Equal(t, []spec.Instruction{
		spec.I(spec.Call, 1),
		spec.I(spec.Jump, 3),
		spec.I(spec.Push, 0xffff_ffff),
		spec.I(spec.Return, 0),
	}, code)
	m, err := pool.Method(main)
	require.NoError(t, err)
	require.Equal(t, uint32(1), m.Address)
}

func TestBuilderPanics(t *testing.T) {
	require.Panics(t, func() {
		b := NewBuilder()
		b.Jump(spec.JumpEq, "nowhere")
		b.Build()
	})
	require.Panics(t, func() {
		b := NewBuilder()
		b.Jump(spec.Add, "x")
	})
	require.Panics(t, func() {
		b := NewBuilder()
		b.Begin(b.String("not a method"))
	})
}

func TestProgramsLoad(t *testing.T) {
	for _, p := range Programs() {
		t.Run(p.Name, func(t *testing.T) {
			require.NoError(t, p.Pool.ComputeVTables())
			ent, err := p.Pool.Get(1)
			require.NoError(t, err)
			m, ok := ent.(*lvmpool.Method)
			require.True(t, ok)
			require.Equal(t, MainName, m.Name)
			require.Equal(t, spec.I(spec.Call, 1), p.Code[0])
		})
	}
	_, err := Get("nope")
	require.Error(t, err)
	p, err := Get("hello")
	require.NoError(t, err)
	require.Equal(t, "hello", p.Name)
	require.Len(t, Names(), len(Programs()))
}
