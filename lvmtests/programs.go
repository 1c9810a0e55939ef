package lvmtests

import (
	"fmt"
	"slices"
	"strings"

	"litenvm.org/litenvm/lvmpool"
	"litenvm.org/litenvm/spec"
)

// MainName is the name given to the entry method of the sample programs.
const MainName = "<main>"

// Program is a sample program and the result of running it.
type Program struct {
	Name string
	Pool *lvmpool.Pool
	Code []spec.Instruction

	// Want is the operand stack once the program halts, bottom first.
	Want []int32
	// Output is everything the program writes with Console.println
	Output string
}

// Programs returns new instances of every sample program.
func Programs() []Program {
	return []Program{
		Factorial(8),
		Max(10, 20),
		Sum(10),
		Point(3, 4),
		Animals(),
		Hello(),
	}
}

// Names returns the names of the sample programs.
func Names() (ret []string) {
	for _, p := range Programs() {
		ret = append(ret, p.Name)
	}
	slices.Sort(ret)
	return ret
}

// Get returns a new instance of the sample program with name.
func Get(name string) (Program, error) {
	for _, p := range Programs() {
		if p.Name == name {
			return p, nil
		}
	}
	return Program{}, fmt.Errorf("no sample program %q. have %s", name, strings.Join(Names(), ", "))
}

// entry adds the entry method and the CALL to it at address 0.
func entry(b *Builder, locals uint32) uint32 {
	main := b.Method(MainName, spec.NoIndex, 0, locals)
	b.I(spec.Call, main)
	return main
}

// Factorial computes n! with a recursive method.
func Factorial(n int32) Program {
	b := NewBuilder()
	main := entry(b, 0)
	class := b.Class("Factorial", spec.NoIndex, 0, 1)
	fac := b.Method("fac", class, 2, 0)

	b.Begin(main)
	b.I(spec.New, class)
	b.Push(n)
	b.I(spec.Call, fac)
	b.Op(spec.Return)

	b.Begin(fac)
	b.I(spec.PushVar, 1)
	b.Push(1)
	b.Jump(spec.JumpGt, "recurse")
	b.Push(1)
	b.Op(spec.Return)
	b.Label("recurse")
	b.I(spec.PushVar, 1)
	b.I(spec.PushVar, 0)
	b.I(spec.PushVar, 1)
	b.Push(1)
	b.Op(spec.Sub)
	b.I(spec.Call, fac)
	b.Op(spec.Mul)
	b.Op(spec.Return)

	want := int32(1)
	for i := int32(2); i <= n; i++ {
		want *= i
	}
	pool, code := b.Build()
	return Program{Name: "factorial", Pool: pool, Code: code, Want: []int32{want}}
}

// Max calls Math.max(a, b)
func Max(a, c int32) Program {
	b := NewBuilder()
	main := entry(b, 0)
	class := b.Class("Math", spec.NoIndex, 0, 1)
	maxMethod := b.Method("max", class, 3, 0)

	b.Begin(main)
	b.I(spec.New, class)
	b.Push(a)
	b.Push(c)
	b.I(spec.Call, maxMethod)
	b.Op(spec.Return)

	b.Begin(maxMethod)
	b.I(spec.PushVar, 1)
	b.I(spec.PushVar, 2)
	b.Jump(spec.JumpGt, "first")
	b.I(spec.PushVar, 2)
	b.Op(spec.Return)
	b.Label("first")
	b.I(spec.PushVar, 1)
	b.Op(spec.Return)

	pool, code := b.Build()
	return Program{Name: "max", Pool: pool, Code: code, Want: []int32{max(a, c)}}
}

// Sum adds the numbers 1 through n in a loop.
func Sum(n int32) Program {
	const (
		varI   = 0
		varSum = 1
	)
	b := NewBuilder()
	main := entry(b, 2)

	b.Begin(main)
	b.Push(n)
	b.I(spec.PopVar, varI)
	b.Push(0)
	b.I(spec.PopVar, varSum)
	b.Label("loop")
	b.I(spec.PushVar, varI)
	b.Push(0)
	b.Jump(spec.JumpLe, "done")
	b.I(spec.PushVar, varSum)
	b.I(spec.PushVar, varI)
	b.Op(spec.Add)
	b.I(spec.PopVar, varSum)
	b.I(spec.PushVar, varI)
	b.Push(1)
	b.Op(spec.Sub)
	b.I(spec.PopVar, varI)
	b.Jump(spec.Jump, "loop")
	b.Label("done")
	b.I(spec.PushVar, varSum)
	b.Op(spec.Return)

	var want int32
	for i := int32(1); i <= n; i++ {
		want += i
	}
	pool, code := b.Build()
	return Program{Name: "sum", Pool: pool, Code: code, Want: []int32{want}}
}

// Point stores x and y in the fields of an object and multiplies them.
func Point(x, y int32) Program {
	b := NewBuilder()
	main := entry(b, 1)
	class := b.Class("Point", spec.NoIndex, 2, 0)
	fx := b.Field("x", class, 0)
	fy := b.Field("y", class, 1)

	b.Begin(main)
	b.I(spec.New, class)
	b.I(spec.PopVar, 0)
	b.I(spec.PushVar, 0)
	b.Push(x)
	b.I(spec.PopField, fx)
	b.I(spec.PushVar, 0)
	b.Push(y)
	b.I(spec.PopField, fy)
	b.I(spec.PushVar, 0)
	b.I(spec.PushField, fx)
	b.I(spec.PushVar, 0)
	b.I(spec.PushField, fy)
	b.Op(spec.Mul)
	b.Op(spec.Return)

	pool, code := b.Build()
	return Program{Name: "point", Pool: pool, Code: code, Want: []int32{x * y}}
}

// Animals calls sound and jump through the entries of the base class,
// on an Animal, a Dog which overrides sound, and a Cat which overrides jump.
func Animals() Program {
	b := NewBuilder()
	main := entry(b, 0)
	animal := b.Class("Animal", spec.NoIndex, 1, 2)
	b.Field("legs", animal, 0)
	sound := b.Method("sound", animal, 1, 0)
	jump := b.Method("jump", animal, 1, 0)
	dog := b.Class("Dog", animal, 0, 1)
	dogSound := b.Method("sound", dog, 1, 0)
	cat := b.Class("Cat", animal, 0, 1)
	catJump := b.Method("jump", cat, 1, 0)

	b.Begin(main)
	for _, class := range []uint32{animal, dog, cat} {
		b.I(spec.New, class)
		b.I(spec.Call, sound)
		b.I(spec.New, class)
		b.I(spec.Call, jump)
	}
	b.Op(spec.Return)

	for _, m := range []struct {
		Index uint32
		Ret   int32
	}{
		{sound, 1},
		{jump, 10},
		{dogSound, 2},
		{catJump, 30},
	} {
		b.Begin(m.Index)
		b.Push(m.Ret)
		b.Op(spec.Return)
	}

	pool, code := b.Build()
	return Program{
		Name: "animals",
		Pool: pool,
		Code: code,
		Want: []int32{
			1, 10, // Animal
			2, 10, // Dog
			1, 30, // Cat
		},
	}
}

// Hello builds a string with a StringBuilder and prints it to the Console.
func Hello() Program {
	const (
		varConsole = 0
		varBuilder = 1
	)
	b := NewBuilder()
	main := entry(b, 2)
	hello := b.String("Hello!")
	bye := b.String("bye")

	b.Begin(main)
	b.I(spec.New, spec.ClassConsole)
	b.I(spec.PopVar, varConsole)
	b.I(spec.New, spec.ClassStringBuilder)
	b.I(spec.PopVar, varBuilder)

	b.I(spec.PushVar, varBuilder)
	b.I(spec.PushString, hello)
	b.I(spec.Call, spec.MethodStringBuilderAppendString)
	b.I(spec.PushVar, varBuilder)
	b.Push(1)
	b.I(spec.Call, spec.MethodStringBuilderAppendBool)
	b.I(spec.PushVar, varBuilder)
	b.Push(123)
	b.I(spec.Call, spec.MethodStringBuilderAppendInt)

	b.I(spec.PushVar, varConsole)
	b.I(spec.PushVar, varBuilder)
	b.I(spec.Call, spec.MethodStringBuilderToString)
	b.I(spec.Call, spec.MethodConsolePrintln)

	b.I(spec.PushVar, varConsole)
	b.I(spec.PushString, bye)
	b.I(spec.Call, spec.MethodConsolePrintln)
	b.I(spec.PushVar, varConsole)
	b.Push(42)
	b.I(spec.Call, spec.MethodConsolePrintln)
	b.Op(spec.Return)

	pool, code := b.Build()
	return Program{
		Name:   "hello",
		Pool:   pool,
		Code:   code,
		Want:   []int32{},
		Output: "Hello!true123\nbye\n42\n",
	}
}
