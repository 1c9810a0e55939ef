// package stack provides a growable LIFO used for the operand and call stacks.
package stack

import "errors"

// DefaultMinCap is used when New is given a capacity < 1
const DefaultMinCap = 128

// ErrUnderflow is returned when reading past the bottom of a Stack.
var ErrUnderflow = errors.New("stack underflow")

// Stack is a LIFO backed by a contiguous buffer.
// The capacity doubles when the buffer is full, and halves when the length drops to a
// quarter of the capacity, but never below minCap.
type Stack[T any] struct {
	buf    []T
	n      int
	minCap int
}

func New[T any](minCap int) *Stack[T] {
	if minCap < 1 {
		minCap = DefaultMinCap
	}
	return &Stack[T]{
		buf:    make([]T, minCap),
		minCap: minCap,
	}
}

func (s *Stack[T]) Len() int {
	return s.n
}

// Cap returns the size of the backing buffer.
func (s *Stack[T]) Cap() int {
	return len(s.buf)
}

func (s *Stack[T]) MinCap() int {
	return s.minCap
}

func (s *Stack[T]) Push(x T) {
	if s.n == len(s.buf) {
		s.resize(2 * len(s.buf))
	}
	s.buf[s.n] = x
	s.n++
}

// Top returns the last element pushed.
func (s *Stack[T]) Top() (T, error) {
	return s.Peek(0)
}

// Peek returns the element depth positions below the top.
// Peek(0) is equivalent to Top.
func (s *Stack[T]) Peek(depth int) (ret T, _ error) {
	if depth < 0 || depth >= s.n {
		return ret, ErrUnderflow
	}
	return s.buf[s.n-1-depth], nil
}

// Pop removes and returns the last element pushed.
func (s *Stack[T]) Pop() (ret T, _ error) {
	if s.n == 0 {
		return ret, ErrUnderflow
	}
	s.n--
	ret = s.buf[s.n]
	var zero T
	s.buf[s.n] = zero
	if half := len(s.buf) / 2; s.n == len(s.buf)/4 && half >= s.minCap {
		s.resize(half)
	}
	return ret, nil
}

// At returns the i-th element from the bottom of the stack.
func (s *Stack[T]) At(i int) T {
	if i < 0 || i >= s.n {
		panic(i)
	}
	return s.buf[i]
}

// Slice returns a copy of the elements, bottom first.
func (s *Stack[T]) Slice() []T {
	return append([]T{}, s.buf[:s.n]...)
}

// Reset empties the stack and returns it to its minimum capacity.
func (s *Stack[T]) Reset() {
	s.buf = make([]T, s.minCap)
	s.n = 0
}

func (s *Stack[T]) resize(n int) {
	buf := make([]T, n)
	copy(buf, s.buf[:s.n])
	s.buf = buf
}
