package lvmheap

import (
	"strconv"

	"litenvm.org/litenvm/spec"
)

// NewString allocates a String object holding a copy of text.
func (h *Heap) NewString(text string) (Ref, error) {
	ref, err := h.New(spec.ClassString, 0)
	if err != nil {
		return Ref{}, err
	}
	h.slots[ref.Slot].obj.text = []byte(text)
	return ref, nil
}

// Text returns the contents of a String object.
func (h *Heap) Text(ref Ref) (string, error) {
	obj, err := h.getClass(ref, spec.ClassString)
	if err != nil {
		return "", err
	}
	return string(obj.text), nil
}

// NewBuilder allocates a StringBuilder holding a new empty String.
func (h *Heap) NewBuilder() (Ref, error) {
	s, err := h.NewString("")
	if err != nil {
		return Ref{}, err
	}
	sb, err := h.New(spec.ClassStringBuilder, 1)
	if err != nil {
		h.release(s)
		return Ref{}, err
	}
	h.slots[sb.Slot].obj.Fields[0] = RefValue(s)
	return sb, nil
}

// BuilderText returns the text accumulated so far by a StringBuilder.
func (h *Heap) BuilderText(sb Ref) (string, error) {
	_, cur, err := h.current(sb)
	if err != nil {
		return "", err
	}
	return h.Text(cur)
}

// BuilderString returns the builder's current String.
// The String escapes: later appends leave it alone and Free of the builder does not release it.
func (h *Heap) BuilderString(sb Ref) (Ref, error) {
	_, cur, err := h.current(sb)
	if err != nil {
		return Ref{}, err
	}
	obj, err := h.getClass(cur, spec.ClassString)
	if err != nil {
		return Ref{}, err
	}
	obj.escaped = true
	return cur, nil
}

// AppendString appends the contents of the String s.
func (h *Heap) AppendString(sb Ref, s Ref) error {
	text, err := h.Text(s)
	if err != nil {
		return err
	}
	return h.appendText(sb, text)
}

// AppendInt appends the decimal representation of x.
func (h *Heap) AppendInt(sb Ref, x int32) error {
	return h.appendText(sb, strconv.FormatInt(int64(x), 10))
}

// AppendBool appends "true" or "false".
func (h *Heap) AppendBool(sb Ref, x bool) error {
	return h.appendText(sb, strconv.FormatBool(x))
}

// appendText replaces the builder's String with a new String holding the concatenation.
// The old String is freed unless it escaped.
func (h *Heap) appendText(sb Ref, suffix string) error {
	obj, cur, err := h.current(sb)
	if err != nil {
		return err
	}
	prev, err := h.Text(cur)
	if err != nil {
		return err
	}
	next, err := h.NewString(prev + suffix)
	if err != nil {
		return err
	}
	if s, err := h.Get(cur); err == nil && !s.escaped {
		h.release(cur)
	}
	obj.Fields[0] = RefValue(next)
	return nil
}

// current returns the builder object and its current String.
func (h *Heap) current(sb Ref) (*Object, Ref, error) {
	obj, err := h.getClass(sb, spec.ClassStringBuilder)
	if err != nil {
		return nil, Ref{}, err
	}
	cur, ok := obj.Fields[0].AsRef()
	if !ok {
		return nil, Ref{}, ErrNotString{Ref: sb, Class: obj.Class, Want: spec.ClassString}
	}
	return obj, cur, nil
}

func (h *Heap) getClass(ref Ref, class uint32) (*Object, error) {
	obj, err := h.Get(ref)
	if err != nil {
		return nil, err
	}
	if obj.Class != class {
		return nil, ErrNotString{Ref: ref, Class: obj.Class, Want: class}
	}
	return obj, nil
}

func isBuilder(obj *Object) bool {
	return obj.Class == spec.ClassStringBuilder && len(obj.Fields) > 0
}
