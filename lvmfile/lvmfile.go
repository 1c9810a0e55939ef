// Package lvmfile reads and writes compiled programs.
//
// All integers are big endian.  A file is the constant pool followed by the instruction stream:
//
//	u32 pool length
//	entries:   u8 kind, u32 length + text + NUL, then the u32 fields of the kind
//	             Class:  parent, fields, methods
//	             Field:  class, index
//	             Method: class, address, args, locals
//	             String: (none)
//	u32 instruction count
//	instructions: u8 opcode, u32 operand
package lvmfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"litenvm.org/litenvm"
	"litenvm.org/litenvm/lvmpool"
	"litenvm.org/litenvm/spec"
)

const (
	// MaxTextLen is the longest name or string literal that will be decoded, including the NUL.
	MaxTextLen = 1 << 20
	// maxPrealloc bounds the capacity allocated up front from a length read off the wire.
	maxPrealloc = 1 << 12
)

// Program is a decoded program file.
type Program struct {
	Pool *lvmpool.Pool
	Code []spec.Instruction
}

// Fingerprint returns the hash of the encoded program.
func (p *Program) Fingerprint() (litenvm.Fingerprint, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return litenvm.Fingerprint{}, err
	}
	return litenvm.Hash(nil, buf.Bytes()), nil
}

// Encode writes p to w.
func Encode(w io.Writer, p *Program) error {
	bw := bufio.NewWriter(w)
	e := encoder{w: bw}
	e.u32(p.Pool.Len())
	for i := uint32(1); i <= p.Pool.Len(); i++ {
		ent, err := p.Pool.Get(i)
		if err != nil {
			return err
		}
		e.u8(uint8(ent.Kind()))
		switch x := ent.(type) {
		case *lvmpool.Class:
			e.text(x.Name)
			e.u32(x.Parent)
			e.u32(x.Fields)
			e.u32(x.Methods)
		case *lvmpool.Field:
			e.text(x.Name)
			e.u32(x.Class)
			e.u32(x.Index)
		case *lvmpool.Method:
			e.text(x.Name)
			e.u32(x.Class)
			e.u32(x.Address)
			e.u32(x.Args)
			e.u32(x.Locals)
		case *lvmpool.String:
			e.text(x.Value)
		default:
			return fmt.Errorf("lvmfile: cannot encode entry %T", ent)
		}
	}
	e.u32(uint32(len(p.Code)))
	for _, ix := range p.Code {
		e.u8(uint8(ix.Op))
		e.u32(ix.Operand)
	}
	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

type encoder struct {
	w   *bufio.Writer
	buf [4]byte
	err error
}

func (e *encoder) u8(x uint8) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(x)
}

func (e *encoder) u32(x uint32) {
	if e.err != nil {
		return
	}
	binary.BigEndian.PutUint32(e.buf[:], x)
	_, e.err = e.w.Write(e.buf[:])
}

func (e *encoder) text(x string) {
	e.u32(uint32(len(x) + 1))
	if e.err != nil {
		return
	}
	if _, e.err = e.w.WriteString(x); e.err != nil {
		return
	}
	e.err = e.w.WriteByte(0)
}

// Decode reads a program from r.
// Decode stops after the last instruction; anything after it is not read.
func Decode(r io.Reader) (*Program, error) {
	d := decoder{r: bufio.NewReader(r)}
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	if n >= spec.IntrinsicBase {
		return nil, d.malformed("pool length %d overlaps the reserved indices", n)
	}
	ents := make([]lvmpool.Entry, 0, min(n, maxPrealloc))
	for i := uint32(1); i <= n; i++ {
		ent, err := d.entry()
		if err != nil {
			return nil, fmt.Errorf("entry #%d: %w", i, err)
		}
		ents = append(ents, ent)
	}
	count, err := d.u32()
	if err != nil {
		return nil, err
	}
	code := make([]spec.Instruction, 0, min(count, maxPrealloc))
	for i := uint32(0); i < count; i++ {
		opOff := d.off
		op, err := d.u8()
		if err != nil {
			return nil, err
		}
		if !spec.Op(op).Valid() {
			return nil, ErrMalformed{Offset: opOff, Msg: fmt.Sprintf("instruction %d: unknown opcode 0x%02x", i, op)}
		}
		operand, err := d.u32()
		if err != nil {
			return nil, err
		}
		code = append(code, spec.I(spec.Op(op), operand))
	}
	return &Program{Pool: lvmpool.FromEntries(ents...), Code: code}, nil
}

type decoder struct {
	r   *bufio.Reader
	off int64
	buf [4]byte
}

func (d *decoder) entry() (lvmpool.Entry, error) {
	kindOff := d.off
	k, err := d.u8()
	if err != nil {
		return nil, err
	}
	name, err := d.text()
	if err != nil {
		return nil, err
	}
	var xs [4]uint32
	var nfields int
	switch spec.Kind(k) {
	case spec.KindClass:
		nfields = 3
	case spec.KindField:
		nfields = 2
	case spec.KindMethod:
		nfields = 4
	case spec.KindString:
		nfields = 0
	default:
		return nil, ErrMalformed{Offset: kindOff, Msg: fmt.Sprintf("unknown entry kind %d", k)}
	}
	for i := 0; i < nfields; i++ {
		if xs[i], err = d.u32(); err != nil {
			return nil, err
		}
	}
	switch spec.Kind(k) {
	case spec.KindClass:
		return &lvmpool.Class{Name: name, Parent: xs[0], Fields: xs[1], Methods: xs[2]}, nil
	case spec.KindField:
		return &lvmpool.Field{Name: name, Class: xs[0], Index: xs[1]}, nil
	case spec.KindMethod:
		return &lvmpool.Method{Name: name, Class: xs[0], Address: xs[1], Args: xs[2], Locals: xs[3]}, nil
	default:
		return &lvmpool.String{Value: name}, nil
	}
}

func (d *decoder) read(buf []byte) error {
	n, err := io.ReadFull(d.r, buf)
	d.off += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("at offset %d: %w", d.off, ErrUnexpectedEOF)
		}
		return err
	}
	return nil
}

func (d *decoder) u8() (uint8, error) {
	if err := d.read(d.buf[:1]); err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

func (d *decoder) u32() (uint32, error) {
	if err := d.read(d.buf[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(d.buf[:4]), nil
}

func (d *decoder) text() (string, error) {
	lenOff := d.off
	n, err := d.u32()
	if err != nil {
		return "", err
	}
	if n == 0 || n > MaxTextLen {
		return "", ErrMalformed{Offset: lenOff, Msg: fmt.Sprintf("bad text length %d", n)}
	}
	buf := make([]byte, n)
	if err := d.read(buf); err != nil {
		return "", err
	}
	if buf[n-1] != 0 {
		return "", ErrMalformed{Offset: d.off - 1, Msg: "text is not NUL terminated"}
	}
	if i := bytes.IndexByte(buf[:n-1], 0); i >= 0 {
		return "", ErrMalformed{Offset: lenOff + 4 + int64(i), Msg: "NUL inside text"}
	}
	return string(buf[:n-1]), nil
}

func (d *decoder) malformed(format string, args ...any) error {
	return ErrMalformed{Offset: d.off, Msg: fmt.Sprintf(format, args...)}
}

// Load reads the program file at p.
func Load(ctx context.Context, p string) (*Program, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	prog, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", p, err)
	}
	logctx.Debug(ctx, "loaded program",
		zap.String("path", p),
		zap.Uint32("entries", prog.Pool.Len()),
		zap.Int("instructions", len(prog.Code)),
	)
	return prog, nil
}

// WriteFile encodes prog to the file at p, replacing it if it exists.
func WriteFile(p string, prog *Program) error {
	var buf bytes.Buffer
	if err := Encode(&buf, prog); err != nil {
		return err
	}
	return os.WriteFile(p, buf.Bytes(), 0o644)
}
