package ctypes

import "github.com/raymyers/ralph-cc/pkg/target"

// Layout is the subset of Type's surface that depends on a compilation
// target's bit widths rather than on the abstract type alone: every
// caller needs a *target.Spec to answer "how big".
type Layout interface {
	ByteSize(t *target.Spec) int64
	BitSize(t *target.Spec) int64
	Align(t *target.Spec) int64
}

func (Tvoid) ByteSize(*target.Spec) int64 { return 1 }
func (Tvoid) BitSize(*target.Spec) int64  { return 8 }
func (Tvoid) Align(*target.Spec) int64    { return 1 }

func (t Tint) ByteSize(tg *target.Spec) int64 {
	switch t.Size {
	case I8:
		return 1
	case I16:
		return 2
	default: // I32, IBool
		return int64(tg.IntBits) / 8
	}
}
func (t Tint) BitSize(tg *target.Spec) int64 { return t.ByteSize(tg) * 8 }
func (t Tint) Align(tg *target.Spec) int64   { return t.ByteSize(tg) }

func (Tlong) ByteSize(tg *target.Spec) int64 { return int64(tg.LongBits) / 8 }
func (t Tlong) BitSize(tg *target.Spec) int64 { return t.ByteSize(tg) * 8 }
func (t Tlong) Align(tg *target.Spec) int64   { return t.ByteSize(tg) }

func (t Tfloat) ByteSize(tg *target.Spec) int64 {
	if t.Size == F32 {
		return int64(tg.Float32Bits) / 8
	}
	return int64(tg.Float64Bits) / 8
}
func (t Tfloat) BitSize(tg *target.Spec) int64 { return t.ByteSize(tg) * 8 }
func (t Tfloat) Align(tg *target.Spec) int64   { return t.ByteSize(tg) }

func (Tpointer) ByteSize(tg *target.Spec) int64 { return int64(tg.PointerBits) / 8 }
func (t Tpointer) BitSize(tg *target.Spec) int64 { return t.ByteSize(tg) * 8 }
func (t Tpointer) Align(tg *target.Spec) int64   { return t.ByteSize(tg) }

func (t Tarray) ByteSize(tg *target.Spec) int64 {
	if t.Size < 0 || t.Elem == nil {
		return 0 // incomplete array
	}
	return t.Size * byteSizeOf(t.Elem, tg)
}
func (t Tarray) BitSize(tg *target.Spec) int64 { return t.ByteSize(tg) * 8 }
func (t Tarray) Align(tg *target.Spec) int64   { return alignOf(t.Elem, tg) }

func (t Tvector) ByteSize(tg *target.Spec) int64 {
	if t.Elem == nil {
		return 0
	}
	return t.Len * byteSizeOf(t.Elem, tg)
}
func (t Tvector) BitSize(tg *target.Spec) int64 { return t.ByteSize(tg) * 8 }
func (t Tvector) Align(tg *target.Spec) int64   { return t.ByteSize(tg) } // naturally aligned

func (t Tfunction) ByteSize(*target.Spec) int64 { return 0 }
func (t Tfunction) BitSize(*target.Spec) int64  { return 0 }
func (t Tfunction) Align(*target.Spec) int64    { return 1 }

func (s Tstruct) ByteSize(tg *target.Spec) int64 {
	var size int64
	for _, f := range s.Fields {
		a := alignOf(f.Type, tg)
		size = alignUp(size, a)
		size += byteSizeOf(f.Type, tg)
	}
	return alignUp(size, s.Align(tg))
}
func (s Tstruct) BitSize(tg *target.Spec) int64 { return s.ByteSize(tg) * 8 }
func (s Tstruct) Align(tg *target.Spec) int64 {
	var maxAlign int64 = 1
	for _, f := range s.Fields {
		if a := alignOf(f.Type, tg); a > maxAlign {
			maxAlign = a
		}
	}
	return maxAlign
}

func (u Tunion) ByteSize(tg *target.Spec) int64 {
	var maxSize int64
	for _, f := range u.Fields {
		if sz := byteSizeOf(f.Type, tg); sz > maxSize {
			maxSize = sz
		}
	}
	return alignUp(maxSize, u.Align(tg))
}
func (u Tunion) BitSize(tg *target.Spec) int64 { return u.ByteSize(tg) * 8 }
func (u Tunion) Align(tg *target.Spec) int64 {
	var maxAlign int64 = 1
	for _, f := range u.Fields {
		if a := alignOf(f.Type, tg); a > maxAlign {
			maxAlign = a
		}
	}
	return maxAlign
}

// byteSizeOf and alignOf dispatch through the Layout interface, tolerating a
// nil type the way the old free functions tolerated an unrecognized one.
func byteSizeOf(t Type, tg *target.Spec) int64 {
	if l, ok := t.(Layout); ok {
		return l.ByteSize(tg)
	}
	return int64(tg.IntBits) / 8
}

func alignOf(t Type, tg *target.Spec) int64 {
	if l, ok := t.(Layout); ok {
		return l.Align(tg)
	}
	return int64(tg.IntBits) / 8
}

// alignUp rounds n up to the nearest multiple of align.
func alignUp(n, align int64) int64 {
	if align == 0 {
		return n
	}
	return (n + align - 1) / align * align
}

// FieldOffset computes the byte offset of a named field within a struct,
// or -1 if the type is not a struct or has no such field.
func FieldOffset(t Type, fieldName string, tg *target.Spec) int64 {
	s, ok := t.(Tstruct)
	if !ok {
		return -1
	}
	var offset int64
	for _, f := range s.Fields {
		offset = alignUp(offset, alignOf(f.Type, tg))
		if f.Name == fieldName {
			return offset
		}
		offset += byteSizeOf(f.Type, tg)
	}
	return -1
}

// Signed reports whether t is a signed integer type. Non-integer types
// report true, treating unrecognized types as plain (signed) ints in
// arithmetic conversions.
func (t Tint) Signed() bool    { return t.Sign == Signed }
func (t Tlong) Signed() bool   { return t.Sign == Signed }
func (Tvoid) Signed() bool     { return true }
func (Tfloat) Signed() bool    { return true }
func (Tpointer) Signed() bool  { return true }
func (Tarray) Signed() bool    { return true }
func (Tfunction) Signed() bool { return true }
func (Tstruct) Signed() bool   { return true }
func (Tunion) Signed() bool    { return true }
func (Tvector) Signed() bool   { return true }

// ElemType returns the pointee or element type of a pointer, array or
// vector, or nil otherwise. Free function, not a method: Tpointer and Tarray already
// declare an Elem field, and Go forbids a field and method sharing a name.
func ElemType(t Type) Type {
	switch typ := t.(type) {
	case Tpointer:
		return typ.Elem
	case Tarray:
		return typ.Elem
	case Tvector:
		return typ.Elem
	default:
		return nil
	}
}

// ArrayLen returns the declared element count of an array or vector type,
// or 0 for any other type and for an incomplete array (whose Size is
// negative).
func (Tvoid) ArrayLen() int64    { return 0 }
func (Tint) ArrayLen() int64     { return 0 }
func (Tlong) ArrayLen() int64    { return 0 }
func (Tfloat) ArrayLen() int64   { return 0 }
func (Tpointer) ArrayLen() int64 { return 0 }
func (t Tarray) ArrayLen() int64 {
	if t.Size < 0 {
		return 0
	}
	return t.Size
}
func (Tfunction) ArrayLen() int64 { return 0 }
func (Tstruct) ArrayLen() int64   { return 0 }
func (Tunion) ArrayLen() int64    { return 0 }
func (t Tvector) ArrayLen() int64 { return t.Len }
