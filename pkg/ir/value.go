package ir

import "fmt"

// ValueRef is a dense handle into a Module's constant pool, the value-side
// counterpart to TypeRef: two add_constant calls for the same bit pattern
// and type share one ValueRef.
type ValueRef int

// ValueKind tags the payload carried by a Value.
type ValueKind int

const (
	VInt ValueKind = iota
	VFloat
	VString
)

// Value is a constant attached to an OpConstant instruction: an integer
// (sign-agnostic bit pattern), a float, or string-literal bytes.
type Value struct {
	Kind ValueKind
	Int  int64
	Flt  float64
	Str  string
}

func IntValue(v int64) Value    { return Value{Kind: VInt, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: VFloat, Flt: v} }
func StringValue(s string) Value { return Value{Kind: VString, Str: s} }

func (v Value) key() string {
	switch v.Kind {
	case VInt:
		return fmt.Sprintf("i:%d", v.Int)
	case VFloat:
		return fmt.Sprintf("f:%v", v.Flt)
	case VString:
		return fmt.Sprintf("s:%q", v.Str)
	}
	return "?"
}

func (v Value) String() string {
	switch v.Kind {
	case VInt:
		return fmt.Sprintf("%d", v.Int)
	case VFloat:
		return fmt.Sprintf("%g", v.Flt)
	case VString:
		return fmt.Sprintf("%q", v.Str)
	}
	return "?"
}
