package lower

import (
	"github.com/raymyers/ralph-cc/pkg/ctypes"
	"github.com/raymyers/ralph-cc/pkg/diag"
	"github.com/raymyers/ralph-cc/pkg/ir"
	"github.com/raymyers/ralph-cc/pkg/target"
)

// LowerType maps a C type to a canonical IR type reference.
// Bit widths for integers, floats, and pointers come from tg rather than
// being hardcoded, so the same ctypes.Type lowers differently for
// different compilation targets.
func LowerType(t ctypes.Type, tg *target.Spec, in *ir.Interner) ir.TypeRef {
	switch typ := t.(type) {
	case ctypes.Tvoid:
		return in.Void()
	case ctypes.Tint:
		if typ.Size == ctypes.IBool {
			return in.I1()
		}
		return in.Int(int(typ.BitSize(tg)))
	case ctypes.Tlong:
		return in.Int(int(typ.BitSize(tg)))
	case ctypes.Tfloat:
		return in.Float(int(typ.BitSize(tg)))
	case ctypes.Tpointer:
		return in.Ptr()
	case ctypes.Tarray:
		if typ.Size < 0 {
			diag.FatalNoSrc("incomplete array type has no IR representation")
		}
		return in.Array(LowerType(typ.Elem, tg, in), typ.Size)
	case ctypes.Tvector:
		return in.Vector(LowerType(typ.Elem, tg, in), typ.Len)
	case ctypes.Tfunction:
		params := make([]ir.TypeRef, len(typ.Params))
		for i, p := range typ.Params {
			params[i] = LowerType(p, tg, in)
		}
		return in.Func(params, LowerType(typ.Return, tg, in), typ.VarArg)
	case ctypes.Tstruct, ctypes.Tunion:
		diag.FatalNoSrc("struct/union types are not yet lowered to IR (aggregate layout is a declared gap)")
	default:
		diag.FatalNoSrc("unsupported or complex type: %s", t)
	}
	panic("unreachable")
}
