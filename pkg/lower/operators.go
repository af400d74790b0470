package lower

import (
	"github.com/raymyers/ralph-cc/pkg/ctree"
	"github.com/raymyers/ralph-cc/pkg/ctypes"
	"github.com/raymyers/ralph-cc/pkg/diag"
	"github.com/raymyers/ralph-cc/pkg/ir"
)

// arithOp maps a plain (non-compound, non-logical, non-comma) binary
// operator to its IR opcode.
func arithOp(op ctree.BinaryOp) (ir.Op, bool) {
	switch op {
	case ctree.OpAdd:
		return ir.OpAdd, false
	case ctree.OpSub:
		return ir.OpSub, false
	case ctree.OpMul:
		return ir.OpMul, false
	case ctree.OpDiv:
		return ir.OpDiv, false
	case ctree.OpMod:
		return ir.OpMod, false
	case ctree.OpBitAnd:
		return ir.OpBitAnd, false
	case ctree.OpBitOr:
		return ir.OpBitOr, false
	case ctree.OpBitXor:
		return ir.OpBitXor, false
	case ctree.OpShl:
		return ir.OpShl, false
	case ctree.OpShr:
		return ir.OpShr, false
	case ctree.OpEq:
		return ir.OpCmpEq, true
	case ctree.OpNe:
		return ir.OpCmpNe, true
	case ctree.OpLt:
		return ir.OpCmpLt, true
	case ctree.OpLte:
		return ir.OpCmpLte, true
	case ctree.OpGt:
		return ir.OpCmpGt, true
	case ctree.OpGte:
		return ir.OpCmpGte, true
	}
	diag.FatalNoSrc("unhandled binary operator %s", op)
	panic("unreachable")
}

// isComparison reports whether op lowers to one of the i1-typed cmp_*
// opcodes, per the comparison partition of the IR opcode set.
func isComparison(op ctree.BinaryOp) bool {
	switch op {
	case ctree.OpEq, ctree.OpNe, ctree.OpLt, ctree.OpLte, ctree.OpGt, ctree.OpGte:
		return true
	}
	return false
}

// intCastOp chooses zext/sext/trunc for an int_cast by relative bit width
// and source signedness: equal widths pass through unchanged.
// Returns ok=false when no conversion instruction is needed at all.
func intCastOp(srcBits, dstBits int64, srcSigned bool) (ir.Op, bool) {
	switch {
	case dstBits == srcBits:
		return 0, false
	case dstBits > srcBits:
		if srcSigned {
			return ir.OpSext, true
		}
		return ir.OpZext, true
	default:
		return ir.OpTrunc, true
	}
}

// pointerElemByteSize returns the byte size of the type a pointer points
// to, used by pointer arithmetic lowering to decide between the add-raw
// and scale-then-add forms of the pointer +/- rule.
func pointerElemByteSize(ptrType ctypes.Type, fl *funcLowering) int64 {
	elem := ctypes.ElemType(ptrType)
	if elem == nil {
		return 1
	}
	l, ok := elem.(ctypes.Layout)
	if !ok {
		return 1
	}
	return l.ByteSize(fl.target)
}
