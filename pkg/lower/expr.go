package lower

import (
	"fmt"

	"github.com/raymyers/ralph-cc/pkg/ctree"
	"github.com/raymyers/ralph-cc/pkg/ctypes"
	"github.com/raymyers/ralph-cc/pkg/diag"
	"github.com/raymyers/ralph-cc/pkg/ir"
)

func zeroValue(t ctypes.Type) ir.Value {
	if _, ok := t.(ctypes.Tfloat); ok {
		return ir.FloatValue(0)
	}
	return ir.IntValue(0)
}

func isSignedType(t ctypes.Type) bool {
	if s, ok := t.(interface{ Signed() bool }); ok {
		return s.Signed()
	}
	return true
}

func bitSizeOf(t ctypes.Type, fl *funcLowering) int64 {
	if l, ok := t.(ctypes.Layout); ok {
		return l.BitSize(fl.target)
	}
	return 32
}

func cellLayout(t ctypes.Type, fl *funcLowering) (int64, int64) {
	if l, ok := t.(ctypes.Layout); ok {
		return l.ByteSize(fl.target), l.Align(fl.target)
	}
	return 8, 8
}

func (fl *funcLowering) ty(t ctypes.Type) ir.TypeRef {
	return LowerType(t, fl.target, fl.module.Interner)
}

// lowerExprRvalue lowers e for its value.
func (fl *funcLowering) lowerExprRvalue(e ctree.Expr) ir.Ref {
	switch ex := e.(type) {
	case ctree.Paren:
		return fl.lowerExprRvalue(ex.Inner)
	case ctree.IntLit:
		return fl.b.AddConstant(ir.IntValue(ex.Value), fl.ty(ex.Typ))
	case ctree.LongLit:
		return fl.b.AddConstant(ir.IntValue(ex.Value), fl.ty(ex.Typ))
	case ctree.CharLit:
		return fl.b.AddConstant(ir.IntValue(ex.Value), fl.ty(ex.Typ))
	case ctree.EnumLit:
		return fl.b.AddConstant(ir.IntValue(ex.Value), fl.ty(ex.Typ))
	case ctree.FloatLit:
		return fl.b.AddConstant(ir.FloatValue(ex.Value), fl.ty(ex.Typ))
	case ctree.StringLit:
		// A bare string literal appearing directly in rvalue position
		// emits its own constant; the usual decayed-pointer path goes
		// through lvalue lowering followed by an array-to-pointer cast.
		return fl.b.AddConstant(ir.StringValue(ex.Value), fl.ty(ex.Typ))
	case ctree.DeclRef:
		diag.FatalNoSrc("decl_ref_expr %q reached rvalue lowering directly (expected an lval_to_rval cast)", ex.Name)
	case ctree.Binary:
		return fl.lowerBinaryRvalue(ex)
	case ctree.Unary:
		return fl.lowerUnaryRvalue(ex)
	case ctree.Cast:
		return fl.lowerCast(ex)
	case ctree.Conditional:
		return fl.lowerConditional(ex)
	case ctree.CondDummyExpr:
		if fl.b.CondDummyRef == ir.NoRef {
			diag.FatalNoSrc("cond_dummy_expr used outside a GNU ?: then-arm")
		}
		return fl.b.CondDummyRef
	case ctree.Call:
		return fl.lowerCall(ex)
	}
	diag.FatalNoSrc("unhandled expression kind %T in rvalue position", e)
	panic("unreachable")
}

func isPointerArith(ex ctree.Binary) bool {
	_, lp := ex.Left.ExprType().(ctypes.Tpointer)
	_, rp := ex.Right.ExprType().(ctypes.Tpointer)
	switch ex.Op {
	case ctree.OpAdd:
		return lp || rp
	case ctree.OpSub:
		return lp
	}
	return false
}

func (fl *funcLowering) lowerBinaryRvalue(ex ctree.Binary) ir.Ref {
	switch {
	case ex.Op == ctree.OpComma:
		fl.lowerExprRvalue(ex.Left)
		return fl.lowerExprRvalue(ex.Right)
	case ex.Op == ctree.OpAssign:
		rhs := fl.lowerExprRvalue(ex.Right)
		addr := fl.lowerExprLvalue(ex.Left)
		fl.b.AddStore(addr, rhs)
		return rhs
	case ex.Op.IsCompoundAssign():
		return fl.lowerCompoundAssign(ex)
	case ex.Op == ctree.OpLogAnd || ex.Op == ctree.OpLogOr:
		return fl.lowerLogicalValue(ex)
	case isPointerArith(ex):
		return fl.lowerPointerArith(ex)
	case isComparison(ex.Op):
		lhs := fl.lowerExprRvalue(ex.Left)
		rhs := fl.lowerExprRvalue(ex.Right)
		op, _ := arithOp(ex.Op)
		cmp := fl.b.AddCmp(op, lhs, rhs)
		return fl.b.AddConvert(ir.OpZext, cmp, fl.ty(ex.Typ))
	default:
		lhs := fl.lowerExprRvalue(ex.Left)
		rhs := fl.lowerExprRvalue(ex.Right)
		op, _ := arithOp(ex.Op)
		return fl.b.AddBin(op, lhs, rhs, fl.ty(ex.Typ))
	}
}

// lowerPointerArith scales the integer operand by the pointee's byte size
// before adding it to the pointer operand. Pointer-minus-pointer
// (ptrdiff) is out of scope; only the pointer +/- integer forms are lowered.
func (fl *funcLowering) lowerPointerArith(ex ctree.Binary) ir.Ref {
	lhs := fl.lowerExprRvalue(ex.Left)
	rhs := fl.lowerExprRvalue(ex.Right)

	var ptr, offset ir.Ref
	var ptrType, offsetType ctypes.Type
	if _, ok := ex.Left.ExprType().(ctypes.Tpointer); ok {
		ptr, offset = lhs, rhs
		ptrType, offsetType = ex.Left.ExprType(), ex.Right.ExprType()
	} else {
		ptr, offset = rhs, lhs
		ptrType, offsetType = ex.Right.ExprType(), ex.Left.ExprType()
	}

	elemSize := pointerElemByteSize(ptrType, fl)
	scaled := offset
	if elemSize != 1 {
		sizeConst := fl.b.AddConstant(ir.IntValue(elemSize), fl.ty(offsetType))
		scaled = fl.b.AddBin(ir.OpMul, offset, sizeConst, fl.ty(offsetType))
	}
	return fl.b.AddBin(ir.OpAdd, ptr, scaled, fl.ty(ex.Typ))
}

// lowerCompoundAssign emits the corrected load->op->store form: the
// buggy source used the lvalue address itself as the binary op's left
// operand, which double-interprets the address as a value.
func (fl *funcLowering) lowerCompoundAssign(ex ctree.Binary) ir.Ref {
	rhs := fl.lowerExprRvalue(ex.Right)
	addr := fl.lowerExprLvalue(ex.Left)
	loaded := fl.b.AddLoad(addr, fl.ty(ex.Left.ExprType()))
	op, _ := arithOp(ex.Op.CompoundBase())
	result := fl.b.AddBin(op, loaded, rhs, fl.ty(ex.Typ))
	fl.b.AddStore(addr, result)
	return result
}

// lowerLogicalValue materializes && / || used as a plain value (not a
// branch condition) by running the branch-context protocol against two
// fresh outcome labels and joining through a one-cell i1 temporary, since
// this IR has no phi. Scenario: "a && b" returning int.
func (fl *funcLowering) lowerLogicalValue(ex ctree.Binary) ir.Ref {
	i1 := fl.module.Interner.I1()
	prefix := "bool_or"
	if ex.Op == ctree.OpLogAnd {
		prefix = "bool_and"
	}
	cell := fl.b.AddAlloc(1, 1)
	trueLabel := fl.b.AddLabel(fl.b.NewLabelHint(prefix + ".true"))
	falseLabel := fl.b.AddLabel(fl.b.NewLabelHint(prefix + ".false"))
	joinLabel := fl.b.AddLabel(fl.b.NewLabelHint(prefix + ".join"))

	fl.withBranchContext(trueLabel, falseLabel, func() { fl.lowerBool(ex) })

	fl.b.BindLabel(trueLabel)
	one := fl.b.AddConstant(ir.IntValue(1), i1)
	fl.b.AddStore(cell, one)
	fl.b.AddJump(joinLabel)

	fl.b.BindLabel(falseLabel)
	zero := fl.b.AddConstant(ir.IntValue(0), i1)
	fl.b.AddStore(cell, zero)
	fl.b.AddJump(joinLabel)

	fl.b.BindLabel(joinLabel)
	loaded := fl.b.AddLoad(cell, i1)
	return fl.b.AddConvert(ir.OpZext, loaded, fl.ty(ex.Typ))
}

func (fl *funcLowering) lowerUnaryRvalue(ex ctree.Unary) ir.Ref {
	switch ex.Op {
	case ctree.OpPlus:
		return fl.lowerExprRvalue(ex.Operand)
	case ctree.OpNeg:
		v := fl.lowerExprRvalue(ex.Operand)
		zero := fl.b.AddConstant(zeroValue(ex.Typ), fl.ty(ex.Typ))
		return fl.b.AddBin(ir.OpSub, zero, v, fl.ty(ex.Typ))
	case ctree.OpBitNot:
		v := fl.lowerExprRvalue(ex.Operand)
		return fl.b.AddUnary(ir.OpBitNot, v, fl.ty(ex.Typ))
	case ctree.OpNot:
		// Produces i1 then zext, instead of emitting
		// cmp_ne with the (wrong) source type.
		v := fl.lowerExprRvalue(ex.Operand)
		zero := fl.b.AddConstant(zeroValue(ex.Operand.ExprType()), fl.ty(ex.Operand.ExprType()))
		cmp := fl.b.AddCmp(ir.OpCmpNe, zero, v)
		return fl.b.AddConvert(ir.OpZext, cmp, fl.ty(ex.Typ))
	case ctree.OpAddrOf:
		return fl.lowerExprLvalue(ex.Operand)
	case ctree.OpDeref:
		if c, ok := ex.Operand.(ctree.Cast); ok && c.Kind == ctree.CastFunctionToPointer {
			return fl.lowerExprRvalue(ex.Operand)
		}
		addr := fl.lowerExprLvalue(ex.Operand)
		return fl.b.AddLoad(addr, fl.ty(ex.Typ))
	case ctree.OpPreInc, ctree.OpPreDec, ctree.OpPostInc, ctree.OpPostDec:
		addr := fl.lowerExprLvalue(ex.Operand)
		typ := fl.ty(ex.Typ)
		old := fl.b.AddLoad(addr, typ)
		one := fl.b.AddConstant(ir.IntValue(1), typ)
		op := ir.OpAdd
		if ex.Op == ctree.OpPreDec || ex.Op == ctree.OpPostDec {
			op = ir.OpSub
		}
		newVal := fl.b.AddBin(op, old, one, typ)
		fl.b.AddStore(addr, newVal)
		if ex.Op == ctree.OpPreInc || ex.Op == ctree.OpPreDec {
			return newVal
		}
		return old
	}
	diag.FatalNoSrc("unhandled unary operator %s", ex.Op)
	panic("unreachable")
}

func (fl *funcLowering) lowerCast(ex ctree.Cast) ir.Ref {
	switch ex.Kind {
	case ctree.CastNoOp:
		return fl.lowerExprRvalue(ex.Operand)
	case ctree.CastLValToRVal:
		addr := fl.lowerExprLvalue(ex.Operand)
		return fl.b.AddLoad(addr, fl.ty(ex.Typ))
	case ctree.CastFunctionToPointer, ctree.CastArrayToPointer:
		return fl.lowerExprLvalue(ex.Operand)
	case ctree.CastIntCast:
		v := fl.lowerExprRvalue(ex.Operand)
		srcBits := bitSizeOf(ex.Operand.ExprType(), fl)
		dstBits := bitSizeOf(ex.Typ, fl)
		srcSigned := isSignedType(ex.Operand.ExprType())
		if op, ok := intCastOp(srcBits, dstBits, srcSigned); ok {
			return fl.b.AddConvert(op, v, fl.ty(ex.Typ))
		}
		return v
	case ctree.CastBoolToInt:
		v := fl.lowerExprRvalue(ex.Operand)
		return fl.b.AddConvert(ir.OpZext, v, fl.ty(ex.Typ))
	case ctree.CastToBool:
		v := fl.lowerExprRvalue(ex.Operand)
		zero := fl.b.AddConstant(zeroValue(ex.Operand.ExprType()), fl.ty(ex.Operand.ExprType()))
		return fl.b.AddCmp(ir.OpCmpNe, v, zero)
	default:
		diag.FatalNoSrc("unsupported cast: %s", ex.Unsupported)
	}
	panic("unreachable")
}

// lowerConditional lowers ?: and GNU ?: via a diamond CFG (the corrected
// form) instead of a value-level select, so that side effects in either
// arm run only along the branch actually taken.
func (fl *funcLowering) lowerConditional(ex ctree.Conditional) ir.Ref {
	typ := fl.ty(ex.Typ)
	size, align := cellLayout(ex.Typ, fl)
	cell := fl.b.AddAlloc(size, align)

	thenLabel := fl.b.AddLabel(fl.b.NewLabelHint("cond.then"))
	elseLabel := fl.b.AddLabel(fl.b.NewLabelHint("cond.else"))
	endLabel := fl.b.AddLabel(fl.b.NewLabelHint("cond.end"))

	condVal := fl.lowerExprRvalue(ex.Cond)
	zero := fl.b.AddConstant(zeroValue(ex.Cond.ExprType()), fl.ty(ex.Cond.ExprType()))
	cmp := fl.b.AddCmp(ir.OpCmpNe, condVal, zero)
	fl.withBranchContext(thenLabel, elseLabel, func() { fl.branch(cmp) })

	fl.b.BindLabel(thenLabel)
	oldDummy := fl.b.CondDummyRef
	fl.b.CondDummyRef = condVal
	var thenVal ir.Ref
	if ex.Then != nil {
		thenVal = fl.lowerExprRvalue(ex.Then)
	} else {
		thenVal = condVal // GNU form: a ?: c
	}
	fl.b.CondDummyRef = oldDummy
	fl.b.AddStore(cell, thenVal)
	fl.b.AddJump(endLabel)

	fl.b.BindLabel(elseLabel)
	elseVal := fl.lowerExprRvalue(ex.Else)
	fl.b.AddStore(cell, elseVal)
	fl.b.AddJump(endLabel)

	fl.b.BindLabel(endLabel)
	return fl.b.AddLoad(cell, typ)
}

func (fl *funcLowering) lowerCall(ex ctree.Call) ir.Ref {
	args := make([]ir.Ref, len(ex.Args))
	for i, a := range ex.Args {
		args[i] = fl.lowerExprRvalue(a)
	}
	if name, funcType, ok := directCallTarget(ex.Callee, fl); ok {
		callee := fl.b.AddSymbol(name, fl.ty(funcType))
		return fl.b.AddCall(callee, args, true, fl.ty(ex.Typ))
	}
	callee := fl.lowerExprRvalue(ex.Callee)
	return fl.b.AddCall(callee, args, false, fl.ty(ex.Typ))
}

// directCallTarget descends through parenthesized/addr-of/deref/implicit-
// cast wrappers looking for a decl_ref_expr that is not a local symbol, per
// the direct-call optimization.
func directCallTarget(e ctree.Expr, fl *funcLowering) (string, ctypes.Type, bool) {
	switch ex := e.(type) {
	case ctree.Paren:
		return directCallTarget(ex.Inner, fl)
	case ctree.Unary:
		if ex.Op == ctree.OpAddrOf || ex.Op == ctree.OpDeref {
			return directCallTarget(ex.Operand, fl)
		}
	case ctree.Cast:
		return directCallTarget(ex.Operand, fl)
	case ctree.DeclRef:
		if _, local := fl.b.Symbols.Lookup(ex.Name); !local {
			return ex.Name, ex.Typ, true
		}
	}
	return "", nil, false
}

// lowerExprLvalue lowers e to the address it denotes.
func (fl *funcLowering) lowerExprLvalue(e ctree.Expr) ir.Ref {
	switch ex := e.(type) {
	case ctree.StringLit:
		name := fl.anonSymbol(ex.Value)
		return fl.b.AddSymbol(name, fl.module.Interner.Ptr())
	case ctree.DeclRef:
		if ref, ok := fl.b.Symbols.Lookup(ex.Name); ok {
			return ref
		}
		return fl.b.AddSymbol(ex.Name, fl.module.Interner.Ptr())
	case ctree.Paren:
		return fl.lowerExprLvalue(ex.Inner)
	case ctree.Unary:
		if ex.Op == ctree.OpDeref {
			return fl.lowerExprRvalue(ex.Operand)
		}
	case ctree.Cast:
		if ex.Kind == ctree.CastFunctionToPointer || ex.Kind == ctree.CastArrayToPointer {
			return fl.lowerExprLvalue(ex.Operand)
		}
	}
	diag.FatalNoSrc("unhandled expression kind %T in lvalue position", e)
	panic("unreachable")
}

// anonSymbol names an anonymous global for a string literal's bytes.
// Emitting the backing global itself is a declared gap; this only
// reserves a stable, printable name for it to reference.
func (fl *funcLowering) anonSymbol(_ string) string {
	*fl.strCounter++
	return fmt.Sprintf(".str.%d", *fl.strCounter)
}
