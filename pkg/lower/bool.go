package lower

import (
	"github.com/raymyers/ralph-cc/pkg/ctree"
	"github.com/raymyers/ralph-cc/pkg/diag"
	"github.com/raymyers/ralph-cc/pkg/ir"
)

// withBranchContext runs fn with the builder's branch context set to
// {t,f}, then restores whatever context was active before — the scoped
// save/restore discipline required for every site that
// overwrites branch_context.
func (fl *funcLowering) withBranchContext(t, f ir.Ref, fn func()) {
	old := fl.b.BranchCtx
	fl.b.BranchCtx = &ir.BranchContext{True: t, False: f}
	fn()
	fl.b.BranchCtx = old
}

func (fl *funcLowering) branch(cond ir.Ref) {
	if _, err := fl.b.AddBranch(cond); err != nil {
		diag.FatalNoSrc("%v", err)
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}

// lowerBool is the branch-context protocol's entry point: it emits
// instructions that transfer control to the current branch context's
// true_label or false_label, and sets no result reference.
func (fl *funcLowering) lowerBool(e ctree.Expr) {
	if p, ok := e.(ctree.Paren); ok {
		fl.lowerBool(p.Inner)
		return
	}

	switch ex := e.(type) {
	case ctree.Binary:
		switch ex.Op {
		case ctree.OpLogOr:
			fl.lowerBoolOr(ex)
			return
		case ctree.OpLogAnd:
			fl.lowerBoolAnd(ex)
			return
		}
		if isComparison(ex.Op) {
			lhs := fl.lowerExprRvalue(ex.Left)
			rhs := fl.lowerExprRvalue(ex.Right)
			op, _ := arithOp(ex.Op)
			cmp := fl.b.AddCmp(op, lhs, rhs)
			fl.branch(cmp)
			return
		}
	case ctree.Unary:
		if ex.Op == ctree.OpNot {
			outer := fl.b.BranchCtx
			fl.withBranchContext(outer.False, outer.True, func() { fl.lowerBool(ex.Operand) })
			return
		}
	case ctree.Cast:
		if ex.Kind == ctree.CastBoolToInt {
			v := fl.lowerExprRvalue(ex.Operand)
			fl.branch(v)
			return
		}
	}

	// Any other expression kind: lower as an integer rvalue,
	// compare-not-equal-to-zero, branch on the i1.
	v := fl.lowerExprRvalue(e)
	zero := fl.b.AddConstant(zeroValue(e.ExprType()), fl.ty(e.ExprType()))
	cmp := fl.b.AddCmp(ir.OpCmpNe, v, zero)
	fl.branch(cmp)
}

func (fl *funcLowering) lowerBoolOr(ex ctree.Binary) {
	outer := fl.b.BranchCtx
	if v, ok := ex.Left.Const(); ok {
		if truthy(v) {
			fl.b.AddJump(outer.True)
		} else {
			fl.lowerBool(ex.Right)
		}
		return
	}
	falseLabel := fl.b.AddLabel(fl.b.NewLabelHint("or.false"))
	fl.withBranchContext(outer.True, falseLabel, func() { fl.lowerBool(ex.Left) })
	fl.b.BindLabel(falseLabel)
	fl.lowerBool(ex.Right)
}

func (fl *funcLowering) lowerBoolAnd(ex ctree.Binary) {
	outer := fl.b.BranchCtx
	if v, ok := ex.Left.Const(); ok {
		if !truthy(v) {
			fl.b.AddJump(outer.False)
		} else {
			fl.lowerBool(ex.Right)
		}
		return
	}
	trueLabel := fl.b.AddLabel(fl.b.NewLabelHint("and.true"))
	fl.withBranchContext(trueLabel, outer.False, func() { fl.lowerBool(ex.Left) })
	fl.b.BindLabel(trueLabel)
	fl.lowerBool(ex.Right)
}
