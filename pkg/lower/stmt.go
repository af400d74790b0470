package lower

import (
	"github.com/raymyers/ralph-cc/pkg/ctree"
	"github.com/raymyers/ralph-cc/pkg/diag"
	"github.com/raymyers/ralph-cc/pkg/ir"
)

// lowerStmt lowers one statement, threading the builder's
// break/continue labels and switch context through nested control flow.
func (fl *funcLowering) lowerStmt(s ctree.Stmt) {
	switch st := s.(type) {
	case ctree.VarDecl:
		fl.lowerVarDecl(st)
	case ctree.Labeled:
		lbl := fl.b.AddLabel(fl.b.NewLabelHint("label." + st.Name))
		fl.b.BindLabel(lbl)
		fl.lowerStmt(st.Body)
	case ctree.Compound:
		fl.lowerCompound(st)
	case *ctree.Compound:
		fl.lowerCompound(*st)
	case ctree.If:
		fl.lowerIf(st)
	case ctree.While:
		fl.lowerWhile(st)
	case ctree.DoWhile:
		fl.lowerDoWhile(st)
	case ctree.For:
		fl.lowerFor(st)
	case ctree.Forever:
		fl.lowerForever(st)
	case ctree.Switch:
		fl.lowerSwitch(st)
	case ctree.Case:
		fl.lowerCase(st)
	case ctree.Default:
		fl.lowerDefault(st)
	case ctree.Break:
		if fl.b.BreakLabel == ir.NoRef {
			diag.FatalNoSrc("break outside a loop or switch")
		}
		fl.b.AddJump(fl.b.BreakLabel)
	case ctree.Continue:
		if fl.b.ContinueLabel == ir.NoRef {
			diag.FatalNoSrc("continue outside a loop")
		}
		fl.b.AddJump(fl.b.ContinueLabel)
	case ctree.Return:
		fl.lowerReturn(st)
	case ctree.Null:
		// no-op
	case ctree.ExprStmt:
		fl.lowerExprRvalue(st.Expr)
	case ctree.Goto:
		// Named-label resolution is a declared gap: labels are lowered
		// where they appear, but there is no map from name to label ref
		// for a goto to jump through.
		diag.FatalNoSrc("goto %q is unsupported (named-label resolution is a declared gap)", st.Label)
	default:
		diag.FatalNoSrc("unhandled statement kind %T", s)
	}
}

func (fl *funcLowering) lowerVarDecl(st ctree.VarDecl) {
	size, align := cellLayout(st.Type, fl)
	addr := fl.b.AddAlloc(size, align)
	fl.b.Symbols.Declare(st.Name, addr)
	if st.Init != nil {
		v := fl.lowerExprRvalue(st.Init)
		fl.b.AddStore(addr, v)
	}
}

func (fl *funcLowering) lowerCompound(st ctree.Compound) {
	depth := fl.b.Symbols.EnterScope()
	for _, child := range st.Stmts {
		fl.lowerStmt(child)
	}
	fl.b.Symbols.ExitScope(depth)
}

func (fl *funcLowering) lowerIf(st ctree.If) {
	thenLabel := fl.b.AddLabel(fl.b.NewLabelHint("if.then"))
	endLabel := fl.b.AddLabel(fl.b.NewLabelHint("if.end"))

	if st.Else == nil {
		fl.withBranchContext(thenLabel, endLabel, func() { fl.lowerBool(st.Cond) })
		fl.b.BindLabel(thenLabel)
		fl.lowerStmt(st.Then)
		fl.b.BindLabel(endLabel)
		return
	}

	elseLabel := fl.b.AddLabel(fl.b.NewLabelHint("if.else"))
	fl.withBranchContext(thenLabel, elseLabel, func() { fl.lowerBool(st.Cond) })
	fl.b.BindLabel(thenLabel)
	fl.lowerStmt(st.Then)
	fl.b.AddJump(endLabel)
	fl.b.BindLabel(elseLabel)
	fl.lowerStmt(st.Else)
	fl.b.BindLabel(endLabel)
}

func (fl *funcLowering) lowerWhile(st ctree.While) {
	condLabel := fl.b.AddLabel(fl.b.NewLabelHint("while.cond"))
	fl.b.BindLabel(condLabel)
	thenLabel := fl.b.AddLabel(fl.b.NewLabelHint("while.then"))
	endLabel := fl.b.AddLabel(fl.b.NewLabelHint("while.end"))

	fl.withBranchContext(thenLabel, endLabel, func() { fl.lowerBool(st.Cond) })
	fl.b.BindLabel(thenLabel)

	oldBreak, oldCont := fl.b.BreakLabel, fl.b.ContinueLabel
	fl.b.BreakLabel, fl.b.ContinueLabel = endLabel, condLabel
	fl.lowerStmt(st.Body)
	fl.b.BreakLabel, fl.b.ContinueLabel = oldBreak, oldCont

	fl.b.AddJump(condLabel)
	fl.b.BindLabel(endLabel)
}

func (fl *funcLowering) lowerDoWhile(st ctree.DoWhile) {
	thenLabel := fl.b.AddLabel(fl.b.NewLabelHint("do.then"))
	fl.b.BindLabel(thenLabel)
	condLabel := fl.b.AddLabel(fl.b.NewLabelHint("do.cond"))
	endLabel := fl.b.AddLabel(fl.b.NewLabelHint("do.end"))

	oldBreak, oldCont := fl.b.BreakLabel, fl.b.ContinueLabel
	fl.b.BreakLabel, fl.b.ContinueLabel = endLabel, condLabel
	fl.lowerStmt(st.Body)
	fl.b.BreakLabel, fl.b.ContinueLabel = oldBreak, oldCont

	fl.b.BindLabel(condLabel)
	fl.withBranchContext(thenLabel, endLabel, func() { fl.lowerBool(st.Cond) })
	fl.b.BindLabel(endLabel)
}

func (fl *funcLowering) lowerFor(st ctree.For) {
	depth := fl.b.Symbols.EnterScope()
	if st.Init != nil {
		fl.lowerStmt(st.Init)
	}

	var condLabel ir.Ref = ir.NoRef
	if st.Cond != nil {
		condLabel = fl.b.AddLabel(fl.b.NewLabelHint("for.cond"))
		fl.b.BindLabel(condLabel)
	}
	thenLabel := fl.b.AddLabel(fl.b.NewLabelHint("for.then"))
	contLabel := fl.b.AddLabel(fl.b.NewLabelHint("for.cont"))
	endLabel := fl.b.AddLabel(fl.b.NewLabelHint("for.end"))

	if st.Cond != nil {
		fl.withBranchContext(thenLabel, endLabel, func() { fl.lowerBool(st.Cond) })
	}
	fl.b.BindLabel(thenLabel)

	oldBreak, oldCont := fl.b.BreakLabel, fl.b.ContinueLabel
	fl.b.BreakLabel, fl.b.ContinueLabel = endLabel, contLabel
	fl.lowerStmt(st.Body)
	fl.b.BreakLabel, fl.b.ContinueLabel = oldBreak, oldCont

	fl.b.BindLabel(contLabel)
	if st.Incr != nil {
		fl.lowerExprRvalue(st.Incr)
	}
	if st.Cond != nil {
		fl.b.AddJump(condLabel)
	} else {
		fl.b.AddJump(thenLabel)
	}
	fl.b.BindLabel(endLabel)
	fl.b.Symbols.ExitScope(depth)
}

func (fl *funcLowering) lowerForever(st ctree.Forever) {
	thenLabel := fl.b.AddLabel(fl.b.NewLabelHint("forever.then"))
	fl.b.BindLabel(thenLabel)
	endLabel := fl.b.AddLabel(fl.b.NewLabelHint("forever.end"))

	oldBreak, oldCont := fl.b.BreakLabel, fl.b.ContinueLabel
	fl.b.BreakLabel, fl.b.ContinueLabel = endLabel, thenLabel
	fl.lowerStmt(st.Body)
	fl.b.BreakLabel, fl.b.ContinueLabel = oldBreak, oldCont

	fl.b.AddJump(thenLabel)
	fl.b.BindLabel(endLabel)
}

func (fl *funcLowering) lowerSwitch(st ctree.Switch) {
	value := fl.lowerExprRvalue(st.Cond)
	switchRef := fl.b.ReserveSwitch(value)
	ctx := &ir.SwitchContext{Value: value, SwitchRef: switchRef, CaseList: fl.b.Func.Arena.NewCaseList(), Default: ir.NoRef}
	endLabel := fl.b.AddLabel(fl.b.NewLabelHint("switch.end"))

	oldBreak, oldSwitch := fl.b.BreakLabel, fl.b.SwitchCtx
	fl.b.BreakLabel, fl.b.SwitchCtx = endLabel, ctx
	fl.lowerStmt(st.Body)
	fl.b.BreakLabel, fl.b.SwitchCtx = oldBreak, oldSwitch

	// The end label binds exactly once, here — fixing an earlier version's
	// double bind.
	fl.b.BindLabel(endLabel)
	fl.b.PatchSwitch(ctx, endLabel)
}

func (fl *funcLowering) lowerCase(st ctree.Case) {
	if fl.b.SwitchCtx == nil {
		diag.FatalNoSrc("case label outside a switch")
	}
	v, ok := st.Value.Const()
	if !ok {
		diag.FatalNoSrc("case label is not a compile-time constant")
	}
	label := fl.b.AddLabel(fl.b.NewLabelHint("switch.case"))
	fl.b.BindLabel(label)
	fl.b.AppendCase(fl.b.SwitchCtx, ir.SwitchCase{Value: fl.b.Interner.InternConstant(constToValue(v)), Label: label})
	fl.lowerStmt(st.Body)
}

func (fl *funcLowering) lowerDefault(st ctree.Default) {
	if fl.b.SwitchCtx == nil {
		diag.FatalNoSrc("default label outside a switch")
	}
	label := fl.b.AddLabel(fl.b.NewLabelHint("switch.default"))
	fl.b.BindLabel(label)
	fl.b.SwitchCtx.Default = label
	fl.lowerStmt(st.Body)
}

func constToValue(v any) ir.Value {
	switch x := v.(type) {
	case int64:
		return ir.IntValue(x)
	case float64:
		return ir.FloatValue(x)
	case string:
		return ir.StringValue(x)
	default:
		return ir.IntValue(0)
	}
}

func (fl *funcLowering) lowerReturn(st ctree.Return) {
	if st.Value != nil {
		v := fl.lowerExprRvalue(st.Value)
		fl.b.AddRetValue(v, fl.ty(st.Value.ExprType()))
	}
	fl.b.AddJump(fl.b.Func.ReturnLabel)
}
