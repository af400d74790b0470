package lower

import (
	"strings"
	"testing"

	"github.com/raymyers/ralph-cc/pkg/ctree"
	"github.com/raymyers/ralph-cc/pkg/ctypes"
)

// if (1 && n) ...: a constant-true left operand folds to lowering the
// right operand alone — no and.true label, no extra branch.
func TestLowerBoolAndConstantTrueFoldsToRightOperand(t *testing.T) {
	body := &ctree.Compound{Stmts: []ctree.Stmt{
		ctree.If{
			Cond: ctree.Binary{
				Op:    ctree.OpLogAnd,
				Left:  ctree.IntLit{Value: 1, Typ: ctypes.Int()},
				Right: ctree.Cast{Kind: ctree.CastLValToRVal, Operand: ctree.DeclRef{Name: "n", Typ: ctypes.Int()}, Typ: ctypes.Int()},
				Typ:   ctypes.Int(),
			},
			Then: ctree.Return{Value: ctree.IntLit{Value: 1, Typ: ctypes.Int()}},
			Else: ctree.Return{Value: ctree.IntLit{Value: 0, Typ: ctypes.Int()}},
		},
	}}
	prog := &ctree.Program{Functions: []*ctree.Function{
		{Name: "f", Params: []ctree.Param{{Name: "n", Type: ctypes.Int()}}, ReturnType: ctypes.Int(), Body: body},
	}}

	out := lowerAndPrint(t, prog)
	if strings.Contains(out, "and.true") {
		t.Errorf("constant-true && left operand should fold without an and.true label, got:\n%s", out)
	}
	if n := strings.Count(out, "branch "); n != 1 {
		t.Errorf("expected exactly one branch (from the folded right operand alone), found %d in:\n%s", n, out)
	}
}

// if (0 && sideEffect()) ...: a constant-false left operand must short
// circuit without ever lowering the right operand's side effect.
func TestLowerBoolAndConstantFalseShortCircuitsRight(t *testing.T) {
	body := &ctree.Compound{Stmts: []ctree.Stmt{
		ctree.If{
			Cond: ctree.Binary{
				Op:    ctree.OpLogAnd,
				Left:  ctree.IntLit{Value: 0, Typ: ctypes.Int()},
				Right: ctree.Call{Callee: ctree.DeclRef{Name: "sideEffect", Typ: ctypes.Int()}, Typ: ctypes.Int()},
				Typ:   ctypes.Int(),
			},
			Then: ctree.Return{Value: ctree.IntLit{Value: 1, Typ: ctypes.Int()}},
			Else: ctree.Return{Value: ctree.IntLit{Value: 0, Typ: ctypes.Int()}},
		},
	}}
	prog := &ctree.Program{Functions: []*ctree.Function{
		{Name: "f", ReturnType: ctypes.Int(), Body: body},
	}}

	out := lowerAndPrint(t, prog)
	if strings.Contains(out, "call ") {
		t.Errorf("constant-false && should short-circuit without lowering its right operand, got:\n%s", out)
	}
	if strings.Contains(out, "and.true") {
		t.Errorf("constant-false && should not allocate an and.true label, got:\n%s", out)
	}
	if !strings.Contains(out, "jump L") {
		t.Errorf("expected a direct jump for the folded false operand, got:\n%s", out)
	}
}

// return a && b; — scenario 6: && used as a value builds the
// true/false/join diamond and zext's the joined i1 to the result type.
func TestLowerLogicalValueAndShape(t *testing.T) {
	body := &ctree.Compound{Stmts: []ctree.Stmt{
		ctree.Return{Value: ctree.Binary{
			Op:    ctree.OpLogAnd,
			Left:  ctree.Cast{Kind: ctree.CastLValToRVal, Operand: ctree.DeclRef{Name: "a", Typ: ctypes.Int()}, Typ: ctypes.Int()},
			Right: ctree.Cast{Kind: ctree.CastLValToRVal, Operand: ctree.DeclRef{Name: "b", Typ: ctypes.Int()}, Typ: ctypes.Int()},
			Typ:   ctypes.Int(),
		}},
	}}
	prog := &ctree.Program{Functions: []*ctree.Function{
		{
			Name:       "f",
			Params:     []ctree.Param{{Name: "a", Type: ctypes.Int()}, {Name: "b", Type: ctypes.Int()}},
			ReturnType: ctypes.Int(),
			Body:       body,
		},
	}}

	out := lowerAndPrint(t, prog)
	for _, want := range []string{"bool_and.true", "bool_and.false", "bool_and.join", "and.true"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected label %q in the short-circuit diamond, got:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "cmp_ne "); n != 2 {
		t.Errorf("expected 2 cmp_ne comparisons (one per operand's truthiness test), found %d in:\n%s", n, out)
	}
	if !strings.Contains(out, "zext ") {
		t.Errorf("expected the joined i1 to be zext'd to the result type, got:\n%s", out)
	}
}
