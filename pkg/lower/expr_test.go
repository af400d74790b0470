package lower

import (
	"regexp"
	"strings"
	"testing"

	"github.com/raymyers/ralph-cc/pkg/ctree"
	"github.com/raymyers/ralph-cc/pkg/ctypes"
)

// n ? thenSide() : elseSide() — the diamond-CFG fix: each arm's call must
// only appear between its own label and the jump to cond.end, never
// unconditionally alongside the other arm.
func TestLowerConditionalGatesSideEffectsByArm(t *testing.T) {
	body := &ctree.Compound{Stmts: []ctree.Stmt{
		ctree.Return{Value: ctree.Conditional{
			Cond: ctree.Cast{Kind: ctree.CastLValToRVal, Operand: ctree.DeclRef{Name: "n", Typ: ctypes.Int()}, Typ: ctypes.Int()},
			Then: ctree.Call{Callee: ctree.DeclRef{Name: "thenSide", Typ: ctypes.Int()}, Typ: ctypes.Int()},
			Else: ctree.Call{Callee: ctree.DeclRef{Name: "elseSide", Typ: ctypes.Int()}, Typ: ctypes.Int()},
			Typ:  ctypes.Int(),
		}},
	}}
	prog := &ctree.Program{Functions: []*ctree.Function{
		{Name: "f", Params: []ctree.Param{{Name: "n", Type: ctypes.Int()}}, ReturnType: ctypes.Int(), Body: body},
	}}

	out := lowerAndPrint(t, prog)
	idxThenLabel := strings.Index(out, "cond.then")
	idxElseLabel := strings.Index(out, "cond.else")
	idxThenCall := strings.Index(out, `"thenSide"`)
	idxElseCall := strings.Index(out, `"elseSide"`)
	if idxThenLabel < 0 || idxElseLabel < 0 || idxThenCall < 0 || idxElseCall < 0 {
		t.Fatalf("expected cond.then/cond.else labels and both calls in output, got:\n%s", out)
	}
	if !(idxThenLabel < idxThenCall && idxThenCall < idxElseLabel && idxElseLabel < idxElseCall) {
		t.Errorf("expected thenSide's call strictly inside the then-arm and elseSide's call strictly inside the else-arm, got:\n%s", out)
	}
	if n := strings.Count(out, "store %"); n < 2 {
		t.Errorf("expected each arm to independently store its value into the result cell, found %d stores in:\n%s", n, out)
	}
}

// n += 5 — the corrected load->op->store form: the binary op's left
// operand is the loaded value, not the lvalue address itself, and the
// store targets the same address the load read from.
func TestLowerCompoundAssignLoadOpStore(t *testing.T) {
	body := &ctree.Compound{Stmts: []ctree.Stmt{
		ctree.ExprStmt{Expr: ctree.Binary{
			Op:    ctree.OpAddAssign,
			Left:  ctree.DeclRef{Name: "n", Typ: ctypes.Int()},
			Right: ctree.IntLit{Value: 5, Typ: ctypes.Int()},
			Typ:   ctypes.Int(),
		}},
	}}
	prog := &ctree.Program{Functions: []*ctree.Function{
		{Name: "f", Params: []ctree.Param{{Name: "n", Type: ctypes.Int()}}, ReturnType: ctypes.Void(), Body: body},
	}}

	out := lowerAndPrint(t, prog)
	pattern := regexp.MustCompile(`%(\d+) = load %(\d+) : int\(32\)\n  %(\d+) = add %(\d+), %\d+ : int\(32\)\n  %\d+ = store %(\d+), %(\d+)\n`)
	m := pattern.FindStringSubmatch(out)
	if m == nil || m[4] != m[1] || m[5] != m[2] || m[6] != m[3] {
		t.Errorf("expected a load, then add using the loaded value, then a store back to the same address, got:\n%s", out)
	}
}
