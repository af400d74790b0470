package ir

import (
	"bytes"
	"strings"
	"testing"
)

func newTestBuilder() (*Module, *Function, *Builder) {
	m := NewModule()
	fn := NewFunction("f", nil, m.Interner.Int(32))
	b := NewBuilder(fn, m.Interner)
	m.AddFunction(fn)
	return m, fn, b
}

// AddLabel reserves a buffer slot but does not enter the body; only
// BindLabel does, and it does so exactly at the point it is called.
func TestAddLabelDoesNotBindUntilBindLabel(t *testing.T) {
	_, fn, b := newTestBuilder()
	lbl := b.AddLabel("x")
	if len(fn.Body) != 0 {
		t.Fatalf("expected AddLabel alone not to append to Body, got %v", fn.Body)
	}
	b.BindLabel(lbl)
	if len(fn.Body) != 1 || fn.Body[0] != lbl {
		t.Fatalf("expected BindLabel to append the label's ref exactly once, got %v", fn.Body)
	}
	b.AddRet()
	if len(fn.Body) != 2 {
		t.Fatalf("expected the ret to append its own ref too, got %v", fn.Body)
	}
}

// Calling BindLabel twice for the same ref (the bug PatchSwitch's callers
// must avoid) prints that label's line twice in a row.
func TestDoubleBindPrintsLabelTwice(t *testing.T) {
	m, fn, b := newTestBuilder()
	lbl := b.AddLabel("dup")
	b.BindLabel(lbl)
	b.BindLabel(lbl)
	b.AddRet()

	var buf bytes.Buffer
	NewPrinter(&buf).PrintFunction(m, fn)
	out := buf.String()
	if n := strings.Count(out, "dup ("); n != 2 {
		t.Fatalf("expected a double bind to print the label twice, found %d in:\n%s", n, out)
	}
}

// ReserveSwitch/AppendCase/PatchSwitch: the case list recorded through the
// arena is exactly what ends up in the patched instruction's payload.
func TestArenaCaseListRoundTripsThroughPatchSwitch(t *testing.T) {
	m, fn, b := newTestBuilder()
	val := b.AddConstant(IntValue(1), m.Interner.Int(32))
	switchRef := b.ReserveSwitch(val)
	ctx := &SwitchContext{Value: val, SwitchRef: switchRef, CaseList: fn.Arena.NewCaseList(), Default: NoRef}
	caseLabel := b.AddLabel("case.1")
	b.BindLabel(caseLabel)
	b.AppendCase(ctx, SwitchCase{Value: m.Interner.InternConstant(IntValue(1)), Label: caseLabel})
	endLabel := b.AddLabel("end")
	b.BindLabel(endLabel)
	b.PatchSwitch(ctx, endLabel)

	payload := fn.Buffer[switchRef].Payload.(SwitchPayload)
	if len(payload.Cases) != 1 || payload.Cases[0].Label != caseLabel {
		t.Fatalf("expected the patched switch to carry the arena's case list, got %+v", payload)
	}
	if payload.Default != endLabel {
		t.Fatalf("expected a switch with no explicit default to fall back to end, got default=%d want=%d", payload.Default, endLabel)
	}
}

// AddBranch refuses to emit without a branch context: lowering a boolean
// expression outside an if/while/for/switch condition is a caller bug.
func TestAddBranchWithoutContextReturnsError(t *testing.T) {
	_, _, b := newTestBuilder()
	cond := b.AddConstant(IntValue(1), b.Interner.I1())
	if _, err := b.AddBranch(cond); err != ErrNoBranchContext {
		t.Fatalf("expected ErrNoBranchContext with no branch context set, got %v", err)
	}
}

// AddSelect is unused by pkg/lower's diamond-CFG ternary lowering, but it
// remains a builder primitive the opcode set defines and the printer
// renders.
func TestAddSelectEmitsSelectInstruction(t *testing.T) {
	m, fn, b := newTestBuilder()
	typ := m.Interner.Int(32)
	cond := b.AddConstant(IntValue(1), m.Interner.I1())
	then := b.AddConstant(IntValue(2), typ)
	els := b.AddConstant(IntValue(3), typ)
	sel := b.AddSelect(cond, then, els, typ)

	var buf bytes.Buffer
	NewPrinter(&buf).PrintFunction(m, fn)
	out := buf.String()
	want := "select %0, %1, %2 : int(32)"
	if !strings.Contains(out, want) {
		t.Fatalf("expected %q in printed select instruction, got:\n%s", want, out)
	}
	if fn.Buffer[sel].Op != OpSelect {
		t.Fatalf("expected OpSelect, got %v", fn.Buffer[sel].Op)
	}
}

// The interner canonicalizes structurally identical types and constants:
// two independently-built int(32) TypeDescs and two IntValue(7)s each
// collapse to one pool entry.
func TestInternerCanonicalizesTypesAndConstants(t *testing.T) {
	in := NewInterner()
	a := in.Int(32)
	b := in.Int(32)
	if a != b {
		t.Errorf("expected two int(32) interns to share one TypeRef, got %d and %d", a, b)
	}
	c1 := in.InternConstant(IntValue(7))
	c2 := in.InternConstant(IntValue(7))
	if c1 != c2 {
		t.Errorf("expected two IntValue(7) interns to share one ValueRef, got %d and %d", c1, c2)
	}
}

// SymbolTable.Lookup favors the innermost declaration, and ExitScope
// unwinds exactly back to the depth EnterScope recorded.
func TestSymbolTableShadowingAndScopeExit(t *testing.T) {
	s := NewSymbolTable()
	s.Declare("x", Ref(1))
	depth := s.EnterScope()
	s.Declare("x", Ref(2))
	if ref, ok := s.Lookup("x"); !ok || ref != 2 {
		t.Fatalf("expected the inner declaration to shadow the outer one, got %d, %v", ref, ok)
	}
	s.ExitScope(depth)
	if ref, ok := s.Lookup("x"); !ok || ref != 1 {
		t.Fatalf("expected the outer declaration to resurface after ExitScope, got %d, %v", ref, ok)
	}
}
