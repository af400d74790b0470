// Package lower is the AST-to-IR lowering pass: it turns a typed ctree
// program into the flat, label-and-jump ir.Module pkg/ir defines, following
// the scoping, branch-context, and type-lowering rules worked out in
// types.go, operators.go, bool.go, expr.go, and stmt.go.
package lower

import (
	"github.com/raymyers/ralph-cc/pkg/ctree"
	"github.com/raymyers/ralph-cc/pkg/ctypes"
	"github.com/raymyers/ralph-cc/pkg/diag"
	"github.com/raymyers/ralph-cc/pkg/ir"
	"github.com/raymyers/ralph-cc/pkg/target"
)

// funcLowering is the per-function lowering state: the shared module/
// target the whole program lowers against, this function's builder, and
// the C return type the function's implicit-return-zero handling needs.
type funcLowering struct {
	module      *ir.Module
	target      *target.Spec
	b           *ir.Builder
	returnCType ctypes.Type
	strCounter  *int
}

// LowerProgram lowers an entire translation unit. It recovers the single
// *diag.FatalError panic type the rest of this package raises on an
// unsupported construct or a violated invariant, and reports it as an
// ordinary error instead, so callers get a plain error value as they do
// from pkg/parser's Errors() and cmd/ralph-cc's RunE functions.
func LowerProgram(prog *ctree.Program, tg *target.Spec) (m *ir.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(*diag.FatalError); ok {
				err = fe
				return
			}
			panic(r)
		}
	}()

	m = ir.NewModule()
	strCounter := 0

	for _, g := range prog.Globals {
		lowerGlobal(m, g, tg)
	}
	for _, fn := range prog.Functions {
		m.AddFunction(lowerFunction(m, tg, &strCounter, fn))
	}
	return m, nil
}

// lowerGlobal emits a Global with a lowered type and, when the initializer
// itself carries a pre-computed constant, its value. A non-constant
// initializer is a declared gap: global data emission is largely a
// stub in this core.
func lowerGlobal(m *ir.Module, g *ctree.Global, tg *target.Spec) {
	typ := LowerType(g.Type, tg, m.Interner)
	global := &ir.Global{Name: g.Name, Type: typ}
	if g.Init != nil {
		if v, ok := g.Init.Const(); ok {
			cv := constToValue(v)
			global.Init = &cv
		}
	}
	m.AddGlobal(global)
}

func lowerFunction(m *ir.Module, tg *target.Spec, strCounter *int, fn *ctree.Function) *ir.Function {
	paramTypes := make([]ir.TypeRef, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = LowerType(p.Type, tg, m.Interner)
	}
	returnType := LowerType(fn.ReturnType, tg, m.Interner)

	irFn := ir.NewFunction(fn.Name, paramTypes, returnType)
	b := ir.NewBuilder(irFn, m.Interner)
	fl := &funcLowering{module: m, target: tg, b: b, returnCType: fn.ReturnType, strCounter: strCounter}

	// Seed each parameter: an arg instruction, an alloc to give it a
	// memory cell, and the store binding the arg value into that cell —
	// for each arg slot i, the alloc+store pair immediately following
	// binds the parameter.
	for i, p := range fn.Params {
		argRef := b.AddArg(i, paramTypes[i])
		size, align := cellLayout(p.Type, fl)
		addr := b.AddAlloc(size, align)
		b.AddStore(addr, argRef)
		b.Symbols.Declare(p.Name, addr)
	}

	returnLabel := b.AddLabel("return")
	irFn.ReturnLabel = returnLabel

	fl.lowerStmt(*fn.Body)

	b.BindLabel(returnLabel)
	if fn.ImplicitReturnZero {
		zero := b.AddConstant(zeroValue(fn.ReturnType), returnType)
		b.AddRetValue(zero, returnType)
	} else {
		b.AddRet()
	}

	return irFn
}
