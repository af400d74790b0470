// Package elaborate bridges pkg/cabs's parse tree to the typed ctree
// lowering input. pkg/cabs carries no type environment of its own — a
// Variable node is just a name — so this elaborator keeps a small
// block-scoped name/type table, declared the way pkg/lower's own
// ir.SymbolTable is, and uses it to recover the type of every variable
// reference. It also synthesizes the lvalue-to-rvalue and
// function-to-pointer casts a fuller semantic analyzer would already have
// attached before handing the tree to pkg/lower.
package elaborate

import (
	"strings"

	"github.com/raymyers/ralph-cc/pkg/cabs"
	"github.com/raymyers/ralph-cc/pkg/ctree"
	"github.com/raymyers/ralph-cc/pkg/ctypes"
	"github.com/raymyers/ralph-cc/pkg/diag"
	"github.com/raymyers/ralph-cc/pkg/target"
)

type elaborator struct {
	tg  *target.Spec
	env []map[string]ctypes.Type
}

// Elaborate turns a parsed cabs.Program into a ctree.Program pkg/lower can
// consume. tg supplies the byte sizes sizeof(...) and array dimensions
// fold against. Struct/union/enum/typedef declarations and function
// prototypes carry no runtime effect and are recorded as ctree.Skipped.
func Elaborate(prog *cabs.Program, tg *target.Spec) *ctree.Program {
	el := &elaborator{tg: tg}
	out := &ctree.Program{}
	for _, def := range prog.Definitions {
		switch d := def.(type) {
		case cabs.FunDef:
			if d.Body == nil {
				out.Skipped = append(out.Skipped, &ctree.Skipped{Kind: "function prototype"})
				continue
			}
			out.Functions = append(out.Functions, el.elaborateFunction(d))
		case cabs.VarDef:
			out.Globals = append(out.Globals, el.elaborateVarDef(d))
		case cabs.StructDef:
			out.Skipped = append(out.Skipped, &ctree.Skipped{Kind: "struct"})
		case cabs.UnionDef:
			out.Skipped = append(out.Skipped, &ctree.Skipped{Kind: "union"})
		case cabs.EnumDef:
			out.Skipped = append(out.Skipped, &ctree.Skipped{Kind: "enum"})
		case cabs.TypedefDef:
			out.Skipped = append(out.Skipped, &ctree.Skipped{Kind: "typedef"})
		default:
			diag.FatalNoSrc("unhandled top-level definition %T", def)
		}
	}
	return out
}

func parseTypeName(name string) ctypes.Type {
	switch strings.TrimSpace(name) {
	case "void":
		return ctypes.Void()
	case "int":
		return ctypes.Int()
	case "unsigned int", "unsigned":
		return ctypes.UInt()
	case "char":
		return ctypes.Char()
	case "unsigned char":
		return ctypes.UChar()
	case "short":
		return ctypes.Short()
	case "long":
		return ctypes.Long()
	case "float":
		return ctypes.Float()
	case "double":
		return ctypes.Double()
	default:
		diag.FatalNoSrc("unsupported type name %q", name)
	}
	panic("unreachable")
}

// cabsConstInt folds the small set of cabs expressions an array dimension
// can be written with at this front end's level: a literal, optionally
// parenthesized or negated.
func cabsConstInt(e cabs.Expr) int64 {
	switch v := e.(type) {
	case cabs.Constant:
		return v.Value
	case cabs.Paren:
		return cabsConstInt(v.Expr)
	case cabs.Unary:
		if v.Op == cabs.OpNeg {
			return -cabsConstInt(v.Expr)
		}
	}
	diag.FatalNoSrc("array dimension must be an integer constant")
	panic("unreachable")
}

// declType folds a base type spec and a declarator's array dimensions
// (outermost first, as written) into the corresponding nested ctypes.Type.
func declType(base ctypes.Type, dims []cabs.Expr) ctypes.Type {
	t := base
	for i := len(dims) - 1; i >= 0; i-- {
		t = ctypes.Array(t, cabsConstInt(dims[i]))
	}
	return t
}

func (el *elaborator) pushScope() {
	el.env = append(el.env, map[string]ctypes.Type{})
}

func (el *elaborator) popScope() {
	el.env = el.env[:len(el.env)-1]
}

func (el *elaborator) declare(name string, t ctypes.Type) {
	el.env[len(el.env)-1][name] = t
}

// lookup falls back to int for a name this table never saw declared —
// a function designator, an extern global, or any other name this
// elaborator's scope tracking doesn't reach.
func (el *elaborator) lookup(name string) ctypes.Type {
	for i := len(el.env) - 1; i >= 0; i-- {
		if t, ok := el.env[i][name]; ok {
			return t
		}
	}
	return ctypes.Int()
}

func (el *elaborator) elaborateVarDef(d cabs.VarDef) *ctree.Global {
	typ := declType(parseTypeName(d.TypeSpec), d.ArrayDims)
	var init ctree.Expr
	if d.Initializer != nil {
		init = el.elaborateExpr(d.Initializer)
	}
	return &ctree.Global{Name: d.Name, Type: typ, Init: init}
}

func (el *elaborator) elaborateFunction(fd cabs.FunDef) *ctree.Function {
	returnType := parseTypeName(fd.ReturnType)
	params := make([]ctree.Param, len(fd.Params))

	el.pushScope()
	defer el.popScope()
	for i, p := range fd.Params {
		pt := parseTypeName(p.TypeSpec)
		params[i] = ctree.Param{Name: p.Name, Type: pt}
		el.declare(p.Name, pt)
	}

	body, ok := el.elaborateStmt(fd.Body).(ctree.Compound)
	if !ok {
		diag.FatalNoSrc("function body did not elaborate to a compound statement")
	}
	_, isVoid := returnType.(ctypes.Tvoid)
	return &ctree.Function{
		Name:               fd.Name,
		Params:             params,
		ReturnType:         returnType,
		Body:               &body,
		ImplicitReturnZero: !isVoid && !alwaysReturns(body),
	}
}

// alwaysReturns is a conservative, syntactic reachability check: it only
// recognizes a trailing return or an if/else whose both arms always
// return. Loops are always treated as possibly not executing.
func alwaysReturns(s ctree.Stmt) bool {
	switch st := s.(type) {
	case ctree.Return:
		return true
	case ctree.Compound:
		if len(st.Stmts) == 0 {
			return false
		}
		return alwaysReturns(st.Stmts[len(st.Stmts)-1])
	case ctree.If:
		return st.Else != nil && alwaysReturns(st.Then) && alwaysReturns(st.Else)
	default:
		return false
	}
}

// rv wraps e in an lval_to_rval cast if it denotes an address, the way a
// semantic analyzer attaches one at every place an lvalue is consumed for
// its value.
func (el *elaborator) rv(e ctree.Expr) ctree.Expr {
	if ctree.IsLvalue(e) {
		return ctree.Cast{Kind: ctree.CastLValToRVal, Operand: e, Typ: e.ExprType()}
	}
	return e
}

func (el *elaborator) elaborateDecl(d cabs.Decl) ctree.VarDecl {
	typ := declType(parseTypeName(d.TypeSpec), d.ArrayDims)
	el.declare(d.Name, typ)
	var init ctree.Expr
	if d.Initializer != nil {
		init = el.rv(el.elaborateExpr(d.Initializer))
	}
	return ctree.VarDecl{Name: d.Name, Type: typ, Init: init}
}

func (el *elaborator) elaborateDecls(decls []cabs.Decl) ctree.Stmt {
	if len(decls) == 1 {
		return el.elaborateDecl(decls[0])
	}
	stmts := make([]ctree.Stmt, len(decls))
	for i, d := range decls {
		stmts[i] = el.elaborateDecl(d)
	}
	return ctree.Compound{Stmts: stmts}
}

func (el *elaborator) elaborateStmt(s cabs.Stmt) ctree.Stmt {
	switch st := s.(type) {
	case cabs.Return:
		if st.Expr == nil {
			return ctree.Return{}
		}
		return ctree.Return{Value: el.rv(el.elaborateExpr(st.Expr))}
	case cabs.Computation:
		return ctree.ExprStmt{Expr: el.rv(el.elaborateExpr(st.Expr))}
	case cabs.If:
		var elseStmt ctree.Stmt
		if st.Else != nil {
			elseStmt = el.elaborateStmt(st.Else)
		}
		return ctree.If{Cond: el.rv(el.elaborateExpr(st.Cond)), Then: el.elaborateStmt(st.Then), Else: elseStmt}
	case cabs.While:
		return ctree.While{Cond: el.rv(el.elaborateExpr(st.Cond)), Body: el.elaborateStmt(st.Body)}
	case cabs.DoWhile:
		return ctree.DoWhile{Cond: el.rv(el.elaborateExpr(st.Cond)), Body: el.elaborateStmt(st.Body)}
	case cabs.DeclStmt:
		return el.elaborateDecls(st.Decls)
	case cabs.For:
		return el.elaborateFor(st)
	case cabs.Break:
		return ctree.Break{}
	case cabs.Continue:
		return ctree.Continue{}
	case cabs.Switch:
		return el.elaborateSwitch(st)
	case cabs.Goto:
		return ctree.Goto{Label: st.Label}
	case cabs.Label:
		return ctree.Labeled{Name: st.Name, Body: el.elaborateStmt(st.Stmt)}
	case *cabs.Block:
		el.pushScope()
		defer el.popScope()
		stmts := make([]ctree.Stmt, len(st.Items))
		for i, item := range st.Items {
			stmts[i] = el.elaborateStmt(item)
		}
		return ctree.Compound{Stmts: stmts}
	case cabs.Block:
		return el.elaborateStmt(&st)
	}
	diag.FatalNoSrc("unhandled cabs statement %T", s)
	panic("unreachable")
}

func (el *elaborator) elaborateFor(st cabs.For) ctree.Stmt {
	el.pushScope()
	defer el.popScope()

	var init ctree.Stmt
	switch {
	case len(st.InitDecl) > 0:
		init = el.elaborateDecls(st.InitDecl)
	case st.Init != nil:
		init = ctree.ExprStmt{Expr: el.rv(el.elaborateExpr(st.Init))}
	}

	var cond, incr ctree.Expr
	if st.Cond != nil {
		cond = el.rv(el.elaborateExpr(st.Cond))
	}
	if st.Step != nil {
		incr = el.rv(el.elaborateExpr(st.Step))
	}

	if init == nil && cond == nil && incr == nil {
		return ctree.Forever{Body: el.elaborateStmt(st.Body)}
	}
	return ctree.For{Init: init, Cond: cond, Incr: incr, Body: el.elaborateStmt(st.Body)}
}

// elaborateSwitch flattens the switch's case arms into a single compound
// of Case/Default nodes in lexical order, each wrapping its own arm's
// statements. An arm with no trailing break falls into the next arm's
// label purely because lowering never inserts a jump between them — the
// same fallthrough C itself has.
func (el *elaborator) elaborateSwitch(st cabs.Switch) ctree.Stmt {
	items := make([]ctree.Stmt, len(st.Cases))
	for i, c := range st.Cases {
		body := make([]ctree.Stmt, len(c.Stmts))
		for j, s := range c.Stmts {
			body[j] = el.elaborateStmt(s)
		}
		arm := ctree.Compound{Stmts: body}
		if c.Expr == nil {
			items[i] = ctree.Default{Body: arm}
		} else {
			items[i] = ctree.Case{Value: el.elaborateExpr(c.Expr), Body: arm}
		}
	}
	return ctree.Switch{Cond: el.rv(el.elaborateExpr(st.Expr)), Body: ctree.Compound{Stmts: items}}
}

func (el *elaborator) elaborateExpr(e cabs.Expr) ctree.Expr {
	switch ex := e.(type) {
	case cabs.Constant:
		return ctree.IntLit{Value: ex.Value, Typ: ctypes.Int()}
	case cabs.CharLiteral:
		var v int64
		if len(ex.Value) > 0 {
			v = int64(ex.Value[0])
		}
		return ctree.CharLit{Value: v, Typ: ctypes.Char()}
	case cabs.StringLiteral:
		return ctree.StringLit{Value: ex.Value, Typ: ctypes.Pointer(ctypes.Char())}
	case cabs.Variable:
		return ctree.DeclRef{Name: ex.Name, Typ: el.lookup(ex.Name)}
	case cabs.Paren:
		return ctree.Paren{Inner: el.elaborateExpr(ex.Expr)}
	case cabs.Unary:
		return el.elaborateUnary(ex)
	case cabs.Binary:
		return el.elaborateBinary(ex)
	case cabs.Conditional:
		return ctree.Conditional{
			Cond: el.rv(el.elaborateExpr(ex.Cond)),
			Then: el.rv(el.elaborateExpr(ex.Then)),
			Else: el.rv(el.elaborateExpr(ex.Else)),
			Typ:  ctypes.Int(),
		}
	case cabs.Call:
		return el.elaborateCall(ex)
	case cabs.Cast:
		target := parseTypeName(ex.TypeName)
		return ctree.Cast{Kind: ctree.CastIntCast, Operand: el.rv(el.elaborateExpr(ex.Expr)), Typ: target}
	case cabs.SizeofType:
		t := parseTypeName(ex.TypeName)
		return ctree.IntLit{Value: el.byteSize(t), Typ: ctypes.UInt()}
	case cabs.SizeofExpr:
		inner := el.elaborateExpr(ex.Expr)
		return ctree.IntLit{Value: el.byteSize(inner.ExprType()), Typ: ctypes.UInt()}
	case cabs.Index:
		return el.elaborateIndex(ex)
	case cabs.Member:
		diag.FatalNoSrc("struct/union member access is not supported by this elaborator")
	}
	diag.FatalNoSrc("unhandled cabs expression %T", e)
	panic("unreachable")
}

// elaborateIndex lowers arr[idx] to *(arr + idx), the pointer-arithmetic
// form ctree's Unary/Binary set already knows how to lower, since ctree
// carries no dedicated array-index node.
func (el *elaborator) elaborateIndex(ex cabs.Index) ctree.Expr {
	base := el.rv(el.elaborateExpr(ex.Array))
	idx := el.rv(el.elaborateExpr(ex.Index))
	elemType := ctypes.Int()
	if at := ctypes.ElemType(base.ExprType()); at != nil {
		elemType = at
	}
	ptr := ctree.Binary{Op: ctree.OpAdd, Left: base, Right: idx, Typ: ctypes.Pointer(elemType)}
	return ctree.Unary{Op: ctree.OpDeref, Operand: ptr, Typ: elemType}
}

func (el *elaborator) byteSize(t ctypes.Type) int64 {
	if l, ok := t.(ctypes.Layout); ok {
		return l.ByteSize(el.tg)
	}
	return 4
}

func (el *elaborator) elaborateCall(ex cabs.Call) ctree.Expr {
	args := make([]ctree.Expr, len(ex.Args))
	for i, a := range ex.Args {
		args[i] = el.rv(el.elaborateExpr(a))
	}

	var callee ctree.Expr
	if v, ok := ex.Func.(cabs.Variable); ok {
		funcType := ctypes.Tfunction{Return: ctypes.Int(), VarArg: true}
		callee = ctree.Cast{
			Kind:    ctree.CastFunctionToPointer,
			Operand: ctree.DeclRef{Name: v.Name, Typ: funcType},
			Typ:     ctypes.Pointer(funcType),
		}
	} else {
		callee = el.rv(el.elaborateExpr(ex.Func))
	}
	return ctree.Call{Callee: callee, Args: args, Typ: ctypes.Int()}
}

func (el *elaborator) elaborateUnary(ex cabs.Unary) ctree.Expr {
	switch ex.Op {
	case cabs.OpAddrOf:
		operand := el.elaborateExpr(ex.Expr)
		return ctree.Unary{Op: ctree.OpAddrOf, Operand: operand, Typ: ctypes.Pointer(operand.ExprType())}
	case cabs.OpDeref:
		operand := el.rv(el.elaborateExpr(ex.Expr))
		elemType := ctypes.Int()
		if at := ctypes.ElemType(operand.ExprType()); at != nil {
			elemType = at
		}
		return ctree.Unary{Op: ctree.OpDeref, Operand: operand, Typ: elemType}
	case cabs.OpPreInc, cabs.OpPreDec, cabs.OpPostInc, cabs.OpPostDec:
		operand := el.elaborateExpr(ex.Expr)
		return ctree.Unary{Op: mapUnaryOp(ex.Op), Operand: operand, Typ: operand.ExprType()}
	case cabs.OpPlus:
		return el.rv(el.elaborateExpr(ex.Expr))
	default:
		operand := el.rv(el.elaborateExpr(ex.Expr))
		typ := operand.ExprType()
		if ex.Op == cabs.OpNot {
			typ = ctypes.Int()
		}
		return ctree.Unary{Op: mapUnaryOp(ex.Op), Operand: operand, Typ: typ}
	}
}

func (el *elaborator) elaborateBinary(ex cabs.Binary) ctree.Expr {
	op := mapBinaryOp(ex.Op)
	left := el.elaborateExpr(ex.Left)
	right := el.rv(el.elaborateExpr(ex.Right))
	typ := left.ExprType()
	switch {
	case op == ctree.OpAssign || op.IsCompoundAssign():
		return ctree.Binary{Op: op, Left: left, Right: right, Typ: typ}
	case op == ctree.OpLogAnd || op == ctree.OpLogOr || (op >= ctree.OpEq && op <= ctree.OpGte):
		return ctree.Binary{Op: op, Left: el.rv(left), Right: right, Typ: ctypes.Int()}
	default:
		return ctree.Binary{Op: op, Left: el.rv(left), Right: right, Typ: el.rv(left).ExprType()}
	}
}

func mapBinaryOp(op cabs.BinaryOp) ctree.BinaryOp {
	switch op {
	case cabs.OpAdd:
		return ctree.OpAdd
	case cabs.OpSub:
		return ctree.OpSub
	case cabs.OpMul:
		return ctree.OpMul
	case cabs.OpDiv:
		return ctree.OpDiv
	case cabs.OpMod:
		return ctree.OpMod
	case cabs.OpLt:
		return ctree.OpLt
	case cabs.OpLe:
		return ctree.OpLte
	case cabs.OpGt:
		return ctree.OpGt
	case cabs.OpGe:
		return ctree.OpGte
	case cabs.OpEq:
		return ctree.OpEq
	case cabs.OpNe:
		return ctree.OpNe
	case cabs.OpAnd:
		return ctree.OpLogAnd
	case cabs.OpOr:
		return ctree.OpLogOr
	case cabs.OpBitAnd:
		return ctree.OpBitAnd
	case cabs.OpBitOr:
		return ctree.OpBitOr
	case cabs.OpBitXor:
		return ctree.OpBitXor
	case cabs.OpShl:
		return ctree.OpShl
	case cabs.OpShr:
		return ctree.OpShr
	case cabs.OpAssign:
		return ctree.OpAssign
	case cabs.OpAddAssign:
		return ctree.OpAddAssign
	case cabs.OpSubAssign:
		return ctree.OpSubAssign
	case cabs.OpMulAssign:
		return ctree.OpMulAssign
	case cabs.OpDivAssign:
		return ctree.OpDivAssign
	case cabs.OpModAssign:
		return ctree.OpModAssign
	case cabs.OpAndAssign:
		return ctree.OpAndAssign
	case cabs.OpOrAssign:
		return ctree.OpOrAssign
	case cabs.OpXorAssign:
		return ctree.OpXorAssign
	case cabs.OpShlAssign:
		return ctree.OpShlAssign
	case cabs.OpShrAssign:
		return ctree.OpShrAssign
	case cabs.OpComma:
		return ctree.OpComma
	}
	diag.FatalNoSrc("unhandled cabs binary operator %s", op)
	panic("unreachable")
}

func mapUnaryOp(op cabs.UnaryOp) ctree.UnaryOp {
	switch op {
	case cabs.OpNeg:
		return ctree.OpNeg
	case cabs.OpNot:
		return ctree.OpNot
	case cabs.OpBitNot:
		return ctree.OpBitNot
	case cabs.OpPreInc:
		return ctree.OpPreInc
	case cabs.OpPreDec:
		return ctree.OpPreDec
	case cabs.OpPostInc:
		return ctree.OpPostInc
	case cabs.OpPostDec:
		return ctree.OpPostDec
	case cabs.OpAddrOf:
		return ctree.OpAddrOf
	case cabs.OpDeref:
		return ctree.OpDeref
	case cabs.OpPlus:
		return ctree.OpPlus
	}
	diag.FatalNoSrc("unhandled cabs unary operator %s", op)
	panic("unreachable")
}
