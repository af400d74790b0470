package ctree

import (
	"fmt"
	"io"
	"strings"
)

// Printer outputs a ctree.Program in a human-readable, roughly C-like
// form. Declarations print with their types and every cast prints its
// target type and cast kind — detail pkg/cabs's printer has no reason to
// carry, since cabs nodes have no types at all. Other expressions print
// without a type.
type Printer struct {
	w      io.Writer
	indent int
}

// NewPrinter creates a new ctree printer.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, indent: 0}
}

// PrintProgram prints every skipped declaration, then every global, then
// every function, in that order.
func (p *Printer) PrintProgram(prog *Program) {
	for _, s := range prog.Skipped {
		fmt.Fprintf(p.w, "/* skipped %s */\n", s.Kind)
	}
	for _, g := range prog.Globals {
		p.printGlobal(g)
	}
	for _, fn := range prog.Functions {
		p.printFunction(fn)
		fmt.Fprintln(p.w)
	}
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
}

func (p *Printer) printGlobal(g *Global) {
	fmt.Fprintf(p.w, "%s %s", g.Type, g.Name)
	if g.Init != nil {
		fmt.Fprint(p.w, " = ")
		p.printExpr(g.Init)
	}
	fmt.Fprintln(p.w, ";")
}

func (p *Printer) printFunction(f *Function) {
	fmt.Fprintf(p.w, "%s %s(", f.ReturnType, f.Name)
	for i, param := range f.Params {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprintf(p.w, "%s %s", param.Type, param.Name)
	}
	fmt.Fprintln(p.w, ")")
	p.printCompound(f.Body)
}

func (p *Printer) printCompound(c *Compound) {
	p.writeIndent()
	fmt.Fprintln(p.w, "{")
	p.indent++
	for _, stmt := range c.Stmts {
		p.printStmt(stmt)
	}
	p.indent--
	p.writeIndent()
	fmt.Fprintln(p.w, "}")
}

func (p *Printer) printStmt(stmt Stmt) {
	p.writeIndent()
	switch s := stmt.(type) {
	case VarDecl:
		fmt.Fprintf(p.w, "%s %s", s.Type, s.Name)
		if s.Init != nil {
			fmt.Fprint(p.w, " = ")
			p.printExpr(s.Init)
		}
		fmt.Fprintln(p.w, ";")
	case Labeled:
		fmt.Fprintf(p.w, "%s:\n", s.Name)
		p.printStmt(s.Body)
	case Compound:
		p.indent--
		p.printCompound(&s)
		p.indent++
	case If:
		fmt.Fprint(p.w, "if (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		p.indent++
		p.printStmt(s.Then)
		p.indent--
		if s.Else != nil {
			p.writeIndent()
			fmt.Fprintln(p.w, "else")
			p.indent++
			p.printStmt(s.Else)
			p.indent--
		}
	case While:
		fmt.Fprint(p.w, "while (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		p.indent++
		p.printStmt(s.Body)
		p.indent--
	case DoWhile:
		fmt.Fprintln(p.w, "do")
		p.indent++
		p.printStmt(s.Body)
		p.indent--
		p.writeIndent()
		fmt.Fprint(p.w, "while (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ");")
	case For:
		fmt.Fprint(p.w, "for (")
		if s.Init != nil {
			p.printForInit(s.Init)
		}
		fmt.Fprint(p.w, "; ")
		if s.Cond != nil {
			p.printExpr(s.Cond)
		}
		fmt.Fprint(p.w, "; ")
		if s.Incr != nil {
			p.printExpr(s.Incr)
		}
		fmt.Fprintln(p.w, ")")
		p.indent++
		p.printStmt(s.Body)
		p.indent--
	case Forever:
		fmt.Fprintln(p.w, "for (;;)")
		p.indent++
		p.printStmt(s.Body)
		p.indent--
	case Switch:
		fmt.Fprint(p.w, "switch (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		p.indent++
		p.printStmt(s.Body)
		p.indent--
	case Case:
		fmt.Fprint(p.w, "case ")
		p.printExpr(s.Value)
		fmt.Fprintln(p.w, ":")
		p.indent++
		p.printStmt(s.Body)
		p.indent--
	case Default:
		fmt.Fprintln(p.w, "default:")
		p.indent++
		p.printStmt(s.Body)
		p.indent--
	case Break:
		fmt.Fprintln(p.w, "break;")
	case Continue:
		fmt.Fprintln(p.w, "continue;")
	case Return:
		fmt.Fprint(p.w, "return")
		if s.Value != nil {
			fmt.Fprint(p.w, " ")
			p.printExpr(s.Value)
		} else if s.ImplicitZero {
			fmt.Fprint(p.w, " /* implicit 0 */")
		}
		fmt.Fprintln(p.w, ";")
	case Null:
		fmt.Fprintln(p.w, ";")
	case ExprStmt:
		p.printExpr(s.Expr)
		fmt.Fprintln(p.w, ";")
	case Goto:
		fmt.Fprintf(p.w, "goto %s;\n", s.Label)
	default:
		fmt.Fprintf(p.w, "/* unknown stmt %T */;\n", stmt)
	}
}

// printForInit prints a For's Init clause, which is either a VarDecl or
// an ExprStmt (see ctree.For's doc comment).
func (p *Printer) printForInit(init Stmt) {
	switch s := init.(type) {
	case VarDecl:
		fmt.Fprintf(p.w, "%s %s", s.Type, s.Name)
		if s.Init != nil {
			fmt.Fprint(p.w, " = ")
			p.printExpr(s.Init)
		}
	case ExprStmt:
		p.printExpr(s.Expr)
	default:
		fmt.Fprintf(p.w, "/* unknown for-init %T */", init)
	}
}

func (p *Printer) printExpr(expr Expr) {
	switch e := expr.(type) {
	case IntLit:
		fmt.Fprintf(p.w, "%d", e.Value)
	case LongLit:
		fmt.Fprintf(p.w, "%dL", e.Value)
	case FloatLit:
		fmt.Fprintf(p.w, "%g", e.Value)
	case CharLit:
		fmt.Fprintf(p.w, "'\\x%02x'", e.Value)
	case EnumLit:
		fmt.Fprintf(p.w, "%d", e.Value)
	case StringLit:
		fmt.Fprintf(p.w, "%q", e.Value)
	case DeclRef:
		fmt.Fprint(p.w, e.Name)
	case Unary:
		p.printUnary(e)
	case Binary:
		p.printBinary(e)
	case Cast:
		fmt.Fprintf(p.w, "(%s:%s)", e.Typ, castKindName(e))
		p.printExpr(e.Operand)
	case Conditional:
		p.printExpr(e.Cond)
		fmt.Fprint(p.w, " ? ")
		if e.Then != nil {
			p.printExpr(e.Then)
		}
		fmt.Fprint(p.w, " : ")
		p.printExpr(e.Else)
	case CondDummyExpr:
		fmt.Fprint(p.w, "<cond>")
	case Call:
		p.printExpr(e.Callee)
		fmt.Fprint(p.w, "(")
		for i, arg := range e.Args {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			p.printExpr(arg)
		}
		fmt.Fprint(p.w, ")")
	case Paren:
		fmt.Fprint(p.w, "(")
		p.printExpr(e.Inner)
		fmt.Fprint(p.w, ")")
	default:
		fmt.Fprintf(p.w, "/* unknown expr %T */", expr)
	}
}

func castKindName(c Cast) string {
	switch c.Kind {
	case CastNoOp:
		return "noop"
	case CastLValToRVal:
		return "lval2rval"
	case CastFunctionToPointer:
		return "func2ptr"
	case CastArrayToPointer:
		return "arr2ptr"
	case CastIntCast:
		return "intcast"
	case CastBoolToInt:
		return "bool2int"
	case CastToBool:
		return "tobool"
	case CastUnsupported:
		return "unsupported:" + c.Unsupported
	default:
		return "?"
	}
}

func (p *Printer) printUnary(u Unary) {
	switch u.Op {
	case OpPostInc:
		p.printExpr(u.Operand)
		fmt.Fprint(p.w, "++")
	case OpPostDec:
		p.printExpr(u.Operand)
		fmt.Fprint(p.w, "--")
	default:
		fmt.Fprint(p.w, u.Op.String())
		p.printExpr(u.Operand)
	}
}

func (p *Printer) printBinary(b Binary) {
	p.printExpr(b.Left)
	fmt.Fprintf(p.w, " %s ", b.Op.String())
	p.printExpr(b.Right)
}
