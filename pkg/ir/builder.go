package ir

import (
	"errors"
	"fmt"
)

// ErrNoBranchContext is returned by AddBranch when no branch context has
// been set by the caller — lowering a boolean expression outside of an
// if/while/for/switch condition would be a caller bug, not a recoverable
// condition.
var ErrNoBranchContext = errors.New("ir: add_branch with no branch context set")

// BranchContext is the (true_label, false_label) pair consulted by
// boolean-expression lowering. It carries no result reference: it
// only directs where control goes.
type BranchContext struct {
	True, False Ref
}

// SwitchContext accumulates the case list and default label for the
// innermost enclosing switch while its body is being lowered.
type SwitchContext struct {
	Value     Ref
	SwitchRef Ref // the reserved, not-yet-patched OpSwitch instruction
	CaseList  int // arena index of this switch's []SwitchCase
	Default   Ref
}

// Builder is the per-function instruction builder: it owns the buffer,
// body sequence, and arena of one Function, plus the transient state
// listed above (branch context, break/continue labels, switch context,
// cond_dummy_ref). A Builder's lifetime is exactly one function
// lowering; it is discarded, never reset and reused, at the function
// boundary.
type Builder struct {
	Func     *Function
	Interner *Interner
	Symbols  *SymbolTable

	BranchCtx     *BranchContext
	BreakLabel    Ref
	ContinueLabel Ref
	SwitchCtx     *SwitchContext
	CondDummyRef  Ref

	labelCounter int
}

func NewBuilder(f *Function, interner *Interner) *Builder {
	return &Builder{
		Func:          f,
		Interner:      interner,
		Symbols:       NewSymbolTable(),
		BreakLabel:    NoRef,
		ContinueLabel: NoRef,
		CondDummyRef:  NoRef,
	}
}

// emit appends inst to the buffer and, since every opcode except a fresh
// label binds into the body sequence at the point it is created, also
// appends its Ref to Body.
func (b *Builder) emit(inst Instruction) Ref {
	ref := Ref(len(b.Func.Buffer))
	b.Func.Buffer = append(b.Func.Buffer, inst)
	b.Func.Body = append(b.Func.Body, ref)
	return ref
}

// AddInst is the generic emission primitive: any opcode, any payload.
func (b *Builder) AddInst(op Op, payload any, typ TypeRef) Ref {
	return b.emit(Instruction{Op: op, Type: typ, Payload: payload})
}

func (b *Builder) AddConstant(v Value, typ TypeRef) Ref {
	return b.AddInst(OpConstant, ConstantPayload{Value: b.Interner.InternConstant(v)}, typ)
}

func (b *Builder) AddSymbol(name string, typ TypeRef) Ref {
	return b.AddInst(OpSymbol, SymbolPayload{Name: b.Interner.InternSymbol(name)}, typ)
}

func (b *Builder) AddArg(index int, typ TypeRef) Ref {
	return b.AddInst(OpArg, ArgPayload{Index: index}, typ)
}

func (b *Builder) AddAlloc(size, align int64) Ref {
	return b.AddInst(OpAlloc, AllocPayload{Size: size, Align: align}, b.Interner.Ptr())
}

func (b *Builder) AddLoad(addr Ref, typ TypeRef) Ref {
	return b.AddInst(OpLoad, LoadPayload{Addr: addr}, typ)
}

func (b *Builder) AddStore(addr, value Ref) Ref {
	return b.AddInst(OpStore, StorePayload{Addr: addr, Value: value}, b.Interner.Void())
}

func (b *Builder) AddBin(op Op, lhs, rhs Ref, typ TypeRef) Ref {
	return b.AddInst(op, BinPayload{LHS: lhs, RHS: rhs}, typ)
}

// AddCmp always produces i1, per the data model's comparison partition.
func (b *Builder) AddCmp(op Op, lhs, rhs Ref) Ref {
	return b.AddInst(op, BinPayload{LHS: lhs, RHS: rhs}, b.Interner.I1())
}

func (b *Builder) AddUnary(op Op, operand Ref, typ TypeRef) Ref {
	return b.AddInst(op, UnaryPayload{Operand: operand}, typ)
}

func (b *Builder) AddConvert(op Op, operand Ref, typ TypeRef) Ref {
	return b.AddInst(op, ConvertPayload{Operand: operand}, typ)
}

// AddLabel allocates a label reference without binding it into the body.
// hint is a human-readable debug tag (e.g. "for.cond"), not an identifier.
func (b *Builder) AddLabel(hint string) Ref {
	ref := Ref(len(b.Func.Buffer))
	b.Func.Buffer = append(b.Func.Buffer, Instruction{Op: OpLabel, Type: b.Interner.Void(), Payload: LabelPayload{Hint: hint}})
	b.labelCounter++
	return ref
}

// BindLabel appends a previously allocated label to the body sequence at
// the current position, marking it as bound.
func (b *Builder) BindLabel(ref Ref) {
	b.Func.Body = append(b.Func.Body, ref)
}

func (b *Builder) AddJump(target Ref) Ref {
	return b.AddInst(OpJump, JumpPayload{Target: target}, b.Interner.Void())
}

// AddBranch reads the builder's current branch context and emits a
// conditional branch to its true/false labels. It is an error to call this
// with no context set — the caller (boolean-expression lowering) must
// always have one in scope.
func (b *Builder) AddBranch(cond Ref) (Ref, error) {
	if b.BranchCtx == nil {
		return NoRef, ErrNoBranchContext
	}
	return b.AddInst(OpBranch, BranchPayload{Cond: cond, TrueLabel: b.BranchCtx.True, FalseLabel: b.BranchCtx.False}, b.Interner.Void()), nil
}

// ReserveSwitch emits a switch instruction with an empty case list, to be
// patched once the body has been lowered and the full case/default set is
// known: it reserves an initially empty switch instruction slot.
func (b *Builder) ReserveSwitch(value Ref) Ref {
	return b.AddInst(OpSwitch, SwitchPayload{Value: value, Default: NoRef}, b.Interner.Void())
}

// AppendCase records one (constant value, label) pair into the innermost
// switch context's arena-backed case list.
func (b *Builder) AppendCase(ctx *SwitchContext, c SwitchCase) {
	b.Func.Arena.AppendCase(ctx.CaseList, c)
}

// PatchSwitch rewrites a reserved switch instruction's payload once its
// case list and default label are final, falling back to end if no
// default was ever recorded.
func (b *Builder) PatchSwitch(ctx *SwitchContext, end Ref) {
	def := ctx.Default
	if def == NoRef {
		def = end
	}
	value := b.Func.Buffer[ctx.SwitchRef].Payload.(SwitchPayload).Value
	b.Func.Buffer[ctx.SwitchRef].Payload = SwitchPayload{
		Value:   value,
		Cases:   b.Func.Arena.CaseList(ctx.CaseList),
		Default: def,
	}
}

func (b *Builder) AddRet() Ref {
	return b.AddInst(OpRet, RetPayload{}, b.Interner.Void())
}

func (b *Builder) AddRetValue(value Ref, typ TypeRef) Ref {
	return b.AddInst(OpRetValue, RetValuePayload{Value: value}, typ)
}

func (b *Builder) AddCall(callee Ref, args []Ref, direct bool, typ TypeRef) Ref {
	return b.AddInst(OpCall, CallPayload{Callee: callee, Args: args, Direct: direct}, typ)
}

func (b *Builder) AddSelect(cond, then, els Ref, typ TypeRef) Ref {
	return b.AddInst(OpSelect, SelectPayload{Cond: cond, Then: then, Else: els}, typ)
}

// NewLabelHint formats a readable, numbered label tag for a generated
// basic block.
func (b *Builder) NewLabelHint(tag string) string {
	b.labelCounter++
	return fmt.Sprintf("%s.%d", tag, b.labelCounter)
}
