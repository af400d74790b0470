package ir

// Arena holds a function's out-of-band payload allocations. Switch case
// lists are reserved before the cases lowering them is known, so they
// need an index a not-yet-patched OpSwitch instruction can carry instead
// of the slice itself; routing them through the arena keeps one place
// that gets reset between functions, instead of leaking into
// module-global state.
type Arena struct {
	caseLists [][]SwitchCase
}

func newArena() *Arena { return &Arena{} }

func (a *Arena) NewCaseList() int {
	a.caseLists = append(a.caseLists, nil)
	return len(a.caseLists) - 1
}

func (a *Arena) AppendCase(list int, c SwitchCase) {
	a.caseLists[list] = append(a.caseLists[list], c)
}

func (a *Arena) CaseList(list int) []SwitchCase {
	return a.caseLists[list]
}

// Global is a file-scope variable definition. Its initializer lowering is
// a stub in this core — Init is nil for a
// tentative definition.
type Global struct {
	Name string
	Type TypeRef
	Init *Value
}

// Function is one lowered C function: its parameter types, the flat
// instruction buffer, the body sequence recording execution order (labels
// appear at the point they bind), and the arena for this function's
// ancillary payloads.
type Function struct {
	Name       string
	ParamTypes []TypeRef
	ReturnType TypeRef

	Buffer []Instruction
	Body   []Ref
	Arena  *Arena

	ReturnLabel Ref
}

func NewFunction(name string, paramTypes []TypeRef, returnType TypeRef) *Function {
	return &Function{
		Name:       name,
		ParamTypes: paramTypes,
		ReturnType: returnType,
		Arena:      newArena(),
	}
}

func (f *Function) Inst(ref Ref) Instruction {
	return f.Buffer[ref]
}

// Module is one translation unit's output: the shared interner, one
// Function per C function definition, and the global data list.
type Module struct {
	Interner  *Interner
	Functions []*Function
	Globals   []*Global
}

func NewModule() *Module {
	return &Module{Interner: NewInterner()}
}

func (m *Module) AddFunction(f *Function) {
	m.Functions = append(m.Functions, f)
}

func (m *Module) AddGlobal(g *Global) {
	m.Globals = append(m.Globals, g)
}
