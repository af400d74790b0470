package ir

// symbolEntry is one (interned-name, ir-reference) pair on the symbol
// stack.
type symbolEntry struct {
	name string
	ref  Ref
}

// SymbolTable is a single linear stack of symbols with lexical-scope
// discipline: EnterScope records the stack depth, ExitScope truncates back
// to it. Lookup walks top to bottom, so an inner declaration shadows an
// outer one with the same name. Reset per function.
type SymbolTable struct {
	entries []symbolEntry
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// Declare pushes a new binding onto the stack, shadowing any earlier one
// with the same name.
func (s *SymbolTable) Declare(name string, ref Ref) {
	s.entries = append(s.entries, symbolEntry{name, ref})
}

// Lookup returns the innermost binding for name and true, or false if name
// is not declared in any open scope.
func (s *SymbolTable) Lookup(name string) (Ref, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].name == name {
			return s.entries[i].ref, true
		}
	}
	return NoRef, false
}

// EnterScope returns the current depth, to be passed back to ExitScope.
func (s *SymbolTable) EnterScope() int {
	return len(s.entries)
}

// ExitScope truncates the stack back to a depth returned by EnterScope.
func (s *SymbolTable) ExitScope(depth int) {
	s.entries = s.entries[:depth]
}
