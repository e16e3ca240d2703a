package compiler

// ValueKind is the best-effort static kind of a name, inferred from literal
// and call-result assignment history. It exists only to dispatch method
// receivers; the layer is otherwise untyped.
type ValueKind int

const (
	KindUnknown ValueKind = iota // parameters, user-call results, list elements
	KindNumber
	KindString
	KindList
	KindDict
	KindAmbiguous // conflicting assignments on different branches
)

var kindNames = [...]string{
	KindUnknown:   "unknown",
	KindNumber:    "number",
	KindString:    "string",
	KindList:      "list",
	KindDict:      "dict",
	KindAmbiguous: "ambiguous",
}

func (k ValueKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "ValueKind(?)"
}

// Symbol is one declared name in a function.
type Symbol struct {
	Name string
	Kind ValueKind
	Line int // position of the declaring assignment (or the def line for params)
	Col  int
}

// Scope is the flat per-function namespace. There is no block-level scoping:
// a name assigned inside a nested block stays visible for the rest of the
// function. The first assignment declares; reads of undeclared names are
// caught at generation time so function names can be forward-referenced.
type Scope struct {
	Func string
	syms map[string]*Symbol
}

func NewScope(funcName string) *Scope {
	return &Scope{Func: funcName, syms: make(map[string]*Symbol)}
}

// DeclareParam pre-populates the scope with a parameter. Parameter kinds are
// unknown: nothing about the call sites is inspected.
func (s *Scope) DeclareParam(name string, line, col int) {
	s.syms[name] = &Symbol{Name: name, Kind: KindUnknown, Line: line, Col: col}
}

// Assign records an assignment to name with the inferred kind of its value.
// branchDepth > 0 means the assignment sits inside a conditional or loop
// body; a kind that conflicts with an earlier one there degrades the name to
// KindAmbiguous instead of guessing which branch runs. Straight-line
// reassignment at depth 0 simply replaces the kind.
func (s *Scope) Assign(name string, kind ValueKind, branchDepth, line, col int) {
	sym, ok := s.syms[name]
	if !ok {
		s.syms[name] = &Symbol{Name: name, Kind: kind, Line: line, Col: col}
		return
	}
	if sym.Kind == kind {
		return
	}
	if branchDepth == 0 {
		sym.Kind = kind
		return
	}
	sym.Kind = KindAmbiguous
}

// Lookup returns the symbol for name, if declared.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	sym, ok := s.syms[name]
	return sym, ok
}

// Signature is one entry of the program-wide function table.
type Signature struct {
	Name  string
	Arity int
	Line  int
	Col   int
}

// collectSignatures is the pre-pass over all function definitions. It runs
// before any body is generated, so forward and mutually recursive calls
// resolve; the returned map is never mutated afterwards.
func collectSignatures(prog *Program) (map[string]Signature, error) {
	sigs := make(map[string]Signature, len(prog.Funcs))
	for _, fn := range prog.Funcs {
		if prev, ok := sigs[fn.Name]; ok {
			return nil, errGen(fn.Line, fn.Col,
				"function %q redefined (first defined at %d:%d)", fn.Name, prev.Line, prev.Col)
		}
		sigs[fn.Name] = Signature{Name: fn.Name, Arity: len(fn.Params), Line: fn.Line, Col: fn.Col}
	}
	return sigs, nil
}
