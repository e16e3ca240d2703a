package compiler

import (
	"fmt"

	"pylang/pkg/ir"
)

// binOpNames maps surface binary operator tokens to instruction op names.
// "and"/"or" are listed here because they are ordinary strict operators in
// this language: both operands are always evaluated, never short-circuited.
var binOpNames = map[TokenType]string{
	PLUS:       "add",
	MINUS:      "sub",
	STAR:       "mul",
	SLASH:      "div",
	FLOOR_DIV:  "floordiv",
	PERCENT:    "mod",
	POWER:      "pow",
	EQUALS:     "eq",
	NOT_EQ:     "ne",
	LESS:       "lt",
	GREATER:    "gt",
	LESS_EQ:    "le",
	GREATER_EQ: "ge",
	AND:        "and",
	OR:         "or",
}

// augOpNames maps augmented-assignment tokens to instruction op names.
var augOpNames = map[TokenType]string{
	PLUS_ASSIGN:  "add",
	MINUS_ASSIGN: "sub",
	STAR_ASSIGN:  "mul",
	SLASH_ASSIGN: "div",
}

// newTemp returns the next temporary name. The counter resets per function
// and never goes backwards, so temporaries are unique within a function and
// the dump is diff-stable.
func (g *generator) newTemp() string {
	t := fmt.Sprintf("t%d", g.nextTemp)
	g.nextTemp++
	return t
}

// flattenExpr converts an expression subtree into a linear instruction
// prefix plus the operand holding its value. Children flatten left-to-right,
// depth-first, so instruction order matches source evaluation order exactly,
// and every subexpression is evaluated exactly once.
func (g *generator) flattenExpr(e Expr) ([]ir.Instr, ir.Operand, error) {
	switch n := e.(type) {
	case *NumberLiteral:
		if n.IsFloat {
			return nil, ir.FloatOp(n.Float), nil
		}
		return nil, ir.IntOp(n.Int), nil

	case *StringLiteral:
		return nil, ir.StrOp(n.Value), nil

	case *Identifier:
		op, err := g.readName(n)
		return nil, op, err

	case *UnaryOp:
		setup, operand, err := g.flattenExpr(n.Operand)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		opName := "neg"
		if n.Op == NOT {
			opName = "not"
		}
		t := g.newTemp()
		setup = append(setup, &ir.TempAssign{Name: t, Op: opName, Operands: []ir.Operand{operand}})
		return setup, ir.TempOp(t), nil

	case *BinaryOp:
		left, leftOp, err := g.flattenExpr(n.Left)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		right, rightOp, err := g.flattenExpr(n.Right)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		opName, ok := binOpNames[n.Op]
		if !ok {
			return nil, ir.Operand{}, errGen(n.Line, n.Col, "operator %s not supported at lowering", n.Op)
		}
		t := g.newTemp()
		instrs := append(left, right...)
		instrs = append(instrs, &ir.TempAssign{Name: t, Op: opName, Operands: []ir.Operand{leftOp, rightOp}})
		return instrs, ir.TempOp(t), nil

	case *ListLiteral:
		// A literal array is built by one create plus one push per element,
		// in element order.
		t := g.newTemp()
		instrs := []ir.Instr{&ir.Call{Entry: entryArrayCreate, Result: t}}
		for _, elem := range n.Elems {
			setup, elemOp, err := g.flattenExpr(elem)
			if err != nil {
				return nil, ir.Operand{}, err
			}
			instrs = append(instrs, setup...)
			instrs = append(instrs, &ir.Call{Entry: entryArrayPush, Operands: []ir.Operand{ir.TempOp(t), elemOp}})
		}
		return instrs, ir.TempOp(t), nil

	case *DictLiteral:
		t := g.newTemp()
		instrs := []ir.Instr{&ir.Call{Entry: entryMapCreate, Result: t}}
		for i := range n.Keys {
			keySetup, keyOp, err := g.flattenExpr(n.Keys[i])
			if err != nil {
				return nil, ir.Operand{}, err
			}
			valSetup, valOp, err := g.flattenExpr(n.Values[i])
			if err != nil {
				return nil, ir.Operand{}, err
			}
			instrs = append(instrs, keySetup...)
			instrs = append(instrs, valSetup...)
			instrs = append(instrs, &ir.Call{Entry: entryMapSet, Operands: []ir.Operand{ir.TempOp(t), keyOp, valOp}})
		}
		return instrs, ir.TempOp(t), nil

	case *Index:
		recvSetup, recvOp, err := g.flattenExpr(n.Recv)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		keySetup, keyOp, err := g.flattenExpr(n.Key)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		entry, err := g.indexEntry(n.Recv, false, n.Line, n.Col)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		t := g.newTemp()
		instrs := append(recvSetup, keySetup...)
		instrs = append(instrs, &ir.Call{Entry: entry, Operands: []ir.Operand{recvOp, keyOp}, Result: t})
		return instrs, ir.TempOp(t), nil

	case *Call:
		return g.flattenCall(n, true)

	case *MethodCall:
		return g.flattenMethodCall(n, true)

	default:
		return nil, ir.Operand{}, errGen(0, 0, "expression %T not supported at lowering", e)
	}
}

// readName resolves an identifier read. Undeclared names fail here, at
// generation time rather than parse time, so function names can be
// forward-referenced before their bodies exist.
func (g *generator) readName(n *Identifier) (ir.Operand, error) {
	if _, ok := g.scope.Lookup(n.Name); ok {
		return ir.NameOp(n.Name), nil
	}
	if _, ok := g.sigs[n.Name]; ok {
		return ir.Operand{}, errGen(n.Line, n.Col, "function %q used as a value", n.Name)
	}
	return ir.Operand{}, errName(n.Line, n.Col, "name %q used before assignment in %q", n.Name, g.scope.Func)
}

// flattenCall lowers a bare call. Builtins resolve against the fixed table;
// everything else must match the program-wide signature pre-pass.
func (g *generator) flattenCall(n *Call, wantResult bool) ([]ir.Instr, ir.Operand, error) {
	if n.Name == "range" {
		return nil, ir.Operand{}, errResolve(n.Line, n.Col,
			"range is only valid as the iterable of a for loop")
	}

	var instrs []ir.Instr
	operands := make([]ir.Operand, 0, len(n.Args))
	for _, arg := range n.Args {
		setup, op, err := g.flattenExpr(arg)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		instrs = append(instrs, setup...)
		operands = append(operands, op)
	}

	if spec, ok, err := resolveBuiltin(n.Name, len(n.Args), n.Line, n.Col); err != nil {
		return nil, ir.Operand{}, err
	} else if ok {
		if wantResult && !spec.hasResult {
			return nil, ir.Operand{}, errGen(n.Line, n.Col, "%s produces no value", n.Name)
		}
		call := &ir.Call{Entry: spec.entry, Operands: operands}
		if wantResult {
			call.Result = g.newTemp()
		}
		instrs = append(instrs, call)
		return instrs, ir.TempOp(call.Result), nil
	}

	sig, ok := g.sigs[n.Name]
	if !ok {
		return nil, ir.Operand{}, errName(n.Line, n.Col, "call to undefined function %q", n.Name)
	}
	if len(n.Args) != sig.Arity {
		return nil, ir.Operand{}, errGen(n.Line, n.Col,
			"%s takes %d argument(s), got %d", n.Name, sig.Arity, len(n.Args))
	}
	call := &ir.Call{Entry: n.Name, Operands: operands}
	if wantResult {
		call.Result = g.newTemp()
	}
	instrs = append(instrs, call)
	return instrs, ir.TempOp(call.Result), nil
}

// flattenMethodCall lowers recv.method(args) through receiver-kind dispatch.
// The receiver is always the first operand of the resolved entry point.
func (g *generator) flattenMethodCall(n *MethodCall, wantResult bool) ([]ir.Instr, ir.Operand, error) {
	instrs, recvOp, err := g.flattenExpr(n.Recv)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	kind := g.inferKind(n.Recv)
	spec, err := resolveMethod(kind, n.Method, len(n.Args), n.Line, n.Col)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	if wantResult && !spec.hasResult {
		return nil, ir.Operand{}, errGen(n.Line, n.Col, "%s.%s produces no value", kind, n.Method)
	}

	operands := []ir.Operand{recvOp}
	for _, arg := range n.Args {
		setup, op, err := g.flattenExpr(arg)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		instrs = append(instrs, setup...)
		operands = append(operands, op)
	}
	call := &ir.Call{Entry: spec.entry, Operands: operands}
	if wantResult {
		call.Result = g.newTemp()
	}
	instrs = append(instrs, call)
	return instrs, ir.TempOp(call.Result), nil
}

// indexEntry picks the runtime entry for recv[key] reads and writes. Lists
// are the default for unknown receivers, matching the for-each lowering;
// definitely-wrong and conflicting kinds refuse instead of guessing.
func (g *generator) indexEntry(recv Expr, write bool, line, col int) (string, error) {
	switch g.inferKind(recv) {
	case KindList, KindUnknown:
		if write {
			return entryArraySet, nil
		}
		return entryArrayGet, nil
	case KindDict:
		if write {
			return entryMapSet, nil
		}
		return entryMapGet, nil
	case KindString:
		if write {
			return "", errResolve(line, col, "strings cannot be assigned into by index")
		}
		return entryStrIndex, nil
	case KindAmbiguous:
		return "", errResolve(line, col, "index receiver has conflicting inferred kinds")
	default:
		return "", errResolve(line, col, "value of kind %s cannot be indexed", g.inferKind(recv))
	}
}

// inferKind is the best-effort static kind of an expression, from literal
// shape, builtin result kinds, and per-name assignment history. It is only
// consulted for dispatch; a wrong answer is impossible because conflicting
// histories resolve to KindAmbiguous, which dispatch rejects.
func (g *generator) inferKind(e Expr) ValueKind {
	switch n := e.(type) {
	case *NumberLiteral:
		return KindNumber
	case *StringLiteral:
		return KindString
	case *ListLiteral:
		return KindList
	case *DictLiteral:
		return KindDict
	case *Identifier:
		if sym, ok := g.scope.Lookup(n.Name); ok {
			return sym.Kind
		}
		return KindUnknown
	case *UnaryOp:
		return KindNumber
	case *BinaryOp:
		switch n.Op {
		case EQUALS, NOT_EQ, LESS, GREATER, LESS_EQ, GREATER_EQ, AND, OR:
			return KindNumber
		}
		// Arithmetic stays unknown: "+" concatenates strings at runtime.
		return KindUnknown
	case *Call:
		if spec, ok := builtins[n.Name]; ok {
			return spec.result
		}
		return KindUnknown
	case *MethodCall:
		kind := g.inferKind(n.Recv)
		var table map[string]methodSpec
		switch kind {
		case KindList:
			table = listMethods
		case KindString:
			table = stringMethods
		case KindDict:
			table = dictMethods
		}
		if table != nil {
			if spec, ok := table[n.Method]; ok {
				return spec.result
			}
		}
		return KindUnknown
	default:
		return KindUnknown
	}
}
