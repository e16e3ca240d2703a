package compiler

import (
	"pylang/pkg/ir"
)

// generator walks one function's AST and emits intermediate instructions.
// A fresh generator is built per function: the temp counter, scope, and loop
// stack never leak between functions.
type generator struct {
	sigs     map[string]Signature // program-wide, immutable after the pre-pass
	scope    *Scope
	nextTemp int

	// loopDepth tracks the innermost-loop nesting so break/continue outside
	// a loop fail at generation. The IR's Break/Continue always target the
	// innermost enclosing WhileBlock, so the depth is all that is needed.
	loopDepth int

	// branchDepth is > 0 inside conditional and loop bodies; the scope uses
	// it to mark conflicting kind assignments as ambiguous.
	branchDepth int
}

// Generate lowers a parsed program to the intermediate representation. All
// function signatures are registered before any body generates, so forward
// and mutually recursive calls resolve.
func Generate(prog *Program) (*ir.Program, error) {
	sigs, err := collectSignatures(prog)
	if err != nil {
		return nil, err
	}
	out := &ir.Program{Funcs: make([]*ir.Func, 0, len(prog.Funcs))}
	for _, fn := range prog.Funcs {
		g := &generator{sigs: sigs, scope: NewScope(fn.Name)}
		f, err := g.function(fn)
		if err != nil {
			return nil, err
		}
		out.Funcs = append(out.Funcs, f)
	}
	return out, nil
}

func (g *generator) function(fn *FunctionDef) (*ir.Func, error) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Name
		g.scope.DeclareParam(p.Name, fn.Line, fn.Col)
	}
	body, err := g.genStmts(fn.Body)
	if err != nil {
		return nil, err
	}
	// Every path must return to the caller; a function that falls off its
	// end returns zero, same as a value-less return.
	if n := len(body); n == 0 || !isReturn(body[n-1]) {
		body = append(body, &ir.ReturnValue{Value: ir.IntOp(0)})
	}
	return &ir.Func{Name: fn.Name, Params: params, Body: body}, nil
}

func isReturn(i ir.Instr) bool {
	_, ok := i.(*ir.ReturnValue)
	return ok
}

func (g *generator) genStmts(stmts []Stmt) ([]ir.Instr, error) {
	out := []ir.Instr{}
	for _, s := range stmts {
		instrs, err := g.genStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	return out, nil
}

func (g *generator) genStmt(s Stmt) ([]ir.Instr, error) {
	switch n := s.(type) {
	case *Assign:
		setup, val, err := g.flattenExpr(n.Value)
		if err != nil {
			return nil, err
		}
		instrs := append(setup, &ir.TempAssign{Name: n.Name, Op: "copy", Operands: []ir.Operand{val}})
		g.scope.Assign(n.Name, g.inferKind(n.Value), g.branchDepth, n.Line, n.Col)
		return instrs, nil

	case *AugAssign:
		if _, ok := g.scope.Lookup(n.Name); !ok {
			return nil, errName(n.Line, n.Col, "name %q used before assignment in %q", n.Name, g.scope.Func)
		}
		setup, val, err := g.flattenExpr(n.Value)
		if err != nil {
			return nil, err
		}
		op := augOpNames[n.Op]
		return append(setup, &ir.TempAssign{
			Name: n.Name, Op: op, Operands: []ir.Operand{ir.NameOp(n.Name), val},
		}), nil

	case *IndexAssign:
		recvSetup, recvOp, err := g.flattenExpr(n.Recv)
		if err != nil {
			return nil, err
		}
		keySetup, keyOp, err := g.flattenExpr(n.Key)
		if err != nil {
			return nil, err
		}
		valSetup, valOp, err := g.flattenExpr(n.Value)
		if err != nil {
			return nil, err
		}
		entry, err := g.indexEntry(n.Recv, true, n.Line, n.Col)
		if err != nil {
			return nil, err
		}
		instrs := append(recvSetup, keySetup...)
		instrs = append(instrs, valSetup...)
		return append(instrs, &ir.Call{Entry: entry, Operands: []ir.Operand{recvOp, keyOp, valOp}}), nil

	case *ExprStmt:
		switch x := n.X.(type) {
		case *Call:
			instrs, _, err := g.flattenCall(x, false)
			return instrs, err
		case *MethodCall:
			instrs, _, err := g.flattenMethodCall(x, false)
			return instrs, err
		default:
			// Evaluated for effect; the final operand is discarded but the
			// name-resolution checks still run.
			instrs, _, err := g.flattenExpr(n.X)
			return instrs, err
		}

	case *Return:
		if n.Value == nil {
			return []ir.Instr{&ir.ReturnValue{Value: ir.IntOp(0)}}, nil
		}
		setup, val, err := g.flattenExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return append(setup, &ir.ReturnValue{Value: val}), nil

	case *Break:
		if g.loopDepth == 0 {
			return nil, errGen(n.Line, n.Col, "break outside of a loop")
		}
		return []ir.Instr{&ir.Break{}}, nil

	case *Continue:
		if g.loopDepth == 0 {
			return nil, errGen(n.Line, n.Col, "continue outside of a loop")
		}
		return []ir.Instr{&ir.Continue{}}, nil

	case *Pass:
		// The explicit empty-block marker; never omitted.
		return []ir.Instr{&ir.Nop{}}, nil

	case *RawBlock:
		// Opaque payload for the backend, byte-identical to the source.
		return []ir.Instr{&ir.RawPassthrough{Text: n.Text}}, nil

	case *If:
		arms := make([]ElifClause, 0, 1+len(n.Elifs))
		arms = append(arms, ElifClause{Cond: n.Cond, Body: n.Then})
		arms = append(arms, n.Elifs...)
		instr, err := g.genIfChain(arms, n.Else)
		if err != nil {
			return nil, err
		}
		return []ir.Instr{instr}, nil

	case *While:
		cond, err := g.genCond(n.Cond)
		if err != nil {
			return nil, err
		}
		body, err := g.genLoopBody(n.Body)
		if err != nil {
			return nil, err
		}
		return []ir.Instr{&ir.WhileBlock{Cond: cond, Body: body}}, nil

	case *ForRange:
		return g.genForRange(n)

	case *ForEach:
		return g.genForEach(n)

	default:
		return nil, errGen(0, 0, "statement %T not supported at lowering", s)
	}
}

// genCond flattens a condition into the re-runnable Cond shape: Setup
// computes the tested value and runs before every test.
func (g *generator) genCond(e Expr) (ir.Cond, error) {
	setup, val, err := g.flattenExpr(e)
	if err != nil {
		return ir.Cond{}, err
	}
	return ir.Cond{Setup: setup, Value: val}, nil
}

// genIfChain lowers if/elif/else to nested conditional blocks sharing one
// exit. Each later condition's setup lives inside the enclosing else branch,
// so it only computes when every earlier condition failed.
func (g *generator) genIfChain(arms []ElifClause, els []Stmt) (ir.Instr, error) {
	cond, err := g.genCond(arms[0].Cond)
	if err != nil {
		return nil, err
	}

	g.branchDepth++
	then, err := g.genStmts(arms[0].Body)
	g.branchDepth--
	if err != nil {
		return nil, err
	}

	var elseInstrs []ir.Instr
	if len(arms) > 1 {
		g.branchDepth++
		nested, err := g.genIfChain(arms[1:], els)
		g.branchDepth--
		if err != nil {
			return nil, err
		}
		elseInstrs = []ir.Instr{nested}
	} else if els != nil {
		g.branchDepth++
		elseInstrs, err = g.genStmts(els)
		g.branchDepth--
		if err != nil {
			return nil, err
		}
	}
	return &ir.IfBlock{Cond: cond, Then: then, Else: elseInstrs}, nil
}

// genLoopBody generates loop-body statements with break/continue armed.
func (g *generator) genLoopBody(stmts []Stmt) ([]ir.Instr, error) {
	g.loopDepth++
	g.branchDepth++
	body, err := g.genStmts(stmts)
	g.branchDepth--
	g.loopDepth--
	return body, err
}

// genForRange lowers `for x in range(...)` to a counted while-loop. The
// bounds are evaluated exactly once, before the loop; the induction step
// sits in PostBody so continue still advances the loop.
func (g *generator) genForRange(n *ForRange) ([]ir.Instr, error) {
	var instrs []ir.Instr

	startOp := ir.IntOp(0)
	stepOp := ir.IntOp(1)
	var stopOp ir.Operand

	flattenArg := func(e Expr) (ir.Operand, error) {
		setup, op, err := g.flattenExpr(e)
		if err != nil {
			return ir.Operand{}, err
		}
		instrs = append(instrs, setup...)
		return op, nil
	}

	var err error
	switch len(n.Args) {
	case 1:
		stopOp, err = flattenArg(n.Args[0])
	case 2:
		if startOp, err = flattenArg(n.Args[0]); err == nil {
			stopOp, err = flattenArg(n.Args[1])
		}
	case 3:
		if startOp, err = flattenArg(n.Args[0]); err == nil {
			if stopOp, err = flattenArg(n.Args[1]); err == nil {
				stepOp, err = flattenArg(n.Args[2])
			}
		}
	}
	if err != nil {
		return nil, err
	}

	instrs = append(instrs, &ir.TempAssign{Name: n.Var, Op: "copy", Operands: []ir.Operand{startOp}})
	g.scope.Assign(n.Var, KindNumber, g.branchDepth, n.Line, n.Col)

	condTemp := g.newTemp()
	cond := ir.Cond{
		Setup: []ir.Instr{&ir.TempAssign{Name: condTemp, Op: "lt", Operands: []ir.Operand{ir.NameOp(n.Var), stopOp}}},
		Value: ir.TempOp(condTemp),
	}

	body, err := g.genLoopBody(n.Body)
	if err != nil {
		return nil, err
	}

	post := []ir.Instr{&ir.TempAssign{Name: n.Var, Op: "add", Operands: []ir.Operand{ir.NameOp(n.Var), stepOp}}}
	return append(instrs, &ir.WhileBlock{Cond: cond, Body: body, PostBody: post}), nil
}

// genForEach lowers `for x in expr` to a generic each-element iteration over
// the array runtime contract: materialize the iterable once, then walk it by
// a hidden index.
func (g *generator) genForEach(n *ForEach) ([]ir.Instr, error) {
	switch g.inferKind(n.Iterable) {
	case KindList, KindUnknown:
	default:
		return nil, errResolve(n.Line, n.Col,
			"for-each requires a list, got %s", g.inferKind(n.Iterable))
	}

	instrs, iterOp, err := g.flattenExpr(n.Iterable)
	if err != nil {
		return nil, err
	}

	lenTemp := g.newTemp()
	instrs = append(instrs, &ir.Call{Entry: entryArrayLen, Operands: []ir.Operand{iterOp}, Result: lenTemp})

	idxTemp := g.newTemp()
	instrs = append(instrs, &ir.TempAssign{Name: idxTemp, Op: "copy", Operands: []ir.Operand{ir.IntOp(0)}})

	condTemp := g.newTemp()
	cond := ir.Cond{
		Setup: []ir.Instr{&ir.TempAssign{Name: condTemp, Op: "lt", Operands: []ir.Operand{ir.TempOp(idxTemp), ir.TempOp(lenTemp)}}},
		Value: ir.TempOp(condTemp),
	}

	g.scope.Assign(n.Var, KindUnknown, g.branchDepth, n.Line, n.Col)

	elemTemp := g.newTemp()
	head := []ir.Instr{
		&ir.Call{Entry: entryArrayGet, Operands: []ir.Operand{iterOp, ir.TempOp(idxTemp)}, Result: elemTemp},
		&ir.TempAssign{Name: n.Var, Op: "copy", Operands: []ir.Operand{ir.TempOp(elemTemp)}},
	}
	body, err := g.genLoopBody(n.Body)
	if err != nil {
		return nil, err
	}

	post := []ir.Instr{&ir.TempAssign{Name: idxTemp, Op: "add", Operands: []ir.Operand{ir.TempOp(idxTemp), ir.IntOp(1)}}}
	return append(instrs, &ir.WhileBlock{Cond: cond, Body: append(head, body...), PostBody: post}), nil
}
