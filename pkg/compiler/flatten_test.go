package compiler

import (
	"testing"

	"pylang/pkg/ir"
)

// testGen builds a generator with the given names pre-declared as params.
func testGen(names ...string) *generator {
	g := &generator{sigs: map[string]Signature{}, scope: NewScope("test")}
	for _, n := range names {
		g.scope.DeclareParam(n, 1, 1)
	}
	return g
}

// countTempAssigns counts TempAssign instructions, the flattener's output
// unit for operator nodes.
func countTempAssigns(instrs []ir.Instr) int {
	n := 0
	for _, in := range instrs {
		if _, ok := in.(*ir.TempAssign); ok {
			n++
		}
	}
	return n
}

// parseExprFor extracts the assignment RHS from a one-statement function.
func parseExprFor(t *testing.T, expr string, params string) Expr {
	t.Helper()
	prog := mustParse(t, "def f("+params+"): x = "+expr+"; end;")
	return prog.Funcs[0].Body[0].(*Assign).Value
}

// One TempAssign per internal operator node, no more, no less.
func TestFlattenTempCount(t *testing.T) {
	tests := []struct {
		expr  string
		temps int
	}{
		{"a", 0},
		{"42", 0},
		{"a + b", 1},
		{"a + b * c", 2},
		{"(a + b) * (c - d)", 3},
		{"-a", 1},
		{"not a", 1},
		{"a + b < c * d and e > 1", 5},
		{"a ** b ** c", 2},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e := parseExprFor(t, tt.expr, "a, b, c, d, e")
			g := testGen("a", "b", "c", "d", "e")
			instrs, _, err := g.flattenExpr(e)
			if err != nil {
				t.Fatalf("flatten failed: %v", err)
			}
			if got := countTempAssigns(instrs); got != tt.temps {
				t.Errorf("%q: %d temps, want %d\n%v", tt.expr, got, tt.temps, instrs)
			}
		})
	}
}

// Flattening is left-to-right, depth-first: instruction order is source
// evaluation order, and the numbering never reuses a name.
func TestFlattenOrder(t *testing.T) {
	e := parseExprFor(t, "(a - b) * (c + d)", "a, b, c, d")
	g := testGen("a", "b", "c", "d")
	instrs, val, err := g.flattenExpr(e)
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}

	want := []string{
		"t0 = sub(a, b)",
		"t1 = add(c, d)",
		"t2 = mul(t0, t1)",
	}
	if len(instrs) != len(want) {
		t.Fatalf("expected %d instructions, got %d", len(want), len(instrs))
	}
	for i, w := range want {
		if got := instrs[i].String(); got != w {
			t.Errorf("instruction %d: got %q, want %q", i, got, w)
		}
	}
	if val.String() != "t2" {
		t.Errorf("final operand: got %s, want t2", val)
	}
}

// A deep leftward chain keeps strict sequential numbering.
func TestFlattenSequentialNumbering(t *testing.T) {
	e := parseExprFor(t, "a + a + a + a + a", "a")
	g := testGen("a")
	instrs, val, err := g.flattenExpr(e)
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	for i, in := range instrs {
		ta := in.(*ir.TempAssign)
		want := "t" + string(rune('0'+i))
		if ta.Name != want {
			t.Errorf("instruction %d assigns %s, want %s", i, ta.Name, want)
		}
	}
	if val.String() != "t3" {
		t.Errorf("final operand: %s", val)
	}
}

// and/or are strict: both operands always flatten and evaluate, in source
// order, with no short-circuiting. This is documented behavior of the
// language and must not be "fixed".
func TestFlattenLogicalOpsAreStrict(t *testing.T) {
	g := testGen()
	g.sigs["f"] = Signature{Name: "f", Arity: 0}
	g.sigs["gg"] = Signature{Name: "gg", Arity: 0}

	e := parseExprFor(t, "f() or gg()", "")
	instrs, _, err := g.flattenExpr(e)
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}

	var entries []string
	for _, in := range instrs {
		if c, ok := in.(*ir.Call); ok {
			entries = append(entries, c.Entry)
		}
	}
	if len(entries) != 2 || entries[0] != "f" || entries[1] != "gg" {
		t.Fatalf("both operands must be evaluated in order, got calls %v", entries)
	}
	last := instrs[len(instrs)-1].(*ir.TempAssign)
	if last.Op != "or" {
		t.Errorf("expected strict or instruction, got %s", last.Op)
	}
}

// Every subexpression is evaluated exactly once: a shared-looking name read
// twice is two operand references, never a re-computed instruction.
func TestFlattenSingleEvaluation(t *testing.T) {
	e := parseExprFor(t, "(a + b) * (a + b)", "a, b")
	g := testGen("a", "b")
	instrs, _, err := g.flattenExpr(e)
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	// Three internal nodes, three instructions: the two adds are distinct
	// source nodes and each evaluates once.
	if got := countTempAssigns(instrs); got != 3 {
		t.Errorf("expected 3 instructions, got %d", got)
	}
}

func TestFlattenListLiteral(t *testing.T) {
	e := parseExprFor(t, `[1, 2, 3]`, "")
	g := testGen()
	instrs, val, err := g.flattenExpr(e)
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	want := []string{
		"t0 = call array_create()",
		"call array_push(t0, 1)",
		"call array_push(t0, 2)",
		"call array_push(t0, 3)",
	}
	for i, w := range want {
		if got := instrs[i].String(); got != w {
			t.Errorf("instruction %d: got %q, want %q", i, got, w)
		}
	}
	if val.String() != "t0" {
		t.Errorf("list operand: %s", val)
	}
}

func TestFlattenDictLiteral(t *testing.T) {
	e := parseExprFor(t, `{"a": 1, "b": 2}`, "")
	g := testGen()
	instrs, _, err := g.flattenExpr(e)
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	want := []string{
		`t0 = call map_create()`,
		`call map_set(t0, "a", 1)`,
		`call map_set(t0, "b", 2)`,
	}
	for i, w := range want {
		if got := instrs[i].String(); got != w {
			t.Errorf("instruction %d: got %q, want %q", i, got, w)
		}
	}
}

func TestFlattenUndeclaredName(t *testing.T) {
	e := parseExprFor(t, "a + ghost", "a")
	g := testGen("a")
	_, _, err := g.flattenExpr(e)
	diag, ok := err.(*Diagnostic)
	if !ok {
		t.Fatalf("expected *Diagnostic, got %v", err)
	}
	if diag.Kind != NameError {
		t.Errorf("expected NameError, got %s", diag.Kind)
	}
}
