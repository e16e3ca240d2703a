package compiler

import (
	"fmt"
	"strings"
	"testing"
)

// mustParse lexes and parses src, failing the test on any error.
func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	prog, err := Parse(tokens, src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return prog
}

// parseErr lexes and parses src and returns the expected parse diagnostic.
func parseErr(t *testing.T, src string) *Diagnostic {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	_, err = Parse(tokens, src)
	if err == nil {
		t.Fatalf("expected a parse error for %q", src)
	}
	diag, ok := err.(*Diagnostic)
	if !ok {
		t.Fatalf("expected *Diagnostic, got %T", err)
	}
	if diag.Kind != ParseError {
		t.Fatalf("expected ParseError, got %s", diag.Kind)
	}
	return diag
}

func TestParseFunctionForms(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"def with end", "def f(x): return x; end;"},
		{"func synonym", "func f(x): return x; end;"},
		{"pass-closed body", "def f(): pass;"},
		{"no terminators at all", "def f(x): return x end"},
		{"type hints parse and are discarded", "def f(x: int, y: str) -> int: return x; end;"},
		{"empty parameter list", "def f(): return; end;"},
		{"multiple functions", "def a(): return; end; def b(): return; end;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustParse(t, tt.src)
			if len(prog.Funcs) == 0 {
				t.Fatalf("expected at least one function")
			}
		})
	}
}

// def and func must collapse to one node shape, as must end and pass closers.
func TestParseKeywordSynonyms(t *testing.T) {
	a := mustParse(t, "def f(x): return x; end;")
	b := mustParse(t, "func f(x): return x; end;")
	if a.Funcs[0].Name != b.Funcs[0].Name || len(a.Funcs[0].Body) != len(b.Funcs[0].Body) {
		t.Errorf("def and func produced different shapes: %s vs %s", a.Funcs[0], b.Funcs[0])
	}
}

func TestParseHintsDiscarded(t *testing.T) {
	prog := mustParse(t, "def f(x: int) -> float: return x; end;")
	fn := prog.Funcs[0]
	if fn.Params[0].Name != "x" || fn.Params[0].Hint != "int" {
		t.Errorf("param hint not captured: %+v", fn.Params[0])
	}
	if fn.ReturnHint != "float" {
		t.Errorf("return hint not captured: %q", fn.ReturnHint)
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string // debug String() of the parsed expression
	}{
		{"mul binds tighter than add", "a + b * c", "(a PLUS (b STAR c))"},
		{"left assoc additive", "a - b + c", "((a MINUS b) PLUS c)"},
		{"comparison over additive", "a + b < c", "((a PLUS b) LESS c)"},
		{"and over comparison", "a < b and c < d", "((a LESS b) AND (c LESS d))"},
		{"or lowest", "a and b or c", "((a AND b) OR c)"},
		{"not over comparison", "not a < b", "(NOT (a LESS b))"},
		{"power right assoc", "a ** b ** c", "(a POWER (b POWER c))"},
		{"unary minus below power", "-a ** b", "(MINUS (a POWER b))"},
		{"power above mul", "a * b ** c", "(a STAR (b POWER c))"},
		{"floor div", "a // b % c", "((a FLOOR_DIV b) PERCENT c)"},
		{"parens override", "(a + b) * c", "((a PLUS b) STAR c)"},
		{"negative exponent", "a ** -b", "(a POWER (MINUS b))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustParse(t, "def f(a, b, c, d): x = "+tt.expr+"; end;")
			assign, ok := prog.Funcs[0].Body[0].(*Assign)
			if !ok {
				t.Fatalf("expected Assign, got %T", prog.Funcs[0].Body[0])
			}
			if got := assign.Value.String(); got != tt.want {
				t.Errorf("parsed %q\n got:  %s\n want: %s", tt.expr, got, tt.want)
			}
		})
	}
}

func TestParseStatements(t *testing.T) {
	src := `
def demo(items, n):
    total = 0
    total += 1
    items[0] = total
    if n < 1:
        return 0
    end
    elif n < 2:
        total = 1
    end
    else:
        total = 2
    end
    while n > 0:
        n -= 1
        if n == 3:
            break
        end
        continue
    end
    for i in range(1, n, 2):
        total += i
    end
    for v in items:
        print(v)
    end
    asm { HALT }
    return total
end
`
	prog := mustParse(t, src)
	body := prog.Funcs[0].Body
	wantTypes := []string{"*compiler.Assign", "*compiler.AugAssign", "*compiler.IndexAssign",
		"*compiler.If", "*compiler.While", "*compiler.ForRange", "*compiler.ForEach",
		"*compiler.RawBlock", "*compiler.Return"}
	if len(body) != len(wantTypes) {
		t.Fatalf("expected %d statements, got %d", len(wantTypes), len(body))
	}
	for i, s := range body {
		if got := fmt.Sprintf("%T", s); got != wantTypes[i] {
			t.Errorf("statement %d: got %s, want %s", i, got, wantTypes[i])
		}
	}

	ifStmt := body[3].(*If)
	if len(ifStmt.Elifs) != 1 || ifStmt.Else == nil {
		t.Errorf("if/elif/else shape wrong: %s", ifStmt)
	}
	forRange := body[5].(*ForRange)
	if forRange.Var != "i" || len(forRange.Args) != 3 {
		t.Errorf("for-range shape wrong: %s", forRange)
	}
}

func TestParseMethodAndIndexChains(t *testing.T) {
	prog := mustParse(t, `def f(m): x = m[1][2]; m.foo(1).bar(2); end;`)
	assign := prog.Funcs[0].Body[0].(*Assign)
	if assign.Value.String() != "((m[1])[2])" {
		t.Errorf("index chain: %s", assign.Value)
	}
	call := prog.Funcs[0].Body[1].(*ExprStmt).X.(*MethodCall)
	if call.Method != "bar" {
		t.Errorf("outer method: %s", call.Method)
	}
	inner, ok := call.Recv.(*MethodCall)
	if !ok || inner.Method != "foo" {
		t.Errorf("inner method: %v", call.Recv)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unmatched end at top level", "def f(): return; end; end;"},
		{"bare end", "end;"},
		{"unterminated block at EOF", "def f(): x = 1"},
		{"missing colon", "def f() return 1 end"},
		{"assign to call", "def f(): f() = 1; end;"},
		{"aug-assign to index", "def f(m): m[0] += 1; end;"},
		{"range arity", "def f(): for i in range(): pass; end;"},
		{"attribute without call", "def f(x): y = x.name; end;"},
		{"statement at top level", "x = 1"},
		{"dangling expression", "def f(): x = ; end;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diag := parseErr(t, tt.src)
			if diag.Line < 1 || diag.Col < 1 {
				t.Errorf("diagnostic missing position: %d:%d", diag.Line, diag.Col)
			}
			if !strings.Contains(diag.Message, "|>") {
				t.Errorf("diagnostic missing source snippet: %q", diag.Message)
			}
		})
	}
}

// An unmatched end after the last function reports its own position.
func TestParseUnmatchedEndPosition(t *testing.T) {
	src := "def f(): return 1; end;\nend;"
	diag := parseErr(t, src)
	if diag.Line != 2 {
		t.Errorf("expected error on line 2, got line %d", diag.Line)
	}
}

// Block balance: every suite needs exactly one closer.
func TestParseBlockBalance(t *testing.T) {
	balanced := []string{
		"def f(): if 1: pass; end;",
		"def f(): if 1: x = 1; end; end;",
		"def f(): while 1: if 1: break; end; end; end;",
	}
	for _, src := range balanced {
		mustParse(t, src)
	}
	unbalanced := []string{
		"def f(): if 1: x = 1; end;",
		"def f(): while 1: x = 1; end;",
		"def f(): if 1: x = 1; end; end; end;",
	}
	for _, src := range unbalanced {
		parseErr(t, src)
	}
}
