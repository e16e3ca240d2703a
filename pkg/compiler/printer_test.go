package compiler

import (
	"strings"
	"testing"
)

// Round-trip property: printing a parsed program and re-parsing the output
// must yield a structurally identical AST, which shows up as a fixed point
// of print(parse(...)).
func TestPrintRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "simple function",
			src:  "def f(x): return x + 1; end;",
		},
		{
			name: "pass body",
			src:  "def f(): pass;",
		},
		{
			name: "hints and float literals",
			src:  "def f(x: int) -> float: return x * 2.5; end;",
		},
		{
			name: "full statement mix",
			src: `
def demo(items, n):
    total = 0
    items[n - 1] = total
    if n < 1: return 0 end elif n < 2: total = 1 end else: total = 2 end
    while n > 0: n -= 1 end
    for i in range(2, n): total += i end
    for v in items: print(v) end
    return total
end`,
		},
		{
			name: "literals and methods",
			src: `
def build():
    xs = [1, 2.5, "three", [4]]
    m = {"a": 1, "b": xs}
    xs.append(m["a"])
    s = "hey"
    return s.upper()
end`,
		},
		{
			name: "raw blocks",
			src:  "def f(): ailang { call foo {nested} } asm {HALT} return; end;",
		},
		{
			name: "precedence-heavy expressions",
			src:  "def f(a, b, c): return -a ** b * (c + 1) // 2 or not a and b; end;",
		},
		{
			name: "nested suites closed by pass",
			src:  "def f(n): if n: while n: pass; end; else: pass; end;",
		},
		{
			name: "tiny float literal",
			src:  "def f(): x = 0.00001; return x * 123456.789; end;",
		},
		{
			name: "string with a raw control byte",
			src:  "def f(): s = \"a\x01b\"; return s; end;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := mustParse(t, tt.src)
			printed := PrintProgram(first)

			second, err := Parse(mustLexAll(t, printed), printed)
			if err != nil {
				t.Fatalf("re-parse of printed output failed: %v\noutput:\n%s", err, printed)
			}
			reprinted := PrintProgram(second)
			if printed != reprinted {
				t.Errorf("print is not a fixed point\nfirst:\n%s\nsecond:\n%s", printed, reprinted)
			}
		})
	}
}

func mustLexAll(t *testing.T, src string) []Token {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex failed: %v\nsource:\n%s", err, src)
	}
	return tokens
}

func TestPrintCanonicalForm(t *testing.T) {
	prog := mustParse(t, "def f(x): return x+1 end")
	got := PrintProgram(prog)
	want := "def f(x):\n  return (x + 1);\nend;\n"
	if got != want {
		t.Errorf("canonical form mismatch\n got:  %q\n want: %q", got, want)
	}
}

// Float literals must print in decimal notation: the lexer has no exponent
// syntax, so scientific notation would re-tokenize as several tokens.
func TestPrintFloatDecimalNotation(t *testing.T) {
	prog := mustParse(t, "def f(): x = 0.00001; end;")
	printed := PrintProgram(prog)
	if !strings.Contains(printed, "x = 0.00001;") {
		t.Errorf("float not printed in decimal notation:\n%s", printed)
	}
	if strings.ContainsAny(printed, "eE") {
		t.Errorf("printed output contains exponent notation:\n%s", printed)
	}
}

// Printed strings may only use the escapes the lexer decodes; any other rune,
// control bytes included, is written raw.
func TestPrintStringEscapes(t *testing.T) {
	prog := mustParse(t, "def f(): s = \"q\x01w\\n\\t\\\"e\\\\\"; end;")
	printed := PrintProgram(prog)
	want := `s = "q` + "\x01" + `w\n\t\"e\\";`
	if !strings.Contains(printed, want) {
		t.Errorf("string literal mis-quoted\n got:\n%s\n want fragment: %q", printed, want)
	}
}

// The printed raw block must carry its payload byte-for-byte.
func TestPrintRawBlockVerbatim(t *testing.T) {
	payload := " LOAD r0, {a{b}c} "
	prog := mustParse(t, "def f(): asm {"+payload+"} end;")
	printed := PrintProgram(prog)
	if !strings.Contains(printed, "asm {"+payload+"}") {
		t.Errorf("raw payload altered:\n%s", printed)
	}
}
