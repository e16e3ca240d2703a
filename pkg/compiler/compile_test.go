package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileProgram(t *testing.T) {
	src := `
# Sum the squares below n.
def square(x):
  return x * x;
end;

def sum_squares(n):
  total = 0;
  for i in range(n):
    total += square(i);
  end;
  return total;
end;
`
	prog, err := Compile(src)
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 2)
	require.Equal(t, "square", prog.Funcs[0].Name)
	require.Equal(t, "sum_squares", prog.Funcs[1].Name)

	dump := prog.String()
	require.Contains(t, dump, "t0 = mul(x, x)")
	require.Contains(t, dump, "t1 = call square(i)")
	require.Contains(t, dump, "total = add(total, t1)")
}

func TestCompileIsPure(t *testing.T) {
	src := "def f(x): return x + 1; end;"
	first, err := Compile(src)
	require.NoError(t, err)
	second, err := Compile(src)
	require.NoError(t, err)
	require.Equal(t, first.String(), second.String())
}

// Each pipeline phase reports through the same diagnostic type, with a kind
// naming the phase that failed.
func TestCompileDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kind  ErrorKind
		phase string
	}{
		{
			name:  "illegal character",
			src:   "def f(): x = 1 @ 2; end;",
			kind:  LexError,
			phase: "lex",
		},
		{
			name:  "statement outside a function",
			src:   "x = 1;",
			kind:  ParseError,
			phase: "parse",
		},
		{
			name:  "read before assignment",
			src:   "def f(): return ghost; end;",
			kind:  NameError,
			phase: "resolve",
		},
		{
			name:  "builtin arity",
			src:   "def f(): return max(1, 2, 3); end;",
			kind:  ResolutionError,
			phase: "resolve",
		},
		{
			name:  "break outside loop",
			src:   "def f(): break; end;",
			kind:  GenerationError,
			phase: "generate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Compile(tt.src)
			require.Nil(t, prog, "no partial output on failure")
			require.Error(t, err)

			diag, ok := err.(*Diagnostic)
			require.True(t, ok, "error is not a *Diagnostic: %v", err)
			require.Equal(t, tt.kind, diag.Kind)
			require.Equal(t, tt.phase, diag.Kind.Phase())
			require.Greater(t, diag.Line, 0, "diagnostics carry a position")
		})
	}
}

func TestCompileParseErrorShowsSourceLine(t *testing.T) {
	_, err := Compile("def f(:\n  return 1;\nend;")
	require.Error(t, err)
	diag := err.(*Diagnostic)
	require.Equal(t, ParseError, diag.Kind)
	require.Contains(t, diag.Message, "|>")
	require.Contains(t, diag.Message, "def f(:")
}

func TestCompileErrorFormat(t *testing.T) {
	_, err := Compile("def f(): return ghost; end;")
	require.Error(t, err)
	msg := err.Error()
	require.True(t, strings.HasPrefix(msg, "name error at 1:"), msg)
	require.Contains(t, msg, "ghost")
}

func TestCompileConcurrentUse(t *testing.T) {
	srcs := []string{
		"def a(): return 1; end;",
		"def b(x): return x * 2; end;",
		"def c(): return; end;",
	}
	done := make(chan error, len(srcs)*8)
	for i := 0; i < 8; i++ {
		for _, src := range srcs {
			go func(src string) {
				_, err := Compile(src)
				done <- err
			}(src)
		}
	}
	for i := 0; i < len(srcs)*8; i++ {
		require.NoError(t, <-done)
	}
}
