package compiler

import "fmt"

// ErrorKind classifies a Diagnostic into the front end's error taxonomy.
type ErrorKind int

const (
	LexError        ErrorKind = iota // illegal character, unterminated string/raw block
	ParseError                       // unexpected token, unmatched terminator
	NameError                        // use of an undeclared identifier or function
	ResolutionError                  // unknown/mis-arity builtin, unsupported receiver
	GenerationError                  // parsed but unsupported at lowering
)

var errorKindNames = [...]string{
	LexError:        "lex error",
	ParseError:      "parse error",
	NameError:       "name error",
	ResolutionError: "resolution error",
	GenerationError: "generation error",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Phase reports which pipeline phase a kind belongs to, for callers that key
// diagnostics by phase rather than kind.
func (k ErrorKind) Phase() string {
	switch k {
	case LexError:
		return "lex"
	case ParseError:
		return "parse"
	case NameError, ResolutionError:
		return "resolve"
	default:
		return "generate"
	}
}

// Diagnostic is the single error currency of the front end. Compilation
// stops at the first one; there is never partial output.
type Diagnostic struct {
	Kind    ErrorKind
	Message string
	Line    int // 1-based
	Col     int // 1-based
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", d.Kind, d.Line, d.Col, d.Message)
}

func errLex(line, col int, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: LexError, Message: fmt.Sprintf(format, args...), Line: line, Col: col}
}

func errName(line, col int, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: NameError, Message: fmt.Sprintf(format, args...), Line: line, Col: col}
}

func errResolve(line, col int, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: ResolutionError, Message: fmt.Sprintf(format, args...), Line: line, Col: col}
}

func errGen(line, col int, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: GenerationError, Message: fmt.Sprintf(format, args...), Line: line, Col: col}
}
