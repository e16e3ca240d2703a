package compiler

import (
	"fmt"
	"strings"
)

// opText maps an operator TokenType back to its surface spelling.
var opText = map[TokenType]string{
	PLUS:         "+",
	MINUS:        "-",
	STAR:         "*",
	SLASH:        "/",
	PERCENT:      "%",
	POWER:        "**",
	FLOOR_DIV:    "//",
	EQUALS:       "==",
	NOT_EQ:       "!=",
	LESS:         "<",
	GREATER:      ">",
	LESS_EQ:      "<=",
	GREATER_EQ:   ">=",
	AND:          "and",
	OR:           "or",
	NOT:          "not",
	PLUS_ASSIGN:  "+=",
	MINUS_ASSIGN: "-=",
	STAR_ASSIGN:  "*=",
	SLASH_ASSIGN: "/=",
}

// PrintProgram renders the AST back to canonical surface syntax: fully
// parenthesised expressions, explicit ";" terminators, "end" closers.
// Re-parsing the output yields a structurally identical AST, which the
// round-trip tests rely on.
func PrintProgram(p *Program) string {
	pr := &printer{}
	for i, fn := range p.Funcs {
		if i > 0 {
			pr.sb.WriteString("\n")
		}
		pr.function(fn)
	}
	return pr.sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (pr *printer) line(format string, args ...any) {
	pr.sb.WriteString(strings.Repeat("  ", pr.indent))
	fmt.Fprintf(&pr.sb, format+"\n", args...)
}

func (pr *printer) function(fn *FunctionDef) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		if p.Hint != "" {
			params[i] = p.Name + ": " + p.Hint
		} else {
			params[i] = p.Name
		}
	}
	header := fmt.Sprintf("def %s(%s)", fn.Name, strings.Join(params, ", "))
	if fn.ReturnHint != "" {
		header += " -> " + fn.ReturnHint
	}
	pr.line("%s:", header)
	pr.suite(fn.Body)
}

// suite prints a statement list and its closer. A trailing Pass node prints
// as the "pass" closer itself; emitting both "pass" and "end" would close
// two blocks on re-parse.
func (pr *printer) suite(stmts []Stmt) {
	body := stmts
	closer := "end"
	if n := len(stmts); n > 0 {
		if _, ok := stmts[n-1].(*Pass); ok {
			body = stmts[:n-1]
			closer = "pass"
		}
	}
	pr.indent++
	for _, s := range body {
		pr.stmt(s)
	}
	pr.indent--
	pr.line("%s;", closer)
}

func (pr *printer) stmt(s Stmt) {
	switch n := s.(type) {
	case *Assign:
		pr.line("%s = %s;", n.Name, exprText(n.Value))
	case *AugAssign:
		pr.line("%s %s %s;", n.Name, opText[n.Op], exprText(n.Value))
	case *IndexAssign:
		pr.line("%s[%s] = %s;", exprText(n.Recv), exprText(n.Key), exprText(n.Value))
	case *Return:
		if n.Value == nil {
			pr.line("return;")
		} else {
			pr.line("return %s;", exprText(n.Value))
		}
	case *Break:
		pr.line("break;")
	case *Continue:
		pr.line("continue;")
	case *Pass:
		// Mid-suite Pass only occurs in hand-built ASTs; the parser always
		// attaches it as the suite closer handled in suite().
		pr.line("pass;")
	case *ExprStmt:
		pr.line("%s;", exprText(n.X))
	case *RawBlock:
		pr.line("%s {%s}", n.Opener, n.Text)
	case *If:
		pr.line("if %s:", exprText(n.Cond))
		pr.suite(n.Then)
		for _, e := range n.Elifs {
			pr.line("elif %s:", exprText(e.Cond))
			pr.suite(e.Body)
		}
		if n.Else != nil {
			pr.line("else:")
			pr.suite(n.Else)
		}
	case *While:
		pr.line("while %s:", exprText(n.Cond))
		pr.suite(n.Body)
	case *ForRange:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = exprText(a)
		}
		pr.line("for %s in range(%s):", n.Var, strings.Join(args, ", "))
		pr.suite(n.Body)
	case *ForEach:
		pr.line("for %s in %s:", n.Var, exprText(n.Iterable))
		pr.suite(n.Body)
	default:
		pr.line("# unknown statement %T", s)
	}
}

// exprText renders an expression with explicit parentheses around every
// operator node, so precedence never changes on re-parse.
func exprText(e Expr) string {
	switch n := e.(type) {
	case *Identifier, *NumberLiteral:
		return n.String()
	case *StringLiteral:
		return quoteString(n.Value)
	case *BinaryOp:
		return fmt.Sprintf("(%s %s %s)", exprText(n.Left), opText[n.Op], exprText(n.Right))
	case *UnaryOp:
		if n.Op == NOT {
			return fmt.Sprintf("(not %s)", exprText(n.Operand))
		}
		return fmt.Sprintf("(-%s)", exprText(n.Operand))
	case *Call:
		return fmt.Sprintf("%s(%s)", n.Name, argText(n.Args))
	case *MethodCall:
		return fmt.Sprintf("%s.%s(%s)", exprText(n.Recv), n.Method, argText(n.Args))
	case *Index:
		return fmt.Sprintf("%s[%s]", exprText(n.Recv), exprText(n.Key))
	case *ListLiteral:
		return "[" + argText(n.Elems) + "]"
	case *DictLiteral:
		pairs := make([]string, len(n.Keys))
		for i := range n.Keys {
			pairs[i] = exprText(n.Keys[i]) + ": " + exprText(n.Values[i])
		}
		return "{" + strings.Join(pairs, ", ") + "}"
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// quoteString renders a string literal using only the escape sequences the
// lexer decodes. strconv.Quote would emit \xNN for control bytes, which the
// lexer rejects; scanString passes any rune except newline, quote, and
// backslash through verbatim, so everything else is written raw.
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func argText(args []Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = exprText(a)
	}
	return strings.Join(parts, ", ")
}
