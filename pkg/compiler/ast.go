package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	String() string
	Pos() (line, col int)
}

// Identifier is a read of a named variable.
type Identifier struct {
	Name      string
	Line, Col int
}

func (*Identifier) exprNode()              {}
func (e *Identifier) String() string       { return e.Name }
func (e *Identifier) Pos() (line, col int) { return e.Line, e.Col }

// NumberLiteral is an integer or float constant.
//
//	x = 10      NumberLiteral{Int: 10}
//	x = 1.5     NumberLiteral{IsFloat: true, Float: 1.5}
type NumberLiteral struct {
	IsFloat   bool
	Int       int64
	Float     float64
	Line, Col int
}

func (*NumberLiteral) exprNode() {}
func (e *NumberLiteral) String() string {
	if e.IsFloat {
		// Always decimal notation: the lexer has no exponent syntax, so
		// "1e-05" would not re-tokenize as one literal.
		s := strconv.FormatFloat(e.Float, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return strconv.FormatInt(e.Int, 10)
}
func (e *NumberLiteral) Pos() (line, col int) { return e.Line, e.Col }

// StringLiteral is a string constant with escapes already decoded.
type StringLiteral struct {
	Value     string
	Line, Col int
}

func (*StringLiteral) exprNode()              {}
func (e *StringLiteral) String() string       { return strconv.Quote(e.Value) }
func (e *StringLiteral) Pos() (line, col int) { return e.Line, e.Col }

// ListLiteral represents [e1, e2, ...]
type ListLiteral struct {
	Elems     []Expr
	Line, Col int
}

func (*ListLiteral) exprNode() {}
func (e *ListLiteral) String() string {
	return fmt.Sprintf("ListLiteral(len=%d, %v)", len(e.Elems), e.Elems)
}
func (e *ListLiteral) Pos() (line, col int) { return e.Line, e.Col }

// DictLiteral represents {k1: v1, k2: v2, ...}. Keys and Values run in
// parallel in source order.
type DictLiteral struct {
	Keys      []Expr
	Values    []Expr
	Line, Col int
}

func (*DictLiteral) exprNode() {}
func (e *DictLiteral) String() string {
	return fmt.Sprintf("DictLiteral(len=%d)", len(e.Keys))
}
func (e *DictLiteral) Pos() (line, col int) { return e.Line, e.Col }

// BinaryOp represents Left Op Right for arithmetic, comparison, and the
// (non-short-circuiting) logical operators.
type BinaryOp struct {
	Op        TokenType
	Left      Expr
	Right     Expr
	Line, Col int
}

func (*BinaryOp) exprNode() {}
func (e *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}
func (e *BinaryOp) Pos() (line, col int) { return e.Line, e.Col }

// UnaryOp represents prefix `not` or unary minus.
type UnaryOp struct {
	Op        TokenType
	Operand   Expr
	Line, Col int
}

func (*UnaryOp) exprNode()              {}
func (e *UnaryOp) String() string       { return fmt.Sprintf("(%s %s)", e.Op, e.Operand) }
func (e *UnaryOp) Pos() (line, col int) { return e.Line, e.Col }

// Call represents name(args) — a builtin or user-defined function call.
type Call struct {
	Name      string
	Args      []Expr
	Line, Col int
}

func (*Call) exprNode() {}
func (e *Call) String() string {
	return fmt.Sprintf("Call(%s, args=%v)", e.Name, e.Args)
}
func (e *Call) Pos() (line, col int) { return e.Line, e.Col }

// MethodCall represents recv.method(args).
type MethodCall struct {
	Recv      Expr
	Method    string
	Args      []Expr
	Line, Col int
}

func (*MethodCall) exprNode() {}
func (e *MethodCall) String() string {
	return fmt.Sprintf("MethodCall(%s.%s, args=%v)", e.Recv, e.Method, e.Args)
}
func (e *MethodCall) Pos() (line, col int) { return e.Line, e.Col }

// Index represents recv[key].
type Index struct {
	Recv      Expr
	Key       Expr
	Line, Col int
}

func (*Index) exprNode()              {}
func (e *Index) String() string       { return fmt.Sprintf("(%s[%s])", e.Recv, e.Key) }
func (e *Index) Pos() (line, col int) { return e.Line, e.Col }

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	String() string
}

// Param is one function parameter. The type hint parses and is discarded by
// every later phase; the printer keeps it for round-tripping.
type Param struct {
	Name string
	Hint string // "" when absent
}

// FunctionDef represents (def|func) name(params) [-> hint] : suite.
type FunctionDef struct {
	Name       string
	Params     []Param
	ReturnHint string // parsed and otherwise ignored
	Body       []Stmt
	Line, Col  int
}

func (*FunctionDef) stmtNode() {}
func (s *FunctionDef) String() string {
	return fmt.Sprintf("FunctionDef(%s/%d, body=%d stmts)", s.Name, len(s.Params), len(s.Body))
}

// ElifClause is one `elif cond: suite` arm.
type ElifClause struct {
	Cond Expr
	Body []Stmt
}

// If represents if/elif/else.
type If struct {
	Cond  Expr
	Then  []Stmt
	Elifs []ElifClause
	Else  []Stmt // nil when absent
}

func (*If) stmtNode() {}
func (s *If) String() string {
	return fmt.Sprintf("If(%s, then=%d, elifs=%d, else=%d)", s.Cond, len(s.Then), len(s.Elifs), len(s.Else))
}

// While represents while cond: suite.
type While struct {
	Cond Expr
	Body []Stmt
}

func (*While) stmtNode()        {}
func (s *While) String() string { return fmt.Sprintf("While(%s, body=%d)", s.Cond, len(s.Body)) }

// ForRange represents for var in range(args): suite. Args holds 1 to 3
// expressions (stop | start,stop | start,stop,step).
type ForRange struct {
	Var       string
	Args      []Expr
	Body      []Stmt
	Line, Col int
}

func (*ForRange) stmtNode() {}
func (s *ForRange) String() string {
	return fmt.Sprintf("ForRange(%s, args=%d, body=%d)", s.Var, len(s.Args), len(s.Body))
}

// ForEach represents for var in expr: suite over a list value.
type ForEach struct {
	Var       string
	Iterable  Expr
	Body      []Stmt
	Line, Col int
}

func (*ForEach) stmtNode() {}
func (s *ForEach) String() string {
	return fmt.Sprintf("ForEach(%s in %s, body=%d)", s.Var, s.Iterable, len(s.Body))
}

// Assign represents name = expr.
type Assign struct {
	Name      string
	Value     Expr
	Line, Col int
}

func (*Assign) stmtNode()        {}
func (s *Assign) String() string { return fmt.Sprintf("Assign(%s = %s)", s.Name, s.Value) }

// AugAssign represents name op= expr.
type AugAssign struct {
	Name      string
	Op        TokenType // PLUS_ASSIGN .. SLASH_ASSIGN
	Value     Expr
	Line, Col int
}

func (*AugAssign) stmtNode() {}
func (s *AugAssign) String() string {
	return fmt.Sprintf("AugAssign(%s %s %s)", s.Name, s.Op, s.Value)
}

// IndexAssign represents recv[key] = expr.
type IndexAssign struct {
	Recv      Expr
	Key       Expr
	Value     Expr
	Line, Col int
}

func (*IndexAssign) stmtNode() {}
func (s *IndexAssign) String() string {
	return fmt.Sprintf("IndexAssign(%s[%s] = %s)", s.Recv, s.Key, s.Value)
}

// Return represents return [expr].
type Return struct {
	Value     Expr // nil for a bare return
	Line, Col int
}

func (*Return) stmtNode() {}
func (s *Return) String() string {
	if s.Value == nil {
		return "Return()"
	}
	return fmt.Sprintf("Return(%s)", s.Value)
}

// Break represents break.
type Break struct {
	Line, Col int
}

func (*Break) stmtNode()        {}
func (s *Break) String() string { return "Break" }

// Continue represents continue.
type Continue struct {
	Line, Col int
}

func (*Continue) stmtNode()        {}
func (s *Continue) String() string { return "Continue" }

// Pass is the explicit no-op statement. A suite closed by `pass` instead of
// `end` also records one of these so the empty block stays visible downstream.
type Pass struct {
	Line, Col int
}

func (*Pass) stmtNode()        {}
func (s *Pass) String() string { return "Pass" }

// ExprStmt represents an expression evaluated for its side effects.
type ExprStmt struct {
	X Expr
}

func (*ExprStmt) stmtNode()        {}
func (s *ExprStmt) String() string { return fmt.Sprintf("ExprStmt(%s)", s.X) }

// RawBlock represents ailang { ... } or asm { ... }. Text is the payload
// between the braces, byte-for-byte.
type RawBlock struct {
	Opener    string // "ailang" or "asm"
	Text      string
	Line, Col int
}

func (*RawBlock) stmtNode()        {}
func (s *RawBlock) String() string { return fmt.Sprintf("RawBlock(%s, %d bytes)", s.Opener, len(s.Text)) }

// Program is one parsed source file: functions in declaration order.
type Program struct {
	Funcs []*FunctionDef
}

func (p *Program) String() string {
	names := make([]string, len(p.Funcs))
	for i, f := range p.Funcs {
		names[i] = f.Name
	}
	return fmt.Sprintf("Program(%s)", strings.Join(names, ", "))
}
