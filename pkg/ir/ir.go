// Package ir defines the intermediate program produced by the front end and
// consumed by the native-code backend. Instructions reference identifiers,
// temporaries and literals only, never syntax-tree nodes, so the backend can
// lower them without seeing the surface language.
package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// OperandKind identifies what an Operand refers to.
type OperandKind int

const (
	Name  OperandKind = iota // a declared variable or parameter
	Temp                     // a flattener-synthesized temporary
	Int                      // integer literal
	Float                    // float literal
	Str                      // string literal
)

// Operand is a single value reference in an instruction.
type Operand struct {
	Kind  OperandKind
	Ident string  // Name, Temp
	IntV  int64   // Int
	FltV  float64 // Float
	StrV  string  // Str
}

func NameOp(ident string) Operand { return Operand{Kind: Name, Ident: ident} }
func TempOp(ident string) Operand { return Operand{Kind: Temp, Ident: ident} }
func IntOp(v int64) Operand       { return Operand{Kind: Int, IntV: v} }
func FloatOp(v float64) Operand   { return Operand{Kind: Float, FltV: v} }
func StrOp(v string) Operand      { return Operand{Kind: Str, StrV: v} }

func (o Operand) String() string {
	switch o.Kind {
	case Name, Temp:
		return o.Ident
	case Int:
		return strconv.FormatInt(o.IntV, 10)
	case Float:
		s := strconv.FormatFloat(o.FltV, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case Str:
		return strconv.Quote(o.StrV)
	}
	return fmt.Sprintf("Operand(%d)", int(o.Kind))
}

// Cond is a loop or branch condition: Setup computes the tested value and is
// re-run by the backend before every test of Value. Setup is empty when the
// condition is a bare variable or literal.
type Cond struct {
	Setup []Instr
	Value Operand
}

// Instr is implemented by every instruction variant.
type Instr interface {
	instrNode()
	String() string
}

// TempAssign binds the result of one operation to a name. Op is one of the
// fixed operator names (add, sub, mul, div, floordiv, mod, pow, eq, ne, lt,
// gt, le, ge, and, or, not, neg, copy).
type TempAssign struct {
	Name     string
	Op       string
	Operands []Operand
}

// Call invokes a runtime entry point or a user-defined function. Result is
// the receiving temporary, or empty when the value is discarded.
type Call struct {
	Entry    string
	Operands []Operand
	Result   string
}

// IfBlock runs Then when Cond tests true, otherwise Else. Chained
// conditionals nest further IfBlocks inside Else.
type IfBlock struct {
	Cond Cond
	Then []Instr
	Else []Instr
}

// WhileBlock re-tests Cond before every iteration. PostBody runs after Body
// on every iteration, including iterations cut short by Continue; counted
// loops keep their induction step there.
type WhileBlock struct {
	Cond     Cond
	Body     []Instr
	PostBody []Instr
}

// ReturnValue returns Value to the caller. Value-less surface returns carry
// the integer zero.
type ReturnValue struct {
	Value Operand
}

// Break exits the innermost enclosing loop.
type Break struct{}

// Continue jumps to the innermost enclosing loop's PostBody.
type Continue struct{}

// Nop is the explicit empty-block marker a no-op statement lowers to.
type Nop struct{}

// RawPassthrough carries a foreign-syntax payload byte-for-byte. The backend
// interprets it; the front end never validates it.
type RawPassthrough struct {
	Text string
}

func (*TempAssign) instrNode()     {}
func (*Call) instrNode()           {}
func (*IfBlock) instrNode()        {}
func (*WhileBlock) instrNode()     {}
func (*ReturnValue) instrNode()    {}
func (*Break) instrNode()          {}
func (*Continue) instrNode()       {}
func (*Nop) instrNode()            {}
func (*RawPassthrough) instrNode() {}

// Func is one compiled function: parameters in declaration order, then the
// body in source order.
type Func struct {
	Name   string
	Params []string
	Body   []Instr
}

// Program is a whole compiled source file.
type Program struct {
	Funcs []*Func
}

//  Text dump
//
//  The dump is deterministic and diff-stable; tests compare against it and
//  the backend developers read it when debugging lowering.

func operandList(ops []Operand) string {
	parts := make([]string, len(ops))
	for i, o := range ops {
		parts[i] = o.String()
	}
	return strings.Join(parts, ", ")
}

func (i *TempAssign) String() string {
	return fmt.Sprintf("%s = %s(%s)", i.Name, i.Op, operandList(i.Operands))
}

func (i *Call) String() string {
	if i.Result != "" {
		return fmt.Sprintf("%s = call %s(%s)", i.Result, i.Entry, operandList(i.Operands))
	}
	return fmt.Sprintf("call %s(%s)", i.Entry, operandList(i.Operands))
}

func (i *IfBlock) String() string {
	var sb strings.Builder
	writeCond(&sb, "if", i.Cond)
	writeBlock(&sb, i.Then, "  ")
	if len(i.Else) > 0 {
		sb.WriteString("else\n")
		writeBlock(&sb, i.Else, "  ")
	}
	sb.WriteString("endif")
	return sb.String()
}

func (i *WhileBlock) String() string {
	var sb strings.Builder
	writeCond(&sb, "while", i.Cond)
	writeBlock(&sb, i.Body, "  ")
	if len(i.PostBody) > 0 {
		sb.WriteString("post\n")
		writeBlock(&sb, i.PostBody, "  ")
	}
	sb.WriteString("endwhile")
	return sb.String()
}

func (i *ReturnValue) String() string    { return "return " + i.Value.String() }
func (*Break) String() string            { return "break" }
func (*Continue) String() string         { return "continue" }
func (*Nop) String() string              { return "nop" }
func (i *RawPassthrough) String() string { return fmt.Sprintf("raw {%s}", i.Text) }

func writeCond(sb *strings.Builder, kw string, c Cond) {
	if len(c.Setup) == 0 {
		fmt.Fprintf(sb, "%s %s\n", kw, c.Value)
		return
	}
	fmt.Fprintf(sb, "%s [\n", kw)
	writeBlock(sb, c.Setup, "  ")
	fmt.Fprintf(sb, "] %s\n", c.Value)
}

func writeBlock(sb *strings.Builder, instrs []Instr, indent string) {
	for _, in := range instrs {
		for _, line := range strings.Split(in.String(), "\n") {
			sb.WriteString(indent)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
}

func (f *Func) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s(%s)\n", f.Name, strings.Join(f.Params, ", "))
	writeBlock(&sb, f.Body, "  ")
	sb.WriteString("endfunc")
	return sb.String()
}

func (p *Program) String() string {
	var sb strings.Builder
	for idx, f := range p.Funcs {
		if idx > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(f.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
