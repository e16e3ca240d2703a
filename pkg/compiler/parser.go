package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program    = function* EOF
//	function   = ("def"|"func") IDENT "(" params ")" ["->" IDENT] ":" suite
//	params     = [IDENT [":" IDENT] ("," IDENT [":" IDENT])*]
//	suite      = statement* ("end" [";"] | "pass" [";"])
//	statement  = assignment | augAssignment | indexAssignment
//	           | "if" expr ":" suite ("elif" expr ":" suite)* ["else" ":" suite]
//	           | "while" expr ":" suite
//	           | "for" IDENT "in" (rangeCall | expr) ":" suite
//	           | "return" [expr] | "break" | "continue"
//	           | rawBlock | exprStatement
//	rawBlock   = ("ailang"|"asm") RAW
//	expr       = or
//	or         = and ("or" and)*
//	and        = not ("and" not)*
//	not        = "not" not | comparison
//	comparison = additive (("=="|"!="|"<"|">"|"<="|">=") additive)*
//	additive   = multiplicative (("+"|"-") multiplicative)*
//	multiplicative = unary (("*"|"/"|"%"|"//") unary)*
//	unary      = "-" unary | power
//	power      = postfix ["**" unary]            (right-associative)
//	postfix    = primary ("(" args ")" | "[" expr "]" | "." IDENT "(" args ")")*
//	primary    = INTEGER | FLOAT | STRING | IDENT | "(" expr ")"
//	           | "[" args "]" | "{" (expr ":" expr ("," expr ":" expr)*)? "}"
//
// Every statement terminator ";" is optional. Suites close with "end" or,
// for Python-compatible bodies, with "pass", which also records the explicit
// no-op in the suite.
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// Parse is the package-level convenience wrapper around NewParser.
func Parse(tokens []Token, rawSource string) (*Program, error) {
	return NewParser(tokens, rawSource).ParseProgram()
}

// fmtError builds a ParseError diagnostic that includes the source line where
// the token appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lineIdx := tok.Line - 1 // lines are 1-based

	snippet := "<source unavailable>"
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return &Diagnostic{
		Kind:    ParseError,
		Message: fmt.Sprintf("%s\n  |> %s", msg, snippet),
		Line:    tok.Line,
		Col:     tok.Col,
	}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// peekNext returns the token immediately after the current one.
func (p *Parser) peekNext() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+1]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// skipTerminator consumes one optional ";".
func (p *Parser) skipTerminator() {
	if p.peek().Type == SEMICOLON {
		p.advance()
	}
}

// ParseProgram parses a whole source file: function definitions until EOF.
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{}
	for {
		tok := p.peek()
		switch tok.Type {
		case EOF:
			return prog, nil
		case DEF, FUNC:
			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			prog.Funcs = append(prog.Funcs, fn)
		case END:
			return nil, p.fmtError(tok, "unmatched %q: no open block to close", tok.Lexeme)
		default:
			return nil, p.fmtError(tok, "expected function definition, got %s (%q)", tok.Type, tok.Lexeme)
		}
	}
}

// parseFunction parses ("def"|"func") name(params) [-> hint] : suite.
// The two introducer keywords are synonyms and collapse to one node shape.
func (p *Parser) parseFunction() (*FunctionDef, error) {
	kw := p.advance() // DEF or FUNC
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var params []Param
	if p.peek().Type != RPAREN {
		for {
			pTok, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			param := Param{Name: pTok.Lexeme}
			// Optional type hint, parsed and discarded (the layer is untyped).
			if p.peek().Type == COLON {
				p.advance()
				hintTok, err := p.expect(IDENTIFIER)
				if err != nil {
					return nil, err
				}
				param.Hint = hintTok.Lexeme
			}
			params = append(params, param)
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	retHint := ""
	if p.peek().Type == ARROW {
		p.advance()
		hintTok, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		retHint = hintTok.Lexeme
	}

	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}

	return &FunctionDef{
		Name:       nameTok.Lexeme,
		Params:     params,
		ReturnHint: retHint,
		Body:       body,
		Line:       kw.Line,
		Col:        kw.Col,
	}, nil
}

// parseSuite parses statements until the block's terminator. "end" closes the
// suite; "pass" both records the explicit no-op and closes it. Running into
// EOF means an unterminated block.
func (p *Parser) parseSuite() ([]Stmt, error) {
	stmts := []Stmt{}
	for {
		tok := p.peek()
		switch tok.Type {
		case END:
			p.advance()
			p.skipTerminator()
			return stmts, nil
		case PASS:
			p.advance()
			p.skipTerminator()
			stmts = append(stmts, &Pass{Line: tok.Line, Col: tok.Col})
			return stmts, nil
		case EOF:
			return nil, p.fmtError(tok, "unterminated block at end of input (missing \"end\")")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch tok.Type {
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case FOR:
		return p.parseFor()
	case RETURN:
		return p.parseReturn()
	case BREAK:
		p.advance()
		p.skipTerminator()
		return &Break{Line: tok.Line, Col: tok.Col}, nil
	case CONTINUE:
		p.advance()
		p.skipTerminator()
		return &Continue{Line: tok.Line, Col: tok.Col}, nil
	case AILANG, ASM:
		return p.parseRawBlock()
	default:
		return p.parseSimpleStatement()
	}
}

// parseRawBlock consumes the opener keyword and the RAW payload token the
// lexer paired with it.
func (p *Parser) parseRawBlock() (Stmt, error) {
	opener := p.advance() // AILANG or ASM
	rawTok, err := p.expect(RAW)
	if err != nil {
		return nil, err
	}
	p.skipTerminator()
	return &RawBlock{Opener: opener.Lexeme, Text: rawTok.Lexeme, Line: opener.Line, Col: opener.Col}, nil
}

// parseIf parses if expr : suite (elif expr : suite)* [else : suite].
// Each branch suite carries its own "end"/"pass" terminator.
func (p *Parser) parseIf() (Stmt, error) {
	p.advance() // IF
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	then, err := p.parseSuite()
	if err != nil {
		return nil, err
	}

	stmt := &If{Cond: cond, Then: then}
	for p.peek().Type == ELIF {
		p.advance()
		elifCond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}
		elifBody, err := p.parseSuite()
		if err != nil {
			return nil, err
		}
		stmt.Elifs = append(stmt.Elifs, ElifClause{Cond: elifCond, Body: elifBody})
	}
	if p.peek().Type == ELSE {
		p.advance()
		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}
		stmt.Else, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// parseWhile parses while expr : suite.
func (p *Parser) parseWhile() (Stmt, error) {
	p.advance() // WHILE
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return &While{Cond: cond, Body: body}, nil
}

// parseFor parses for IDENT in (range(args) | expr) : suite.
// A literal range(...) iterable selects the counted-loop form.
func (p *Parser) parseFor() (Stmt, error) {
	kw := p.advance() // FOR
	varTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(IN); err != nil {
		return nil, err
	}

	if p.peek().Type == IDENTIFIER && p.peek().Lexeme == "range" && p.peekNext().Type == LPAREN {
		rangeTok := p.advance() // "range"
		p.advance()             // LPAREN
		var args []Expr
		if p.peek().Type != RPAREN {
			for {
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.peek().Type != COMMA {
					break
				}
				p.advance()
			}
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		if len(args) < 1 || len(args) > 3 {
			return nil, p.fmtError(rangeTok, "range takes 1 to 3 arguments, got %d", len(args))
		}
		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}
		body, err := p.parseSuite()
		if err != nil {
			return nil, err
		}
		return &ForRange{Var: varTok.Lexeme, Args: args, Body: body, Line: kw.Line, Col: kw.Col}, nil
	}

	iter, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return &ForEach{Var: varTok.Lexeme, Iterable: iter, Body: body, Line: kw.Line, Col: kw.Col}, nil
}

// parseReturn parses return [expr]. The value is omitted when the next token
// cannot start an expression.
func (p *Parser) parseReturn() (Stmt, error) {
	kw := p.advance() // RETURN
	if !startsExpression(p.peek().Type) {
		p.skipTerminator()
		return &Return{Line: kw.Line, Col: kw.Col}, nil
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipTerminator()
	return &Return{Value: val, Line: kw.Line, Col: kw.Col}, nil
}

// startsExpression reports whether tt can begin an expression. It decides
// whether an optional terminator or block closer ends the statement instead.
func startsExpression(tt TokenType) bool {
	switch tt {
	case IDENTIFIER, INTEGER, FLOAT, STRING, LPAREN, LBRACKET, LBRACE, MINUS, NOT:
		return true
	}
	return false
}

// parseSimpleStatement parses assignment, augmented assignment, index
// assignment, and bare expression statements. The left-hand side is parsed
// as a full expression first, then classified by what follows.
func (p *Parser) parseSimpleStatement() (Stmt, error) {
	startTok := p.peek()
	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	opTok := p.peek()
	switch opTok.Type {
	case ASSIGN:
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		p.skipTerminator()
		switch lhs := left.(type) {
		case *Identifier:
			return &Assign{Name: lhs.Name, Value: value, Line: startTok.Line, Col: startTok.Col}, nil
		case *Index:
			return &IndexAssign{Recv: lhs.Recv, Key: lhs.Key, Value: value, Line: startTok.Line, Col: startTok.Col}, nil
		default:
			return nil, p.fmtError(opTok, "cannot assign to %s", left)
		}
	case PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN:
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		p.skipTerminator()
		lhs, ok := left.(*Identifier)
		if !ok {
			return nil, p.fmtError(opTok, "%s target must be a plain name, got %s", opTok.Lexeme, left)
		}
		return &AugAssign{Name: lhs.Name, Op: opTok.Type, Value: value, Line: startTok.Line, Col: startTok.Col}, nil
	default:
		p.skipTerminator()
		return &ExprStmt{X: left}, nil
	}
}

//  Expressions

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseOr()
}

// parseOr handles "or" (lowest precedence).
func (p *Parser) parseOr() (Expr, error) {
	expr, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == OR {
		op := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOp{Op: OR, Left: expr, Right: right, Line: op.Line, Col: op.Col}
	}
	return expr, nil
}

// parseAnd handles "and".
func (p *Parser) parseAnd() (Expr, error) {
	expr, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND {
		op := p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOp{Op: AND, Left: expr, Right: right, Line: op.Line, Col: op.Col}
	}
	return expr, nil
}

// parseNot handles prefix "not".
func (p *Parser) parseNot() (Expr, error) {
	if p.peek().Type == NOT {
		op := p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: NOT, Operand: operand, Line: op.Line, Col: op.Col}, nil
	}
	return p.parseComparison()
}

// parseComparison handles ==, !=, <, >, <=, >=.
func (p *Parser) parseComparison() (Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.peek().Type
		if tt != EQUALS && tt != NOT_EQ && tt != LESS && tt != GREATER && tt != LESS_EQ && tt != GREATER_EQ {
			break
		}
		op := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOp{Op: op.Type, Left: expr, Right: right, Line: op.Line, Col: op.Col}
	}
	return expr, nil
}

// parseAdditive handles + and -.
func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.peek().Type
		if tt != PLUS && tt != MINUS {
			break
		}
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOp{Op: op.Type, Left: expr, Right: right, Line: op.Line, Col: op.Col}
	}
	return expr, nil
}

// parseMultiplicative handles *, /, %, //.
func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.peek().Type
		if tt != STAR && tt != SLASH && tt != PERCENT && tt != FLOOR_DIV {
			break
		}
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryOp{Op: op.Type, Left: expr, Right: right, Line: op.Line, Col: op.Col}
	}
	return expr, nil
}

// parseUnary handles unary minus, which binds tighter than * but looser
// than **, so -2 ** 2 parses as -(2 ** 2).
func (p *Parser) parseUnary() (Expr, error) {
	if p.peek().Type == MINUS {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: MINUS, Operand: operand, Line: op.Line, Col: op.Col}, nil
	}
	return p.parsePower()
}

// parsePower handles **, right-associative: 2 ** 3 ** 2 == 2 ** (3 ** 2).
// The right operand re-enters parseUnary so 2 ** -3 also parses.
func (p *Parser) parsePower() (Expr, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == POWER {
		op := p.advance()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Op: POWER, Left: base, Right: exp, Line: op.Line, Col: op.Col}, nil
	}
	return base, nil
}

// parsePostfix handles call (), index [], and method access "." in a loop.
func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		switch tok.Type {
		case LPAREN:
			ident, ok := expr.(*Identifier)
			if !ok {
				return nil, p.fmtError(tok, "expected function name before '('")
			}
			p.advance() // (
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &Call{Name: ident.Name, Args: args, Line: ident.Line, Col: ident.Col}
		case LBRACKET:
			p.advance() // [
			key, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
			expr = &Index{Recv: expr, Key: key, Line: tok.Line, Col: tok.Col}
		case DOT:
			p.advance() // .
			nameTok, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(LPAREN); err != nil {
				return nil, err
			}
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &MethodCall{Recv: expr, Method: nameTok.Lexeme, Args: args, Line: nameTok.Line, Col: nameTok.Col}
		default:
			return expr, nil
		}
	}
}

// parseCallArgs parses a comma-separated argument list up to the closing ")".
// The opening "(" has already been consumed.
func (p *Parser) parseCallArgs() ([]Expr, error) {
	var args []Expr
	if p.peek().Type != RPAREN {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parsePrimary handles literals, variables, parenthesised expressions, and
// list/dict literals.
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case INTEGER:
		p.advance()
		val, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.fmtError(tok, "integer %q out of range", tok.Lexeme)
		}
		return &NumberLiteral{Int: val, Line: tok.Line, Col: tok.Col}, nil

	case FLOAT:
		p.advance()
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.fmtError(tok, "float %q out of range", tok.Lexeme)
		}
		return &NumberLiteral{IsFloat: true, Float: val, Line: tok.Line, Col: tok.Col}, nil

	case STRING:
		p.advance()
		return &StringLiteral{Value: tok.Lexeme, Line: tok.Line, Col: tok.Col}, nil

	case IDENTIFIER:
		p.advance()
		return &Identifier{Name: tok.Lexeme, Line: tok.Line, Col: tok.Col}, nil

	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case LBRACKET:
		p.advance()
		lit := &ListLiteral{Line: tok.Line, Col: tok.Col}
		if p.peek().Type != RBRACKET {
			for {
				elem, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				lit.Elems = append(lit.Elems, elem)
				if p.peek().Type != COMMA {
					break
				}
				p.advance()
			}
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
		return lit, nil

	case LBRACE:
		p.advance()
		lit := &DictLiteral{Line: tok.Line, Col: tok.Col}
		if p.peek().Type != RBRACE {
			for {
				key, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(COLON); err != nil {
					return nil, err
				}
				val, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				lit.Keys = append(lit.Keys, key)
				lit.Values = append(lit.Values, val)
				if p.peek().Type != COMMA {
					break
				}
				p.advance()
			}
		}
		if _, err := p.expect(RBRACE); err != nil {
			return nil, err
		}
		return lit, nil

	default:
		return nil, p.fmtError(tok, "expected expression, got %s (%q)", tok.Type, tok.Lexeme)
	}
}
