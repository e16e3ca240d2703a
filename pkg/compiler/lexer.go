package compiler

import "unicode"

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"def":      DEF,
	"func":     FUNC,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"pass":     PASS,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"end":      END,
	"ailang":   AILANG,
	"asm":      ASM,
}

// Lexer holds all mutable state for a single scanning pass over src.
// Tabs, spaces and newlines are all insignificant; no indentation tokens
// are ever produced.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // current 1-based source column
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1, col: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything from the current position to end-of-line.
// The opening '#' must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// scanIdent collects a full identifier or keyword token.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line, Col: col}
}

// scanNumber collects an integer or float literal.
// The first digit must still be at l.peek().
func (l *Lexer) scanNumber() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	// A dot followed by a digit continues as a float; a trailing dot is
	// left behind for attribute access on the integer (never valid here,
	// but the parser owns that diagnostic).
	if l.peek() == '.' && unicode.IsDigit(l.peek2()) {
		l.advance() // consume '.'
		for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
			l.advance()
		}
		return Token{Type: FLOAT, Lexeme: string(l.src[start:l.pos]), Line: line, Col: col}
	}
	return Token{Type: INTEGER, Lexeme: string(l.src[start:l.pos]), Line: line, Col: col}
}

// scanString collects a string literal "..." or '...', decoding escapes.
func (l *Lexer) scanString() (Token, error) {
	line, col := l.line, l.col
	quote := l.advance() // consume the opening quote
	var val []rune

	for l.pos < len(l.src) {
		r := l.peek()
		if r == quote {
			break
		}
		if r == '\n' {
			return Token{}, errLex(line, col, "unterminated string literal")
		}
		if r == '\\' {
			l.advance() // consume backslash
			if l.pos >= len(l.src) {
				return Token{}, errLex(line, col, "unterminated string literal")
			}
			next := l.peek()
			switch next {
			case 'n':
				val = append(val, '\n')
			case 't':
				val = append(val, '\t')
			case '"':
				val = append(val, '"')
			case '\'':
				val = append(val, '\'')
			case '\\':
				val = append(val, '\\')
			default:
				return Token{}, errLex(l.line, l.col, "unknown escape sequence \\%c", next)
			}
			l.advance()
			continue
		}
		val = append(val, r)
		l.advance()
	}

	if l.pos >= len(l.src) {
		return Token{}, errLex(line, col, "unterminated string literal")
	}
	l.advance() // consume the closing quote

	return Token{Type: STRING, Lexeme: string(val), Line: line, Col: col}, nil
}

// scanRawBlock captures the brace-delimited payload after a raw-block opener
// verbatim, tracking brace depth. The payload is foreign syntax; it is never
// re-tokenized, and the enclosing braces are not part of the payload.
func (l *Lexer) scanRawBlock(opener Token) (Token, error) {
	l.skipWhitespace()
	if l.peek() != '{' {
		return Token{}, errLex(l.line, l.col, "expected '{' after %q", opener.Lexeme)
	}
	l.advance() // consume '{'

	line, col := l.line, l.col
	start := l.pos
	depth := 1
	for l.pos < len(l.src) {
		r := l.peek()
		if r == '{' {
			depth++
		} else if r == '}' {
			depth--
			if depth == 0 {
				payload := string(l.src[start:l.pos])
				l.advance() // consume the closing '}'
				return Token{Type: RAW, Lexeme: payload, Line: line, Col: col}, nil
			}
		}
		l.advance()
	}
	return Token{}, errLex(opener.Line, opener.Col, "unterminated %q block", opener.Lexeme)
}

// nextToken skips whitespace/comments and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return Token{Type: EOF, Lexeme: "", Line: l.line, Col: l.col}, nil
		}
		if l.peek() == '#' {
			l.advance()
			l.skipLineComment()
			continue
		}
		break
	}

	ch := l.peek()
	line, col := l.line, l.col

	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanIdent(), nil
	}
	if unicode.IsDigit(ch) {
		return l.scanNumber(), nil
	}
	if ch == '"' || ch == '\'' {
		return l.scanString()
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '(':
		return Token{LPAREN, "(", line, col}, nil
	case ')':
		return Token{RPAREN, ")", line, col}, nil
	case '[':
		return Token{LBRACKET, "[", line, col}, nil
	case ']':
		return Token{RBRACKET, "]", line, col}, nil
	case '{':
		return Token{LBRACE, "{", line, col}, nil
	case '}':
		return Token{RBRACE, "}", line, col}, nil
	case ',':
		return Token{COMMA, ",", line, col}, nil
	case ':':
		return Token{COLON, ":", line, col}, nil
	case ';':
		return Token{SEMICOLON, ";", line, col}, nil
	case '.':
		return Token{DOT, ".", line, col}, nil

	case '+':
		if l.peek() == '=' {
			l.advance()
			return Token{PLUS_ASSIGN, "+=", line, col}, nil
		}
		return Token{PLUS, "+", line, col}, nil
	case '-':
		if l.peek() == '=' {
			l.advance()
			return Token{MINUS_ASSIGN, "-=", line, col}, nil
		}
		if l.peek() == '>' {
			l.advance()
			return Token{ARROW, "->", line, col}, nil
		}
		return Token{MINUS, "-", line, col}, nil
	case '*':
		if l.peek() == '*' {
			l.advance()
			return Token{POWER, "**", line, col}, nil
		}
		if l.peek() == '=' {
			l.advance()
			return Token{STAR_ASSIGN, "*=", line, col}, nil
		}
		return Token{STAR, "*", line, col}, nil
	case '/':
		if l.peek() == '/' {
			l.advance()
			return Token{FLOOR_DIV, "//", line, col}, nil
		}
		if l.peek() == '=' {
			l.advance()
			return Token{SLASH_ASSIGN, "/=", line, col}, nil
		}
		return Token{SLASH, "/", line, col}, nil
	case '%':
		return Token{PERCENT, "%", line, col}, nil
	case '=':
		if l.peek() == '=' { // lookahead: distinguish = vs ==
			l.advance()
			return Token{EQUALS, "==", line, col}, nil
		}
		return Token{ASSIGN, "=", line, col}, nil
	case '!':
		if l.peek() == '=' {
			l.advance()
			return Token{NOT_EQ, "!=", line, col}, nil
		}
		return Token{}, errLex(line, col, "unexpected character %q (use 'not' for negation)", ch)
	case '<':
		if l.peek() == '=' {
			l.advance()
			return Token{LESS_EQ, "<=", line, col}, nil
		}
		return Token{LESS, "<", line, col}, nil
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{GREATER_EQ, ">=", line, col}, nil
		}
		return Token{GREATER, ">", line, col}, nil
	default:
		return Token{}, errLex(line, col, "unexpected character %q", ch)
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// A raw-block opener keyword is immediately followed by its RAW payload
// token. Lex returns a *Diagnostic on the first illegal character or
// unterminated string/raw block.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == AILANG || tok.Type == ASM {
			raw, err := l.scanRawBlock(tok)
			if err != nil {
				return tokens, err
			}
			tokens = append(tokens, raw)
			continue
		}
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
