package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable / function name
	INTEGER    // decimal integer literal
	FLOAT      // decimal float literal
	STRING     // string literal "..."
	RAW        // verbatim raw-block payload (lexeme is the text between braces)

	// Keywords
	DEF      // "def"
	FUNC     // "func"  (synonym of "def")
	IF       // "if"
	ELIF     // "elif"
	ELSE     // "else"
	WHILE    // "while"
	FOR      // "for"
	IN       // "in"
	RETURN   // "return"
	BREAK    // "break"
	CONTINUE // "continue"
	PASS     // "pass"
	AND      // "and"
	OR       // "or"
	NOT      // "not"
	END      // "end"
	AILANG   // "ailang" raw-block opener
	ASM      // "asm" raw-block opener

	// Paired delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }

	// Punctuation
	COMMA     // ,
	COLON     // :
	SEMICOLON // ;
	DOT       // .
	ARROW     // ->

	// Arithmetic operators
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	POWER     // **
	FLOOR_DIV // //

	// Assignment / comparison  (order matters: ASSIGN before EQUALS)
	ASSIGN       // =
	PLUS_ASSIGN  // +=
	MINUS_ASSIGN // -=
	STAR_ASSIGN  // *=
	SLASH_ASSIGN // /=

	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	GREATER    // >
	LESS_EQ    // <=
	GREATER_EQ // >=
)

var tokenNames = [...]string{
	EOF:          "EOF",
	IDENTIFIER:   "IDENTIFIER",
	INTEGER:      "INTEGER",
	FLOAT:        "FLOAT",
	STRING:       "STRING",
	RAW:          "RAW",
	DEF:          "DEF",
	FUNC:         "FUNC",
	IF:           "IF",
	ELIF:         "ELIF",
	ELSE:         "ELSE",
	WHILE:        "WHILE",
	FOR:          "FOR",
	IN:           "IN",
	RETURN:       "RETURN",
	BREAK:        "BREAK",
	CONTINUE:     "CONTINUE",
	PASS:         "PASS",
	AND:          "AND",
	OR:           "OR",
	NOT:          "NOT",
	END:          "END",
	AILANG:       "AILANG",
	ASM:          "ASM",
	LPAREN:       "LPAREN",
	RPAREN:       "RPAREN",
	LBRACKET:     "LBRACKET",
	RBRACKET:     "RBRACKET",
	LBRACE:       "LBRACE",
	RBRACE:       "RBRACE",
	COMMA:        "COMMA",
	COLON:        "COLON",
	SEMICOLON:    "SEMICOLON",
	DOT:          "DOT",
	ARROW:        "ARROW",
	PLUS:         "PLUS",
	MINUS:        "MINUS",
	STAR:         "STAR",
	SLASH:        "SLASH",
	PERCENT:      "PERCENT",
	POWER:        "POWER",
	FLOOR_DIV:    "FLOOR_DIV",
	ASSIGN:       "ASSIGN",
	PLUS_ASSIGN:  "PLUS_ASSIGN",
	MINUS_ASSIGN: "MINUS_ASSIGN",
	STAR_ASSIGN:  "STAR_ASSIGN",
	SLASH_ASSIGN: "SLASH_ASSIGN",
	EQUALS:       "EQUALS",
	NOT_EQ:       "NOT_EQ",
	LESS:         "LESS",
	GREATER:      "GREATER",
	LESS_EQ:      "LESS_EQ",
	GREATER_EQ:   "GREATER_EQ",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched (decoded for STRING, verbatim for RAW)
	Line   int    // 1-based source line
	Col    int    // 1-based source column
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  %d:%d", t.Type, t.Lexeme, t.Line, t.Col)
}
