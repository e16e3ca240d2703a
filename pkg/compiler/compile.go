package compiler

import (
	"pylang/pkg/ir"
)

// Compile translates one fully materialized source file into the
// intermediate program consumed by the native-code backend. It is a pure
// function: the same source always yields the same program or the same
// *Diagnostic, and the first error aborts the whole file with no partial
// output. Separate sources may be compiled concurrently; nothing is shared
// between calls.
func Compile(src string) (*ir.Program, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}

	prog, err := Parse(tokens, src)
	if err != nil {
		return nil, err
	}

	return Generate(prog)
}
