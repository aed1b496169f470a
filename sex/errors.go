// Package sex implements the selection-expression language: a small
// expression language evaluated against a single recfile record, supporting
// typed comparisons, field subscripts and counts, regex matching,
// arithmetic, string concatenation, short-circuit logic, an implies
// operator, and a ternary.
package sex

import "fmt"

// CompileErrorKind enumerates the SEX compile-time error taxonomy.
// These are returned from Compile, distinct from the in-band Error values
// produced by evaluation (see Value/ErrorKind in value.go).
type CompileErrorKind int

// Constants enumerating the CompileErrorKind values a CompileError can carry.
const (
	UnexpectedToken CompileErrorKind = iota
	UnterminatedString
	UnknownOperator
)

func (k CompileErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case UnterminatedString:
		return "UnterminatedString"
	case UnknownOperator:
		return "UnknownOperator"
	default:
		return "Unknown"
	}
}

// CompileError is returned by Compile when a SEX string fails to lex or
// parse. It is always a returned failure, never a panic.
type CompileError struct {
	Kind    CompileErrorKind
	Pos     int // byte offset into the source expression
	Message string
}

// Error satisfies the builtin error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("sex: offset %d: %s: %s", e.Pos, e.Kind, e.Message)
}
