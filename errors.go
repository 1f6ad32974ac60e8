package symsolve

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRule is returned when no integration rule matches.
	ErrNoRule = errors.New("no integration rule applies")
	// ErrIndeterminate is returned when a limit cannot be resolved.
	ErrIndeterminate = errors.New("indeterminate limit")
	// ErrUnsolvable is returned for equations outside the solver's reach.
	ErrUnsolvable = errors.New("equation cannot be solved")
	// ErrUndefined is returned when a result contains the undefined marker.
	ErrUndefined = errors.New("expression is undefined")
)

// LexError reports a character the tokenizer does not recognize.
type LexError struct {
	Char   rune
	Offset int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("unexpected character %q at offset %d", e.Char, e.Offset)
}

// ParseError reports a grammar violation.
type ParseError struct {
	Expected string
	Found    string
	Pos      int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s but found %s at position %d", e.Expected, e.Found, e.Pos)
}

// UnsupportedFunctionError reports a function without a derivative rule.
type UnsupportedFunctionError struct {
	Name string
}

func (e *UnsupportedFunctionError) Error() string {
	return fmt.Sprintf("unsupported function %q", e.Name)
}

// undefinedError wraps ErrUndefined with the reason recorded on the marker.
func undefinedError(e Expr) error {
	if u, ok := e.(*Undefined); ok && u.reason != "" {
		return fmt.Errorf("%w: %s", ErrUndefined, u.reason)
	}
	return ErrUndefined
}
