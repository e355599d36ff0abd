package compiler

import (
	"errors"
	"fmt"

	"github.com/pyc-lang/pyc/token"
)

// ErrorKind classifies a type checking failure.
type ErrorKind int

const (
	Redeclaration ErrorKind = iota
	UndefinedReference
	ArityMismatch
	TypeMismatch
	InvalidOperation
	InvalidCondition
)

var errorKindNames = [...]string{
	Redeclaration:      "Redeclaration",
	UndefinedReference: "UndefinedReference",
	ArityMismatch:      "ArityMismatch",
	TypeMismatch:       "TypeMismatch",
	InvalidOperation:   "InvalidOperation",
	InvalidCondition:   "InvalidCondition",
}

func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// CheckError is the single error the checker returns when it rejects a
// program.
type CheckError struct {
	Kind ErrorKind
	*token.CompileError
}

func newCheckError(kind ErrorKind, tok token.Token, format string, args ...any) *CheckError {
	return &CheckError{
		Kind: kind,
		CompileError: &token.CompileError{
			Token: tok,
			Msg:   fmt.Sprintf(format, args...),
		},
	}
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Token.FileName, e.Token.Line, e.Token.Column, e.Kind, e.Msg)
}

func (e *CheckError) Unwrap() error { return e.CompileError }

// IsKind reports whether err is, or wraps, a CheckError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CheckError
	return errors.As(err, &ce) && ce.Kind == kind
}
