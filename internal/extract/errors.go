package extract

import (
	"errors"
	"fmt"
)

// ErrorKind classifies extraction failures so callers can distinguish
// missing inputs from malformed ones and from constructs the static
// extractor deliberately does not evaluate.
type ErrorKind int

const (
	// KindNotFound covers absent inputs: entry file, registration section,
	// decorator, or parameter-defining file.
	KindNotFound ErrorKind = iota
	// KindInvalidSyntax covers malformed call or import text.
	KindInvalidSyntax
	// KindUnsupportedConstruct covers source the extractor recognizes but
	// refuses to evaluate statically, such as arbitrary attribute chains.
	KindUnsupportedConstruct
)

// Error is the extraction error type. Wrap an underlying cause with %w where
// one exists; match with errors.As plus the Kind field, or the Is* helpers.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func notFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func syntaxf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidSyntax, Msg: fmt.Sprintf(format, args...)}
}

func unsupportedf(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupportedConstruct, Msg: fmt.Sprintf(format, args...)}
}

func kindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsNotFound reports whether err is an extraction NotFound error.
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

// IsInvalidSyntax reports whether err is an extraction InvalidSyntax error.
func IsInvalidSyntax(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindInvalidSyntax
}

// IsUnsupported reports whether err is an UnsupportedConstruct error.
func IsUnsupported(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindUnsupportedConstruct
}

// needsStepScan is the recoverable signal raised by the value classifier
// when a kwarg value is a ClassName.steps attribute access. It routes the
// assembler to the decorator step scanner instead of failing the call.
type needsStepScan struct {
	className string
}

func (e *needsStepScan) Error() string {
	return fmt.Sprintf("attribute %s.steps requires a decorator scan", e.className)
}
