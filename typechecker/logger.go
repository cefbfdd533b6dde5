package typechecker

import (
	"fmt"
	"io"

	"github.com/pint-lang/pint/token"
	"github.com/pint-lang/pint/types"
)

// ErrorLogger collects the diagnostics of a pass.
type ErrorLogger struct {
	errors []*token.CompileError
}

// Errorf records a diagnostic at tok and returns the error type, so a failed
// check can be written as return log.Errorf(...).
func (l *ErrorLogger) Errorf(tok token.Token, format string, args ...any) types.Type {
	l.errors = append(l.errors, &token.CompileError{Token: tok, Msg: fmt.Sprintf(format, args...)})
	return types.Error
}

// Add records diagnostics produced elsewhere, such as by the parser.
func (l *ErrorLogger) Add(errs ...*token.CompileError) {
	l.errors = append(l.errors, errs...)
}

// At fixes the position of the diagnostics reported through the result.
func (l *ErrorLogger) At(tok token.Token) types.Logger {
	return posLogger{l: l, tok: tok}
}

func (l *ErrorLogger) Errors() []*token.CompileError { return l.errors }

func (l *ErrorLogger) HasErrors() bool { return len(l.errors) > 0 }

// Dump writes every diagnostic to w, one per line, and reports whether
// there were any.
func (l *ErrorLogger) Dump(w io.Writer) bool {
	for _, err := range l.errors {
		fmt.Fprintln(w, err)
	}
	return len(l.errors) > 0
}

type posLogger struct {
	l   *ErrorLogger
	tok token.Token
}

func (p posLogger) Errorf(format string, args ...any) types.Type {
	return p.l.Errorf(p.tok, format, args...)
}
