// Package diag is the lowering pass's diagnostics interface: a minimal
// fatal_no_src reporter for unsupported constructs. Lowering does not
// attach source locations beyond what the AST already carries, so every
// fatal here is "no source" by construction.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// FatalError is the typed panic value raised for an unsupported construct.
// pkg/lower's top-level driver recovers exactly this type at the function
// boundary and turns it into a returned error. No other package in this
// repo recovers panics; pkg/parser collects errors in Errors() instead.
type FatalError struct {
	Msg string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("ralph-cc: fatal: %s", e.Msg)
}

// FatalNoSrc raises a FatalError for an unsupported construct. Callers in
// pkg/lower never recover it themselves; only LowerProgram's boundary does.
func FatalNoSrc(format string, args ...any) {
	panic(&FatalError{Msg: fmt.Sprintf(format, args...)})
}

// Report writes a non-fatal diagnostic line to w, colorized for terminal
// output.
func Report(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, color.RedString("ralph-cc: %s", msg))
}
