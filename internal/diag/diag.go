// Package diag implements the frontend's error handling design: a closed
// set of error kinds, ordered least to most general, collected into a
// session-local log of human-readable strings.
package diag

import (
	"fmt"
	"go/token"
)

// Kind is one of the error kinds the frontend can report, ordered from
// least to most general.
type Kind int

const (
	// ParseError means the underlying parser reported diagnostics.
	ParseError Kind = iota
	// MatchError means a named binding required by a matcher was absent.
	MatchError
	// RuleError means stencil/range evaluation failed.
	RuleError
	// ApplyError means conflicting or non-applicable edits were collected.
	ApplyError
	// FormatError means the output formatter refused to reflow the text.
	FormatError
	// InputError means a missing kernel, duplicate parameter index,
	// unrecognized parameter type, or undefined param substitution.
	InputError
	// ShapeError means a builtin's argument descriptor did not match the
	// actual call arity.
	ShapeError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case MatchError:
		return "MatchError"
	case RuleError:
		return "RuleError"
	case ApplyError:
		return "ApplyError"
	case FormatError:
		return "FormatError"
	case InputError:
		return "InputError"
	case ShapeError:
		return "ShapeError"
	default:
		return "Error"
	}
}

// Diagnostic is one reported error.
type Diagnostic struct {
	Kind    Kind
	Message string
	Pos     token.Position // zero value if not applicable
}

func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Message, d.Pos)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Log accumulates diagnostics for one compile session. A session is never
// reused across calls to frontend.Compile; a fresh Log is created each time.
type Log struct {
	diags []Diagnostic
}

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Error appends a diagnostic to the log.
func (l *Log) Error(d Diagnostic) {
	l.diags = append(l.diags, d)
}

// Errorf is a convenience wrapper building a Diagnostic with no position.
func (l *Log) Errorf(kind Kind, format string, args ...interface{}) {
	l.Error(Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// ErrorAt is a convenience wrapper building a Diagnostic with a position.
func (l *Log) ErrorAt(kind Kind, fset *token.FileSet, pos token.Pos, format string, args ...interface{}) {
	d := Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if fset != nil && pos.IsValid() {
		d.Pos = fset.Position(pos)
	}
	l.Error(d)
}

// HasErrors reports whether any diagnostic was recorded.
func (l *Log) HasErrors() bool {
	return len(l.diags) > 0
}

// Diagnostics returns the recorded diagnostics in report order.
func (l *Log) Diagnostics() []Diagnostic {
	return l.diags
}

// Strings renders every diagnostic as a human-readable string, in report
// order. This is the shape frontend.Compile returns on failure.
func (l *Log) Strings() []string {
	out := make([]string, len(l.diags))
	for i, d := range l.diags {
		out[i] = d.String()
	}
	return out
}
