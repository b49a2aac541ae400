package diag

import "fmt"

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

type Range struct {
	Line   int // 1-based
	Col    int // 1-based
	Length int // best-effort; can be 1 if unknown
}

// Diagnostic is one compile error. It satisfies error so a batch of them can
// travel in a multierror.
type Diagnostic struct {
	Message  string
	Severity Severity
	Range    Range
	// Where locates the offending token: " at end", " at 'lexeme'", or empty
	// for lexer errors.
	Where string
}

// Error renders the canonical "[line N] Error at 'x': message" text.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", d.Range.Line, d.Where, d.Message)
}
