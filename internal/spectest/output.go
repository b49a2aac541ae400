package spectest

import (
	"fmt"
	"strings"
)

type MatchMode int

const (
	MatchNone MatchMode = iota
	MatchExact
	MatchContains
	MatchPrefix
)

// OutputExpectation checks one captured stream.
type OutputExpectation struct {
	Mode  MatchMode
	Value string
}

func Exact(s string) OutputExpectation    { return OutputExpectation{Mode: MatchExact, Value: s} }
func Contains(s string) OutputExpectation { return OutputExpectation{Mode: MatchContains, Value: s} }
func Prefix(s string) OutputExpectation   { return OutputExpectation{Mode: MatchPrefix, Value: s} }

func NormalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// MatchOutput reports whether got satisfies exp, with a reason on mismatch.
// stream names the output in the reason.
func MatchOutput(stream, got string, exp OutputExpectation) (bool, string) {
	got = NormalizeNewlines(got)
	want := NormalizeNewlines(exp.Value)

	switch exp.Mode {
	case MatchNone:
		return true, ""
	case MatchExact:
		if got != want {
			return false, fmt.Sprintf("%s mismatch: expected %q, got %q", stream, want, got)
		}
	case MatchContains:
		if !strings.Contains(got, want) {
			return false, fmt.Sprintf("%s mismatch: expected to contain %q, got %q", stream, want, got)
		}
	case MatchPrefix:
		if !strings.HasPrefix(got, want) {
			return false, fmt.Sprintf("%s mismatch: expected to start with %q, got %q", stream, want, got)
		}
	default:
		return false, "unknown output expectation"
	}
	return true, ""
}
