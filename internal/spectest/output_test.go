package spectest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchOutput(t *testing.T) {
	tests := []struct {
		got string
		exp OutputExpectation
		ok  bool
	}{
		{"a\r\nb\r\n", Exact("a\nb\n"), true},
		{"a\nb\n", Exact("a\n"), false},
		{"hello\nworld\n", Contains("world\n"), true},
		{"hello\n", Contains("world"), false},
		{"Stack overflow.\n[line 1] in f()\n", Prefix("Stack overflow.\n"), true},
		{"x", Prefix("y"), false},
		{"anything", OutputExpectation{}, true},
	}
	for _, tt := range tests {
		ok, reason := MatchOutput("stdout", tt.got, tt.exp)
		require.Equal(t, tt.ok, ok, "%q vs %+v", tt.got, tt.exp)
		if !ok {
			require.Contains(t, reason, "stdout mismatch")
		}
	}
}
