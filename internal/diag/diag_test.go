package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiagnosticError(t *testing.T) {
	d := Diagnostic{Message: "Expect ';' after value.", Range: Range{Line: 3, Col: 7, Length: 1}, Where: " at end"}
	require.Equal(t, "[line 3] Error at end: Expect ';' after value.", d.Error())

	d.Where = " at 'x'"
	require.Equal(t, "[line 3] Error at 'x': Expect ';' after value.", d.Error())

	d.Where = ""
	require.Equal(t, "[line 3] Error: Expect ';' after value.", d.Error())
}
