package lsp

import (
	"io"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"fave/internal/compiler"
	"fave/internal/diag"
	"fave/internal/heap"
)

const diagnosticSource = "fave"

// Analyze compiles text without running it and returns every compile
// diagnostic. Each call uses a private heap.
func Analyze(text string) []diag.Diagnostic {
	h := heap.New()
	defer h.Free()

	_, err := compiler.Compile(text, h, compiler.WithErrorWriter(io.Discard))
	return compiler.Diagnostics(err)
}

// ToLspDiagnostics converts 1-based byte positions in text into LSP ranges.
func ToLspDiagnostics(text string, ds []diag.Diagnostic) []protocol.Diagnostic {
	lines := strings.Split(text, "\n")
	out := make([]protocol.Diagnostic, 0, len(ds))

	for _, d := range ds {
		length := d.Range.Length
		if length <= 0 {
			length = 1
		}
		start := toLspPosition(lines, d.Range.Line, d.Range.Col)
		end := toLspPosition(lines, d.Range.Line, d.Range.Col+length)
		if end.Line == start.Line && end.Character <= start.Character {
			end.Character = start.Character + 1
		}

		severity := protocol.DiagnosticSeverityError
		switch d.Severity {
		case diag.SeverityWarning:
			severity = protocol.DiagnosticSeverityWarning
		case diag.SeverityInfo:
			severity = protocol.DiagnosticSeverityInformation
		}

		pd := protocol.Diagnostic{
			Range:    protocol.Range{Start: start, End: end},
			Severity: &severity,
			Source:   ptrString(diagnosticSource),
			Message:  d.Message,
		}
		out = append(out, pd)
	}
	return out
}

// toLspPosition maps a 1-based line and byte column to a 0-based LSP
// position counted in UTF-16 units.
func toLspPosition(lines []string, line1, col1 int) protocol.Position {
	if line1 < 1 {
		line1 = 1
	}
	if col1 < 1 {
		col1 = 1
	}
	pos := protocol.Position{Line: uint32(line1 - 1)}
	if line1-1 < len(lines) {
		pos.Character = utf16Column(lines[line1-1], col1-1)
	} else {
		pos.Character = uint32(col1 - 1)
	}
	return pos
}

func ptrString(s string) *string { return &s }
