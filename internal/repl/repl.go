package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"fave/internal/vm"
)

const (
	prompt1 = "> "
	prompt2 = ". "
)

// IsInteractive reports whether f is a terminal. Prompts and the banner are
// only printed for terminals so piped sessions produce clean output.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Start reads lines from in and interprets each complete chunk on m. A chunk
// is complete once its braces and parentheses balance and no string is left
// open. Compile and runtime errors are reported by m and the loop continues.
func Start(in io.Reader, out io.Writer, m *vm.VM, interactive bool) {
	scanner := bufio.NewScanner(in)

	if interactive {
		fmt.Fprint(out, "fave REPL (Ctrl+D to exit)\n")
	}

	var buf strings.Builder
	var bal balance

	for {
		if interactive {
			if buf.Len() == 0 {
				fmt.Fprint(out, prompt1)
			} else {
				fmt.Fprint(out, prompt2)
			}
		}

		if !scanner.Scan() {
			if interactive {
				fmt.Fprint(out, "\n")
			}
			if buf.Len() > 0 {
				m.Interpret(buf.String())
			}
			return
		}

		line := scanner.Text()
		trim := strings.TrimSpace(line)

		if buf.Len() == 0 && (trim == "exit" || trim == "quit") {
			return
		}

		buf.WriteString(line)
		buf.WriteString("\n")

		bal.update(line)
		if !bal.complete() {
			continue
		}

		src := buf.String()
		buf.Reset()
		bal = balance{}

		m.Interpret(src)
	}
}

type balance struct {
	braces   int
	parens   int
	inString bool
}

func (b *balance) complete() bool {
	return b.braces <= 0 && b.parens <= 0 && !b.inString
}

func (b *balance) update(line string) {
	for i := 0; i < len(line); i++ {
		ch := line[i]

		if b.inString {
			if ch == '"' {
				b.inString = false
			}
			continue
		}

		if ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			break
		}

		switch ch {
		case '"':
			b.inString = true
		case '{':
			b.braces++
		case '}':
			b.braces--
		case '(':
			b.parens++
		case ')':
			b.parens--
		}
	}
}
