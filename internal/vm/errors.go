package vm

import (
	"fmt"
	"io"
	"strings"
)

// RuntimeError aborts an Interpret call. Trace lists the active frames,
// innermost first, as "[line N] in name()" or "[line N] in script".
type RuntimeError struct {
	Message string
	Line    int
	Trace   []string
}

func (e *RuntimeError) Error() string {
	if len(e.Trace) == 0 {
		return e.Message
	}
	return e.Message + "\n" + strings.Join(e.Trace, "\n")
}

func (e *RuntimeError) write(w io.Writer) {
	if w == nil {
		return
	}
	io.WriteString(w, e.Error()+"\n")
}

// runtimeError reports a fault at the current instruction, unwinds the VM and
// returns the error for the run loop to propagate.
func (m *VM) runtimeError(format string, args ...interface{}) error {
	err := &RuntimeError{Message: fmt.Sprintf(format, args...)}

	for i := m.frameCount - 1; i >= 0; i-- {
		frame := &m.frames[i]
		line := frame.line()
		if i == m.frameCount-1 {
			err.Line = line
		}
		err.Trace = append(err.Trace, fmt.Sprintf("[line %d] in %s", line, frame.fn.DisplayName()))
	}

	err.write(m.stderr)
	m.log.Debugf("runtime error at line %d: %s", err.Line, err.Message)
	m.resetStack()
	return err
}
