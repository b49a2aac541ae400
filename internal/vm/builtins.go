package vm

import (
	"time"

	"fave/internal/value"
)

// defineNatives installs the built-in globals every VM starts with.
func (m *VM) defineNatives() {
	m.DefineNative("clock", 0, m.builtinClock)
}

// builtinClock returns the seconds elapsed since the VM was created.
func (m *VM) builtinClock([]value.Value) (value.Value, error) {
	return value.Number(time.Since(m.start).Seconds()), nil
}
