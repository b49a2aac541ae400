package vm

import "fave/internal/object"

// Frame is one active call. Its locals live in the shared stack starting at
// base, where slot 0 holds the callee itself.
type Frame struct {
	fn   *object.Function
	ip   int
	base int
}

func (f *Frame) Instructions() []byte { return f.fn.Chunk.Code }

// line is the source line of the instruction being executed.
func (f *Frame) line() int {
	return f.fn.Chunk.Line(f.ip - 1)
}
