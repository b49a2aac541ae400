package code

import "fave/internal/value"

// MaxConstants is the constant pool limit; pool indexes are one-byte operands.
const MaxConstants = 256

// Chunk is an append-only bytecode buffer. Lines is index-aligned with Code
// and records the source line of every byte.
type Chunk struct {
	Code      Instructions
	Lines     []int
	Constants []value.Value
}

func NewChunk() *Chunk {
	return &Chunk{}
}

func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// Emit appends a whole instruction and returns its offset.
func (c *Chunk) Emit(ins Instructions, line int) int {
	pos := len(c.Code)
	for _, b := range ins {
		c.Write(b, line)
	}
	return pos
}

// AddConstant appends v to the pool and returns its index. Callers check the
// index against MaxConstants.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

func (c *Chunk) Len() int { return len(c.Code) }

// Line returns the source line of the byte at offset, or 0 when out of range.
func (c *Chunk) Line(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}
