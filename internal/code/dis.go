package code

import (
	"encoding/binary"
	"fmt"
	"io"
)

func ReadOperands(def *Definition, ins Instructions) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	offset := 0

	for i, w := range def.OperandWidths {
		switch w {
		case 1:
			operands[i] = int(ins[offset])
		case 2:
			operands[i] = int(binary.BigEndian.Uint16(ins[offset:]))
		default:
			panic("unsupported operand width")
		}
		offset += w
	}
	return operands, offset
}

// Disassemble writes every instruction of the chunk under a "== name ==" header.
func Disassemble(w io.Writer, c *Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = DisassembleInstruction(w, c, offset)
	}
}

// DisassembleInstruction writes the instruction at offset and returns the
// offset of the next one.
func DisassembleInstruction(w io.Writer, c *Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := Opcode(c.Code[offset])
	def, ok := Lookup(op)
	if !ok {
		fmt.Fprintf(w, "Unknown opcode %d\n", op)
		return offset + 1
	}
	if offset+1+operandBytes(def) > len(c.Code) {
		fmt.Fprintf(w, "%s <truncated>\n", def.Name)
		return len(c.Code)
	}
	operands, read := ReadOperands(def, c.Code[offset+1:])
	next := offset + 1 + read

	switch op {
	case OpConstant, OpGetGlobal, OpDefineGlobal, OpSetGlobal:
		idx := operands[0]
		fmt.Fprintf(w, "%-16s %4d '%s'\n", def.Name, idx, constantString(c, idx))
	case OpGetLocal, OpSetLocal, OpCall:
		fmt.Fprintf(w, "%-16s %4d\n", def.Name, operands[0])
	case OpJump, OpJumpIfFalse:
		fmt.Fprintf(w, "%-16s %4d -> %d\n", def.Name, offset, next+operands[0])
	case OpLoop:
		fmt.Fprintf(w, "%-16s %4d -> %d\n", def.Name, offset, next-operands[0])
	default:
		fmt.Fprintf(w, "%s\n", def.Name)
	}
	return next
}

func operandBytes(def *Definition) int {
	n := 0
	for _, w := range def.OperandWidths {
		n += w
	}
	return n
}

func constantString(c *Chunk, idx int) string {
	if idx < 0 || idx >= len(c.Constants) {
		return "?"
	}
	return c.Constants[idx].String()
}
