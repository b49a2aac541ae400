package lsp

import (
	"unicode/utf16"
	"unicode/utf8"
)

// utf16Column converts a byte offset within line to UTF-16 code units.
// Offsets past the end of the line extend one unit per byte.
func utf16Column(line string, byteOffset int) uint32 {
	var col uint32
	i := 0
	for i < len(line) && i < byteOffset {
		r, size := utf8.DecodeRuneInString(line[i:])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		col += uint32(n)
		i += size
	}
	if byteOffset > len(line) {
		col += uint32(byteOffset - len(line))
	}
	return col
}
