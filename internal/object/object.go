// Package object holds the heap-allocated variants a Value can reference.
package object

import (
	"fave/internal/code"
	"fave/internal/value"
)

// String is immutable. Its hash is computed once at construction.
type String struct {
	Chars string
	Hash  uint32
}

func NewString(chars string) *String {
	return &String{Chars: chars, Hash: HashString(chars)}
}

func (*String) ObjType() value.ObjType { return value.StringObj }
func (s *String) String() string       { return s.Chars }
func (s *String) Len() int             { return len(s.Chars) }

// HashString is 32-bit FNV-1a.
func HashString(s string) uint32 {
	hash := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// Function is a compiled function body. Name is nil for the top-level script.
type Function struct {
	Arity int
	Name  *String
	Chunk *code.Chunk
}

func NewFunction() *Function {
	return &Function{Chunk: code.NewChunk()}
}

func (*Function) ObjType() value.ObjType { return value.FunctionObj }
func (f *Function) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.Chars + ">"
}

// DisplayName is the name used in runtime stack traces.
func (f *Function) DisplayName() string {
	if f.Name == nil {
		return "script"
	}
	return f.Name.Chars + "()"
}

type NativeFn func(args []value.Value) (value.Value, error)

// Native wraps a Go function. Arity -1 accepts any argument count.
type Native struct {
	Name  string
	Arity int
	Fn    NativeFn
}

func (*Native) ObjType() value.ObjType { return value.NativeObj }
func (*Native) String() string         { return "<native fn>" }

func AsString(v value.Value) (*String, bool) {
	if !v.IsObjType(value.StringObj) {
		return nil, false
	}
	s, ok := v.AsObj().(*String)
	return s, ok
}

func AsFunction(v value.Value) (*Function, bool) {
	if !v.IsObjType(value.FunctionObj) {
		return nil, false
	}
	f, ok := v.AsObj().(*Function)
	return f, ok
}

func AsNative(v value.Value) (*Native, bool) {
	if !v.IsObjType(value.NativeObj) {
		return nil, false
	}
	n, ok := v.AsObj().(*Native)
	return n, ok
}
