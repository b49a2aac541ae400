// Package value defines the tagged-union Value every stack slot, constant and
// global binding holds.
package value

import (
	"math"
	"strconv"
)

type Kind byte

const (
	NilKind Kind = iota
	BoolKind
	NumberKind
	ObjKind
)

func (k Kind) String() string {
	switch k {
	case NilKind:
		return "nil"
	case BoolKind:
		return "bool"
	case NumberKind:
		return "number"
	case ObjKind:
		return "object"
	default:
		return "unknown"
	}
}

// Obj is implemented by every heap-allocated object.
type Obj interface {
	ObjType() ObjType
	String() string
}

type ObjType byte

const (
	StringObj ObjType = iota
	FunctionObj
	NativeObj
)

func (t ObjType) String() string {
	switch t {
	case StringObj:
		return "string"
	case FunctionObj:
		return "function"
	case NativeObj:
		return "native"
	default:
		return "object"
	}
}

// Value is copied by value. The obj field holds a shared reference.
type Value struct {
	kind Kind
	num  float64
	obj  Obj
}

var Nil = Value{kind: NilKind}

func Bool(b bool) Value {
	if b {
		return Value{kind: BoolKind, num: 1}
	}
	return Value{kind: BoolKind}
}

func Number(n float64) Value {
	return Value{kind: NumberKind, num: n}
}

func FromObj(o Obj) Value {
	return Value{kind: ObjKind, obj: o}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool    { return v.kind == NilKind }
func (v Value) IsBool() bool   { return v.kind == BoolKind }
func (v Value) IsNumber() bool { return v.kind == NumberKind }
func (v Value) IsObj() bool    { return v.kind == ObjKind }

func (v Value) IsObjType(t ObjType) bool {
	return v.kind == ObjKind && v.obj.ObjType() == t
}

func (v Value) AsBool() bool      { return v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObj() Obj        { return v.obj }

// IsFalsey: nil and false are falsey, everything else (including 0) is truthy.
func (v Value) IsFalsey() bool {
	return v.kind == NilKind || (v.kind == BoolKind && !v.AsBool())
}

// Equal compares by kind, then by value. Objects compare by reference, which
// is content equality for strings because every string is interned.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case NilKind:
		return true
	case BoolKind, NumberKind:
		return a.num == b.num
	case ObjKind:
		return a.obj == b.obj
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case NilKind:
		return "nil"
	case BoolKind:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case NumberKind:
		return formatNumber(v.num)
	case ObjKind:
		return v.obj.String()
	default:
		return "<unknown>"
	}
}

// formatNumber prints the shortest representation that round-trips.
// Infinities and NaN use the lowercase C spellings.
func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "nan"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
