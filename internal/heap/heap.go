// Package heap owns every object a compile-then-run session allocates and the
// intern set that makes equal strings the same object.
package heap

import (
	"fave/internal/object"
	"fave/internal/table"
	"fave/internal/value"
)

// Heap is a registry of allocated objects. Objects are never freed one by
// one; Free drops the whole registry at the end of a session.
type Heap struct {
	strings *table.Table
	objects []value.Obj
}

func New() *Heap {
	return &Heap{strings: table.New()}
}

func (h *Heap) track(o value.Obj) {
	h.objects = append(h.objects, o)
}

// Intern returns the canonical string object for chars, allocating it on
// first use.
func (h *Heap) Intern(chars string) *object.String {
	hash := object.HashString(chars)
	if s := h.strings.FindString(chars, hash); s != nil {
		return s
	}
	s := &object.String{Chars: chars, Hash: hash}
	h.track(s)
	h.strings.Set(s, value.Nil)
	return s
}

// Concat interns the concatenation of a and b.
func (h *Heap) Concat(a, b *object.String) *object.String {
	return h.Intern(a.Chars + b.Chars)
}

func (h *Heap) NewFunction() *object.Function {
	fn := object.NewFunction()
	h.track(fn)
	return fn
}

func (h *Heap) NewNative(name string, arity int, fn object.NativeFn) *object.Native {
	n := &object.Native{Name: name, Arity: arity, Fn: fn}
	h.track(n)
	return n
}

// Len reports how many objects are registered.
func (h *Heap) Len() int { return len(h.objects) }

// Interned reports how many distinct strings are interned.
func (h *Heap) Interned() int { return h.strings.Len() }

func (h *Heap) Free() {
	h.objects = nil
	h.strings = table.New()
}
