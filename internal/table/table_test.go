package table

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"fave/internal/object"
	"fave/internal/value"
)

// key builds a string with a forced hash so tests control collisions.
func key(chars string, hash uint32) *object.String {
	return &object.String{Chars: chars, Hash: hash}
}

func TestSetGet(t *testing.T) {
	tbl := New()
	a := object.NewString("a")

	_, ok := tbl.Get(a)
	require.False(t, ok)

	require.True(t, tbl.Set(a, value.Number(1)))
	require.False(t, tbl.Set(a, value.Number(2)), "rebinding is not a new key")

	v, ok := tbl.Get(a)
	require.True(t, ok)
	require.Equal(t, 2.0, v.AsNumber())
	require.Equal(t, 1, tbl.Len())
}

func TestNilValueIsStillBound(t *testing.T) {
	tbl := New()
	a := object.NewString("a")
	tbl.Set(a, value.Nil)

	v, ok := tbl.Get(a)
	require.True(t, ok)
	require.True(t, v.IsNil())
}

func TestKeysCompareByReference(t *testing.T) {
	tbl := New()
	tbl.Set(object.NewString("same"), value.Number(1))

	_, ok := tbl.Get(object.NewString("same"))
	require.False(t, ok, "a distinct object with equal content is a different key")
}

func TestGrowth(t *testing.T) {
	tbl := New()
	require.Equal(t, 0, tbl.Capacity())

	for i := 0; i < 6; i++ {
		tbl.Set(object.NewString(fmt.Sprint(i)), value.Number(float64(i)))
	}
	require.Equal(t, 8, tbl.Capacity())

	tbl.Set(object.NewString("6"), value.Number(6))
	require.Equal(t, 16, tbl.Capacity())
	require.Equal(t, 7, tbl.Len())
}

func TestTombstoneKeepsProbeChain(t *testing.T) {
	tbl := New()
	a := key("a", 1)
	b := key("b", 1)
	c := key("c", 1)

	tbl.Set(a, value.Number(1))
	tbl.Set(b, value.Number(2))

	require.True(t, tbl.Delete(a))
	require.False(t, tbl.Delete(a))

	v, ok := tbl.Get(b)
	require.True(t, ok, "b sits past a's tombstone")
	require.Equal(t, 2.0, v.AsNumber())

	// The insert reuses the tombstone at a's old slot.
	require.True(t, tbl.Set(c, value.Number(3)))
	require.Same(t, c, tbl.entries[1].Key)
	require.Equal(t, 2, tbl.count)
}

func TestRehashDropsTombstones(t *testing.T) {
	tbl := New()
	keys := make([]*object.String, 6)
	for i := range keys {
		keys[i] = object.NewString(fmt.Sprintf("k%d", i))
		tbl.Set(keys[i], value.Number(float64(i)))
	}
	for i := 0; i < 3; i++ {
		require.True(t, tbl.Delete(keys[i]))
	}
	require.Equal(t, 6, tbl.count)
	require.Equal(t, 3, tbl.Len())

	tbl.Set(object.NewString("fresh"), value.Bool(true))
	require.Equal(t, 16, tbl.Capacity())
	require.Equal(t, 4, tbl.count)

	for i := 3; i < 6; i++ {
		v, ok := tbl.Get(keys[i])
		require.True(t, ok)
		require.Equal(t, float64(i), v.AsNumber())
	}
}

func TestFindString(t *testing.T) {
	tbl := New()
	require.Nil(t, tbl.FindString("x", object.HashString("x")))

	x := object.NewString("x")
	tbl.Set(x, value.Nil)
	require.Same(t, x, tbl.FindString("x", object.HashString("x")))
	require.Nil(t, tbl.FindString("y", object.HashString("y")))

	// Content lookup walks past tombstones.
	a := key("a", 5)
	b := key("b", 5)
	tbl.Set(a, value.Nil)
	tbl.Set(b, value.Nil)
	tbl.Delete(a)
	require.Same(t, b, tbl.FindString("b", 5))
	require.Nil(t, tbl.FindString("a", 5))
}
