package object

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fave/internal/value"
)

func TestHashString(t *testing.T) {
	// FNV-1a reference values.
	require.Equal(t, uint32(2166136261), HashString(""))
	require.Equal(t, uint32(0xe40c292c), HashString("a"))
	require.Equal(t, uint32(0xbf9cf968), HashString("foobar"))
}

func TestStringCachesHash(t *testing.T) {
	s := NewString("hello")
	require.Equal(t, HashString("hello"), s.Hash)
	require.Equal(t, 5, s.Len())
	require.Equal(t, "hello", value.FromObj(s).String())
}

func TestFunctionNames(t *testing.T) {
	script := NewFunction()
	require.Equal(t, "<script>", script.String())
	require.Equal(t, "script", script.DisplayName())
	require.NotNil(t, script.Chunk)

	fn := NewFunction()
	fn.Name = NewString("fib")
	require.Equal(t, "<fn fib>", fn.String())
	require.Equal(t, "fib()", fn.DisplayName())
}

func TestAsHelpers(t *testing.T) {
	s := value.FromObj(NewString("x"))
	f := value.FromObj(NewFunction())
	n := value.FromObj(&Native{Name: "clock"})

	_, ok := AsString(s)
	require.True(t, ok)
	_, ok = AsString(f)
	require.False(t, ok)
	_, ok = AsFunction(f)
	require.True(t, ok)
	_, ok = AsNative(n)
	require.True(t, ok)
	_, ok = AsNative(value.Number(1))
	require.False(t, ok)
	require.Equal(t, "<native fn>", n.String())
}
