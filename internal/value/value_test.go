package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeObj struct{ name string }

func (*fakeObj) ObjType() ObjType { return StringObj }
func (f *fakeObj) String() string { return f.name }

func TestFalsiness(t *testing.T) {
	tests := []struct {
		v      Value
		falsey bool
	}{
		{Nil, true},
		{Bool(false), true},
		{Bool(true), false},
		{Number(0), false},
		{Number(-1), false},
		{FromObj(&fakeObj{""}), false},
	}
	for i, tt := range tests {
		require.Equal(t, tt.falsey, tt.v.IsFalsey(), "case %d (%s)", i, tt.v)
	}
}

func TestEqual(t *testing.T) {
	a := &fakeObj{"a"}
	b := &fakeObj{"a"}

	require.True(t, Equal(Nil, Nil))
	require.True(t, Equal(Number(1), Number(1)))
	require.False(t, Equal(Number(1), Bool(true)))
	require.False(t, Equal(Nil, Bool(false)))
	require.True(t, Equal(Bool(false), Bool(false)))
	require.True(t, Equal(FromObj(a), FromObj(a)))
	require.False(t, Equal(FromObj(a), FromObj(b)), "objects compare by reference")
	require.False(t, Equal(Number(math.NaN()), Number(math.NaN())))
}

func TestString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Nil, "nil"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Number(7), "7"},
		{Number(2.5), "2.5"},
		{Number(-0.1), "-0.1"},
		{Number(1e21), "1e+21"},
		{Number(1.0 / 3), "0.3333333333333333"},
		{Number(math.Inf(1)), "inf"},
		{Number(math.Inf(-1)), "-inf"},
		{Number(math.NaN()), "nan"},
		{FromObj(&fakeObj{"hi"}), "hi"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.v.String())
	}
}

func TestKinds(t *testing.T) {
	require.True(t, Nil.IsNil())
	require.True(t, Bool(true).IsBool())
	require.True(t, Number(3).IsNumber())
	v := FromObj(&fakeObj{"x"})
	require.True(t, v.IsObj())
	require.True(t, v.IsObjType(StringObj))
	require.False(t, v.IsObjType(FunctionObj))
	require.False(t, Number(1).IsObjType(StringObj))
	require.Equal(t, "number", Number(1).Kind().String())
}
