package runtime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentScopes(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("x", IntValue{Val: 1})
	inner := NewEnvironment(outer)
	inner.Define("y", BoolValue{Val: true})

	v, err := inner.Get("x")
	require.NoError(t, err)
	assert.Equal(t, IntValue{Val: 1}, v)

	require.NoError(t, inner.Assign("x", IntValue{Val: 5}))
	v, err = outer.Get("x")
	require.NoError(t, err)
	assert.Equal(t, IntValue{Val: 5}, v)

	assert.Error(t, inner.Assign("missing", NullValue{}))
	_, err = outer.Get("y")
	assert.Error(t, err)
	assert.Equal(t, []string{"x"}, outer.Keys())
	assert.Equal(t, []string{"x", "y"}, inner.Keys())
}

func TestFormat(t *testing.T) {
	heap := &Heap{}
	obj := heap.Allocate("Pair", []string{"int", "String"})
	cases := []struct {
		value Value
		want  string
	}{
		{IntValue{Val: -10}, "-10"},
		{FloatValue{Val: 1}, "1.0"},
		{FloatValue{Val: 2.5}, "2.5"},
		{FloatValue{Val: 1.5e10}, "1.5E10"},
		{FloatValue{Val: 0.0001}, "1.0E-4"},
		{FloatValue{Val: math.Inf(1)}, "Infinity"},
		{BoolValue{Val: false}, "false"},
		{StringValue{Val: "hi"}, "hi"},
		{NullValue{}, "null"},
		{nil, "null"},
		{obj, "Pair@1"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Format(tc.value))
	}
	assert.Equal(t, `"hi"`, Describe(StringValue{Val: "hi"}))
}

func TestClassNameAndNull(t *testing.T) {
	heap := &Heap{}
	obj := heap.Allocate("Test2", nil)
	assert.Equal(t, "Test2", ClassName(obj))
	assert.Equal(t, "String", ClassName(StringValue{Val: ""}))
	assert.Equal(t, "", ClassName(IntValue{}))
	assert.True(t, IsNull(NullValue{}))
	assert.True(t, IsNull(nil))
	assert.False(t, IsNull(obj))
	assert.Equal(t, int64(1), heap.Allocated())
}

func TestEqual(t *testing.T) {
	heap := &Heap{}
	a := heap.Allocate("A", nil)
	b := heap.Allocate("A", nil)
	assert.True(t, Equal(IntValue{Val: 2}, FloatValue{Val: 2}))
	assert.True(t, Equal(StringValue{Val: "x"}, StringValue{Val: "x"}))
	assert.True(t, Equal(a, a))
	assert.False(t, Equal(a, b))
	assert.True(t, Equal(NullValue{}, nil))
	assert.False(t, Equal(a, NullValue{}))
	assert.False(t, Equal(BoolValue{Val: true}, IntValue{Val: 1}))
}
