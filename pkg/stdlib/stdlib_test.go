package stdlib

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lattyware/montyweightjava/pkg/bridge"
	"github.com/Lattyware/montyweightjava/pkg/runtime"
)

// fakeHost constructs objects by running the registered no-arg constructor.
type fakeHost struct {
	reg  *bridge.Registry
	heap runtime.Heap
}

func (h *fakeHost) NewObject(class string, args ...runtime.Value) (runtime.Value, error) {
	obj := h.heap.Allocate(class, nil)
	if ctor, ok := h.reg.Lookup(class, bridge.SignatureKey(bridge.ConstructorName, nil)); ok {
		if _, err := bridge.Call(ctor, &bridge.CallContext{Host: h}, obj, args); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func setup(t *testing.T) (*bridge.Registry, *bridge.CallContext, *bytes.Buffer) {
	t.Helper()
	reg, err := NewRegistry()
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return reg, &bridge.CallContext{Stdout: out, Host: &fakeHost{reg: reg}}, out
}

func call(t *testing.T, reg *bridge.Registry, ctx *bridge.CallContext, class, key string, receiver runtime.Value, args ...runtime.Value) (runtime.Value, error) {
	t.Helper()
	fn, ok := reg.Lookup(class, key)
	require.True(t, ok, "%s.%s not registered", class, key)
	return bridge.Call(fn, ctx, receiver, args)
}

func str(s string) runtime.Value { return runtime.StringValue{Val: s} }
func num(n int32) runtime.Value  { return runtime.IntValue{Val: n} }

func TestRegistryPackages(t *testing.T) {
	reg, _, _ := setup(t)
	for _, pkg := range []string{"java.lang", "java.io", "java.util"} {
		assert.True(t, reg.HasPackage(pkg), pkg)
	}
	list, ok := reg.ClassNamed("List")
	require.True(t, ok)
	assert.Equal(t, "java.util", list.Package)
	require.Len(t, list.Decl.TypeParams, 1)
	assert.Equal(t, "E", list.Decl.TypeParams[0].Name)
}

func TestStringMethods(t *testing.T) {
	reg, ctx, _ := setup(t)
	recv := str("héllo")

	v, err := call(t, reg, ctx, "String", "length()", recv)
	require.NoError(t, err)
	assert.Equal(t, num(5), v)

	v, err = call(t, reg, ctx, "String", "substring(int,int)", recv, num(1), num(3))
	require.NoError(t, err)
	assert.Equal(t, str("él"), v)

	_, err = call(t, reg, ctx, "String", "substring(int,int)", recv, num(3), num(9))
	assert.ErrorContains(t, err, "StringIndexOutOfBoundsException")

	v, err = call(t, reg, ctx, "String", "equals(Object)", recv, str("héllo"))
	require.NoError(t, err)
	assert.Equal(t, runtime.BoolValue{Val: true}, v)

	v, err = call(t, reg, ctx, "String", "equals(Object)", recv, runtime.NullValue{})
	require.NoError(t, err)
	assert.Equal(t, runtime.BoolValue{Val: false}, v)

	v, err = call(t, reg, ctx, "String", "concat(String)", recv, str("!"))
	require.NoError(t, err)
	assert.Equal(t, str("héllo!"), v)

	v, err = call(t, reg, ctx, "String", "isEmpty()", str(""))
	require.NoError(t, err)
	assert.Equal(t, runtime.BoolValue{Val: true}, v)
}

func TestIntegerAndMath(t *testing.T) {
	reg, ctx, _ := setup(t)

	v, err := call(t, reg, ctx, "Integer", "toString(int)", nil, num(-42))
	require.NoError(t, err)
	assert.Equal(t, str("-42"), v)

	v, err = call(t, reg, ctx, "Integer", "parseInt(String)", nil, str("17"))
	require.NoError(t, err)
	assert.Equal(t, num(17), v)

	_, err = call(t, reg, ctx, "Integer", "parseInt(String)", nil, str("x1"))
	assert.EqualError(t, err, `NumberFormatException: For input string: "x1"`)

	v, err = call(t, reg, ctx, "Math", "abs(int)", nil, num(-3))
	require.NoError(t, err)
	assert.Equal(t, num(3), v)

	v, err = call(t, reg, ctx, "Math", "max(int,int)", nil, num(2), num(9))
	require.NoError(t, err)
	assert.Equal(t, num(9), v)

	v, err = call(t, reg, ctx, "Math", "min(int,int)", nil, num(2), num(9))
	require.NoError(t, err)
	assert.Equal(t, num(2), v)
}

func TestSystemOut(t *testing.T) {
	reg, ctx, out := setup(t)
	init, ok := reg.StaticInit("System", "out")
	require.True(t, ok)
	stream, err := init(ctx)
	require.NoError(t, err)
	require.Equal(t, "PrintStream", runtime.ClassName(stream))

	_, err = call(t, reg, ctx, "PrintStream", "print(String)", stream, str("a"))
	require.NoError(t, err)
	_, err = call(t, reg, ctx, "PrintStream", "println(String)", stream, str("b"))
	require.NoError(t, err)
	_, err = call(t, reg, ctx, "PrintStream", "println()", stream)
	require.NoError(t, err)
	assert.Equal(t, "ab\n\n", out.String())
}

func TestList(t *testing.T) {
	reg, ctx, _ := setup(t)
	list, err := ctx.Host.NewObject("List")
	require.NoError(t, err)

	for _, n := range []int32{4, 1, 3} {
		_, err := call(t, reg, ctx, "List", "add(Object)", list, num(n))
		require.NoError(t, err)
	}
	v, err := call(t, reg, ctx, "List", "size()", list)
	require.NoError(t, err)
	assert.Equal(t, num(3), v)

	v, err = call(t, reg, ctx, "List", "get(int)", list, num(1))
	require.NoError(t, err)
	assert.Equal(t, num(1), v)

	_, err = call(t, reg, ctx, "List", "get(int)", list, num(3))
	assert.EqualError(t, err, "IndexOutOfBoundsException: Index 3 out of bounds for length 3")

	v, err = call(t, reg, ctx, "List", "contains(Object)", list, num(3))
	require.NoError(t, err)
	assert.Equal(t, runtime.BoolValue{Val: true}, v)

	v, err = call(t, reg, ctx, "List", "set(int,Object)", list, num(0), num(9))
	require.NoError(t, err)
	assert.Equal(t, num(4), v)

	sub, err := call(t, reg, ctx, "List", "subList(int,int)", list, num(1), num(3))
	require.NoError(t, err)
	v, err = call(t, reg, ctx, "List", "get(int)", sub, num(0))
	require.NoError(t, err)
	assert.Equal(t, num(1), v)

	v, err = call(t, reg, ctx, "List", "remove(int)", list, num(0))
	require.NoError(t, err)
	assert.Equal(t, num(9), v)

	state := list.(*runtime.ObjectValue).Native.(runtime.Inspector)
	slots := state.InspectSlots()
	require.Len(t, slots, 2)
	assert.Equal(t, "get(0)", slots[0].Name)
	assert.Equal(t, num(1), slots[0].Value)

	_, err = call(t, reg, ctx, "List", "clear()", list)
	require.NoError(t, err)
	v, err = call(t, reg, ctx, "List", "isEmpty()", list)
	require.NoError(t, err)
	assert.Equal(t, runtime.BoolValue{Val: true}, v)
}

func TestListRequiresConstructor(t *testing.T) {
	reg, ctx, _ := setup(t)
	bare := &runtime.ObjectValue{ID: 7, Class: "TestList", Fields: map[string]runtime.Value{}}
	_, err := call(t, reg, ctx, "List", "size()", bare)
	assert.EqualError(t, err, "TestList@7 was not initialised as a List")
}
