package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lattyware/montyweightjava/pkg/runtime"
)

func constant(v runtime.Value) NativeFunc {
	return func(*CallContext, runtime.Value, []runtime.Value) (runtime.Value, error) {
		return v, nil
	}
}

func TestRegistryKeysMembersByErasedSignature(t *testing.T) {
	reg := NewRegistry()
	reg.Class("java.util", "class Bag<E>").
		Constructor("Bag()", constant(nil)).
		Method("void put(E item, long count)", constant(runtime.VoidValue{})).
		Method("static <T> T pick(T a, double b)", constant(runtime.IntValue{Val: 7}))
	require.NoError(t, reg.Err())

	_, ok := reg.Lookup("Bag", "<init>()")
	assert.True(t, ok)
	_, ok = reg.Lookup("Bag", "put(Object,int)")
	assert.True(t, ok)
	fn, ok := reg.Lookup("Bag", "pick(Object,float)")
	require.True(t, ok)
	v, err := Call(fn, &CallContext{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, runtime.IntValue{Val: 7}, v)

	cls, ok := reg.ClassNamed("Bag")
	require.True(t, ok)
	assert.True(t, cls.Decl.Native)
	assert.Len(t, cls.Decl.Methods, 2)
	assert.Len(t, cls.Decl.Constructors, 1)
	assert.True(t, reg.HasPackage("java.util"))
	assert.False(t, reg.HasPackage("java.net"))
}

func TestRegisterAgainstExistingClass(t *testing.T) {
	reg := NewRegistry()
	reg.Class("demo", "class Greeter")
	require.NoError(t, reg.Register("Greeter", "static String greet(String name)", constant(runtime.StringValue{Val: "hi"})))
	_, ok := reg.Lookup("Greeter", "greet(String)")
	assert.True(t, ok)

	assert.Error(t, reg.Register("Missing", "void f()", constant(nil)))
	assert.Error(t, reg.Register("Greeter", "void f(", constant(nil)))
}

func TestRegistryRecordsErrors(t *testing.T) {
	reg := NewRegistry()
	reg.Class("demo", "class A").
		StaticField("int notStatic", func(*CallContext) (runtime.Value, error) { return runtime.IntValue{}, nil }).
		Method("void noImpl()", nil)
	reg.Class("demo", "class A")
	reg.Class("demo", "klass B")
	err := reg.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be static")
	assert.Contains(t, err.Error(), "no implementation")
	assert.Contains(t, err.Error(), "registered twice")
	assert.Contains(t, err.Error(), "klass B")
}

func TestStaticFieldInit(t *testing.T) {
	reg := NewRegistry()
	reg.Class("demo", "class Config").
		StaticField("static int level", func(*CallContext) (runtime.Value, error) { return runtime.IntValue{Val: 3}, nil })
	require.NoError(t, reg.Err())
	init, ok := reg.StaticInit("Config", "level")
	require.True(t, ok)
	v, err := init(&CallContext{})
	require.NoError(t, err)
	assert.Equal(t, runtime.IntValue{Val: 3}, v)
	cls, _ := reg.ClassNamed("Config")
	require.Len(t, cls.Decl.Fields, 1)
	assert.True(t, cls.Decl.Fields[0].Modifiers.Static)
}

func TestCallRecoversPanics(t *testing.T) {
	boom := func(*CallContext, runtime.Value, []runtime.Value) (runtime.Value, error) {
		panic("index out of range")
	}
	_, err := Call(boom, &CallContext{}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "native panic: index out of range")

	failing := func(*CallContext, runtime.Value, []runtime.Value) (runtime.Value, error) {
		return nil, errors.New("nope")
	}
	_, err = Call(failing, &CallContext{}, nil, nil)
	assert.EqualError(t, err, "nope")

	v, err := Call(constant(nil), &CallContext{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, runtime.VoidValue{}, v)
}
