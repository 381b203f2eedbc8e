package typechecker

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/parser"
	"github.com/Lattyware/montyweightjava/pkg/stdlib"
)

func analyze(t *testing.T, src string) (*Program, error) {
	t.Helper()
	unit, err := parser.ParseCompilationUnit(src)
	require.NoError(t, err)
	reg, err := stdlib.NewRegistry()
	require.NoError(t, err)
	return Check(unit, reg)
}

func mustAnalyze(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := analyze(t, src)
	require.NoError(t, err)
	return prog
}

func requireKind(t *testing.T, err error, kind SemanticErrorKind) *SemanticError {
	t.Helper()
	require.Error(t, err)
	var semErr *SemanticError
	require.True(t, errors.As(err, &semErr), "not a semantic error: %v", err)
	require.Equal(t, kind, semErr.Kind, semErr.Error())
	return semErr
}

func mainStatements(prog *Program, class string) []ast.Statement {
	for _, m := range prog.Classes.MustLookup(class).Methods["main"] {
		return m.Decl.Body.Statements
	}
	return nil
}

const genericsProgram = `
class Pair<T, U> {
    T first;
    U second;

    Pair(T first, U second) {
        this.update(first, second);
    }

    static void main() {
        Pair<int, String> test = new Pair<int, String>(1, "Test");
        Pair<Pair<int, String>, String> test2 =
            new Pair<Pair<int, String>, String>(test, "Yeah");
        System.out.println(Integer.toString(test2.getFirst().getFirst()));
        System.out.println(Integer.toString(Pair.test(1)));
    }

    static <T> T test(T test) {
        return test;
    }

    T getFirst() {
        return this.first;
    }

    void update(T first, U second) {
        this.first = first;
        this.second = second;
    }
}
`

func TestGenericProgramIsErased(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mj.semantics")
	defer teardown()

	prog := mustAnalyze(t, genericsProgram)
	require.NotNil(t, prog.Entry)
	assert.Equal(t, "Pair", prog.Entry.Owner.Name)

	pair := prog.Classes.MustLookup("Pair")
	assert.Same(t, prog.Classes.Root, pair.Super)
	assert.Equal(t, []string{"T", "U"}, pair.TypeParams)
	require.Len(t, pair.Methods["test"], 1)
	assert.Equal(t, "test(Object)", pair.Methods["test"][0].Key)
	assert.Equal(t, "update(Object,Object)", pair.VTable["update(Object,Object)"].Key)

	stmts := mainStatements(prog, "Pair")
	printCall := stmts[2].(*ast.ExpressionStatement).Expression.(*ast.MethodCall)
	toString := printCall.Args[0].(*ast.MethodCall)
	outer := toString.Args[0].(*ast.MethodCall)
	inner := outer.Target.(*ast.MethodCall)

	assert.Equal(t, CallVirtual, prog.Resolution.Calls[inner].Kind)
	assert.Equal(t, "getFirst()", prog.Resolution.Calls[inner].Method.Key)
	assert.Equal(t, CallDynamic, prog.Resolution.Calls[outer].Kind)
	assert.Equal(t, CallStatic, prog.Resolution.Calls[toString].Kind)
	assert.Equal(t, ConvertCheck, prog.Resolution.Conversions[outer].Kind)
	assert.Equal(t, IntType, prog.Resolution.Conversions[outer].Target)

	out := printCall.Target.(*ast.FieldAccess)
	require.NotNil(t, prog.Resolution.Fields[out].Field)
	assert.True(t, prog.Resolution.Fields[out].Field.Static)
	assert.Equal(t, BindClass, prog.Resolution.Variables[out.Target.(*ast.Variable)].Kind)
}

func TestImplicitRootClass(t *testing.T) {
	prog := mustAnalyze(t, "class A { } class B extends A { }")
	a := prog.Classes.MustLookup("A")
	b := prog.Classes.MustLookup("B")
	root := prog.Classes.Root
	assert.Equal(t, RootClassName, root.Name)
	assert.True(t, root.IsRoot())
	assert.Same(t, root, a.Super)
	assert.Same(t, a, b.Super)
	assert.Equal(t, 2, b.Depth)
	assert.True(t, b.IsSubclassOf(root))
	assert.Nil(t, prog.Entry)

	require.Len(t, b.Constructors, 1)
	assert.True(t, b.Constructors[0].Implicit)
	assert.Same(t, a.Constructors[0], b.Constructors[0].SuperCtor)
	assert.Same(t, root.Constructors[0], a.Constructors[0].SuperCtor)
}

const inheritanceProgram = `
import java.util.List;

class Test {
    Test(String test) {
        System.out.println(test);
    }
    void only_in_test() { }
    void in_both() { System.out.println("In Test"); }
    static void static_in_test() { }
}

class Test2 extends Test {
    Test2() {
        super("TEST");
    }
    static void main() {
        Test test = new Test2();
        test.in_both();
        Test2.static_in_test();
        TestList<Object> cast_test = (TestList<Object>) new TestList<String>();
        TestList<String> list = new TestList<String>();
        list.add("Test");
        System.out.println(list.get(0));
    }
    void in_both() { System.out.println("In Test2"); }
}

class TestList<F> extends List<F> {
    TestList() {
    }
}
`

func TestVTableAndOverrides(t *testing.T) {
	prog := mustAnalyze(t, inheritanceProgram)
	test := prog.Classes.MustLookup("Test")
	test2 := prog.Classes.MustLookup("Test2")
	assert.Same(t, test2, test2.VTable["in_both()"].Owner)
	assert.Same(t, test, test.VTable["in_both()"].Owner)
	assert.Same(t, test, test2.VTable["only_in_test()"].Owner)
	_, static := test2.VTable["static_in_test()"]
	assert.False(t, static)

	ctor := test2.Constructors[0]
	assert.Same(t, test.Constructors[0], ctor.SuperCtor)

	list := prog.Classes.MustLookup("TestList")
	assert.Equal(t, "List", list.Super.Name)
	assert.True(t, list.Super.Native)
	assert.NotNil(t, list.VTable["add(Object)"].Native)
	assert.Equal(t, "List", list.Constructors[0].SuperCtor.Owner.Name)

	stmts := mainStatements(prog, "Test2")
	call := stmts[1].(*ast.ExpressionStatement).Expression.(*ast.MethodCall)
	site := prog.Resolution.Calls[call]
	assert.Equal(t, CallVirtual, site.Kind)
	assert.Same(t, test, site.Method.Owner)

	cast := stmts[3].(*ast.LocalVarDeclaration).Init.(*ast.CastExpression)
	assert.Equal(t, CastUnchecked, prog.Resolution.Casts[cast].Kind)
}

func TestOverloadResolution(t *testing.T) {
	prog := mustAnalyze(t, `
class A {
    static int pick(int a) { return 1; }
    static int pick(String a) { return 2; }
    static int pick(int a, int b) { return 3; }
    int over(int a) { return 1; }
}
class B extends A {
    int over(Object a) { return 2; }
    static void main() {
        int x = A.pick(1);
        int y = A.pick("s");
        int z = A.pick(1, 2);
        int w = new B().over(1);
        float f = 1;
    }
}`)
	stmts := mainStatements(prog, "B")
	keys := make([]string, 0, 4)
	for _, stmt := range stmts[:4] {
		call := stmt.(*ast.LocalVarDeclaration).Init.(*ast.MethodCall)
		m := prog.Resolution.Calls[call].Method
		keys = append(keys, m.Owner.Name+"."+m.Key)
	}
	assert.Equal(t, []string{"A.pick(int)", "A.pick(String)", "A.pick(int,int)", "B.over(Object)"}, keys)

	widen := stmts[4].(*ast.LocalVarDeclaration)
	assert.Equal(t, FloatType, prog.Resolution.Locals[widen])
	assert.Equal(t, ConvertWiden, prog.Resolution.Conversions[widen.Init].Kind)
}

func TestSiblingScopesMayReuseNames(t *testing.T) {
	mustAnalyze(t, `
class A {
    static void main() {
        for (int i = 0; i < 2; i++) { int j = i; }
        for (int i = 0; i < 2; i++) { int j = i; }
        String s = "n=" + 1;
        if (s == null) { return; }
    }
}`)
}

func TestReturnPaths(t *testing.T) {
	mustAnalyze(t, `
class A {
    static int sign(int x) {
        if (x < 0) { return -1; } else if (x > 0) { return 1; } else { return 0; }
    }
    static int forever() {
        while (true) { }
    }
}`)
}

func TestSemanticErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind SemanticErrorKind
		msg  string
	}{
		{"duplicate class", "class A {} class A {}", DuplicateDeclaration, "class A is already defined"},
		{"clash with library", "class List {}", DuplicateDeclaration, "class List is already defined"},
		{"unknown superclass", "class A extends B {}", UnknownClass, "cannot find superclass B"},
		{"cycle", "class A extends B {} class B extends A {}", InheritanceCycle, "cyclic inheritance involving A"},
		{"self cycle", "class A extends A {}", InheritanceCycle, "cyclic inheritance"},
		{"unknown field type", "class A { Foo f; }", UnknownClass, "cannot find class Foo"},
		{"unknown import", "import java.util.Map; class A {}", UnknownClass, "cannot find class java.util.Map"},
		{"wrong import package", "import java.io.List; class A {}", UnknownClass, "cannot find class java.io.List"},
		{"unknown package", "import java.nope.*; class A {}", UnknownClass, "package java.nope does not exist"},
		{"duplicate field", "class A { int x; int x; }", DuplicateDeclaration, "field x is already defined in A"},
		{"hidden field", "class A { int x; } class B extends A { int x; }", DuplicateDeclaration, "already defined in superclass A"},
		{"duplicate method", "class A { void f(int a) {} void f(int b) {} }", DuplicateDeclaration, "method f(int) is already defined"},
		{"duplicate parameter", "class A { void f(int a, int a) {} }", DuplicateDeclaration, "parameter a is already defined"},
		{"duplicate local", "class A { void f() { int a = 1; int a = 2; } }", DuplicateDeclaration, "variable a is already defined"},
		{"local shadows parameter", "class A { void f(int a) { { int a = 1; } } }", DuplicateDeclaration, "variable a is already defined"},
		{"two entry points", "class A { static void main() {} } class B { static void main() {} }", DuplicateDeclaration, "static void main() is already defined in A"},
		{"unknown method", "class A { void f() { this.g(); } }", UnknownMember, "cannot find method g in A"},
		{"unknown variable", "class A { void f() { x = 1; } }", UnknownMember, "cannot find symbol x"},
		{"unknown qualifier", "class A { void f() { Foo.g(); } }", UnknownClass, "cannot find symbol Foo"},
		{"unknown field", "class A { void f() { int y = this.x; } }", UnknownMember, "cannot find field x in A"},
		{"wrong arity", "class A { static void f(int a) {} static void main() { f(); } }", UnknownMember, "no method f in A takes no arguments"},
		{"wrong argument type", `class A { static void f(int a) {} static void main() { f("s"); } }`, TypeMismatch, "accepts (String)"},
		{"ambiguous", "class A { static void f(int a, Object b) {} static void f(Object a, int b) {} static void main() { f(1, 2); } }", AmbiguousOverload, "ambiguous"},
		{"ambiguous constructor", "class A { A(int a, Object b) {} A(Object a, int b) {} static void main() { new A(1, 2); } }", AmbiguousOverload, "ambiguous"},
		{"this in static", "class A { int x; static void main() { int y = this.x; } }", InvalidStaticContext, "this cannot be referenced"},
		{"field in static", "class A { int x; static void main() { x = 1; } }", InvalidStaticContext, "non-static field x"},
		{"instance method via class", "class A { void f() {} static void main() { A.f(); } }", InvalidStaticContext, "non-static method f()"},
		{"instance method unqualified", "class A { void f() {} static void main() { f(); } }", InvalidStaticContext, "non-static method f()"},
		{"static method via instance", "class A { static void f() {} void g() { this.f(); } }", InvalidStaticContext, "must be called through class A"},
		{"super in static", "class A { static void main() { super.toString(); } }", InvalidStaticContext, "super cannot be referenced"},
		{"static hides instance", "class A { void f() {} } class B extends A { static void f() {} }", InvalidStaticContext, "cannot hide instance method"},
		{"instance overrides static", "class A { static void f() {} } class B extends A { void f() {} }", InvalidStaticContext, "cannot override static method"},
		{"override return type", "class A { int f() { return 1; } } class B extends A { String f() { return null; } }", TypeMismatch, "incompatible with int"},
		{"missing return", "class A { int f(boolean b) { if (b) { return 1; } } }", TypeMismatch, "must return int on every path"},
		{"value from void", "class A { void f() { return 1; } }", TypeMismatch, "void method cannot return a value"},
		{"value from constructor", "class A { A() { return 1; } }", TypeMismatch, "constructor cannot return a value"},
		{"bare return", "class A { int f() { return; } }", TypeMismatch, "missing return value"},
		{"int condition", "class A { void f() { while (1) { } } }", TypeMismatch, "condition must be boolean"},
		{"assign string to int", `class A { void f() { int x = "s"; } }`, TypeMismatch, "String cannot be converted to int"},
		{"narrowing", "class A { void f() { int x = 1.5; } }", TypeMismatch, "float cannot be converted to int"},
		{"ternary branches", `class A { void f() { int x = true ? 1 : "s"; } }`, TypeMismatch, "incompatible conditional branches"},
		{"parenthesized name before minus", "class A { void f() { int a = 1; int c = (a) - 1; } }", UnknownClass, "cannot find class a"},
		{"unrelated cast", "class A {} class B { void f() { B b = (B) new A(); } }", TypeMismatch, "A cannot be cast to B"},
		{"boolean arithmetic", "class A { void f() { int x = true + 1; } }", TypeMismatch, "operator + cannot be applied"},
		{"type argument count", "class A { void f() { List<int, int> l = null; } }", TypeMismatch, "expects 1 type arguments, got 2"},
		{"instantiate type parameter", "class A<T> { void f() { T t = new T(); } }", TypeMismatch, "cannot instantiate T"},
		{"class as value", "class A { void f() { Object o = A; } }", TypeMismatch, "class A cannot be used as a value"},
		{"no constructor", "class A { void f() { Integer i = new Integer(); } }", UnknownMember, "class Integer has no constructors"},
		{"implicit super without no-arg", "class A { A(int x) {} } class B extends A { B() {} }", UnknownMember, "superclass A has no no-argument constructor"},
		{"default constructor without no-arg super", "class A { A(int x) {} } class B extends A { }", UnknownMember, "superclass A has no no-argument constructor"},
		{"bad super arguments", `class A { A(int x) {} } class B extends A { B() { super("s"); } }`, TypeMismatch, "no constructor of A accepts (String)"},
		{"void argument", "class A { static void g() {} static void f(int a) {} static void main() { f(g()); } }", TypeMismatch, "void value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := analyze(t, tc.src)
			semErr := requireKind(t, err, tc.kind)
			assert.Contains(t, semErr.Message, tc.msg)
			assert.False(t, semErr.Pos.IsZero(), "error has no position: %v", semErr)
		})
	}
}

func TestSemanticErrorPosition(t *testing.T) {
	_, err := analyze(t, "class A {\n  Foo f;\n}")
	semErr := requireKind(t, err, UnknownClass)
	assert.Equal(t, ast.Position{Line: 2, Column: 3}, semErr.Pos)
	assert.Equal(t, "2:3: UnknownClass: cannot find class Foo", semErr.Error())
}

func TestAssignable(t *testing.T) {
	prog := mustAnalyze(t, "class A {} class B extends A {}")
	a := ClassType{Class: prog.Classes.MustLookup("A")}
	b := ClassType{Class: prog.Classes.MustLookup("B")}
	object := ClassType{Class: prog.Classes.Root}
	assert.True(t, Assignable(b, a))
	assert.False(t, Assignable(a, b))
	assert.True(t, Assignable(NullType{}, a))
	assert.False(t, Assignable(NullType{}, IntType))
	assert.True(t, Assignable(IntType, FloatType))
	assert.False(t, Assignable(FloatType, IntType))
	assert.True(t, Assignable(IntType, object))
	assert.True(t, Assignable(TypeParamType{Name: "T"}, IntType))
	assert.True(t, Assignable(a, TypeParamType{Name: "T"}))
	assert.False(t, Assignable(VoidType{}, object))
}
