// Package interpreter executes analyzed MJ programs by walking the AST.
package interpreter

import (
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/schuko/tracing"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/bridge"
	"github.com/Lattyware/montyweightjava/pkg/runtime"
	"github.com/Lattyware/montyweightjava/pkg/typechecker"
)

func tracer() tracing.Trace {
	return tracing.Select("mj.interpreter")
}

// DefaultMaxCallDepth bounds recursion before StackOverflow is raised.
const DefaultMaxCallDepth = 2048

// MaxCallDepthLimit is the largest accepted frame limit. Deeper interpreted
// recursion would exhaust the Go stack before StackOverflow could be raised.
const MaxCallDepthLimit = 10000

// State is the lifecycle of one interpreter.
type State int

const (
	StateLoaded State = iota
	StateRunning
	StateCompleted
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "Loaded"
	case StateRunning:
		return "Running"
	case StateCompleted:
		return "Completed"
	case StateFaulted:
		return "Faulted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Frame is one active interpreted method or constructor.
type Frame struct {
	Method   string
	Class    *typechecker.ClassInfo
	Receiver *runtime.ObjectValue
	// Env is the innermost scope of the statement at Pos.
	Env *runtime.Environment
	// Pos is the statement currently executing.
	Pos ast.Position
}

// StatementHook runs before each statement. A non-nil error aborts the run.
type StatementHook func(frame *Frame, stmt ast.Statement) error

type Option func(*Interpreter)

// WithStdout routes System.out.
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) { i.stdout = w }
}

// WithMaxCallDepth sets the frame limit; n <= 0 keeps the default and
// values above MaxCallDepthLimit are clamped to it.
func WithMaxCallDepth(n int) Option {
	return func(i *Interpreter) {
		if n > 0 {
			i.maxDepth = min(n, MaxCallDepthLimit)
		}
	}
}

// WithMaxSteps stops the run with Interrupted after n statements; 0 means
// unlimited.
func WithMaxSteps(n int64) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithEntryClass runs the main method of the named class instead of the
// one found during analysis.
func WithEntryClass(name string) Option {
	return func(i *Interpreter) { i.entryClass = name }
}

// WithStatementHook installs a callback run before every statement.
func WithStatementHook(hook StatementHook) Option {
	return func(i *Interpreter) { i.hook = hook }
}

// Interpreter runs one program once.
type Interpreter struct {
	program *typechecker.Program
	classes *typechecker.ClassTable
	res     *typechecker.Resolution

	stdout     io.Writer
	maxDepth   int
	maxSteps   int64
	entryClass string
	hook       StatementHook

	heap    runtime.Heap
	statics map[string]map[string]runtime.Value
	frames  []*Frame
	steps   int64
	state   State
	err     error
	callCtx *bridge.CallContext
}

// New prepares program for a run. The interpreter starts in StateLoaded.
func New(program *typechecker.Program, opts ...Option) *Interpreter {
	i := &Interpreter{
		program:  program,
		classes:  program.Classes,
		res:      program.Resolution,
		stdout:   os.Stdout,
		maxDepth: DefaultMaxCallDepth,
		statics:  make(map[string]map[string]runtime.Value),
		state:    StateLoaded,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.callCtx = &bridge.CallContext{Stdout: i.stdout, Host: i}
	return i
}

func (i *Interpreter) State() State {
	return i.state
}

// Err returns the fault that ended the run, if any.
func (i *Interpreter) Err() error {
	return i.err
}

// Steps reports how many statements have executed.
func (i *Interpreter) Steps() int64 {
	return i.steps
}

// Run invokes static void main(). It may be called once.
func (i *Interpreter) Run() error {
	if i.state != StateLoaded {
		return fmt.Errorf("interpreter is %s, not Loaded", i.state)
	}
	i.state = StateRunning
	tracer().Infof("run started")
	err := i.runMain()
	if err != nil {
		i.state = StateFaulted
		i.err = err
		tracer().Infof("run faulted after %d steps: %v", i.steps, err)
		return err
	}
	i.state = StateCompleted
	tracer().Infof("run completed after %d steps, %d objects", i.steps, i.heap.Allocated())
	return nil
}

func (i *Interpreter) runMain() error {
	entry, err := i.entryPoint()
	if err != nil {
		return err
	}
	if err := i.initStatics(); err != nil {
		return err
	}
	_, err = i.invoke(entry, nil, nil, entry.Decl)
	return err
}

func (i *Interpreter) entryPoint() (*typechecker.MethodInfo, error) {
	if i.entryClass == "" {
		if i.program.Entry == nil {
			return nil, i.fault(EntryPointMissing, nil, "no class declares static void main()")
		}
		return i.program.Entry, nil
	}
	class, ok := i.classes.Lookup(i.entryClass)
	if ok && !class.Native {
		for _, m := range class.Methods["main"] {
			if _, void := m.Return.(typechecker.VoidType); void && m.Static && len(m.Params) == 0 {
				return m, nil
			}
		}
	}
	return nil, i.fault(EntryPointMissing, nil, "class %s does not declare static void main()", i.entryClass)
}

// initStatics gives every static field its default value, then runs the
// initializers of native static fields.
func (i *Interpreter) initStatics() error {
	for _, class := range i.classes.Ordered {
		slots := make(map[string]runtime.Value)
		for _, f := range class.StaticFields() {
			slots[f.Name] = defaultValue(f.Type)
		}
		i.statics[class.Name] = slots
	}
	if i.program.Registry == nil {
		return nil
	}
	for _, class := range i.classes.Ordered {
		if !class.Native {
			continue
		}
		for _, f := range class.StaticFields() {
			init, ok := i.program.Registry.StaticInit(class.Name, f.Name)
			if !ok {
				continue
			}
			value, err := init(i.callCtx)
			if err != nil {
				return &RuntimeError{Kind: NativeBridgeFailure, Message: "initializing " + class.Name + "." + f.Name, Err: err}
			}
			i.statics[class.Name][f.Name] = value
		}
	}
	return nil
}

func defaultValue(t typechecker.Type) runtime.Value {
	if p, ok := t.(typechecker.PrimitiveType); ok {
		switch p.Kind {
		case typechecker.Int:
			return runtime.IntValue{}
		case typechecker.Float:
			return runtime.FloatValue{}
		case typechecker.Boolean:
			return runtime.BoolValue{}
		}
	}
	return runtime.NullValue{}
}

func (i *Interpreter) currentFrame() *Frame {
	if len(i.frames) == 0 {
		return nil
	}
	return i.frames[len(i.frames)-1]
}

func (i *Interpreter) pushFrame(frame *Frame, node ast.Node) error {
	if len(i.frames) >= i.maxDepth {
		return i.fault(StackOverflow, node, "call depth exceeded %d frames", i.maxDepth)
	}
	i.frames = append(i.frames, frame)
	return nil
}

func (i *Interpreter) popFrame() {
	i.frames = i.frames[:len(i.frames)-1]
}
