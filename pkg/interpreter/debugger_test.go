package interpreter

import (
	"bytes"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterProgram = `class Counter {
    int count;

    void bump() {
        this.count = this.count + 1;
    }

    static void main() {
        Counter c = new Counter();
        c.bump();
        int after = c.count;
    }
}
`

func newCounterDebugger(t *testing.T) (*Debugger, *Interpreter) {
	t.Helper()
	var out bytes.Buffer
	interp := New(compile(t, counterProgram), WithStdout(&out))
	return NewDebugger(interp), interp
}

func heapObject(snap Snapshot, class string) (ObjectSnapshot, bool) {
	for _, obj := range snap.Heap {
		if obj.Class == class {
			return obj, true
		}
	}
	return ObjectSnapshot{}, false
}

func TestDebuggerStepsEveryStatement(t *testing.T) {
	d, interp := newCounterDebugger(t)

	var lines []int
	var depths []int
	for {
		more, err := d.Step()
		require.NoError(t, err)
		if !more {
			break
		}
		lines = append(lines, d.Location().Pos.Line)
		depths = append(depths, d.Location().Depth)
		require.Equal(t, StateRunning, interp.State())
	}
	assert.Equal(t, []int{9, 10, 5, 11}, lines)
	assert.Equal(t, []int{1, 1, 2, 1}, depths)
	assert.Equal(t, StateCompleted, interp.State())
	assert.True(t, d.Done())

	more, err := d.Step()
	assert.False(t, more)
	assert.NoError(t, err)
}

func TestDebuggerIntrospection(t *testing.T) {
	d, _ := newCounterDebugger(t)

	more, err := d.Step()
	require.NoError(t, err)
	require.True(t, more)
	assert.Equal(t, "Counter.main()", d.Location().Method)
	assert.Empty(t, d.Snapshot().Frames[0].Locals)

	_, err = d.Step()
	require.NoError(t, err)
	snap := d.Snapshot()
	require.Len(t, snap.Frames, 1)
	assert.Equal(t, "10:9", snap.Frames[0].Position)
	require.Len(t, snap.Frames[0].Locals, 1)
	assert.Equal(t, "c", snap.Frames[0].Locals[0].Name)
	counter, ok := heapObject(snap, "Counter")
	require.True(t, ok)
	assert.Equal(t, []Variable{{Name: "count", Value: "0"}}, counter.Fields)
	assert.Equal(t, "Counter@"+strconv.FormatInt(counter.ID, 10), snap.Frames[0].Locals[0].Value)
	_, ok = heapObject(snap, "PrintStream")
	assert.True(t, ok, "System.out is reachable from static state")

	_, err = d.Step()
	require.NoError(t, err)
	assert.Equal(t, "Counter.bump()", d.Location().Method)
	stack := d.Snapshot().Frames
	require.Len(t, stack, 2)
	assert.Equal(t, "Counter.bump()", stack[0].Method)
	assert.Equal(t, "Counter@"+strconv.FormatInt(counter.ID, 10), stack[0].Receiver)
	assert.Equal(t, "Counter.main()", stack[1].Method)

	_, err = d.Step()
	require.NoError(t, err)
	counter, ok = heapObject(d.Snapshot(), "Counter")
	require.True(t, ok)
	assert.Equal(t, []Variable{{Name: "count", Value: "1"}}, counter.Fields)

	text, err := d.Snapshot().YAML()
	require.NoError(t, err)
	assert.Contains(t, text, "state: Running")
	assert.Contains(t, text, "method: Counter.main()")
	assert.Contains(t, text, "class: System")

	requireFault(t, d.Abort(), Interrupted)
}

func TestDebuggerStepOverAndOut(t *testing.T) {
	d, _ := newCounterDebugger(t)
	step := func(advance func() (bool, error)) int {
		more, err := advance()
		require.NoError(t, err)
		require.True(t, more)
		return d.Location().Pos.Line
	}

	assert.Equal(t, 9, step(d.Step))
	assert.Equal(t, 10, step(d.StepOver))
	assert.Equal(t, 11, step(d.StepOver))

	d, _ = newCounterDebugger(t)
	step(d.Step)
	step(d.Step)
	assert.Equal(t, 5, step(d.Step))
	assert.Equal(t, 11, step(d.StepOut))

	more, err := d.StepOut()
	assert.False(t, more)
	assert.NoError(t, err)
}

func TestDebuggerAbort(t *testing.T) {
	d, interp := newCounterDebugger(t)
	more, err := d.Step()
	require.NoError(t, err)
	require.True(t, more)

	err = d.Abort()
	rtErr := requireFault(t, err, Interrupted)
	assert.True(t, errors.Is(rtErr, ErrAborted))
	assert.Equal(t, StateFaulted, interp.State())
	assert.True(t, d.Done())

	more, err = d.Step()
	assert.False(t, more)
	assert.Same(t, rtErr, err)
}

func TestDebuggerReportsFaults(t *testing.T) {
	interp := New(compile(t, mainOnly(`
        int zero = 0;
        int a = 1 / zero;`)))
	d := NewDebugger(interp)
	for {
		more, err := d.Step()
		if !more {
			requireFault(t, err, DivisionByZero)
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, StateFaulted, interp.State())
}

func TestDebuggerRequiresFreshInterpreter(t *testing.T) {
	_, interp, err := runProgram(t, mainOnly(""))
	require.NoError(t, err)
	d := NewDebugger(interp)
	more, err := d.Step()
	assert.False(t, more)
	assert.Error(t, err)
}
