package interpreter

import (
	"errors"
	"fmt"

	"github.com/Lattyware/montyweightjava/pkg/ast"
)

// ErrAborted is wrapped by the Interrupted fault of a run ended by
// Debugger.Abort.
var ErrAborted = errors.New("aborted by debugger")

type stepMode int

const (
	stepInto stepMode = iota
	stepOver
	stepOut
)

type command struct {
	mode  stepMode
	abort bool
}

// Location is where a paused run will continue.
type Location struct {
	Method string
	Pos    ast.Position
	// Depth counts the active frames.
	Depth int
}

func (l Location) String() string {
	return fmt.Sprintf("%s at %s", l.Method, l.Pos)
}

// Debugger drives an interpreter one statement at a time. The interpreter
// runs on its own goroutine and blocks at statement boundaries until the
// debugger resumes it, so only one side is ever active.
type Debugger struct {
	interp *Interpreter

	resume chan command
	paused chan struct{}
	done   chan struct{}

	started  bool
	finished bool
	location Location

	// owned by the interpreter goroutine
	mode  stepMode
	depth int
}

// NewDebugger attaches to an interpreter that has not run yet. A statement
// hook already installed keeps running before the debugger's own.
func NewDebugger(interp *Interpreter) *Debugger {
	d := &Debugger{
		interp: interp,
		resume: make(chan command),
		paused: make(chan struct{}),
		done:   make(chan struct{}),
	}
	previous := interp.hook
	interp.hook = func(frame *Frame, stmt ast.Statement) error {
		if previous != nil {
			if err := previous(frame, stmt); err != nil {
				return err
			}
		}
		return d.pause(frame, stmt)
	}
	return d
}

func (d *Debugger) pause(frame *Frame, stmt ast.Statement) error {
	depth := len(d.interp.frames)
	switch d.mode {
	case stepOver:
		if depth > d.depth {
			return nil
		}
	case stepOut:
		if depth >= d.depth {
			return nil
		}
	}
	d.location = Location{Pos: ast.Pos(stmt), Depth: depth}
	if frame != nil {
		d.location.Method = frame.Method
	}
	tracer().Debugf("debugger: paused in %s", d.location)
	d.paused <- struct{}{}
	cmd := <-d.resume
	if cmd.abort {
		return ErrAborted
	}
	d.mode = cmd.mode
	d.depth = depth
	return nil
}

// Step runs to the next statement in any frame. The first call starts the
// run and stops before the first statement of main. It reports false once
// the run has ended, together with the fault if it ended in one.
func (d *Debugger) Step() (bool, error) {
	return d.advance(stepInto)
}

// StepOver runs to the next statement in the current frame or a caller.
func (d *Debugger) StepOver() (bool, error) {
	return d.advance(stepOver)
}

// StepOut runs until the current frame has returned.
func (d *Debugger) StepOut() (bool, error) {
	return d.advance(stepOut)
}

func (d *Debugger) advance(mode stepMode) (bool, error) {
	if d.finished {
		return false, d.interp.Err()
	}
	if !d.started {
		if d.interp.State() != StateLoaded {
			return false, fmt.Errorf("interpreter is %s, not Loaded", d.interp.State())
		}
		d.started = true
		go d.run()
	} else {
		d.resume <- command{mode: mode}
	}
	return d.wait()
}

func (d *Debugger) run() {
	defer close(d.done)
	_ = d.interp.Run()
}

func (d *Debugger) wait() (bool, error) {
	select {
	case <-d.paused:
		return true, nil
	case <-d.done:
		d.finished = true
		return false, d.interp.Err()
	}
}

// Abort ends a paused run with an Interrupted fault and returns it. Aborting
// a run that never started leaves the interpreter Loaded.
func (d *Debugger) Abort() error {
	if d.finished {
		return d.interp.Err()
	}
	if !d.started {
		d.finished = true
		return nil
	}
	d.resume <- command{abort: true}
	<-d.done
	d.finished = true
	return d.interp.Err()
}

// Done reports whether the run has ended.
func (d *Debugger) Done() bool {
	return d.finished
}

// Location is the statement the run is paused before.
func (d *Debugger) Location() Location {
	return d.location
}

// Snapshot inspects the paused or finished run.
func (d *Debugger) Snapshot() Snapshot {
	return d.interp.Snapshot()
}
