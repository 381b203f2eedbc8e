package interpreter

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Lattyware/montyweightjava/pkg/runtime"
)

// Variable is one named value rendered for display.
type Variable struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type FrameSnapshot struct {
	Method   string     `yaml:"method"`
	Position string     `yaml:"position,omitempty"`
	Receiver string     `yaml:"this,omitempty"`
	Locals   []Variable `yaml:"locals,omitempty"`
}

type ObjectSnapshot struct {
	ID       int64      `yaml:"id"`
	Class    string     `yaml:"class"`
	TypeArgs []string   `yaml:"type_args,flow,omitempty"`
	Fields   []Variable `yaml:"fields,omitempty"`
}

type StaticSnapshot struct {
	Class  string     `yaml:"class"`
	Fields []Variable `yaml:"fields"`
}

// Snapshot is a point-in-time view of a run: the call stack innermost first,
// static fields, and every object reachable from either.
type Snapshot struct {
	State   string           `yaml:"state"`
	Steps   int64            `yaml:"steps"`
	Frames  []FrameSnapshot  `yaml:"frames"`
	Statics []StaticSnapshot `yaml:"statics,omitempty"`
	Heap    []ObjectSnapshot `yaml:"heap,omitempty"`
}

// YAML renders the snapshot for humans.
func (s Snapshot) YAML() (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CallStack describes the active frames, innermost first.
func (i *Interpreter) CallStack() []FrameSnapshot {
	frames := make([]FrameSnapshot, 0, len(i.frames))
	for idx := len(i.frames) - 1; idx >= 0; idx-- {
		frame := i.frames[idx]
		fs := FrameSnapshot{Method: frame.Method}
		if !frame.Pos.IsZero() {
			fs.Position = frame.Pos.String()
		}
		if frame.Receiver != nil {
			fs.Receiver = runtime.Describe(frame.Receiver)
		}
		if frame.Env != nil {
			values := frame.Env.Snapshot()
			for _, name := range frame.Env.Keys() {
				fs.Locals = append(fs.Locals, Variable{Name: name, Value: runtime.Describe(values[name])})
			}
		}
		frames = append(frames, fs)
	}
	return frames
}

// Snapshot captures the current state. It must not be called while the
// interpreter is executing on another goroutine.
func (i *Interpreter) Snapshot() Snapshot {
	snap := Snapshot{
		State:  i.state.String(),
		Steps:  i.steps,
		Frames: i.CallStack(),
	}

	var roots []runtime.Value
	for _, frame := range i.frames {
		if frame.Receiver != nil {
			roots = append(roots, frame.Receiver)
		}
		if frame.Env != nil {
			for _, v := range frame.Env.Snapshot() {
				roots = append(roots, v)
			}
		}
	}
	for _, class := range i.classes.Ordered {
		slots, ok := i.statics[class.Name]
		if !ok || len(slots) == 0 {
			continue
		}
		static := StaticSnapshot{Class: class.Name}
		for _, f := range class.StaticFields() {
			static.Fields = append(static.Fields, Variable{Name: f.Name, Value: runtime.Describe(slots[f.Name])})
			roots = append(roots, slots[f.Name])
		}
		snap.Statics = append(snap.Statics, static)
	}
	snap.Heap = i.reachable(roots)
	return snap
}

// reachable walks object references breadth first from roots.
func (i *Interpreter) reachable(roots []runtime.Value) []ObjectSnapshot {
	seen := make(map[int64]bool)
	var queue []*runtime.ObjectValue
	visit := func(v runtime.Value) {
		if obj, ok := v.(*runtime.ObjectValue); ok && !seen[obj.ID] {
			seen[obj.ID] = true
			queue = append(queue, obj)
		}
	}
	for _, root := range roots {
		visit(root)
	}

	var objects []ObjectSnapshot
	for len(queue) > 0 {
		obj := queue[0]
		queue = queue[1:]
		entry := ObjectSnapshot{ID: obj.ID, Class: obj.Class, TypeArgs: obj.TypeArgs}
		for _, name := range i.fieldOrder(obj) {
			value := obj.Fields[name]
			entry.Fields = append(entry.Fields, Variable{Name: name, Value: runtime.Describe(value)})
			visit(value)
		}
		if inspector, ok := obj.Native.(runtime.Inspector); ok {
			for _, slot := range inspector.InspectSlots() {
				entry.Fields = append(entry.Fields, Variable{Name: slot.Name, Value: runtime.Describe(slot.Value)})
				visit(slot.Value)
			}
		}
		objects = append(objects, entry)
	}
	sort.Slice(objects, func(a, b int) bool { return objects[a].ID < objects[b].ID })
	return objects
}

// fieldOrder lists an object's fields root-most class first.
func (i *Interpreter) fieldOrder(obj *runtime.ObjectValue) []string {
	var names []string
	if class, ok := i.classes.Lookup(obj.Class); ok {
		for _, f := range class.InstanceFields() {
			if _, present := obj.Fields[f.Name]; present {
				names = append(names, f.Name)
			}
		}
		if len(names) == len(obj.Fields) {
			return names
		}
	}
	names = names[:0]
	for name := range obj.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
