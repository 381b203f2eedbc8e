package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindNull
	KindVoid
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindString:
		return "String"
	case KindNull:
		return "null"
	case KindVoid:
		return "void"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

// IntValue is a 32-bit two's-complement integer; arithmetic wraps.
type IntValue struct {
	Val int32
}

func (v IntValue) Kind() Kind { return KindInt }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

// StringValue is an immutable java.lang.String.
type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

// VoidValue is the result of calling a void method.
type VoidValue struct{}

func (VoidValue) Kind() Kind { return KindVoid }

//-----------------------------------------------------------------------------
// Objects
//-----------------------------------------------------------------------------

// ObjectValue is a heap instance. Fields hold every declared and inherited
// field by name. Native carries host state for classes backed by the native
// bridge.
type ObjectValue struct {
	ID       int64
	Class    string
	Fields   map[string]Value
	TypeArgs []string
	Native   any
}

func (v *ObjectValue) Kind() Kind { return KindObject }

// Slot is a named value exposed for inspection.
type Slot struct {
	Name  string
	Value Value
}

// Inspector is implemented by native state that wants to appear in heap
// snapshots.
type Inspector interface {
	InspectSlots() []Slot
}

// Heap hands out object identities. Reclamation is left to the Go collector.
type Heap struct {
	next int64
}

// Allocate creates an instance with empty field slots.
func (h *Heap) Allocate(class string, typeArgs []string) *ObjectValue {
	h.next++
	return &ObjectValue{ID: h.next, Class: class, Fields: make(map[string]Value), TypeArgs: typeArgs}
}

// Allocated reports how many objects were created.
func (h *Heap) Allocated() int64 {
	return h.next
}

//-----------------------------------------------------------------------------
// Helpers
//-----------------------------------------------------------------------------

// IsNull reports whether v is the null reference. A nil Value counts as null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NullValue)
	return ok
}

// ClassName returns the runtime class of a reference value, or "" for
// primitives and null.
func ClassName(v Value) string {
	switch val := v.(type) {
	case StringValue:
		return "String"
	case *ObjectValue:
		return val.Class
	default:
		return ""
	}
}

// Format renders a value the way string concatenation and println do.
func Format(v Value) string {
	switch val := v.(type) {
	case nil, NullValue:
		return "null"
	case IntValue:
		return strconv.FormatInt(int64(val.Val), 10)
	case FloatValue:
		return FormatFloat(val.Val)
	case BoolValue:
		return strconv.FormatBool(val.Val)
	case StringValue:
		return val.Val
	case VoidValue:
		return "void"
	case *ObjectValue:
		return fmt.Sprintf("%s@%d", val.Class, val.ID)
	default:
		return fmt.Sprintf("<%v>", v)
	}
}

// FormatFloat follows Java's Double.toString for the common cases:
// a decimal point is always present and large or tiny magnitudes use
// scientific notation.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-3 || abs >= 1e7) {
		text := strconv.FormatFloat(f, 'E', -1, 64)
		mantissa, exp, _ := strings.Cut(text, "E")
		if !strings.Contains(mantissa, ".") {
			mantissa += ".0"
		}
		sign := ""
		if strings.HasPrefix(exp, "-") {
			sign = "-"
		}
		digits := strings.TrimLeft(strings.TrimLeft(exp, "+-"), "0")
		return mantissa + "E" + sign + digits
	}
	text := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text
}

// Describe renders a value for debugger output: strings are quoted.
func Describe(v Value) string {
	if s, ok := v.(StringValue); ok {
		return strconv.Quote(s.Val)
	}
	return Format(v)
}

// Equal implements == for values: numbers compare after promotion, strings
// by content, objects by identity.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case IntValue:
		switch y := b.(type) {
		case IntValue:
			return x.Val == y.Val
		case FloatValue:
			return float64(x.Val) == y.Val
		}
	case FloatValue:
		switch y := b.(type) {
		case IntValue:
			return x.Val == float64(y.Val)
		case FloatValue:
			return x.Val == y.Val
		}
	case BoolValue:
		if y, ok := b.(BoolValue); ok {
			return x.Val == y.Val
		}
	case StringValue:
		if y, ok := b.(StringValue); ok {
			return x.Val == y.Val
		}
	case *ObjectValue:
		if y, ok := b.(*ObjectValue); ok {
			return x == y
		}
	}
	return IsNull(a) && IsNull(b)
}
