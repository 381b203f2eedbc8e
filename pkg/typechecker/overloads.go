package typechecker

import (
	"strconv"
	"strings"
)

// Overload resolution walks from the receiver's class towards the root. At
// the first class declaring an applicable candidate (same arity, every
// argument assignable to its parameter) exactly one candidate must apply;
// two or more is ambiguous. Subclass declarations therefore shadow
// superclass overloads, and the choice never depends on declaration order.

func applicable(params []Type, args []Type) bool {
	if len(params) != len(args) {
		return false
	}
	for i, arg := range args {
		if !Assignable(arg, params[i]) {
			return false
		}
	}
	return true
}

func describeArgs(args []Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ResolveMethod selects the method name targets for the given argument
// types, searching class and its superclasses. The returned error is a
// *SemanticError without a position.
func (t *ClassTable) ResolveMethod(class *ClassInfo, name string, args []Type) (*MethodInfo, error) {
	arityMatch := false
	found := false
	for cur := class; cur != nil; cur = cur.Super {
		var hits []*MethodInfo
		for _, m := range cur.Methods[name] {
			found = true
			if len(m.Params) != len(args) {
				continue
			}
			arityMatch = true
			if applicable(m.Params, args) {
				hits = append(hits, m)
			}
		}
		switch len(hits) {
		case 0:
			continue
		case 1:
			return hits[0], nil
		default:
			return nil, &SemanticError{
				Kind:    AmbiguousOverload,
				Message: "call to " + name + describeArgs(args) + " is ambiguous between " + hits[0].Key + " and " + hits[1].Key + " in " + cur.Name,
			}
		}
	}
	switch {
	case !found:
		return nil, &SemanticError{Kind: UnknownMember, Message: "cannot find method " + name + " in " + class.Name}
	case !arityMatch:
		return nil, &SemanticError{Kind: UnknownMember, Message: "no method " + name + " in " + class.Name + " takes " + plural(len(args), "argument")}
	default:
		return nil, &SemanticError{Kind: TypeMismatch, Message: "no method " + name + " in " + class.Name + " accepts " + describeArgs(args)}
	}
}

// ResolveConstructor selects one of class's own constructors.
func (t *ClassTable) ResolveConstructor(class *ClassInfo, args []Type) (*ConstructorInfo, error) {
	if len(class.Constructors) == 0 {
		return nil, &SemanticError{Kind: UnknownMember, Message: "class " + class.Name + " has no constructors"}
	}
	arityMatch := false
	var hits []*ConstructorInfo
	for _, c := range class.Constructors {
		if len(c.Params) != len(args) {
			continue
		}
		arityMatch = true
		if applicable(c.Params, args) {
			hits = append(hits, c)
		}
	}
	switch {
	case len(hits) == 1:
		return hits[0], nil
	case len(hits) > 1:
		return nil, &SemanticError{
			Kind:    AmbiguousOverload,
			Message: "constructor call " + class.Name + describeArgs(args) + " is ambiguous between " + hits[0].Key + " and " + hits[1].Key,
		}
	case !arityMatch:
		return nil, &SemanticError{Kind: UnknownMember, Message: "no constructor of " + class.Name + " takes " + plural(len(args), "argument")}
	default:
		return nil, &SemanticError{Kind: TypeMismatch, Message: "no constructor of " + class.Name + " accepts " + describeArgs(args)}
	}
}

func plural(n int, word string) string {
	switch n {
	case 0:
		return "no " + word + "s"
	case 1:
		return "1 " + word
	default:
		return strconv.Itoa(n) + " " + word + "s"
	}
}
