package stdlib

import (
	"fmt"
	"strconv"

	"github.com/Lattyware/montyweightjava/pkg/bridge"
	"github.com/Lattyware/montyweightjava/pkg/runtime"
)

// listState is the host storage behind java.util.List instances, including
// instances of interpreted subclasses.
type listState struct {
	items []runtime.Value
}

func (s *listState) InspectSlots() []runtime.Slot {
	slots := make([]runtime.Slot, len(s.items))
	for i, item := range s.items {
		slots[i] = runtime.Slot{Name: "get(" + strconv.Itoa(i) + ")", Value: item}
	}
	return slots
}

func registerUtil(reg *bridge.Registry) {
	reg.Class("java.util", "class List<E>").
		Constructor("List()", listNew).
		Method("void add(E item)", listAdd).
		Method("void clear()", listClear).
		Method("boolean contains(Object item)", listContains).
		Method("E get(int index)", listGet).
		Method("int size()", listSize).
		Method("boolean isEmpty()", listIsEmpty).
		Method("E set(int index, E item)", listSet).
		Method("List<E> subList(int from, int to)", listSubList).
		Method("E remove(int index)", listRemove)
}

func listOf(receiver runtime.Value) (*listState, error) {
	obj, ok := receiver.(*runtime.ObjectValue)
	if !ok {
		return nil, fmt.Errorf("receiver is not a List")
	}
	state, ok := obj.Native.(*listState)
	if !ok {
		return nil, fmt.Errorf("%s@%d was not initialised as a List", obj.Class, obj.ID)
	}
	return state, nil
}

func (s *listState) index(args []runtime.Value) (int, error) {
	idx, err := intArg(args, 0)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= int32(len(s.items)) {
		return 0, fmt.Errorf("IndexOutOfBoundsException: Index %d out of bounds for length %d", idx, len(s.items))
	}
	return int(idx), nil
}

func listNew(_ *bridge.CallContext, receiver runtime.Value, _ []runtime.Value) (runtime.Value, error) {
	obj, ok := receiver.(*runtime.ObjectValue)
	if !ok {
		return nil, fmt.Errorf("List constructor without an instance")
	}
	obj.Native = &listState{}
	return nil, nil
}

func listAdd(_ *bridge.CallContext, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	state, err := listOf(receiver)
	if err != nil {
		return nil, err
	}
	state.items = append(state.items, args[0])
	return runtime.VoidValue{}, nil
}

func listClear(_ *bridge.CallContext, receiver runtime.Value, _ []runtime.Value) (runtime.Value, error) {
	state, err := listOf(receiver)
	if err != nil {
		return nil, err
	}
	state.items = nil
	return runtime.VoidValue{}, nil
}

func listContains(_ *bridge.CallContext, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	state, err := listOf(receiver)
	if err != nil {
		return nil, err
	}
	for _, item := range state.items {
		if runtime.Equal(item, args[0]) {
			return boolValue(true), nil
		}
	}
	return boolValue(false), nil
}

func listGet(_ *bridge.CallContext, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	state, err := listOf(receiver)
	if err != nil {
		return nil, err
	}
	idx, err := state.index(args)
	if err != nil {
		return nil, err
	}
	return state.items[idx], nil
}

func listSize(_ *bridge.CallContext, receiver runtime.Value, _ []runtime.Value) (runtime.Value, error) {
	state, err := listOf(receiver)
	if err != nil {
		return nil, err
	}
	return runtime.IntValue{Val: int32(len(state.items))}, nil
}

func listIsEmpty(_ *bridge.CallContext, receiver runtime.Value, _ []runtime.Value) (runtime.Value, error) {
	state, err := listOf(receiver)
	if err != nil {
		return nil, err
	}
	return boolValue(len(state.items) == 0), nil
}

func listSet(_ *bridge.CallContext, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	state, err := listOf(receiver)
	if err != nil {
		return nil, err
	}
	idx, err := state.index(args)
	if err != nil {
		return nil, err
	}
	previous := state.items[idx]
	state.items[idx] = args[1]
	return previous, nil
}

// listSubList copies the range into a fresh List.
func listSubList(ctx *bridge.CallContext, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	state, err := listOf(receiver)
	if err != nil {
		return nil, err
	}
	from, err := intArg(args, 0)
	if err != nil {
		return nil, err
	}
	to, err := intArg(args, 1)
	if err != nil {
		return nil, err
	}
	if from < 0 || to > int32(len(state.items)) || from > to {
		return nil, fmt.Errorf("IndexOutOfBoundsException: fromIndex %d, toIndex %d, size %d", from, to, len(state.items))
	}
	created, err := ctx.Host.NewObject("List")
	if err != nil {
		return nil, err
	}
	sub, err := listOf(created)
	if err != nil {
		return nil, err
	}
	sub.items = append([]runtime.Value(nil), state.items[from:to]...)
	return created, nil
}

func listRemove(_ *bridge.CallContext, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	state, err := listOf(receiver)
	if err != nil {
		return nil, err
	}
	idx, err := state.index(args)
	if err != nil {
		return nil, err
	}
	removed := state.items[idx]
	state.items = append(state.items[:idx], state.items[idx+1:]...)
	return removed, nil
}
