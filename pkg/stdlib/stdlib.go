// Package stdlib registers the skeletal java.lang, java.io and java.util
// classes through the native bridge.
package stdlib

import (
	"fmt"

	"github.com/Lattyware/montyweightjava/pkg/bridge"
	"github.com/Lattyware/montyweightjava/pkg/runtime"
)

// Register adds every library class to reg.
func Register(reg *bridge.Registry) error {
	registerLang(reg)
	registerIO(reg)
	registerUtil(reg)
	return reg.Err()
}

// NewRegistry returns a registry preloaded with the library.
func NewRegistry() (*bridge.Registry, error) {
	reg := bridge.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func intArg(args []runtime.Value, idx int) (int32, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("missing argument %d", idx)
	}
	v, ok := args[idx].(runtime.IntValue)
	if !ok {
		return 0, fmt.Errorf("argument %d: expected int, got %s", idx, runtime.Format(args[idx]))
	}
	return v.Val, nil
}

func stringArg(args []runtime.Value, idx int) (string, bool, error) {
	if idx >= len(args) {
		return "", false, fmt.Errorf("missing argument %d", idx)
	}
	switch v := args[idx].(type) {
	case runtime.StringValue:
		return v.Val, true, nil
	case runtime.NullValue:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("argument %d: expected String, got %s", idx, runtime.Format(args[idx]))
	}
}

func receiverString(receiver runtime.Value) (string, error) {
	s, ok := receiver.(runtime.StringValue)
	if !ok {
		return "", fmt.Errorf("receiver is not a String")
	}
	return s.Val, nil
}

func boolValue(b bool) runtime.Value {
	return runtime.BoolValue{Val: b}
}
