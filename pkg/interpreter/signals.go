package interpreter

import (
	"github.com/Lattyware/montyweightjava/pkg/runtime"
)

// returnSignal unwinds statement execution up to the enclosing call.
type returnSignal struct {
	value runtime.Value
}

func (r returnSignal) Error() string {
	return "return"
}
