package stdlib

import (
	"fmt"
	"io"

	"github.com/Lattyware/montyweightjava/pkg/bridge"
	"github.com/Lattyware/montyweightjava/pkg/runtime"
)

func registerIO(reg *bridge.Registry) {
	reg.Class("java.io", "class PrintStream").
		Constructor("PrintStream()", func(*bridge.CallContext, runtime.Value, []runtime.Value) (runtime.Value, error) {
			return nil, nil
		}).
		Method("void println(String text)", printTo("\n")).
		Method("void println()", printTo("\n")).
		Method("void print(String text)", printTo(""))
}

func printTo(suffix string) bridge.NativeFunc {
	return func(ctx *bridge.CallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		out := ctx.Stdout
		if out == nil {
			out = io.Discard
		}
		text := ""
		if len(args) > 0 {
			text = runtime.Format(args[0])
		}
		if _, err := fmt.Fprint(out, text+suffix); err != nil {
			return nil, err
		}
		return runtime.VoidValue{}, nil
	}
}
