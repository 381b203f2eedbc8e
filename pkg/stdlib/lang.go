package stdlib

import (
	"fmt"
	"strconv"

	"github.com/Lattyware/montyweightjava/pkg/bridge"
	"github.com/Lattyware/montyweightjava/pkg/runtime"
)

func registerLang(reg *bridge.Registry) {
	reg.Class("java.lang", "class String").
		Method("int length()", stringLength).
		Method("boolean isEmpty()", stringIsEmpty).
		Method("boolean equals(Object other)", stringEquals).
		Method("String concat(String other)", stringConcat).
		Method("String substring(int begin, int end)", stringSubstring)

	reg.Class("java.lang", "class Integer").
		Method("static String toString(int value)", integerToString).
		Method("static int parseInt(String text)", integerParseInt)

	reg.Class("java.lang", "class Math").
		Method("static int abs(int value)", mathAbs).
		Method("static int max(int a, int b)", mathMax).
		Method("static int min(int a, int b)", mathMin)

	reg.Class("java.lang", "class System").
		StaticField("static PrintStream out", func(ctx *bridge.CallContext) (runtime.Value, error) {
			return ctx.Host.NewObject("PrintStream")
		})
}

func stringLength(_ *bridge.CallContext, receiver runtime.Value, _ []runtime.Value) (runtime.Value, error) {
	s, err := receiverString(receiver)
	if err != nil {
		return nil, err
	}
	return runtime.IntValue{Val: int32(len([]rune(s)))}, nil
}

func stringIsEmpty(_ *bridge.CallContext, receiver runtime.Value, _ []runtime.Value) (runtime.Value, error) {
	s, err := receiverString(receiver)
	if err != nil {
		return nil, err
	}
	return boolValue(s == ""), nil
}

func stringEquals(_ *bridge.CallContext, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s, err := receiverString(receiver)
	if err != nil {
		return nil, err
	}
	other, ok := args[0].(runtime.StringValue)
	return boolValue(ok && other.Val == s), nil
}

func stringConcat(_ *bridge.CallContext, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s, err := receiverString(receiver)
	if err != nil {
		return nil, err
	}
	other, ok, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("NullPointerException: concat(null)")
	}
	return runtime.StringValue{Val: s + other}, nil
}

func stringSubstring(_ *bridge.CallContext, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s, err := receiverString(receiver)
	if err != nil {
		return nil, err
	}
	begin, err := intArg(args, 0)
	if err != nil {
		return nil, err
	}
	end, err := intArg(args, 1)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	if begin < 0 || end > int32(len(runes)) || begin > end {
		return nil, fmt.Errorf("StringIndexOutOfBoundsException: begin %d, end %d, length %d", begin, end, len(runes))
	}
	return runtime.StringValue{Val: string(runes[begin:end])}, nil
}

func integerToString(_ *bridge.CallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	n, err := intArg(args, 0)
	if err != nil {
		return nil, err
	}
	return runtime.StringValue{Val: strconv.FormatInt(int64(n), 10)}, nil
}

func integerParseInt(_ *bridge.CallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	text, ok, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("NumberFormatException: null")
	}
	n, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("NumberFormatException: For input string: %q", text)
	}
	return runtime.IntValue{Val: int32(n)}, nil
}

func mathAbs(_ *bridge.CallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	n, err := intArg(args, 0)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = -n
	}
	return runtime.IntValue{Val: n}, nil
}

func mathMax(_ *bridge.CallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	a, err := intArg(args, 0)
	if err != nil {
		return nil, err
	}
	b, err := intArg(args, 1)
	if err != nil {
		return nil, err
	}
	return runtime.IntValue{Val: max(a, b)}, nil
}

func mathMin(_ *bridge.CallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	a, err := intArg(args, 0)
	if err != nil {
		return nil, err
	}
	b, err := intArg(args, 1)
	if err != nil {
		return nil, err
	}
	return runtime.IntValue{Val: min(a, b)}, nil
}
