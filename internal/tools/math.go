package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/sreevatsan/storysmith/internal/types"
)

// mathTool is a two-operand integer arithmetic tool.
type mathTool struct {
	name        string
	description string
	fn          func(a, b int) (string, error)
}

func (t *mathTool) Name() string        { return t.name }
func (t *mathTool) Description() string { return t.description }

func (t *mathTool) Schema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"a": {Type: "integer", Description: "first int"},
			"b": {Type: "integer", Description: "second int"},
		},
		Required: []string{"a", "b"},
	}
}

func (t *mathTool) Call(_ context.Context, args map[string]any) (string, error) {
	a, err := intArg(args, "a")
	if err != nil {
		return "", err
	}
	b, err := intArg(args, "b")
	if err != nil {
		return "", err
	}
	return t.fn(a, b)
}

// Add returns the tool that adds two integers.
func Add() Tool {
	return &mathTool{
		name:        "add",
		description: "Adds a and b.",
		fn: func(a, b int) (string, error) {
			return strconv.Itoa(a + b), nil
		},
	}
}

// Multiply returns the tool that multiplies two integers.
func Multiply() Tool {
	return &mathTool{
		name:        "multiply",
		description: "Multiply a and b.",
		fn: func(a, b int) (string, error) {
			return strconv.Itoa(a * b), nil
		},
	}
}

// Divide returns the tool that divides a by b. A zero divisor is reported as
// types.ErrDivisionByZero rather than faulting the process.
func Divide() Tool {
	return &mathTool{
		name:        "divide",
		description: "Divide a and b.",
		fn: func(a, b int) (string, error) {
			if b == 0 {
				return "", types.ErrDivisionByZero
			}
			return strconv.FormatFloat(float64(a)/float64(b), 'g', -1, 64), nil
		},
	}
}

// Arithmetic returns the default toolset bound to the chat agent.
func Arithmetic() []Tool {
	return []Tool{Add(), Multiply(), Divide()}
}

// intArg extracts an integer argument. JSON decoding hands numbers over as
// float64, so whole floats are accepted; anything else is a typed mismatch.
func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("argument %q: %v is not an integer", key, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("argument %q: expected integer, got %T", key, v)
	}
}
