package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/MEKXH/toolgate/internal/gate"
)

type toolOptionsKey struct{}

// toolAction exposes an eino tool as a gate.Action. Input is the JSON
// argument string, output the tool's string result.
type toolAction struct {
	name string
	tool tool.InvokableTool
}

// AsAction adapts t to a gate.Action named after its tool info.
func AsAction(ctx context.Context, t tool.InvokableTool) (gate.Action, error) {
	info, err := t.Info(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil || info.Name == "" {
		return nil, fmt.Errorf("tool info missing name")
	}
	return &toolAction{name: info.Name, tool: t}, nil
}

func (a *toolAction) Name() string { return a.name }

func (a *toolAction) Invoke(ctx context.Context, input any) (any, error) {
	args, err := argumentsJSON(input)
	if err != nil {
		return nil, err
	}
	opts, _ := ctx.Value(toolOptionsKey{}).([]tool.Option)
	return a.tool.InvokableRun(ctx, args, opts...)
}

func argumentsJSON(input any) (string, error) {
	switch v := input.(type) {
	case nil:
		return "{}", nil
	case string:
		return v, nil
	case json.RawMessage:
		return string(v), nil
	case []byte:
		return string(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode tool arguments: %w", err)
		}
		return string(data), nil
	}
}

// actionTool exposes a gate.Action as an eino tool, borrowing tool info
// from base.
type actionTool struct {
	action gate.Action
	base   tool.BaseTool
}

// FromAction adapts a to an eino tool described by base. A gate.Rejection
// result is returned as its JSON object so the model can read the status.
func FromAction(a gate.Action, base tool.BaseTool) tool.InvokableTool {
	return &actionTool{action: a, base: base}
}

func (t *actionTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return t.base.Info(ctx)
}

func (t *actionTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	if len(opts) > 0 {
		ctx = context.WithValue(ctx, toolOptionsKey{}, opts)
	}
	result, err := t.action.Invoke(ctx, json.RawMessage(argumentsInJSON))
	if err != nil {
		out, _ := resultString(result)
		return out, err
	}
	return resultString(result)
}

func resultString(result any) (string, error) {
	if rej, ok := gate.AsRejection(result); ok {
		return rej.JSON(), nil
	}
	switch v := result.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), nil
		}
		return string(data), nil
	}
}
