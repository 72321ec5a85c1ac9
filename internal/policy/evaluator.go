package policy

import (
	"sort"
	"strings"
)

// Evaluator performs pure policy decisions. It is immutable once built and
// safe for concurrent use.
type Evaluator struct {
	mode            Mode
	requireApproval map[string]struct{}
}

// NewEvaluator builds a deterministic, side-effect free evaluator. An empty
// mode means strict.
func NewEvaluator(cfg Config) Evaluator {
	requireApproval := make(map[string]struct{}, len(cfg.RequireApproval))
	for _, toolName := range cfg.RequireApproval {
		name := strings.TrimSpace(toolName)
		if name == "" {
			continue
		}
		requireApproval[name] = struct{}{}
	}

	return Evaluator{
		mode:            normalizeMode(cfg.Mode),
		requireApproval: requireApproval,
	}
}

// Evaluate returns a deterministic decision for the given input.
func (e Evaluator) Evaluate(input Input) Decision {
	switch e.mode {
	case ModeOff:
		return Decision{Action: ActionAllow}
	case ModeStrict:
		if _, ok := e.requireApproval[input.ToolName]; ok {
			return Decision{Action: ActionRequireApproval}
		}
		return Decision{Action: ActionAllow}
	default:
		return Decision{Action: ActionDeny, Reason: "unknown policy mode"}
	}
}

// ShouldIntercept reports whether toolName must be approved before it runs.
// Anything other than allow is intercepted, so an unknown mode gates every
// tool instead of letting them through.
func (e Evaluator) ShouldIntercept(toolName string) bool {
	return e.Evaluate(Input{ToolName: toolName}).Action != ActionAllow
}

// Enabled reports whether any tool can be intercepted at all. Only off mode
// or strict mode with an empty list disables the gate.
func (e Evaluator) Enabled() bool {
	switch e.mode {
	case ModeOff:
		return false
	case ModeStrict:
		return len(e.requireApproval) > 0
	default:
		return true
	}
}

// Mode returns the normalized mode.
func (e Evaluator) Mode() Mode {
	return e.mode
}

// Names returns the intercepted tool names in sorted order.
func (e Evaluator) Names() []string {
	names := make([]string, 0, len(e.requireApproval))
	for name := range e.requireApproval {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeMode(mode Mode) Mode {
	switch normalized := strings.ToLower(strings.TrimSpace(string(mode))); normalized {
	case "", string(ModeStrict):
		return ModeStrict
	case string(ModeOff):
		return ModeOff
	default:
		return Mode(normalized)
	}
}
