package commands

import (
	"fmt"

	"github.com/MEKXH/toolgate/internal/approval"
	"github.com/MEKXH/toolgate/internal/config"
	"github.com/MEKXH/toolgate/internal/gate"
	"github.com/MEKXH/toolgate/internal/policy"
	"github.com/MEKXH/toolgate/internal/tools"
)

func newPolicy(cfg *config.Config) policy.Evaluator {
	return policy.NewEvaluator(policy.Config{
		Mode:            policy.Mode(cfg.Gate.Mode),
		RequireApproval: cfg.Gate.InterruptBeforeTools,
	})
}

func newInterceptor(cfg *config.Config, s gate.Suspender, opts ...gate.Option) *gate.Interceptor {
	opts = append([]gate.Option{
		gate.WithParser(approval.NewParser(cfg.Gate.ApprovalKeywords...)),
		gate.WithTimeout(cfg.Gate.TimeoutDuration()),
	}, opts...)
	return gate.NewInterceptor(newPolicy(cfg), s, opts...)
}

func buildRegistry(cfg *config.Config) (*tools.Registry, error) {
	list, err := tools.DefaultTools(cfg.ExecTimeout(), cfg.Tools.Exec.WorkingDir)
	if err != nil {
		return nil, err
	}
	reg := tools.NewRegistry()
	for _, t := range list {
		if err := reg.Register(t); err != nil {
			return nil, fmt.Errorf("register tool: %w", err)
		}
	}
	return reg, nil
}
