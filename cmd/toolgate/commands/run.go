package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MEKXH/toolgate/internal/approval"
	"github.com/MEKXH/toolgate/internal/gate"
	"github.com/MEKXH/toolgate/internal/metrics"
	"github.com/MEKXH/toolgate/internal/sanitize"
	"github.com/MEKXH/toolgate/internal/tools"
)

func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <tool> [args-json]",
		Short: "Run a tool, asking for approval when policy requires it",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runTool,
	}
	cmd.Flags().String("thread", "", "Thread identifier recorded in logs")
	return cmd
}

func runTool(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	var brokerOpts []approval.Option
	if ttl := cfg.Gate.PendingTTLDuration(); ttl > 0 {
		brokerOpts = append(brokerOpts, approval.WithTTL(ttl))
	}
	broker := newConsoleBroker(cmd.InOrStdin(), cmd.OutOrStdout(), brokerOpts...)
	if cfg.Gate.PendingTTL > 0 {
		stop := broker.AutoExpire(ctx, time.Second)
		defer stop()
	}

	recorder := metrics.NewGate()
	gated := reg.Instrument(ctx, slog.Default()).Gate(newInterceptor(cfg, broker, gate.WithRecorder(recorder)))

	name := args[0]
	argsJSON := "{}"
	if len(args) > 1 && strings.TrimSpace(args[1]) != "" {
		argsJSON = args[1]
	}

	thread, _ := cmd.Flags().GetString("thread")
	meta := tools.InvocationContext{
		RequestID: uuid.NewString(),
		ThreadID:  thread,
		AgentName: "cli",
	}
	ctx = tools.WithInvocationContext(ctx, meta)
	attrs := append([]any{"tool", sanitize.ToolName(name)}, tools.InvocationFromContext(ctx).LogAttrs()...)
	slog.Info("running tool", attrs...)

	result, err := gated.Execute(ctx, name, argsJSON)
	logGateMetrics(recorder.Snapshot())
	reportUndecided(broker.Pending())
	if err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

func logGateMetrics(snap metrics.GateSnapshot) {
	if !snap.HasData() {
		return
	}
	slog.Debug("gate metrics",
		"suspensions", snap.Suspensions.Total,
		"approved", snap.Suspensions.Approved,
		"rejected", snap.Suspensions.Rejected,
		"suspension_failures", snap.Suspensions.Failures,
		"max_wait_ms", snap.Suspensions.MaxWaitMs,
		"executions", snap.Executions.Total,
		"execution_errors", snap.Executions.Errors,
	)
}

// reportUndecided logs approval requests that were still open when the run
// finished. They are never executed.
func reportUndecided(reqs []approval.Request) int {
	for _, req := range reqs {
		slog.Warn(sanitize.Message("approval request {request_id} left undecided since {requested_at}", map[string]any{
			"request_id":   req.ID,
			"requested_at": req.RequestedAt.Format(time.RFC3339),
		}))
	}
	return len(reqs)
}
