package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var latencyBucketUpperBoundsMs = []int64{
	10, 25, 50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000,
}

// GateSnapshot contains aggregated approval gate metrics.
type GateSnapshot struct {
	UpdatedAt   time.Time       `json:"updated_at"`
	Suspensions SuspensionStats `json:"suspensions"`
	Executions  ExecutionStats  `json:"executions"`
}

// SuspensionStats tracks waits for a human decision.
type SuspensionStats struct {
	Total          int64 `json:"total"`
	Approved       int64 `json:"approved"`
	Rejected       int64 `json:"rejected"`
	Failures       int64 `json:"failures"`
	Timeouts       int64 `json:"timeouts"`
	TotalWaitMs    int64 `json:"total_wait_ms"`
	MaxWaitMs      int64 `json:"max_wait_ms"`
	P95ProxyWaitMs int64 `json:"p95_proxy_wait_ms"`
}

// ApprovalRatio returns approved/total in [0,1].
func (s SuspensionStats) ApprovalRatio() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Approved) / float64(s.Total)
}

// AvgWaitMs returns the average wait in milliseconds.
func (s SuspensionStats) AvgWaitMs() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.TotalWaitMs) / float64(s.Total)
}

// ExecutionStats tracks calls that reached the wrapped action.
type ExecutionStats struct {
	Total          int64 `json:"total"`
	Errors         int64 `json:"errors"`
	TotalLatencyMs int64 `json:"total_latency_ms"`
	MaxLatencyMs   int64 `json:"max_latency_ms"`
}

// ErrorRatio returns errors/total in [0,1].
func (e ExecutionStats) ErrorRatio() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Errors) / float64(e.Total)
}

// HasData reports whether anything was recorded.
func (s GateSnapshot) HasData() bool {
	return s.Suspensions.Total > 0 || s.Executions.Total > 0
}

// Gate records approval gate outcomes in memory. The zero value is not
// usable; use NewGate. A nil *Gate ignores every record.
type Gate struct {
	mu          sync.Mutex
	snap        GateSnapshot
	waitBuckets []int64
	now         func() time.Time
}

// NewGate creates an empty recorder.
func NewGate() *Gate {
	return &Gate{
		waitBuckets: make([]int64, len(latencyBucketUpperBoundsMs)+1),
		now:         time.Now,
	}
}

// Snapshot returns the current aggregates.
func (g *Gate) Snapshot() GateSnapshot {
	if g == nil {
		return GateSnapshot{}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snap
}

// RecordDecision counts one suspension that waited for wait. A non-nil err
// means no decision arrived.
func (g *Gate) RecordDecision(wait time.Duration, approved bool, err error) {
	if g == nil {
		return
	}
	waitMs := wait.Milliseconds()
	if waitMs < 0 {
		waitMs = 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	s := &g.snap.Suspensions
	g.snap.UpdatedAt = g.now().UTC()
	s.Total++
	s.TotalWaitMs += waitMs
	if waitMs > s.MaxWaitMs {
		s.MaxWaitMs = waitMs
	}
	switch {
	case err != nil:
		s.Failures++
		if isTimeoutError(err) {
			s.Timeouts++
		}
	case approved:
		s.Approved++
	default:
		s.Rejected++
	}

	g.waitBuckets[latencyBucketIndex(waitMs)]++
	s.P95ProxyWaitMs = p95ProxyFromBuckets(g.waitBuckets, s.Total)
}

// RecordExecution counts one call of the wrapped action.
func (g *Gate) RecordExecution(duration time.Duration, err error) {
	if g == nil {
		return
	}
	latencyMs := duration.Milliseconds()
	if latencyMs < 0 {
		latencyMs = 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	e := &g.snap.Executions
	g.snap.UpdatedAt = g.now().UTC()
	e.Total++
	e.TotalLatencyMs += latencyMs
	if latencyMs > e.MaxLatencyMs {
		e.MaxLatencyMs = latencyMs
	}
	if err != nil {
		e.Errors++
	}
}

func latencyBucketIndex(latencyMs int64) int {
	for i, upper := range latencyBucketUpperBoundsMs {
		if latencyMs <= upper {
			return i
		}
	}
	return len(latencyBucketUpperBoundsMs)
}

func p95ProxyFromBuckets(buckets []int64, total int64) int64 {
	if total <= 0 {
		return 0
	}
	target := int64(float64(total) * 0.95)
	if target <= 0 {
		target = 1
	}

	var cumulative int64
	for i, count := range buckets {
		cumulative += count
		if cumulative < target {
			continue
		}
		if i >= len(latencyBucketUpperBoundsMs) {
			return latencyBucketUpperBoundsMs[len(latencyBucketUpperBoundsMs)-1]
		}
		return latencyBucketUpperBoundsMs[i]
	}
	return latencyBucketUpperBoundsMs[len(latencyBucketUpperBoundsMs)-1]
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	lowered := strings.ToLower(err.Error())
	return strings.Contains(lowered, "deadline exceeded") ||
		strings.Contains(lowered, "timed out")
}
