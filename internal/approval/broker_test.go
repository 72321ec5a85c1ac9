package approval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func waitForPending(t *testing.T, b *Broker, n int) []Request {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if reqs := b.Pending(); len(reqs) >= n {
			return reqs
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected %d pending requests, got %d", n, len(b.Pending()))
	return nil
}

func TestBroker_SuspendReturnsDeliveredDecision(t *testing.T) {
	b := NewBroker()

	type outcome struct {
		decision string
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		d, err := b.Suspend(context.Background(), "About to execute tool: 'exec'")
		done <- outcome{d, err}
	}()

	reqs := waitForPending(t, b, 1)
	if reqs[0].Message != "About to execute tool: 'exec'" {
		t.Fatalf("unexpected message: %q", reqs[0].Message)
	}
	if reqs[0].ID == "" {
		t.Fatal("expected non-empty request id")
	}

	decided, err := b.Decide(reqs[0].ID, "yes")
	if err != nil {
		t.Fatalf("Decide error: %v", err)
	}
	if decided.ID != reqs[0].ID {
		t.Fatalf("expected decided id %q, got %q", reqs[0].ID, decided.ID)
	}

	got := <-done
	if got.err != nil {
		t.Fatalf("Suspend error: %v", got.err)
	}
	if got.decision != "yes" {
		t.Fatalf("expected decision yes, got %q", got.decision)
	}
	if len(b.Pending()) != 0 {
		t.Fatalf("expected no pending requests, got %d", len(b.Pending()))
	}
}

func TestBroker_DecideTwiceFails(t *testing.T) {
	b := NewBroker()
	go func() { _, _ = b.Suspend(context.Background(), "msg") }()

	reqs := waitForPending(t, b, 1)
	if _, err := b.Decide(reqs[0].ID, "ok"); err != nil {
		t.Fatalf("first Decide error: %v", err)
	}
	_, err := b.Decide(reqs[0].ID, "ok")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second decision, got %v", err)
	}
}

func TestBroker_DecideUnknownID(t *testing.T) {
	b := NewBroker()
	if _, err := b.Decide("missing", "yes"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBroker_SuspendHonorsContextDeadline(t *testing.T) {
	b := NewBroker()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := b.Suspend(ctx, "msg")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if len(b.Pending()) != 0 {
		t.Fatal("expected abandoned request to be removed")
	}
}

func TestBroker_ConcurrentSuspensionsResolveIndependently(t *testing.T) {
	var mu sync.Mutex
	byMessage := make(map[string]string)
	b := NewBroker(WithNotifier(NotifierFunc(func(req Request) {
		mu.Lock()
		byMessage[req.Message] = req.ID
		mu.Unlock()
	})))

	const n = 5
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := b.Suspend(context.Background(), fmt.Sprintf("call-%d", i))
			if err != nil {
				t.Errorf("Suspend %d error: %v", i, err)
				return
			}
			results[i] = d
		}(i)
	}

	waitForPending(t, b, n)
	for i := n - 1; i >= 0; i-- {
		mu.Lock()
		id := byMessage[fmt.Sprintf("call-%d", i)]
		mu.Unlock()
		if _, err := b.Decide(id, fmt.Sprintf("decision-%d", i)); err != nil {
			t.Fatalf("Decide %d error: %v", i, err)
		}
	}
	wg.Wait()

	for i, got := range results {
		if want := fmt.Sprintf("decision-%d", i); got != want {
			t.Fatalf("call %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestBroker_ExpirePendingResolvesWithEmptyDecision(t *testing.T) {
	base := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := base
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	b := NewBroker(WithTTL(30*time.Second), WithClock(clock))

	done := make(chan string, 1)
	go func() {
		d, err := b.Suspend(context.Background(), "msg")
		if err != nil {
			t.Errorf("Suspend error: %v", err)
		}
		done <- d
	}()

	reqs := waitForPending(t, b, 1)
	if !reqs[0].ExpiresAt.Equal(base.Add(30 * time.Second)) {
		t.Fatalf("unexpected expires_at: %s", reqs[0].ExpiresAt)
	}

	if expired := b.ExpirePending(); len(expired) != 0 {
		t.Fatalf("expected nothing expired yet, got %d", len(expired))
	}

	mu.Lock()
	now = base.Add(31 * time.Second)
	mu.Unlock()

	expired := b.ExpirePending()
	if len(expired) != 1 || expired[0].ID != reqs[0].ID {
		t.Fatalf("expected request %q expired, got %+v", reqs[0].ID, expired)
	}
	if d := <-done; d != "" {
		t.Fatalf("expected empty decision on expiry, got %q", d)
	}
	if NewParser().Approved("") {
		t.Fatal("expected expired decision to parse as rejection")
	}
}

func TestBroker_PendingIsOrderedByRequestTime(t *testing.T) {
	base := time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC)
	tick := 0
	var mu sync.Mutex
	b := NewBroker(WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))

	for i, msg := range []string{"first", "second", "third"} {
		go func(msg string) { _, _ = b.Suspend(context.Background(), msg) }(msg)
		waitForPending(t, b, i+1)
	}

	reqs := b.Pending()
	for i := 1; i < len(reqs); i++ {
		if reqs[i].RequestedAt.Before(reqs[i-1].RequestedAt) {
			t.Fatalf("pending requests out of order: %+v", reqs)
		}
	}
	if reqs[0].Message != "first" || reqs[2].Message != "third" {
		t.Fatalf("unexpected order: %+v", reqs)
	}
}

func TestBroker_AutoExpire(t *testing.T) {
	b := NewBroker(WithTTL(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := b.AutoExpire(ctx, 5*time.Millisecond)
	defer stop()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	d, err := b.Suspend(waitCtx, "msg")
	if err != nil {
		t.Fatalf("Suspend error: %v", err)
	}
	if d != "" {
		t.Fatalf("expected empty decision, got %q", d)
	}
	stop()
}
