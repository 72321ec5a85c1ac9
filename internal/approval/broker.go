package approval

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Broker correlates suspended invocations with the decisions delivered for
// them. Each request receives exactly one decision.
type Broker struct {
	mu       sync.Mutex
	pending  map[string]*pendingRequest
	ttl      time.Duration
	notifier Notifier
	now      func() time.Time
	newID    func() string
}

type pendingRequest struct {
	req   Request
	reply chan string
}

// Option configures a Broker.
type Option func(*Broker)

// WithTTL makes requests expire after ttl; see ExpirePending.
func WithTTL(ttl time.Duration) Option {
	return func(b *Broker) { b.ttl = ttl }
}

// WithNotifier registers the transport hook for new requests.
func WithNotifier(n Notifier) Option {
	return func(b *Broker) { b.notifier = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Broker) { b.now = now }
}

// NewBroker creates an in-memory broker.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		pending: make(map[string]*pendingRequest),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Suspend registers message as a pending request and blocks until a decision
// is delivered or ctx is done.
func (b *Broker) Suspend(ctx context.Context, message string) (string, error) {
	p := b.create(message)
	if b.notifier != nil {
		b.notifier.Notify(p.req)
	}

	select {
	case decision := <-p.reply:
		return decision, nil
	case <-ctx.Done():
		b.remove(p.req.ID)
		select {
		case decision := <-p.reply:
			return decision, nil
		default:
		}
		return "", fmt.Errorf("wait for decision on request %s: %w", p.req.ID, ctx.Err())
	}
}

// Decide delivers decision to the pending request id.
func (b *Broker) Decide(id, decision string) (Request, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pending[id]
	if !ok {
		return Request{}, fmt.Errorf("request %s is not pending: %w", id, ErrNotFound)
	}
	delete(b.pending, id)
	p.reply <- decision
	return p.req, nil
}

// Pending lists requests still waiting for a decision, oldest first.
func (b *Broker) Pending() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]Request, 0, len(b.pending))
	for _, p := range b.pending {
		result = append(result, p.req)
	}
	sortRequests(result)
	return result
}

// ExpirePending resolves every request whose TTL has elapsed with an empty
// decision, which the parser treats as a rejection.
func (b *Broker) ExpirePending() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now().UTC()
	expired := make([]Request, 0)
	for id, p := range b.pending {
		if p.req.ExpiresAt.IsZero() || p.req.ExpiresAt.After(now) {
			continue
		}
		delete(b.pending, id)
		p.reply <- ""
		expired = append(expired, p.req)
	}
	sortRequests(expired)
	return expired
}

// AutoExpire runs ExpirePending every interval until ctx is done or stop is
// called.
func (b *Broker) AutoExpire(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = time.Second
	}
	done := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				b.ExpirePending()
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

func (b *Broker) create(message string) *pendingRequest {
	now := b.now().UTC()
	p := &pendingRequest{
		req: Request{
			ID:          b.newID(),
			Message:     message,
			RequestedAt: now,
		},
		reply: make(chan string, 1),
	}
	if b.ttl > 0 {
		p.req.ExpiresAt = now.Add(b.ttl)
	}

	b.mu.Lock()
	b.pending[p.req.ID] = p
	b.mu.Unlock()
	return p
}

func (b *Broker) remove(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}

func sortRequests(reqs []Request) {
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].RequestedAt.Equal(reqs[j].RequestedAt) {
			return reqs[i].RequestedAt.Before(reqs[j].RequestedAt)
		}
		return reqs[i].ID < reqs[j].ID
	})
}
