package approval

import (
	"errors"
	"time"
)

// ErrNotFound is returned when deciding a request that is not pending,
// including one that already received its decision.
var ErrNotFound = errors.New("approval request not found")

// Request is one pending suspension waiting for a human decision.
type Request struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	RequestedAt time.Time `json:"requested_at"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// Notifier is told about each new pending request so a transport can
// deliver it to the decision maker.
type Notifier interface {
	Notify(req Request)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(req Request)

// Notify calls f(req).
func (f NotifierFunc) Notify(req Request) { f(req) }
