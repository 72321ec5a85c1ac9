// Package gate pauses selected actions until an external decision maker
// approves them.
//
// An Interceptor decorates an Action with a policy check. Gated invocations
// are suspended through a Suspender, the returned decision is parsed, and the
// original action either runs or is short-circuited with a Rejection value.
// Rejections are results, not errors: callers branch on Rejection.Status.
package gate

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrInvalidAction is returned when an action cannot be wrapped.
	ErrInvalidAction = errors.New("invalid action")
	// ErrNoSuspender is returned when a gated action has no way to suspend.
	ErrNoSuspender = errors.New("no suspender configured")
)

const (
	// StatusRejected marks a short-circuited invocation.
	StatusRejected = "rejected"
	// RejectedMessage is the error text carried by a Rejection.
	RejectedMessage = "Tool execution rejected by user"
)

// Action is a named executable the gate can decorate.
type Action interface {
	Name() string
	Invoke(ctx context.Context, input any) (any, error)
}

// ActionFunc is the executable part of an action.
type ActionFunc func(ctx context.Context, input any) (any, error)

type funcAction struct {
	name string
	fn   ActionFunc
}

// NewAction builds an Action from a name and a function.
func NewAction(name string, fn ActionFunc) Action {
	return funcAction{name: name, fn: fn}
}

func (a funcAction) Name() string { return a.name }

func (a funcAction) Invoke(ctx context.Context, input any) (any, error) {
	return a.fn(ctx, input)
}

// Suspender hands control to an external decision maker and blocks until a
// single textual decision comes back. An empty decision means none was given.
type Suspender interface {
	Suspend(ctx context.Context, message string) (string, error)
}

// SuspendFunc adapts a function to Suspender.
type SuspendFunc func(ctx context.Context, message string) (string, error)

// Suspend calls f(ctx, message).
func (f SuspendFunc) Suspend(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

// Policy selects the actions that must be intercepted.
type Policy interface {
	ShouldIntercept(name string) bool
}

// Rejection is returned instead of the action's result when the decision
// maker declines.
type Rejection struct {
	Error      string `json:"error"`
	ActionName string `json:"action_name"`
	Status     string `json:"status"`
}

// NewRejection builds the rejection payload for name.
func NewRejection(name string) Rejection {
	return Rejection{
		Error:      RejectedMessage,
		ActionName: name,
		Status:     StatusRejected,
	}
}

// JSON renders the rejection as a JSON object.
func (r Rejection) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		return `{"status":"rejected"}`
	}
	return string(data)
}

// AsRejection reports whether v is a rejection result.
func AsRejection(v any) (Rejection, bool) {
	switch r := v.(type) {
	case Rejection:
		return r, r.Status == StatusRejected
	case *Rejection:
		if r == nil {
			return Rejection{}, false
		}
		return *r, r.Status == StatusRejected
	default:
		return Rejection{}, false
	}
}
