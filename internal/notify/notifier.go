// Package notify defines the outbound notification boundary. Notifications
// are best-effort: the service dispatches them after the request outcome is
// decided and never waits on, or fails because of, the sink.
package notify

import (
	"context"
	"time"
)

// Event describes an account event. It deliberately has no field for the
// password or the issued token; credentials must never reach the sink.
type Event struct {
	Email     string
	Name      string
	AccountID string
	ClientIP  string
	Location  string
	At        time.Time
}

type Notifier interface {
	Registration(ctx context.Context, ev Event) error
	Login(ctx context.Context, ev Event) error
	PasswordReset(ctx context.Context, ev Event) error
}

// Noop discards every event. Used in tests and when no sink is configured.
type Noop struct{}

func (Noop) Registration(context.Context, Event) error  { return nil }
func (Noop) Login(context.Context, Event) error         { return nil }
func (Noop) PasswordReset(context.Context, Event) error { return nil }
