// Package notifier dispatches rendered policy notifications to their
// configured destination channels (spec.md §4.4). Each destination
// implementation is independent; one's failure never blocks another's.
package notifier

import (
	"context"
	"time"
)

// SendTimeout is the hard per-send timeout for outbound destination
// requests (spec.md §5).
const SendTimeout = 10 * time.Second

// Destination dispatches one rendered message to one outbound channel.
type Destination interface {
	// Name identifies the destination for logging and config lookup.
	Name() string
	// Send delivers message, returning a *NotifyError on any failure.
	// Send never panics and never blocks past its own internal timeout.
	Send(ctx context.Context, message string) error
}
