// Package notify publishes compact pipeline-result notifications for
// downstream consumers. Publish failures are advisory and never alter
// an event's outcome.
package notify

import (
	"context"
	"time"
)

// Notification summarizes one completed pipeline run.
type Notification struct {
	EventID   string    `json:"event_id"`
	Source    string    `json:"source"`
	Topic     string    `json:"topic"`
	Outcome   string    `json:"outcome"`
	URLs      []string  `json:"urls"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier publishes notifications and returns a message ID.
type Notifier interface {
	Publish(ctx context.Context, n Notification) (string, error)
}

// Noop discards notifications. It is the default when no notify
// backend is configured.
type Noop struct{}

// Publish does nothing and returns an empty message ID.
func (Noop) Publish(_ context.Context, _ Notification) (string, error) {
	return "", nil
}
