// Package journal records an append-only entry for every pipeline run.
// Journal failures are advisory: the orchestrator logs them and never
// lets them change an event's outcome.
package journal

import (
	"context"
	"time"
)

// Entry is one pipeline run, webhook- or heartbeat-triggered.
type Entry struct {
	EventID        string
	Source         string
	Topic          string
	Outcome        string
	URLs           []string
	Provider       string
	ProviderError  string
	SitemapInvoked bool
	SitemapError   string
	ReceivedAt     time.Time
	DurationMs     int64
}

// Journal persists pipeline run entries.
type Journal interface {
	Record(ctx context.Context, entry Entry) error
}

// Noop discards entries. It is the default when no journal backend is
// configured.
type Noop struct{}

// Record does nothing and always returns nil.
func (Noop) Record(_ context.Context, _ Entry) error {
	return nil
}
