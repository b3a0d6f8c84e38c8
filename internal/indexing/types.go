// Package indexing holds the domain types and capability interfaces of
// the search-index submission service: change events, topic rules, URL
// resolution, and the provider submitter contract.
package indexing

import (
	"context"
	"time"
)

// ChangeEvent is one inbound content-change notification, captured
// exactly as received. The raw body must stay byte-identical to the
// wire payload because the signature is computed over it.
type ChangeEvent struct {
	Topic     Topic
	RawBody   []byte
	Signature string
}

// Submitter pushes a batch of URLs to one external indexing provider.
// Implementations perform no internal retry; retry policy belongs to a
// future caller-level wrapper.
type Submitter interface {
	// Name identifies the provider in logs, metrics, and the journal.
	Name() string
	// Submit pushes the ordered URL batch. A nil error means the
	// provider accepted the batch (or the provider is deliberately
	// degraded to a no-op because its credential is absent).
	Submit(ctx context.Context, urls []string) error
}

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces event identifiers.
type IDGenerator interface {
	NewID() (string, error)
}
