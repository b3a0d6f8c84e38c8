// Package archive defines the payload archive abstraction. Verified
// webhook payloads are archived for replay and debugging; archive
// failures are advisory and never alter an event's outcome.
package archive

import (
	"context"
	"io"
)

// Store persists raw payload bytes and returns a URI locating them.
type Store interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}

// Noop discards payloads. It is the default when no archive backend is
// configured.
type Noop struct{}

// PutObject does nothing and returns an empty URI.
func (Noop) PutObject(_ context.Context, _ string, _ string, _ io.Reader) (string, error) {
	return "", nil
}
