// Package memory contains an in-memory notifier for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/quaydigital/searchping/internal/notify"
)

// Publisher stores published notifications for inspection.
type Publisher struct {
	mu            sync.RWMutex
	notifications []notify.Notification
}

// New returns a memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the notification and returns a pseudo message ID.
func (p *Publisher) Publish(_ context.Context, n notify.Notification) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, n)
	return fmt.Sprintf("memory-%d", len(p.notifications)), nil
}

// Notifications returns the recorded publishes.
func (p *Publisher) Notifications() []notify.Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]notify.Notification, len(p.notifications))
	copy(out, p.notifications)
	return out
}
