package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quaydigital/searchping/internal/journal"
)

func TestStoreRecordsEntries(t *testing.T) {
	t.Parallel()

	store := NewStore()
	require.Empty(t, store.Entries())

	first := journal.Entry{
		EventID:    "e1",
		Source:     "webhook",
		Topic:      "products/create",
		Outcome:    "success",
		URLs:       []string{"https://shop.example.com/products/widget"},
		Provider:   "indexnow",
		ReceivedAt: time.Unix(1700000000, 0).UTC(),
		DurationMs: 42,
	}
	require.NoError(t, store.Record(context.Background(), first))
	require.NoError(t, store.Record(context.Background(), journal.Entry{EventID: "e2", Source: "heartbeat"}))

	entries := store.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, first, entries[0])
	require.Equal(t, "heartbeat", entries[1].Source)

	// The returned slice is a copy.
	entries[0].EventID = "mutated"
	require.Equal(t, "e1", store.Entries()[0].EventID)
}
