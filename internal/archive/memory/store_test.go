package memory

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutObjectAndGet(t *testing.T) {
	t.Parallel()

	store := NewStore()
	payload := []byte(`{"handle":"widget"}`)

	uri, err := store.PutObject(context.Background(), "webhooks/products-create/evt-1.json", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, "memory://webhooks/products-create/evt-1.json", uri)

	got, ok := store.Get("webhooks/products-create/evt-1.json")
	require.True(t, ok)
	require.Equal(t, payload, got)

	_, ok = store.Get("missing")
	require.False(t, ok)
}
