package pipeline

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	archivememory "github.com/quaydigital/searchping/internal/archive/memory"
	"github.com/quaydigital/searchping/internal/indexing"
	"github.com/quaydigital/searchping/internal/journal"
	journalmemory "github.com/quaydigital/searchping/internal/journal/memory"
	notifymemory "github.com/quaydigital/searchping/internal/notify/memory"
)

const (
	testSecret = "topsecret"
	testBase   = "https://shop.example.com"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	name    string
	err     error
	batches [][]string
}

func (f *fakeSubmitter) Name() string { return f.name }

func (f *fakeSubmitter) Submit(_ context.Context, urls []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]string(nil), urls...))
	return f.err
}

func (f *fakeSubmitter) calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.batches))
	copy(out, f.batches)
	return out
}

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time {
	f.now = f.now.Add(5 * time.Millisecond)
	return f.now
}

type fakeIDGen struct{ n int }

func (f *fakeIDGen) NewID() (string, error) {
	f.n++
	return "evt-" + string(rune('0'+f.n)), nil
}

type failingJournal struct{}

func (failingJournal) Record(_ context.Context, _ journal.Entry) error {
	return errors.New("journal down")
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type fixture struct {
	pipeline *Pipeline
	primary  *fakeSubmitter
	sitemap  *fakeSubmitter
	journal  *journalmemory.Store
	archive  *archivememory.Store
	notifier *notifymemory.Publisher
}

func newFixture(primaryErr, sitemapErr error) *fixture {
	f := &fixture{
		primary:  &fakeSubmitter{name: "indexnow", err: primaryErr},
		sitemap:  &fakeSubmitter{name: "google-sitemap", err: sitemapErr},
		journal:  journalmemory.NewStore(),
		archive:  archivememory.NewStore(),
		notifier: notifymemory.New(),
	}
	f.pipeline = New(
		indexing.NewResolver(testBase),
		f.primary,
		f.sitemap,
		f.journal,
		f.archive,
		f.notifier,
		&fakeClock{now: time.Unix(1700000000, 0).UTC()},
		&fakeIDGen{},
		Config{Secret: testSecret, ArchivePrefix: "webhooks"},
		nil,
	)
	return f
}

func event(topic string, body []byte, sig string) indexing.ChangeEvent {
	return indexing.ChangeEvent{Topic: indexing.Topic(topic), RawBody: body, Signature: sig}
}

func TestHandleSuccessProductCreate(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, nil)
	body := []byte(`{"handle":"widget"}`)

	res := f.pipeline.Handle(context.Background(), event("products/create", body, sign(body)))
	require.Equal(t, OutcomeSuccess, res.Outcome)
	require.Equal(t, []string{
		testBase + "/products/widget",
		testBase + "/",
		testBase + "/collections/all",
	}, res.URLs)

	require.Equal(t, [][]string{res.URLs}, f.primary.calls())
	require.Len(t, f.sitemap.calls(), 1, "create topics invoke the sitemap provider")

	entries := f.journal.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "success", entries[0].Outcome)
	require.Equal(t, "webhook", entries[0].Source)
	require.True(t, entries[0].SitemapInvoked)
	require.Empty(t, entries[0].ProviderError)

	notes := f.notifier.Notifications()
	require.Len(t, notes, 1)
	require.Equal(t, "success", notes[0].Outcome)

	archived, ok := f.archive.Get("webhooks/products-create/" + res.EventID + ".json")
	require.True(t, ok)
	require.Equal(t, body, archived)
}

func TestHandleUnauthenticated(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, nil)
	body := []byte(`{"handle":"widget"}`)

	res := f.pipeline.Handle(context.Background(), event("products/create", body, "bad-signature"))
	require.Equal(t, OutcomeUnauthenticated, res.Outcome)
	require.Empty(t, f.primary.calls())
	require.Empty(t, f.sitemap.calls())

	entries := f.journal.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "unauthenticated", entries[0].Outcome)

	// Unauthenticated payloads are never archived.
	_, ok := f.archive.Get("webhooks/products-create/" + res.EventID + ".json")
	require.False(t, ok)
}

func TestHandleEmptySecretRejectsEverything(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, nil)
	f.pipeline.cfg.Secret = ""
	body := []byte(`{"handle":"widget"}`)

	res := f.pipeline.Handle(context.Background(), event("products/create", body, sign(body)))
	require.Equal(t, OutcomeUnauthenticated, res.Outcome)
	require.Empty(t, f.primary.calls())
}

func TestHandleMalformedPayload(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, nil)
	body := []byte(`{"handle":`)

	res := f.pipeline.Handle(context.Background(), event("products/create", body, sign(body)))
	require.Equal(t, OutcomeError, res.Outcome)
	require.Empty(t, f.primary.calls())
	require.Empty(t, f.sitemap.calls())
}

func TestHandlePrimaryFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(errors.New("status 500: boom"), nil)
	body := []byte(`{"handle":"widget"}`)

	res := f.pipeline.Handle(context.Background(), event("products/create", body, sign(body)))
	require.Equal(t, OutcomeError, res.Outcome)
	require.Len(t, f.primary.calls(), 1)
	require.Empty(t, f.sitemap.calls(), "sitemap is not reached after a fatal primary failure")

	entries := f.journal.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "error", entries[0].Outcome)
	require.Contains(t, entries[0].ProviderError, "boom")
}

func TestHandleSitemapFailureIsAdvisory(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, errors.New("status 403: forbidden"))
	body := []byte(`{"handle":"widget"}`)

	res := f.pipeline.Handle(context.Background(), event("products/create", body, sign(body)))
	require.Equal(t, OutcomeSuccess, res.Outcome)

	entries := f.journal.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "success", entries[0].Outcome)
	require.True(t, entries[0].SitemapInvoked)
	require.Contains(t, entries[0].SitemapError, "forbidden")
}

func TestSitemapInvocationRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		topic   string
		invoked bool
	}{
		{"products/create", true},
		{"articles/create", true},
		{"collections/create", true},
		{"collections/update", true},
		{"collections/delete", true},
		{"products/update", false},
		{"products/delete", false},
		{"articles/update", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.topic, func(t *testing.T) {
			t.Parallel()

			f := newFixture(nil, nil)
			body := []byte(`{"handle":"widget"}`)
			res := f.pipeline.Handle(context.Background(), event(tt.topic, body, sign(body)))
			require.Equal(t, OutcomeSuccess, res.Outcome)
			if tt.invoked {
				require.Len(t, f.sitemap.calls(), 1)
			} else {
				require.Empty(t, f.sitemap.calls())
			}
		})
	}
}

func TestHandleDeletionSubmitsAnchorsOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, nil)
	body := []byte(`{"handle":"widget"}`)

	res := f.pipeline.Handle(context.Background(), event("products/delete", body, sign(body)))
	require.Equal(t, OutcomeSuccess, res.Outcome)
	require.Equal(t, []string{testBase + "/", testBase + "/collections/all"}, res.URLs)
}

func TestHandleJournalFailureDoesNotChangeOutcome(t *testing.T) {
	t.Parallel()

	primary := &fakeSubmitter{name: "indexnow"}
	p := New(
		indexing.NewResolver(testBase),
		primary,
		&fakeSubmitter{name: "google-sitemap"},
		failingJournal{},
		nil,
		nil,
		&fakeClock{now: time.Unix(1700000000, 0).UTC()},
		&fakeIDGen{},
		Config{Secret: testSecret},
		nil,
	)

	body := []byte(`{"handle":"widget"}`)
	res := p.Handle(context.Background(), event("products/update", body, sign(body)))
	require.Equal(t, OutcomeSuccess, res.Outcome)
	require.Len(t, primary.calls(), 1)
}
