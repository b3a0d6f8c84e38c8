// Package pipeline implements the per-event submission orchestrator:
// verify, resolve, submit to the instant provider, conditionally
// resubmit the sitemap.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quaydigital/searchping/internal/archive"
	"github.com/quaydigital/searchping/internal/indexing"
	"github.com/quaydigital/searchping/internal/journal"
	"github.com/quaydigital/searchping/internal/notify"
	"github.com/quaydigital/searchping/internal/signature"
	"github.com/quaydigital/searchping/internal/telemetry"
)

// Config controls pipeline behavior.
type Config struct {
	// Secret is the shared webhook secret. When empty, every event is
	// rejected as unauthenticated (the verifier fails closed).
	Secret string
	// ArchivePrefix is the path prefix for archived payloads.
	ArchivePrefix string
}

// Result is the terminal state of one handled event.
type Result struct {
	EventID string
	Outcome Outcome
	URLs    []string
}

// Pipeline drives a verified event through resolution and provider
// fan-out. Journal, archive, and notifier failures are logged and
// swallowed; only verification, payload parsing, and the primary
// provider decide the outcome.
type Pipeline struct {
	resolver indexing.Resolver
	primary  indexing.Submitter
	sitemap  indexing.Submitter
	journal  journal.Journal
	archive  archive.Store
	notifier notify.Notifier
	clock    indexing.Clock
	idGen    indexing.IDGenerator
	cfg      Config
	logger   *zap.Logger
}

// New constructs a Pipeline. Journal, archive, and notifier may be nil
// and default to no-ops; clock, idGen, and both submitters are
// required.
func New(
	resolver indexing.Resolver,
	primary indexing.Submitter,
	sitemap indexing.Submitter,
	jour journal.Journal,
	arch archive.Store,
	notifier notify.Notifier,
	clock indexing.Clock,
	idGen indexing.IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Pipeline {
	if jour == nil {
		jour = journal.Noop{}
	}
	if arch == nil {
		arch = archive.Noop{}
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		resolver: resolver,
		primary:  primary,
		sitemap:  sitemap,
		journal:  jour,
		archive:  arch,
		notifier: notifier,
		clock:    clock,
		idGen:    idGen,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handle runs one event through the pipeline and returns its terminal
// result. It never panics and never returns an error: every failure
// mode maps to one of the three outcomes.
func (p *Pipeline) Handle(ctx context.Context, event indexing.ChangeEvent) Result {
	start := p.clock.Now()
	eventID, err := p.idGen.NewID()
	if err != nil {
		p.logger.Warn("event id generation failed", zap.Error(err))
	}
	logger := p.logger.With(zap.String("event_id", eventID), zap.String("topic", string(event.Topic)))

	entry := journal.Entry{
		EventID:    eventID,
		Source:     "webhook",
		Topic:      string(event.Topic),
		Provider:   p.primary.Name(),
		ReceivedAt: start,
	}

	finish := func(outcome Outcome, urls []string) Result {
		entry.Outcome = outcome.String()
		entry.URLs = urls
		entry.DurationMs = p.clock.Now().Sub(start).Milliseconds()
		if err := p.journal.Record(ctx, entry); err != nil {
			logger.Warn("journal record failed", zap.Error(err))
		}
		if _, err := p.notifier.Publish(ctx, notify.Notification{
			EventID:   eventID,
			Source:    entry.Source,
			Topic:     entry.Topic,
			Outcome:   entry.Outcome,
			URLs:      urls,
			Timestamp: start,
		}); err != nil {
			logger.Warn("result notification failed", zap.Error(err))
		}
		telemetry.ObserveEvent(event.Topic.Kind(), entry.Outcome)
		return Result{EventID: eventID, Outcome: outcome, URLs: urls}
	}

	if !signature.Verify(p.cfg.Secret, event.RawBody, event.Signature) {
		logger.Warn("webhook signature rejected")
		return finish(OutcomeUnauthenticated, nil)
	}

	p.archivePayload(ctx, logger, eventID, event)

	payload, err := indexing.ParsePayload(event.RawBody)
	if err != nil {
		logger.Error("webhook payload did not parse", zap.Error(err))
		return finish(OutcomeError, nil)
	}

	urls := p.resolver.EventBatch(event.Topic, payload)

	submitStart := p.clock.Now()
	if err := p.primary.Submit(ctx, urls); err != nil {
		telemetry.ObserveSubmission(p.primary.Name(), "error", p.clock.Now().Sub(submitStart))
		entry.ProviderError = err.Error()
		logger.Error("instant submission failed",
			zap.String("provider", p.primary.Name()),
			zap.Int("url_count", len(urls)),
			zap.Error(err))
		return finish(OutcomeError, urls)
	}
	telemetry.ObserveSubmission(p.primary.Name(), "ok", p.clock.Now().Sub(submitStart))
	logger.Info("instant submission accepted",
		zap.String("provider", p.primary.Name()),
		zap.Int("url_count", len(urls)))

	// Sitemap resubmission runs only for creations and for any
	// collection change; its failure is advisory.
	if event.Topic.IsCreation() || event.Topic.Kind() == "collections" {
		entry.SitemapInvoked = true
		sitemapStart := p.clock.Now()
		if err := p.sitemap.Submit(ctx, urls); err != nil {
			telemetry.ObserveSubmission(p.sitemap.Name(), "error", p.clock.Now().Sub(sitemapStart))
			entry.SitemapError = err.Error()
			logger.Warn("sitemap resubmission failed", zap.Error(err))
		} else {
			telemetry.ObserveSubmission(p.sitemap.Name(), "ok", p.clock.Now().Sub(sitemapStart))
		}
	}

	return finish(OutcomeSuccess, urls)
}

func (p *Pipeline) archivePayload(ctx context.Context, logger *zap.Logger, eventID string, event indexing.ChangeEvent) {
	prefix := strings.Trim(p.cfg.ArchivePrefix, "/")
	if prefix == "" {
		prefix = "webhooks"
	}
	path := fmt.Sprintf("%s/%s/%s.json", prefix, event.Topic.Sanitized(), eventID)
	uri, err := p.archive.PutObject(ctx, path, "application/json", bytes.NewReader(event.RawBody))
	if err != nil {
		logger.Warn("payload archive failed", zap.String("path", path), zap.Error(err))
		return
	}
	if uri != "" {
		logger.Debug("payload archived", zap.String("uri", uri))
	}
}
