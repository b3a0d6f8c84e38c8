// Package heartbeat fires a daily, event-independent resubmission to
// the indexing providers as a liveness/freshness signal. Webhook
// traffic may be zero for long stretches; the heartbeat keeps the
// providers aware the site is alive regardless.
package heartbeat

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quaydigital/searchping/internal/indexing"
	"github.com/quaydigital/searchping/internal/journal"
	"github.com/quaydigital/searchping/internal/telemetry"
)

// Config fixes the daily firing time.
type Config struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// Scheduler submits a static URL batch once a day. Every failure is
// caught and logged; a firing never crashes the process or blocks the
// next one.
type Scheduler struct {
	primary indexing.Submitter
	sitemap indexing.Submitter
	urls    []string
	journal journal.Journal
	clock   indexing.Clock
	idGen   indexing.IDGenerator
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Scheduler. The journal may be nil.
func New(
	primary indexing.Submitter,
	sitemap indexing.Submitter,
	urls []string,
	jour journal.Journal,
	clock indexing.Clock,
	idGen indexing.IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Scheduler {
	if jour == nil {
		jour = journal.Noop{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		primary: primary,
		sitemap: sitemap,
		urls:    urls,
		journal: jour,
		clock:   clock,
		idGen:   idGen,
		cfg:     cfg,
		logger:  logger,
	}
}

// ParseAt parses a wall-clock "HH:MM" string.
func ParseAt(s string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("parse heartbeat time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("heartbeat time %q out of range", s)
	}
	return hour, minute, nil
}

// NextFire computes the next wall-clock firing at hour:minute in loc,
// strictly after now.
func NextFire(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks, firing once per day until the context finishes.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := NextFire(s.clock.Now(), s.cfg.Hour, s.cfg.Minute, s.cfg.Location)
		s.logger.Info("heartbeat scheduled", zap.Time("next_fire", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.Fire(ctx)
		}
	}
}

// Fire runs one heartbeat: submit the static batch to the instant
// provider and unconditionally invoke the sitemap provider. Failures
// are logged and recorded, never propagated.
func (s *Scheduler) Fire(ctx context.Context) {
	start := s.clock.Now()
	eventID, err := s.idGen.NewID()
	if err != nil {
		s.logger.Warn("heartbeat id generation failed", zap.Error(err))
	}

	entry := journal.Entry{
		EventID:        eventID,
		Source:         "heartbeat",
		Provider:       s.primary.Name(),
		URLs:           s.urls,
		SitemapInvoked: true,
		ReceivedAt:     start,
	}
	result := "ok"

	if err := s.primary.Submit(ctx, s.urls); err != nil {
		result = "error"
		entry.ProviderError = err.Error()
		s.logger.Warn("heartbeat instant submission failed",
			zap.String("provider", s.primary.Name()), zap.Error(err))
	}
	if err := s.sitemap.Submit(ctx, s.urls); err != nil {
		result = "error"
		entry.SitemapError = err.Error()
		s.logger.Warn("heartbeat sitemap resubmission failed", zap.Error(err))
	}

	if result == "ok" {
		entry.Outcome = "success"
	} else {
		entry.Outcome = "error"
	}
	entry.DurationMs = s.clock.Now().Sub(start).Milliseconds()
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Warn("heartbeat journal record failed", zap.Error(err))
	}
	telemetry.ObserveHeartbeat(result)
	s.logger.Info("heartbeat fired", zap.String("result", result), zap.Int("url_count", len(s.urls)))
}
