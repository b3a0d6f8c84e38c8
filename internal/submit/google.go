package submit

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	webmasters "google.golang.org/api/webmasters/v3"
)

// GoogleSitemapConfig configures the Search Console sitemap submitter.
type GoogleSitemapConfig struct {
	// SiteURL is the Search Console property, e.g. "https://shop.example.com/".
	SiteURL string
	// SitemapURL is the full feedpath of the registered sitemap.
	SitemapURL string
	// Strict turns a missing credential into a submission error
	// instead of a skip-with-warning.
	Strict bool
}

// GoogleSitemap re-signals a registered sitemap to the Search Console
// webmasters API using a service-account credential. Without a
// credential it degrades to a no-op.
type GoogleSitemap struct {
	sitemaps *webmasters.SitemapsService
	cfg      GoogleSitemapConfig
	logger   *zap.Logger
}

// NewGoogleSitemap builds a submitter from service-account credential
// JSON. Empty credentials yield a degraded submitter rather than an
// error; malformed credentials are an error.
func NewGoogleSitemap(ctx context.Context, credentialsJSON []byte, cfg GoogleSitemapConfig, logger *zap.Logger) (*GoogleSitemap, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(credentialsJSON) == 0 {
		return &GoogleSitemap{cfg: cfg, logger: logger}, nil
	}

	jwtCfg, err := google.JWTConfigFromJSON(credentialsJSON, webmasters.WebmastersScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	// Keys pasted through env vars often arrive with literal "\n"
	// sequences instead of newlines.
	jwtCfg.PrivateKey = NormalizePrivateKey(jwtCfg.PrivateKey)

	svc, err := webmasters.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("build webmasters service: %w", err)
	}
	return &GoogleSitemap{sitemaps: svc.Sitemaps, cfg: cfg, logger: logger}, nil
}

// NewGoogleSitemapWithService constructs a submitter from an existing
// webmasters service (primarily for testing).
func NewGoogleSitemapWithService(svc *webmasters.Service, cfg GoogleSitemapConfig, logger *zap.Logger) *GoogleSitemap {
	if logger == nil {
		logger = zap.NewNop()
	}
	var sitemaps *webmasters.SitemapsService
	if svc != nil {
		sitemaps = svc.Sitemaps
	}
	return &GoogleSitemap{sitemaps: sitemaps, cfg: cfg, logger: logger}
}

// NormalizePrivateKey replaces literal backslash-n sequences with real
// newlines so PEM parsing succeeds.
func NormalizePrivateKey(key []byte) []byte {
	return bytes.ReplaceAll(key, []byte(`\n`), []byte("\n"))
}

// Name implements indexing.Submitter.
func (s *GoogleSitemap) Name() string {
	return "google-sitemap"
}

// Submit re-submits the configured sitemap. The URL batch is ignored:
// this provider signals the whole sitemap, not individual URLs.
func (s *GoogleSitemap) Submit(ctx context.Context, _ []string) error {
	if s.sitemaps == nil {
		if s.cfg.Strict {
			return fmt.Errorf("google sitemap: credential is not configured")
		}
		s.logger.Warn("google credential not configured, skipping sitemap resubmission",
			zap.String("site_url", s.cfg.SiteURL))
		return nil
	}
	if err := s.sitemaps.Submit(s.cfg.SiteURL, s.cfg.SitemapURL).Context(ctx).Do(); err != nil {
		return fmt.Errorf("google sitemap submit: %w", err)
	}
	s.logger.Debug("sitemap resubmitted",
		zap.String("site_url", s.cfg.SiteURL),
		zap.String("sitemap", s.cfg.SitemapURL))
	return nil
}
