package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// DefaultBingEndpoint is the Bing Webmaster batch submission endpoint.
const DefaultBingEndpoint = "https://ssl.bing.com/webmaster/api.svc/json/SubmitUrlBatch"

// BingConfig configures the Bing submitter.
type BingConfig struct {
	Endpoint string
	SiteURL  string
	APIKey   string
	// Strict turns a missing API key into a submission error instead
	// of a skip-with-warning.
	Strict bool
}

// Bing submits URL batches to the Bing Webmaster API. The API key
// travels in the query string, not the body.
type Bing struct {
	client *http.Client
	cfg    BingConfig
	logger *zap.Logger
}

// NewBing constructs a Bing submitter.
func NewBing(client *http.Client, cfg BingConfig, logger *zap.Logger) *Bing {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultBingEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bing{client: orDefaultClient(client), cfg: cfg, logger: logger}
}

// Name implements indexing.Submitter.
func (s *Bing) Name() string {
	return "bing"
}

type bingRequest struct {
	SiteURL string   `json:"siteUrl"`
	URLList []string `json:"urlList"`
}

// Submit posts the URL batch. A non-2xx response is an error carrying
// the status and response body.
func (s *Bing) Submit(ctx context.Context, urls []string) error {
	if s.cfg.APIKey == "" {
		if s.cfg.Strict {
			return fmt.Errorf("bing: api key is not configured")
		}
		s.logger.Warn("bing api key not configured, skipping submission", zap.Int("url_count", len(urls)))
		return nil
	}
	if len(urls) == 0 {
		return nil
	}

	body, err := json.Marshal(bingRequest{SiteURL: s.cfg.SiteURL, URLList: urls})
	if err != nil {
		return fmt.Errorf("bing: marshal request: %w", err)
	}

	endpoint := s.cfg.Endpoint + "?apikey=" + url.QueryEscape(s.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("bing: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("bing: submit: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if !statusOK(resp.StatusCode) {
		return fmt.Errorf("bing: status %d: %s", resp.StatusCode, readBodyPreview(resp.Body))
	}
	s.logger.Debug("bing batch accepted", zap.Int("url_count", len(urls)), zap.Int("status", resp.StatusCode))
	return nil
}
