package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DefaultIndexNowEndpoint is the shared IndexNow ingestion endpoint.
const DefaultIndexNowEndpoint = "https://api.indexnow.org/indexnow"

// IndexNowConfig configures the IndexNow submitter.
type IndexNowConfig struct {
	Endpoint    string
	Host        string
	Key         string
	KeyLocation string
	// Strict turns a missing key into a submission error instead of a
	// skip-with-warning.
	Strict bool
}

// IndexNow submits URL batches to the IndexNow endpoint.
type IndexNow struct {
	client *http.Client
	cfg    IndexNowConfig
	logger *zap.Logger
}

// NewIndexNow constructs an IndexNow submitter.
func NewIndexNow(client *http.Client, cfg IndexNowConfig, logger *zap.Logger) *IndexNow {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultIndexNowEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndexNow{client: orDefaultClient(client), cfg: cfg, logger: logger}
}

// Name implements indexing.Submitter.
func (s *IndexNow) Name() string {
	return "indexnow"
}

type indexNowRequest struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation,omitempty"`
	URLList     []string `json:"urlList"`
}

// Submit posts the URL batch. A non-2xx response is an error carrying
// the status and response body.
func (s *IndexNow) Submit(ctx context.Context, urls []string) error {
	if s.cfg.Key == "" {
		if s.cfg.Strict {
			return fmt.Errorf("indexnow: key is not configured")
		}
		s.logger.Warn("indexnow key not configured, skipping submission", zap.Int("url_count", len(urls)))
		return nil
	}
	if len(urls) == 0 {
		return nil
	}

	body, err := json.Marshal(indexNowRequest{
		Host:        s.cfg.Host,
		Key:         s.cfg.Key,
		KeyLocation: s.cfg.KeyLocation,
		URLList:     urls,
	})
	if err != nil {
		return fmt.Errorf("indexnow: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("indexnow: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("indexnow: submit: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if !statusOK(resp.StatusCode) {
		return fmt.Errorf("indexnow: status %d: %s", resp.StatusCode, readBodyPreview(resp.Body))
	}
	s.logger.Debug("indexnow batch accepted", zap.Int("url_count", len(urls)), zap.Int("status", resp.StatusCode))
	return nil
}
