package submit

import (
	"context"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// VerifyKeyLocation fetches the IndexNow key file and warns when it is
// unreachable or serves a different key. IndexNow validates ownership
// by crawling this file, so a broken key location silently voids every
// submission. Advisory only: the check never fails the caller.
func VerifyKeyLocation(ctx context.Context, client *http.Client, location, key string, logger *zap.Logger) {
	if location == "" || key == "" {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client = orDefaultClient(client)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		logger.Warn("indexnow key location check failed", zap.String("location", location), zap.Error(err))
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("indexnow key location unreachable", zap.String("location", location), zap.Error(err))
		return
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if !statusOK(resp.StatusCode) {
		logger.Warn("indexnow key location returned non-success status",
			zap.String("location", location), zap.Int("status", resp.StatusCode))
		return
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, bodyPreviewLimit))
	if err != nil {
		logger.Warn("indexnow key location read failed", zap.String("location", location), zap.Error(err))
		return
	}
	if strings.TrimSpace(string(body)) != key {
		logger.Warn("indexnow key location serves a different key", zap.String("location", location))
		return
	}
	logger.Info("indexnow key location verified", zap.String("location", location))
}
