// Package submit implements the provider submitters: IndexNow and Bing
// instant URL submission, and Google Search Console sitemap
// resubmission. All submitters satisfy indexing.Submitter and perform
// no internal retry.
package submit

import (
	"io"
	"net/http"
	"strings"
)

// bodyPreviewLimit caps how much of a provider error response is
// carried into the returned error.
const bodyPreviewLimit = 2048

func readBodyPreview(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, bodyPreviewLimit))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func statusOK(code int) bool {
	return code >= 200 && code < 300
}

func orDefaultClient(client *http.Client) *http.Client {
	if client == nil {
		return http.DefaultClient
	}
	return client
}
