package submit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBingSubmitKeyInQueryString(t *testing.T) {
	t.Parallel()

	var captured bingRequest
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		apiKey = r.URL.Query().Get("apikey")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewBing(srv.Client(), BingConfig{
		Endpoint: srv.URL,
		SiteURL:  "https://shop.example.com/",
		APIKey:   "bing-key",
	}, nil)

	urls := []string{"https://shop.example.com/collections/sale"}
	require.NoError(t, s.Submit(context.Background(), urls))
	require.Equal(t, "bing-key", apiKey)
	require.Equal(t, "https://shop.example.com/", captured.SiteURL)
	require.Equal(t, urls, captured.URLList)
}

func TestBingSubmitNonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("InvalidApiKey"))
	}))
	defer srv.Close()

	s := NewBing(srv.Client(), BingConfig{Endpoint: srv.URL, SiteURL: "https://shop.example.com/", APIKey: "bad"}, nil)
	err := s.Submit(context.Background(), []string{"https://shop.example.com/"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
	require.Contains(t, err.Error(), "InvalidApiKey")
}

func TestBingMissingKey(t *testing.T) {
	t.Parallel()

	forgiving := NewBing(nil, BingConfig{SiteURL: "https://shop.example.com/"}, nil)
	require.NoError(t, forgiving.Submit(context.Background(), []string{"https://shop.example.com/"}))

	strict := NewBing(nil, BingConfig{SiteURL: "https://shop.example.com/", Strict: true}, nil)
	require.Error(t, strict.Submit(context.Background(), []string{"https://shop.example.com/"}))
}

func TestBingDefaults(t *testing.T) {
	t.Parallel()

	s := NewBing(nil, BingConfig{}, nil)
	require.Equal(t, DefaultBingEndpoint, s.cfg.Endpoint)
	require.Equal(t, "bing", s.Name())
}
