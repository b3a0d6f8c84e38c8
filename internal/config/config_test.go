package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validBase() Config {
	return Config{
		Server:    ServerConfig{Port: 8080},
		Site:      SiteConfig{BaseURL: "https://shop.example.com"},
		HTTP:      HTTPConfig{TimeoutSeconds: 15},
		Submit:    SubmitConfig{Provider: "indexnow"},
		Heartbeat: HeartbeatConfig{Enabled: true, At: "06:00", Timezone: "UTC"},
		Journal:   JournalConfig{Provider: "noop"},
		Archive:   ArchiveConfig{Provider: "noop"},
		Notify:    NotifyConfig{Provider: "noop"},
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
logging:
  development: false
site:
  base_url: https://shop.example.com
webhook:
  secret: shpss_secret
http:
  timeout_seconds: 45
submit:
  provider: bing
  strict: true
bing:
  api_key: bing-key
google:
  site_url: sc-domain:shop.example.com
  sitemap_path: sitemap_index.xml
heartbeat:
  enabled: true
  at: "05:30"
  timezone: America/New_York
journal:
  provider: postgres
  dsn: postgres://localhost/searchping
  table: submission_log
archive:
  provider: local
  local_dir: /tmp/payloads
  prefix: hooks
notify:
  provider: pubsub
  project_id: my-project
  topic: searchping-results
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Development {
		t.Fatal("expected development logging to be disabled")
	}
	if cfg.Webhook.Secret != "shpss_secret" {
		t.Fatalf("expected webhook secret override, got %q", cfg.Webhook.Secret)
	}
	if cfg.Submit.Provider != "bing" || !cfg.Submit.Strict {
		t.Fatalf("expected strict bing submit config, got %+v", cfg.Submit)
	}
	if cfg.Journal.Provider != "postgres" || cfg.Journal.Table != "submission_log" {
		t.Fatalf("expected postgres journal overrides, got %+v", cfg.Journal)
	}
	if cfg.Archive.Prefix != "hooks" {
		t.Fatalf("expected archive prefix override, got %q", cfg.Archive.Prefix)
	}
	if cfg.Heartbeat.At != "05:30" || cfg.Heartbeat.Timezone != "America/New_York" {
		t.Fatalf("expected heartbeat overrides, got %+v", cfg.Heartbeat)
	}
	if got := cfg.HTTPTimeout(); got != 45*time.Second {
		t.Fatalf("expected timeout 45s, got %v", got)
	}
	if got := cfg.GoogleSiteURL(); got != "sc-domain:shop.example.com" {
		t.Fatalf("expected configured google site url, got %q", got)
	}
	if got := cfg.SitemapURL(); got != "https://shop.example.com/sitemap_index.xml" {
		t.Fatalf("unexpected sitemap url %q", got)
	}
}

func TestLoadRequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "site.base_url") {
		t.Fatalf("expected site.base_url error, got %v", err)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "invalid port",
			mutate: func(c *Config) { c.Server.Port = 0 },
			want:   "server.port",
		},
		{
			name:   "missing base url",
			mutate: func(c *Config) { c.Site.BaseURL = "" },
			want:   "site.base_url",
		},
		{
			name:   "relative base url",
			mutate: func(c *Config) { c.Site.BaseURL = "shop.example.com" },
			want:   "site.base_url",
		},
		{
			name:   "invalid timeout",
			mutate: func(c *Config) { c.HTTP.TimeoutSeconds = 0 },
			want:   "http.timeout_seconds",
		},
		{
			name:   "unknown submit provider",
			mutate: func(c *Config) { c.Submit.Provider = "yandex" },
			want:   "submit.provider",
		},
		{
			name:   "bad heartbeat time",
			mutate: func(c *Config) { c.Heartbeat.At = "25:00" },
			want:   "heartbeat.at",
		},
		{
			name:   "bad heartbeat timezone",
			mutate: func(c *Config) { c.Heartbeat.Timezone = "Mars/Olympus" },
			want:   "heartbeat.timezone",
		},
		{
			name:   "postgres journal without dsn",
			mutate: func(c *Config) { c.Journal.Provider = "postgres" },
			want:   "journal.dsn",
		},
		{
			name:   "unknown journal provider",
			mutate: func(c *Config) { c.Journal.Provider = "redis" },
			want:   "journal.provider",
		},
		{
			name:   "gcs archive without bucket",
			mutate: func(c *Config) { c.Archive.Provider = "gcs" },
			want:   "archive.gcs_bucket",
		},
		{
			name:   "local archive without dir",
			mutate: func(c *Config) { c.Archive.Provider = "local" },
			want:   "archive.local_dir",
		},
		{
			name:   "pubsub notify without topic",
			mutate: func(c *Config) { c.Notify.Provider = "pubsub"; c.Notify.ProjectID = "p" },
			want:   "notify.project_id and notify.topic",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validBase()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDerivedValues(t *testing.T) {
	t.Parallel()

	cfg := validBase()
	cfg.Google.SitemapPath = "sitemap.xml"

	if got := cfg.IndexNowKeyLocation(); got != "" {
		t.Fatalf("expected empty key location without a key, got %q", got)
	}
	cfg.IndexNow.Key = "abc123"
	if got := cfg.IndexNowKeyLocation(); got != "https://shop.example.com/abc123.txt" {
		t.Fatalf("unexpected key location %q", got)
	}
	cfg.IndexNow.KeyLocation = "https://cdn.example.com/abc123.txt"
	if got := cfg.IndexNowKeyLocation(); got != "https://cdn.example.com/abc123.txt" {
		t.Fatalf("expected configured key location to win, got %q", got)
	}

	if got := cfg.GoogleSiteURL(); got != "https://shop.example.com/" {
		t.Fatalf("unexpected google site url %q", got)
	}
	if got := cfg.SitemapURL(); got != "https://shop.example.com/sitemap.xml" {
		t.Fatalf("unexpected sitemap url %q", got)
	}
}
