// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/quaydigital/searchping/internal/heartbeat"
)

// Config captures all service configuration knobs loaded via Viper.
// It is built once at startup and passed by value; components never
// read ambient process state.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Site      SiteConfig      `mapstructure:"site"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Submit    SubmitConfig    `mapstructure:"submit"`
	IndexNow  IndexNowConfig  `mapstructure:"indexnow"`
	Bing      BingConfig      `mapstructure:"bing"`
	Google    GoogleConfig    `mapstructure:"google"`
	Heartbeat HeartbeatConfig `mapstructure:"heartbeat"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// SiteConfig identifies the storefront whose URLs are submitted.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// WebhookConfig holds the shared webhook secret. An empty secret makes
// the verifier fail closed: every inbound event is rejected.
type WebhookConfig struct {
	Secret string `mapstructure:"secret"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// SubmitConfig selects the instant-submit provider and the missing-
// credential policy.
type SubmitConfig struct {
	// Provider is "indexnow" or "bing".
	Provider string `mapstructure:"provider"`
	// Strict makes a missing provider credential a submission error
	// instead of a skip-with-warning.
	Strict bool `mapstructure:"strict"`
}

// IndexNowConfig holds IndexNow credentials.
type IndexNowConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	Key         string `mapstructure:"key"`
	KeyLocation string `mapstructure:"key_location"`
}

// BingConfig holds Bing Webmaster credentials.
type BingConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

// GoogleConfig holds Search Console credentials and sitemap identity.
type GoogleConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	CredentialsJSON string `mapstructure:"credentials_json"`
	SiteURL         string `mapstructure:"site_url"`
	SitemapPath     string `mapstructure:"sitemap_path"`
}

// HeartbeatConfig fixes the daily resubmission schedule.
type HeartbeatConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	At       string `mapstructure:"at"`
	Timezone string `mapstructure:"timezone"`
}

// JournalConfig selects the submission journal backend.
type JournalConfig struct {
	// Provider is "noop", "memory", or "postgres".
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
}

// ArchiveConfig selects the payload archive backend.
type ArchiveConfig struct {
	// Provider is "noop", "memory", "local", or "gcs".
	Provider  string `mapstructure:"provider"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	LocalDir  string `mapstructure:"local_dir"`
	Prefix    string `mapstructure:"prefix"`
}

// NotifyConfig selects the result-notification backend.
type NotifyConfig struct {
	// Provider is "noop", "memory", or "pubsub".
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SEARCHPING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("submit.provider", "indexnow")
	v.SetDefault("submit.strict", false)
	v.SetDefault("indexnow.endpoint", "https://api.indexnow.org/indexnow")
	v.SetDefault("bing.endpoint", "https://ssl.bing.com/webmaster/api.svc/json/SubmitUrlBatch")
	v.SetDefault("google.sitemap_path", "sitemap.xml")
	v.SetDefault("heartbeat.enabled", true)
	v.SetDefault("heartbeat.at", "06:00")
	v.SetDefault("heartbeat.timezone", "UTC")
	v.SetDefault("journal.provider", "noop")
	v.SetDefault("journal.table", "submissions")
	v.SetDefault("archive.provider", "noop")
	v.SetDefault("archive.prefix", "webhooks")
	v.SetDefault("notify.provider", "noop")
}

// Validate enforces required values and cross-field consistency.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("site.base_url must be an absolute http(s) URL")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	switch c.Submit.Provider {
	case "indexnow", "bing":
	default:
		return fmt.Errorf("submit.provider must be indexnow or bing, got %q", c.Submit.Provider)
	}
	if c.Heartbeat.Enabled {
		if _, _, err := heartbeat.ParseAt(c.Heartbeat.At); err != nil {
			return fmt.Errorf("heartbeat.at: %w", err)
		}
		if _, err := time.LoadLocation(c.Heartbeat.Timezone); err != nil {
			return fmt.Errorf("heartbeat.timezone: %w", err)
		}
	}
	switch c.Journal.Provider {
	case "noop", "memory":
	case "postgres":
		if c.Journal.DSN == "" {
			return fmt.Errorf("journal.dsn is required when journal.provider is postgres")
		}
	default:
		return fmt.Errorf("journal.provider must be noop, memory, or postgres, got %q", c.Journal.Provider)
	}
	switch c.Archive.Provider {
	case "noop", "memory":
	case "local":
		if c.Archive.LocalDir == "" {
			return fmt.Errorf("archive.local_dir is required when archive.provider is local")
		}
	case "gcs":
		if c.Archive.GCSBucket == "" {
			return fmt.Errorf("archive.gcs_bucket is required when archive.provider is gcs")
		}
	default:
		return fmt.Errorf("archive.provider must be noop, memory, local, or gcs, got %q", c.Archive.Provider)
	}
	switch c.Notify.Provider {
	case "noop", "memory":
	case "pubsub":
		if c.Notify.ProjectID == "" || c.Notify.Topic == "" {
			return fmt.Errorf("notify.project_id and notify.topic are required when notify.provider is pubsub")
		}
	default:
		return fmt.Errorf("notify.provider must be noop, memory, or pubsub, got %q", c.Notify.Provider)
	}
	return nil
}

// HTTPTimeout converts the configured outbound timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// IndexNowKeyLocation derives the key file URL: the configured value,
// or {base}/{key}.txt by convention.
func (c Config) IndexNowKeyLocation() string {
	if c.IndexNow.KeyLocation != "" {
		return c.IndexNow.KeyLocation
	}
	if c.IndexNow.Key == "" {
		return ""
	}
	return strings.TrimRight(c.Site.BaseURL, "/") + "/" + c.IndexNow.Key + ".txt"
}

// GoogleSiteURL derives the Search Console property: the configured
// value, or the site base with a trailing slash.
func (c Config) GoogleSiteURL() string {
	if c.Google.SiteURL != "" {
		return c.Google.SiteURL
	}
	return strings.TrimRight(c.Site.BaseURL, "/") + "/"
}

// SitemapURL derives the full sitemap feedpath.
func (c Config) SitemapURL() string {
	return strings.TrimRight(c.Site.BaseURL, "/") + "/" + strings.TrimLeft(c.Google.SitemapPath, "/")
}
