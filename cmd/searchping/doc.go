// Package main hosts the searchping service entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes /webhooks/shopify plus health and
//     metrics endpoints. The webhook handler captures the raw body and the
//     Shopify topic/HMAC headers and hands them to the pipeline unmodified.
//   - Pipeline: internal/pipeline.Pipeline verifies the HMAC signature over
//     the raw bytes, parses the payload, resolves the canonical storefront
//     URL, and submits the batch to the configured instant provider
//     (IndexNow or Bing). Creation topics and any collection change also
//     trigger a Google Search Console sitemap resubmission; those failures
//     are advisory while instant-provider failures are fatal to the event.
//   - Heartbeat: internal/heartbeat.Scheduler fires once daily at a fixed
//     wall-clock time and resubmits the site root and sitemap to both
//     providers regardless of webhook volume. Failures are logged, never
//     propagated.
//   - Persistence & fanout: every pipeline run is journaled (Postgres via
//     pgx, or memory/noop), verified payloads are archived to a BlobStore
//     (GCS/local/memory/noop), and a compact Pub/Sub notification is
//     published when a topic is configured. All three rings are advisory.
//   - Configuration & plumbing: Viper populates config from env/files with
//     the SEARCHPING_ prefix; zap provides structured logging; Prometheus
//     metrics are exported via the telemetry middleware and /metrics.
//
// Operational notes:
//   - Concurrency model: each inbound event is an independent request task
//     with no shared mutable state beyond read-only configuration; provider
//     calls within one event run sequentially (instant before sitemap). The
//     heartbeat runs on its own goroutine and may overlap webhook traffic.
//   - No retry is performed anywhere: provider submitters return the first
//     failure so that a future caller-level retry wrapper can add policy
//     without changing the interface.
//   - Secrets: the webhook secret and provider keys never appear in logs;
//     an unset secret rejects every event with 401 rather than crashing.
//
// Quick checklist:
//   - Configure env vars: SEARCHPING_SITE_BASE_URL, SEARCHPING_WEBHOOK_SECRET,
//     SEARCHPING_INDEXNOW_KEY (or SEARCHPING_SUBMIT_PROVIDER=bing with
//     SEARCHPING_BING_API_KEY), SEARCHPING_GOOGLE_CREDENTIALS_FILE, and the
//     journal/archive/notify providers when persistence is required.
//   - Run locally: go run ./cmd/searchping -config config.yaml (or rely
//     solely on env overrides).
package main
