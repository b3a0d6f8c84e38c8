// Package main wires together the searchping service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/quaydigital/searchping/internal/api"
	"github.com/quaydigital/searchping/internal/archive"
	archivegcs "github.com/quaydigital/searchping/internal/archive/gcs"
	archivelocal "github.com/quaydigital/searchping/internal/archive/local"
	archivememory "github.com/quaydigital/searchping/internal/archive/memory"
	"github.com/quaydigital/searchping/internal/clock/system"
	"github.com/quaydigital/searchping/internal/config"
	"github.com/quaydigital/searchping/internal/heartbeat"
	"github.com/quaydigital/searchping/internal/id/uuid"
	"github.com/quaydigital/searchping/internal/indexing"
	"github.com/quaydigital/searchping/internal/journal"
	journalmemory "github.com/quaydigital/searchping/internal/journal/memory"
	journalpostgres "github.com/quaydigital/searchping/internal/journal/postgres"
	"github.com/quaydigital/searchping/internal/logging"
	"github.com/quaydigital/searchping/internal/notify"
	notifymemory "github.com/quaydigital/searchping/internal/notify/memory"
	notifypubsub "github.com/quaydigital/searchping/internal/notify/pubsub"
	"github.com/quaydigital/searchping/internal/pipeline"
	"github.com/quaydigital/searchping/internal/submit"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Webhook.Secret == "" {
		logger.Warn("webhook secret is not configured; every inbound event will be rejected")
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}
	resolver := indexing.NewResolver(cfg.Site.BaseURL)
	clock := system.New()
	idGen := uuid.NewGenerator()

	var primary indexing.Submitter
	switch cfg.Submit.Provider {
	case "bing":
		primary = submit.NewBing(httpClient, submit.BingConfig{
			Endpoint: cfg.Bing.Endpoint,
			SiteURL:  resolver.Root(),
			APIKey:   cfg.Bing.APIKey,
			Strict:   cfg.Submit.Strict,
		}, logger.Named("bing"))
	default:
		primary = submit.NewIndexNow(httpClient, submit.IndexNowConfig{
			Endpoint:    cfg.IndexNow.Endpoint,
			Host:        resolver.Host(),
			Key:         cfg.IndexNow.Key,
			KeyLocation: cfg.IndexNowKeyLocation(),
			Strict:      cfg.Submit.Strict,
		}, logger.Named("indexnow"))
		if loc := cfg.IndexNowKeyLocation(); loc != "" {
			go submit.VerifyKeyLocation(ctx, httpClient, loc, cfg.IndexNow.Key, logger.Named("indexnow"))
		}
	}

	var credentials []byte
	switch {
	case cfg.Google.CredentialsJSON != "":
		credentials = []byte(cfg.Google.CredentialsJSON)
	case cfg.Google.CredentialsFile != "":
		credentials, err = os.ReadFile(cfg.Google.CredentialsFile)
		if err != nil {
			logger.Fatal("read google credentials file failed", zap.Error(err))
		}
	}
	sitemap, err := submit.NewGoogleSitemap(ctx, credentials, submit.GoogleSitemapConfig{
		SiteURL:    cfg.GoogleSiteURL(),
		SitemapURL: cfg.SitemapURL(),
		Strict:     cfg.Submit.Strict,
	}, logger.Named("google"))
	if err != nil {
		logger.Fatal("google sitemap submitter init failed", zap.Error(err))
	}

	var jour journal.Journal = journal.Noop{}
	switch cfg.Journal.Provider {
	case "memory":
		jour = journalmemory.NewStore()
	case "postgres":
		store, err := journalpostgres.NewStore(ctx, journalpostgres.StoreConfig{
			DSN:   cfg.Journal.DSN,
			Table: cfg.Journal.Table,
		})
		if err != nil {
			logger.Fatal("journal init failed", zap.Error(err))
		}
		defer store.Close()
		jour = store
	}

	var arch archive.Store = archive.Noop{}
	switch cfg.Archive.Provider {
	case "memory":
		arch = archivememory.NewStore()
	case "local":
		store, err := archivelocal.New(archivelocal.Config{BaseDir: cfg.Archive.LocalDir})
		if err != nil {
			logger.Fatal("archive init failed", zap.Error(err))
		}
		arch = store
	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			logger.Fatal("gcs client init failed", zap.Error(err))
		}
		defer client.Close() //nolint:errcheck // best-effort close
		store, err := archivegcs.New(client, archivegcs.Config{Bucket: cfg.Archive.GCSBucket})
		if err != nil {
			logger.Fatal("archive init failed", zap.Error(err))
		}
		arch = store
	}

	var notifier notify.Notifier = notify.Noop{}
	switch cfg.Notify.Provider {
	case "memory":
		notifier = notifymemory.New()
	case "pubsub":
		client, err := pubsub.NewClient(ctx, cfg.Notify.ProjectID)
		if err != nil {
			logger.Fatal("pubsub client init failed", zap.Error(err))
		}
		defer client.Close() //nolint:errcheck // best-effort close
		notifier = notifypubsub.New(client.Topic(cfg.Notify.Topic))
	}

	pl := pipeline.New(
		resolver,
		primary,
		sitemap,
		jour,
		arch,
		notifier,
		clock,
		idGen,
		pipeline.Config{Secret: cfg.Webhook.Secret, ArchivePrefix: cfg.Archive.Prefix},
		logger.Named("pipeline"),
	)

	if cfg.Heartbeat.Enabled {
		hour, minute, err := heartbeat.ParseAt(cfg.Heartbeat.At)
		if err != nil {
			logger.Fatal("heartbeat schedule invalid", zap.Error(err))
		}
		loc, err := time.LoadLocation(cfg.Heartbeat.Timezone)
		if err != nil {
			logger.Fatal("heartbeat timezone invalid", zap.Error(err))
		}
		hb := heartbeat.New(
			primary,
			sitemap,
			resolver.HeartbeatBatch(),
			jour,
			clock,
			idGen,
			heartbeat.Config{Hour: hour, Minute: minute, Location: loc},
			logger.Named("heartbeat"),
		)
		go hb.Run(ctx)
	}

	apiServer := api.NewServer(pl, logger.Named("api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
