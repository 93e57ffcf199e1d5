// haber-sentry runs one monitoring pass: mail the daily digest, then check
// every configured keyword and mail alerts for matches. Meant to be invoked
// by an external scheduler (cron); a run that completes always exits 0,
// even when individual fetches or sends failed. Only configuration and
// startup errors exit non-zero.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/duyuru-hq/haber-sentry/internal/config"
	"github.com/duyuru-hq/haber-sentry/internal/enrich"
	"github.com/duyuru-hq/haber-sentry/internal/ledger"
	"github.com/duyuru-hq/haber-sentry/internal/logger"
	"github.com/duyuru-hq/haber-sentry/internal/monitor"
	"github.com/duyuru-hq/haber-sentry/pkg/feed"
	"github.com/duyuru-hq/haber-sentry/pkg/httpclient"
	"github.com/duyuru-hq/haber-sentry/pkg/notify"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "haber-sentry:", err)
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience; in production the scheduler injects
	// the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := feed.NewGoogleNewsFetcher(httpclient.NewRestyClient(cfg.FetchTimeout))

	sender, err := notify.NewBrevoSender(cfg.Brevo, httpclient.NewRestyClient(cfg.SendTimeout), log)
	if err != nil {
		return fmt.Errorf("build email sender: %w", err)
	}

	mirrors, err := notify.BuildMirrors(ctx, notify.DefaultRegistry(), cfg.Routes.EnabledChannels(), log)
	if err != nil {
		return fmt.Errorf("build mirror channels: %w", err)
	}

	var enricher monitor.Enricher
	if cfg.EnrichArticles {
		enricher = enrich.NewScraper(httpclient.NewRestyClient(cfg.FetchTimeout), log)
	}

	var seenStore monitor.Ledger
	if cfg.LedgerPath != "" {
		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		defer func() { _ = store.Close() }()
		seenStore = store
	}

	runner, err := monitor.NewRunner(monitor.Config{
		Fetcher:  fetcher,
		Email:    sender,
		Mirrors:  mirrors,
		Routes:   cfg.Routes,
		Enricher: enricher,
		Ledger:   seenStore,
		Log:      log,
	})
	if err != nil {
		return err
	}

	runner.Run(ctx)
	return nil
}
