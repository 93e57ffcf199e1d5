// Package monitor sequences a single monitoring run: fetch the top-stories
// feed, mail the digest, then per configured keyword fetch a search feed,
// merge, dedupe, match and mail alerts. Leaf components report failures as
// errors; this package alone decides what a failure means for the run
// (nothing is fatal once the run has started).
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/duyuru-hq/haber-sentry/internal/domain"
	"github.com/duyuru-hq/haber-sentry/internal/logger"
	"github.com/duyuru-hq/haber-sentry/internal/render"
	"github.com/duyuru-hq/haber-sentry/pkg/feed"
	"github.com/duyuru-hq/haber-sentry/pkg/notify"
)

// Enricher fills in article metadata before the digest is rendered.
type Enricher interface {
	Enrich(ctx context.Context, articles []domain.Article) []domain.Article
}

// Ledger suppresses alerts for titles that already alerted on earlier runs.
type Ledger interface {
	FilterNew(keyword string, articles []domain.Article) ([]domain.Article, error)
	Record(keyword string, articles []domain.Article) error
}

// Config wires a Runner. Fetcher, Email and Routes are required; Enricher
// and Ledger are optional features.
type Config struct {
	Fetcher  feed.Fetcher
	Email    notify.EmailSender
	Mirrors  []notify.Mirror
	Routes   *notify.Routes
	Enricher Enricher
	Ledger   Ledger
	Log      logger.Logger
	Now      func() time.Time
}

// Runner executes monitoring runs.
type Runner struct {
	fetcher  feed.Fetcher
	email    notify.EmailSender
	mirrors  []notify.Mirror
	routes   *notify.Routes
	enricher Enricher
	ledger   Ledger
	log      logger.Logger
	now      func() time.Time
}

// NewRunner validates the config and builds a Runner.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("monitor: fetcher is required")
	}
	if cfg.Email == nil {
		return nil, errors.New("monitor: email sender is required")
	}
	if cfg.Routes == nil {
		return nil, errors.New("monitor: routes are required")
	}
	if cfg.Log == nil {
		cfg.Log = logger.NopLogger{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Runner{
		fetcher:  cfg.Fetcher,
		email:    cfg.Email,
		mirrors:  cfg.Mirrors,
		routes:   cfg.Routes,
		enricher: cfg.Enricher,
		ledger:   cfg.Ledger,
		log:      cfg.Log,
		now:      cfg.Now,
	}, nil
}

// Run executes the digest-then-keyword-monitor sequence once and reports
// what happened. Fetch and send failures are logged and absorbed; they
// never abort the remainder of the run.
func (r *Runner) Run(ctx context.Context) domain.RunReport {
	report := domain.RunReport{}

	articles := r.runDigest(ctx, &report)
	r.runKeywordMonitor(ctx, articles, &report)

	r.log.InfoObj("monitoring run complete", "run_done", map[string]any{
		"digest_articles": report.DigestArticles,
		"digest_sent":     report.DigestSent,
		"keywords":        report.KeywordsTried,
		"alerts_sent":     report.AlertsSent,
		"alerts_failed":   report.AlertsFailed,
	})
	return report
}

// runDigest fetches the top stories, mails the digest and returns the
// fetched set for keyword processing to reuse.
func (r *Runner) runDigest(ctx context.Context, report *domain.RunReport) []domain.Article {
	articles, err := r.fetcher.Fetch(ctx, "", r.routes.Digest.Language)
	if err != nil {
		r.log.ErrorObj("digest feed fetch failed", "digest_fetch_error", map[string]any{
			"error": err.Error(),
		})
		articles = nil
	}
	report.DigestArticles = len(articles)
	r.log.InfoObj("digest feed fetched", "digest_fetch", map[string]any{
		"count": len(articles),
	})

	if r.enricher != nil && len(articles) > 0 {
		articles = r.enricher.Enrich(ctx, articles)
	}

	now := r.now()
	html := render.Digest(articles, now)
	subject := fmt.Sprintf("Daily News Digest - %s", now.Format("January 2, 2006"))

	if err := r.email.Send(ctx, notify.Notification{
		Recipient: r.routes.Digest.Recipient,
		Subject:   subject,
		HTML:      html,
	}); err != nil {
		r.log.ErrorObj("digest email send failed", "digest_send_error", map[string]any{
			"recipient": r.routes.Digest.Recipient,
			"error":     err.Error(),
		})
	} else {
		report.DigestSent = true
		r.log.InfoObj("digest email sent", "digest_send", map[string]any{
			"recipient": r.routes.Digest.Recipient,
		})
	}

	r.publishEvent(ctx, notify.Event{
		Kind:        notify.KindDigest,
		Matches:     len(articles),
		GeneratedAt: now,
		Articles:    toEventArticles(articles),
	})

	return articles
}

// runKeywordMonitor processes every keyword route against the digest set
// merged with a fresh keyword-specific search fetch.
func (r *Runner) runKeywordMonitor(ctx context.Context, digestSet []domain.Article, report *domain.RunReport) {
	for _, route := range r.routes.Keywords {
		report.KeywordsTried++
		r.processKeyword(ctx, route, digestSet, report)
	}
}

func (r *Runner) processKeyword(ctx context.Context, route notify.Route, digestSet []domain.Article, report *domain.RunReport) {
	language := route.Language
	if language == "" {
		language = r.routes.Digest.Language
	}

	keywordSet, err := r.fetcher.Fetch(ctx, route.Keyword, language)
	if err != nil {
		r.log.ErrorObj("keyword feed fetch failed", "keyword_fetch_error", map[string]any{
			"keyword": route.Keyword,
			"error":   err.Error(),
		})
		keywordSet = nil
	}

	merged := MergeByTitle(digestSet, keywordSet)
	matches := MatchKeyword(merged, route.Keyword)

	if r.ledger != nil && len(matches) > 0 {
		fresh, err := r.ledger.FilterNew(route.Keyword, matches)
		if err != nil {
			r.log.WarnObj("ledger filter failed, alerting unfiltered", "ledger_error", map[string]any{
				"keyword": route.Keyword,
				"error":   err.Error(),
			})
		} else {
			matches = fresh
		}
	}

	if len(matches) == 0 {
		r.log.InfoObj("no news for keyword", "keyword_no_match", map[string]any{
			"keyword": route.Keyword,
		})
		return
	}

	now := r.now()
	html := render.Alert(route.Keyword, matches, now)
	subject := fmt.Sprintf("News Alert: '%s' mentioned in %d article(s)", route.Keyword, len(matches))

	if err := r.email.Send(ctx, notify.Notification{
		Recipient: route.Recipient,
		Subject:   subject,
		HTML:      html,
	}); err != nil {
		report.AlertsFailed++
		r.log.ErrorObj("alert email send failed", "alert_send_error", map[string]any{
			"keyword":   route.Keyword,
			"recipient": route.Recipient,
			"error":     err.Error(),
		})
		return
	}

	report.AlertsSent++
	r.log.InfoObj("alert email sent", "alert_send", map[string]any{
		"keyword":   route.Keyword,
		"recipient": route.Recipient,
		"matches":   len(matches),
	})

	if r.ledger != nil {
		if err := r.ledger.Record(route.Keyword, matches); err != nil {
			r.log.WarnObj("ledger record failed", "ledger_error", map[string]any{
				"keyword": route.Keyword,
				"error":   err.Error(),
			})
		}
	}

	r.publishEvent(ctx, notify.Event{
		Kind:        notify.KindAlert,
		Keyword:     route.Keyword,
		Matches:     len(matches),
		GeneratedAt: now,
		Articles:    toEventArticles(matches),
	})
}

// publishEvent fans the event out to every mirror channel. Mirror failures
// are logged only; email delivery already happened.
func (r *Runner) publishEvent(ctx context.Context, evt notify.Event) {
	for _, mirror := range r.mirrors {
		if err := mirror.Publish(ctx, evt); err != nil {
			r.log.WarnObj("mirror publish failed", "mirror_error", map[string]any{
				"mirror_id": mirror.ID(),
				"kind":      evt.Kind,
				"error":     err.Error(),
			})
		}
	}
}

func toEventArticles(articles []domain.Article) []notify.EventArticle {
	out := make([]notify.EventArticle, 0, len(articles))
	for _, art := range articles {
		out = append(out, notify.EventArticle{
			Title:   art.Title,
			Link:    art.Link,
			PubDate: art.PubDate,
			Source:  art.Source,
		})
	}
	return out
}
