package monitor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/duyuru-hq/haber-sentry/internal/domain"
	"github.com/duyuru-hq/haber-sentry/pkg/notify"
)

// fakeFetcher serves canned article sets keyed by query ("" = top stories).
type fakeFetcher struct {
	sets map[string][]domain.Article
	errs map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, query, _ string) ([]domain.Article, error) {
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.sets[query], nil
}

// fakeEmail records every send and can fail selectively per recipient.
type fakeEmail struct {
	sent    []notify.Notification
	failFor map[string]bool
}

func (f *fakeEmail) Send(_ context.Context, n notify.Notification) error {
	if f.failFor[n.Recipient] {
		return errors.New("simulated send failure")
	}
	f.sent = append(f.sent, n)
	return nil
}

type fakeMirror struct {
	id     string
	events []notify.Event
	err    error
}

func (f *fakeMirror) ID() string   { return f.id }
func (f *fakeMirror) Type() string { return "queue" }

func (f *fakeMirror) Publish(_ context.Context, evt notify.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, evt)
	return nil
}

func testRoutes() *notify.Routes {
	return &notify.Routes{
		Digest: notify.DigestRoute{Recipient: "digest@example.com", Language: "en"},
		Keywords: []notify.Route{
			{Keyword: "ilkyar", Recipient: "special@example.com"},
		},
	}
}

func newTestRunner(t *testing.T, cfg Config) *Runner {
	t.Helper()
	if cfg.Now == nil {
		cfg.Now = func() time.Time {
			return time.Date(2026, time.August, 25, 9, 30, 0, 0, time.UTC)
		}
	}
	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return runner
}

func TestRunKeywordAlertRouting(t *testing.T) {
	fetcher := &fakeFetcher{sets: map[string][]domain.Article{
		"": articlesWithTitles("ilkyar rally draws crowd", "weather update"),
	}}
	email := &fakeEmail{}

	runner := newTestRunner(t, Config{
		Fetcher: fetcher,
		Email:   email,
		Routes:  testRoutes(),
	})

	report := runner.Run(context.Background())

	// One digest send plus exactly one alert send.
	if len(email.sent) != 2 {
		t.Fatalf("send count = %d; want 2", len(email.sent))
	}

	digest := email.sent[0]
	if digest.Recipient != "digest@example.com" {
		t.Errorf("digest recipient = %q", digest.Recipient)
	}

	alert := email.sent[1]
	if alert.Recipient != "special@example.com" {
		t.Errorf("alert recipient = %q; want special@example.com", alert.Recipient)
	}
	if !strings.Contains(alert.Subject, "'ilkyar' mentioned in 1 article(s)") {
		t.Errorf("alert subject = %q", alert.Subject)
	}
	if !strings.Contains(alert.HTML, "ilkyar rally draws crowd") {
		t.Error("alert body missing matching article")
	}
	if strings.Contains(alert.HTML, "weather update") {
		t.Error("alert body references a non-matching article")
	}

	if !report.DigestSent || report.AlertsSent != 1 || report.AlertsFailed != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestRunMergesKeywordFetchAndDedupes(t *testing.T) {
	fetcher := &fakeFetcher{sets: map[string][]domain.Article{
		"":       articlesWithTitles("ilkyar rally draws crowd", "weather update"),
		"ilkyar": articlesWithTitles("ilkyar rally draws crowd", "ilkyar school visit"),
	}}
	email := &fakeEmail{}

	runner := newTestRunner(t, Config{Fetcher: fetcher, Email: email, Routes: testRoutes()})
	runner.Run(context.Background())

	alert := email.sent[len(email.sent)-1]
	if !strings.Contains(alert.Subject, "2 article(s)") {
		t.Errorf("dedupe failed, subject = %q", alert.Subject)
	}
	if strings.Count(alert.HTML, "ilkyar rally draws crowd") != 1 {
		t.Error("duplicate title rendered twice")
	}
}

func TestRunDigestSendFailureDoesNotHaltKeywords(t *testing.T) {
	fetcher := &fakeFetcher{sets: map[string][]domain.Article{
		"": articlesWithTitles("ilkyar rally draws crowd"),
	}}
	email := &fakeEmail{failFor: map[string]bool{"digest@example.com": true}}

	runner := newTestRunner(t, Config{Fetcher: fetcher, Email: email, Routes: testRoutes()})
	report := runner.Run(context.Background())

	if report.DigestSent {
		t.Error("digest reported sent despite failure")
	}
	if report.AlertsSent != 1 {
		t.Fatalf("alerts sent = %d; want 1", report.AlertsSent)
	}
	if email.sent[0].Recipient != "special@example.com" {
		t.Errorf("alert recipient = %q", email.sent[0].Recipient)
	}
}

func TestRunDigestFetchFailureContinues(t *testing.T) {
	fetcher := &fakeFetcher{
		sets: map[string][]domain.Article{
			"ilkyar": articlesWithTitles("ilkyar school visit"),
		},
		errs: map[string]error{"": errors.New("feed down")},
	}
	email := &fakeEmail{}

	runner := newTestRunner(t, Config{Fetcher: fetcher, Email: email, Routes: testRoutes()})
	report := runner.Run(context.Background())

	if report.DigestArticles != 0 {
		t.Errorf("digest articles = %d; want 0", report.DigestArticles)
	}
	// Digest still goes out, carrying the no-items placeholder.
	if !report.DigestSent {
		t.Error("digest not sent after fetch failure")
	}
	// The keyword-specific fetch still produces an alert.
	if report.AlertsSent != 1 {
		t.Errorf("alerts sent = %d; want 1", report.AlertsSent)
	}
}

func TestRunAlertFailureContinuesToNextKeyword(t *testing.T) {
	routes := testRoutes()
	routes.Keywords = append(routes.Keywords, notify.Route{Keyword: "weather", Recipient: "other@example.com"})

	fetcher := &fakeFetcher{sets: map[string][]domain.Article{
		"": articlesWithTitles("ilkyar rally draws crowd", "weather update"),
	}}
	email := &fakeEmail{failFor: map[string]bool{"special@example.com": true}}

	runner := newTestRunner(t, Config{Fetcher: fetcher, Email: email, Routes: routes})
	report := runner.Run(context.Background())

	if report.AlertsFailed != 1 || report.AlertsSent != 1 {
		t.Fatalf("report = %+v", report)
	}
	last := email.sent[len(email.sent)-1]
	if last.Recipient != "other@example.com" {
		t.Errorf("second keyword recipient = %q", last.Recipient)
	}
}

func TestRunPublishesMirrorEvents(t *testing.T) {
	fetcher := &fakeFetcher{sets: map[string][]domain.Article{
		"": articlesWithTitles("ilkyar rally draws crowd", "weather update"),
	}}
	email := &fakeEmail{}
	mirror := &fakeMirror{id: "ops"}
	failing := &fakeMirror{id: "down", err: errors.New("queue unavailable")}

	runner := newTestRunner(t, Config{
		Fetcher: fetcher,
		Email:   email,
		Mirrors: []notify.Mirror{mirror, failing},
		Routes:  testRoutes(),
	})
	report := runner.Run(context.Background())

	if len(mirror.events) != 2 {
		t.Fatalf("mirror event count = %d; want 2 (digest + alert)", len(mirror.events))
	}
	if mirror.events[0].Kind != notify.KindDigest || mirror.events[1].Kind != notify.KindAlert {
		t.Errorf("event kinds = %q, %q", mirror.events[0].Kind, mirror.events[1].Kind)
	}
	if mirror.events[1].Keyword != "ilkyar" || mirror.events[1].Matches != 1 {
		t.Errorf("alert event = %+v", mirror.events[1])
	}
	// Mirror failures never affect the email path.
	if report.AlertsSent != 1 {
		t.Errorf("alerts sent = %d; want 1", report.AlertsSent)
	}
}

// fakeLedger remembers recorded titles in memory.
type fakeLedger struct {
	seen map[string]bool
}

func (f *fakeLedger) FilterNew(keyword string, articles []domain.Article) ([]domain.Article, error) {
	var out []domain.Article
	for _, art := range articles {
		if !f.seen[keyword+"|"+art.Title] {
			out = append(out, art)
		}
	}
	return out, nil
}

func (f *fakeLedger) Record(keyword string, articles []domain.Article) error {
	for _, art := range articles {
		f.seen[keyword+"|"+art.Title] = true
	}
	return nil
}

func TestRunLedgerSuppressesRepeatAlerts(t *testing.T) {
	fetcher := &fakeFetcher{sets: map[string][]domain.Article{
		"": articlesWithTitles("ilkyar rally draws crowd"),
	}}
	email := &fakeEmail{}
	led := &fakeLedger{seen: map[string]bool{}}

	runner := newTestRunner(t, Config{Fetcher: fetcher, Email: email, Routes: testRoutes(), Ledger: led})

	first := runner.Run(context.Background())
	if first.AlertsSent != 1 {
		t.Fatalf("first run alerts = %d; want 1", first.AlertsSent)
	}

	second := runner.Run(context.Background())
	if second.AlertsSent != 0 {
		t.Fatalf("second run alerts = %d; want 0", second.AlertsSent)
	}
}
