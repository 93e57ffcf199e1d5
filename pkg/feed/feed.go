package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/duyuru-hq/haber-sentry/internal/domain"
	"github.com/duyuru-hq/haber-sentry/pkg/httpclient"
)

const (
	defaultLanguage = "en"
	fetchTimeout    = 30 * time.Second

	topStoriesURL = "https://news.google.com/rss"
	searchURL     = "https://news.google.com/rss/search"
)

// Fetcher retrieves articles from a news feed. An empty query selects the
// top-stories feed; a non-empty query selects the search feed for that term.
type Fetcher interface {
	Fetch(ctx context.Context, query, language string) ([]domain.Article, error)
}

// googleNewsFetcher implements Fetcher against the Google News RSS endpoints.
type googleNewsFetcher struct {
	client httpclient.Client
}

// NewGoogleNewsFetcher builds a Fetcher for the Google News RSS feeds.
func NewGoogleNewsFetcher(client httpclient.Client) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &googleNewsFetcher{client: client}
}

// DefaultHTTPClient returns a tuned http client for feed fetches.
func DefaultHTTPClient() httpclient.Client { return httpclient.NewRestyClient(fetchTimeout) }

// FeedURL builds the feed URL for the given query and language. The query is
// percent-encoded; the language rides along as-is.
func FeedURL(query, language string) string {
	if strings.TrimSpace(language) == "" {
		language = defaultLanguage
	}
	if strings.TrimSpace(query) != "" {
		return fmt.Sprintf("%s?q=%s&hl=%s", searchURL, url.QueryEscape(query), language)
	}
	return fmt.Sprintf("%s?hl=%s", topStoriesURL, language)
}

// Fetch retrieves the feed and extracts articles from its item blocks.
// Transport errors and non-2xx statuses come back as errors; deciding what
// a failed fetch means is the caller's business.
func (f *googleNewsFetcher) Fetch(ctx context.Context, query, language string) ([]domain.Article, error) {
	feedURL := FeedURL(query, language)

	resp, err := f.client.Get(ctx, feedURL, map[string]string{
		"User-Agent": "haber-sentry/1.0",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("feed returned status %d body: %s", resp.StatusCode(), responseSnippet(body))
	}

	return ExtractArticles(body), nil
}
