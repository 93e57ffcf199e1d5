package feed

import (
	"regexp"
	"strings"

	"github.com/duyuru-hq/haber-sentry/internal/domain"
)

// maxItems caps how many item blocks are read per feed. Feed order is
// trusted as recency order, so the cap keeps the newest entries.
const maxItems = 20

const unknownSource = "Unknown"

var (
	itemRe    = regexp.MustCompile(`(?s)<item>(.*?)</item>`)
	titleRe   = regexp.MustCompile(`(?s)<title>(.*?)</title>`)
	linkRe    = regexp.MustCompile(`(?s)<link>(.*?)</link>`)
	pubDateRe = regexp.MustCompile(`(?s)<pubDate>(.*?)</pubDate>`)
	sourceRe  = regexp.MustCompile(`(?s)<source[^>]*>(.*?)</source>`)
	tagRe     = regexp.MustCompile(`<[^>]+>`)
)

// entityPairs is the fixed set of entities CleanText unescapes. Deliberately
// not a full entity decoder: feed titles only ever carry these, and a full
// decode would also rewrite text the digest is expected to pass through.
var entityPairs = []struct{ from, to string }{
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
}

// ExtractArticles scans raw feed markup for item blocks and builds articles
// from them, in document order. A block missing a title or a link is
// dropped; pubDate and source are optional.
func ExtractArticles(raw []byte) []domain.Article {
	blocks := itemRe.FindAllSubmatch(raw, -1)
	if len(blocks) > maxItems {
		blocks = blocks[:maxItems]
	}

	articles := make([]domain.Article, 0, len(blocks))
	for _, block := range blocks {
		if art, ok := extractArticle(block[1]); ok {
			articles = append(articles, art)
		}
	}
	return articles
}

func extractArticle(block []byte) (domain.Article, bool) {
	title := firstMatch(titleRe, block)
	link := firstMatch(linkRe, block)
	if title == "" || link == "" {
		return domain.Article{}, false
	}

	source := firstMatch(sourceRe, block)
	if source == "" {
		source = unknownSource
	}

	return domain.Article{
		Title:   CleanText(title),
		Link:    strings.TrimSpace(link),
		PubDate: strings.TrimSpace(firstMatch(pubDateRe, block)),
		Source:  source,
	}, true
}

func firstMatch(re *regexp.Regexp, block []byte) string {
	m := re.FindSubmatch(block)
	if m == nil {
		return ""
	}
	return string(m[1])
}

// CleanText strips embedded markup tags, unescapes the fixed entity set and
// trims surrounding whitespace. Applying it twice is a no-op.
func CleanText(text string) string {
	text = tagRe.ReplaceAllString(text, "")
	for _, e := range entityPairs {
		text = strings.ReplaceAll(text, e.from, e.to)
	}
	return strings.TrimSpace(text)
}

// responseSnippet returns a truncated snippet of the response body for logging.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
