package monitor

import (
	"strings"

	"github.com/duyuru-hq/haber-sentry/internal/domain"
)

// MatchKeyword returns the articles whose title contains the keyword,
// case-insensitively. Plain substring test: no tokenization and no word
// boundaries, so "ilkyar" also matches inside "ilkyarish".
func MatchKeyword(articles []domain.Article, keyword string) []domain.Article {
	needle := strings.ToLower(keyword)

	var matches []domain.Article
	for _, art := range articles {
		if strings.Contains(strings.ToLower(art.Title), needle) {
			matches = append(matches, art)
		}
	}
	return matches
}
