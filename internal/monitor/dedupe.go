package monitor

import "github.com/duyuru-hq/haber-sentry/internal/domain"

// MergeByTitle concatenates the given article lists in argument order and
// drops every article whose exact title was already seen. Survivors keep
// first-seen order.
func MergeByTitle(lists ...[]domain.Article) []domain.Article {
	total := 0
	for _, list := range lists {
		total += len(list)
	}

	seen := make(map[string]struct{}, total)
	out := make([]domain.Article, 0, total)
	for _, list := range lists {
		for _, art := range list {
			if _, dup := seen[art.Title]; dup {
				continue
			}
			seen[art.Title] = struct{}{}
			out = append(out, art)
		}
	}
	return out
}
