package monitor

import (
	"strings"
	"testing"

	"github.com/duyuru-hq/haber-sentry/internal/domain"
)

func articlesWithTitles(titles ...string) []domain.Article {
	out := make([]domain.Article, len(titles))
	for i, title := range titles {
		slug := strings.ReplaceAll(strings.ToLower(title), " ", "-")
		out[i] = domain.Article{Title: title, Link: "https://example.com/" + slug}
	}
	return out
}

func titlesOf(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, art := range articles {
		out[i] = art.Title
	}
	return out
}

func TestMergeByTitle(t *testing.T) {
	cases := []struct {
		name  string
		lists [][]domain.Article
		want  []string
	}{
		{
			name:  "duplicates within one list",
			lists: [][]domain.Article{articlesWithTitles("A", "B", "A", "C")},
			want:  []string{"A", "B", "C"},
		},
		{
			name: "duplicates across lists keep first occurrence",
			lists: [][]domain.Article{
				articlesWithTitles("A", "B"),
				articlesWithTitles("B", "C", "A"),
			},
			want: []string{"A", "B", "C"},
		},
		{
			name:  "no input",
			lists: nil,
			want:  []string{},
		},
		{
			name: "case matters for identity",
			lists: [][]domain.Article{
				articlesWithTitles("abc", "ABC"),
			},
			want: []string{"abc", "ABC"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := titlesOf(MergeByTitle(c.lists...))
			if len(got) != len(c.want) {
				t.Fatalf("got %v; want %v", got, c.want)
			}
			for i := range c.want {
				if got[i] != c.want[i] {
					t.Fatalf("got %v; want %v", got, c.want)
				}
			}
		})
	}
}
