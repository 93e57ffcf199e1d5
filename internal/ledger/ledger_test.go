package ledger

import (
	"path/filepath"
	"testing"

	"github.com/duyuru-hq/haber-sentry/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestFilterNewAndRecord(t *testing.T) {
	store := openTestStore(t)

	articles := []domain.Article{
		{Title: "ilkyar rally draws crowd"},
		{Title: "ilkyar school visit"},
	}

	fresh, err := store.FilterNew("ilkyar", articles)
	if err != nil {
		t.Fatalf("FilterNew: %v", err)
	}
	if len(fresh) != 2 {
		t.Fatalf("fresh count = %d; want 2", len(fresh))
	}

	if err := store.Record("ilkyar", articles[:1]); err != nil {
		t.Fatalf("Record: %v", err)
	}

	fresh, err = store.FilterNew("ilkyar", articles)
	if err != nil {
		t.Fatalf("FilterNew: %v", err)
	}
	if len(fresh) != 1 || fresh[0].Title != "ilkyar school visit" {
		t.Fatalf("fresh = %+v", fresh)
	}
}

func TestKeywordsAreIndependent(t *testing.T) {
	store := openTestStore(t)

	articles := []domain.Article{{Title: "shared headline"}}
	if err := store.Record("first", articles); err != nil {
		t.Fatalf("Record: %v", err)
	}

	fresh, err := store.FilterNew("second", articles)
	if err != nil {
		t.Fatalf("FilterNew: %v", err)
	}
	if len(fresh) != 1 {
		t.Fatalf("fresh count = %d; want 1", len(fresh))
	}
}

func TestEmptyInput(t *testing.T) {
	store := openTestStore(t)

	if err := store.Record("kw", nil); err != nil {
		t.Fatalf("Record(nil): %v", err)
	}
	fresh, err := store.FilterNew("kw", nil)
	if err != nil {
		t.Fatalf("FilterNew(nil): %v", err)
	}
	if len(fresh) != 0 {
		t.Fatalf("fresh = %+v", fresh)
	}
}
