// Package ledger is an optional cross-run store of already-alerted article
// titles. Without it the monitor re-alerts the same article on every run,
// which matches the historical behavior; pointing LEDGER_PATH at a file
// makes alerts one-shot per keyword+title.
package ledger

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic key generation
	"encoding/hex"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/duyuru-hq/haber-sentry/internal/domain"
)

// Store persists alerted titles in a bbolt file, one bucket per keyword.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the ledger file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying file.
func (s *Store) Close() error { return s.db.Close() }

// FilterNew returns the articles whose titles have not been alerted for the
// keyword yet, preserving input order.
func (s *Store) FilterNew(keyword string, articles []domain.Article) ([]domain.Article, error) {
	if len(articles) == 0 {
		return nil, nil
	}

	out := make([]domain.Article, 0, len(articles))
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(keyword))
		for _, art := range articles {
			if bucket == nil || bucket.Get(titleKey(art.Title)) == nil {
				out = append(out, art)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return out, nil
}

// Record marks the articles as alerted for the keyword.
func (s *Store) Record(keyword string, articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(keyword))
		if err != nil {
			return err
		}
		stamp := []byte(time.Now().UTC().Format(time.RFC3339))
		for _, art := range articles {
			if err := bucket.Put(titleKey(art.Title), stamp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

func titleKey(title string) []byte {
	sum := sha1.Sum([]byte(title))
	return []byte(hex.EncodeToString(sum[:]))
}
