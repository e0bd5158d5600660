// Package history records saved screenshots in a local badger store.
package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.aimuz.me/flicker/internal/types"
)

// DefaultTTL is how long entries are kept when no retention is configured.
const DefaultTTL = 30 * 24 * time.Hour

const keyPrefix = "capture/"

// Store is a persistent, time-ordered list of capture results.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens (or creates) the store at dir. An empty dir keeps the store in
// memory.
func Open(dir string, ttl time.Duration) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{db: db, ttl: ttl}
	if dir != "" {
		n, err := s.ingest(spoolPath(dir))
		if err != nil {
			slog.Warn("import spooled history", "error", err)
		} else if n > 0 {
			slog.Info("imported spooled history", "count", n)
		}
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add records a capture result.
func (s *Store) Add(r types.Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key(r), data).WithTTL(s.ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("add history: %w", err)
	}
	return nil
}

// Recent returns up to n results, newest first. n <= 0 returns all.
func (s *Store) Recent(n int) ([]types.Result, error) {
	var out []types.Result
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the largest key <= seek.
		for it.Seek(append([]byte(keyPrefix), 0xff)); it.Valid(); it.Next() {
			if n > 0 && len(out) >= n {
				break
			}
			var r types.Result
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			})
			if err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return out, nil
}

// key orders entries by creation time.
func key(r types.Result) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", keyPrefix, r.CreatedAt.UnixNano(), r.Request.ID))
}
