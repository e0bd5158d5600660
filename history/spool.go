package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.aimuz.me/flicker/internal/types"
)

// Spool queues results in a JSON-lines file next to the store directory.
// It is used while another process holds the store's directory lock; the
// queued results are imported the next time the store is opened.
type Spool struct {
	path string
}

// NewSpool returns the spool for the store at dir.
func NewSpool(dir string) *Spool {
	return &Spool{path: spoolPath(dir)}
}

func spoolPath(dir string) string {
	return filepath.Clean(dir) + ".pending"
}

// Add appends r to the spool file.
func (s *Spool) Add(r types.Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create spool dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open spool: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("write spool: %w", err)
	}
	return f.Close()
}

// ingest moves spooled results into the store. The spool is renamed first
// so writers that arrive meanwhile start a fresh file. A claimed file left
// by an interrupted import is finished before a new one is claimed.
func (s *Store) ingest(path string) (int, error) {
	claimed := path + ".ingest"
	if _, err := os.Stat(claimed); errors.Is(err, os.ErrNotExist) {
		if err := os.Rename(path, claimed); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return 0, nil
			}
			return 0, fmt.Errorf("claim spool: %w", err)
		}
	}

	f, err := os.Open(claimed)
	if err != nil {
		return 0, fmt.Errorf("open spool: %w", err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r types.Result
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue // torn write
		}
		if err := s.Add(r); err != nil {
			return n, err
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read spool: %w", err)
	}
	return n, os.Remove(claimed)
}
