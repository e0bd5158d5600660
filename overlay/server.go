package overlay

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"go.aimuz.me/flicker/internal/types"
)

// Paths served to the overlay webview.
const (
	PagePath      = "/overlay"
	SelectionPath = "/overlay/selection"
)

// ErrBusy is returned when an overlay is already open.
var ErrBusy = errors.New("selection overlay already open")

// Server serves the overlay page and receives the selected rectangle. It is
// used as the Wails asset handler.
type Server struct {
	mu      sync.Mutex
	pending chan types.Selection
}

// NewServer creates an idle overlay server.
func NewServer() *Server {
	return &Server{}
}

// expect registers a pending selection. Only one can be pending at a time.
func (s *Server) expect() (<-chan types.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return nil, ErrBusy
	}
	s.pending = make(chan types.Selection, 1)
	return s.pending, nil
}

func (s *Server) done() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

func (s *Server) deliver(sel types.Selection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return false
	}
	select {
	case s.pending <- sel:
		return true
	default:
		return false
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == PagePath && r.Method == http.MethodGet:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(page))

	case r.URL.Path == SelectionPath && r.Method == http.MethodPost:
		var sel types.Selection
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&sel); err != nil {
			http.Error(w, "bad selection", http.StatusBadRequest)
			return
		}
		if !s.deliver(sel) {
			http.Error(w, "no selection pending", http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.NotFound(w, r)
	}
}
