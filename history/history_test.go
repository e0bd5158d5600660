package history

import (
	"fmt"
	"testing"
	"time"

	"go.aimuz.me/flicker/internal/types"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", time.Hour)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecent_NewestFirst(t *testing.T) {
	s := openMemory(t)
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		r := types.Result{
			Request:   types.Request{ID: fmt.Sprintf("id-%d", i), Mode: types.ModeFullScreen},
			Path:      fmt.Sprintf("/tmp/full_screen_%d.png", i),
			Backend:   "toolkit",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Add(r); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	got, err := s.Recent(3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	for i, want := range []string{"id-4", "id-3", "id-2"} {
		if got[i].Request.ID != want {
			t.Errorf("result %d = %s, want %s", i, got[i].Request.ID, want)
		}
	}
	if got[0].Path != "/tmp/full_screen_4.png" || got[0].Request.Mode != types.ModeFullScreen {
		t.Errorf("result round trip lost fields: %+v", got[0])
	}

	all, err := s.Recent(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("Recent(0) returned %d, want 5", len(all))
	}
}

func TestRecent_Empty(t *testing.T) {
	s := openMemory(t)

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d results from empty store", len(got))
	}
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want default", s.ttl)
	}
	r := types.Result{Request: types.Request{ID: "a"}, Path: "/tmp/a.png", CreatedAt: time.Now()}
	if err := s.Add(r); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Recent(1)
	if err != nil || len(got) != 1 || got[0].Path != "/tmp/a.png" {
		t.Errorf("Recent() = %+v, %v", got, err)
	}
}
