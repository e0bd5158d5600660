// Package app provides the tray service that ties hotkeys, the capture
// dispatcher and post-processing together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v3/pkg/application"

	"go.aimuz.me/flicker/config"
	"go.aimuz.me/flicker/history"
	"go.aimuz.me/flicker/hotkey"
	"go.aimuz.me/flicker/internal/types"
	"go.aimuz.me/flicker/overlay"
	"go.aimuz.me/flicker/screenshot"
)

// Service owns the capture worker and the hotkey listener.
type Service struct {
	cfg        *config.Config
	dispatcher *screenshot.Dispatcher
	pipeline   *Pipeline
	history    *history.Store
	hotkey     *hotkey.HotkeyManager

	queue    chan types.Request
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown sync.Once

	// UI references - set via Init
	app *application.App

	version string
}

// New creates a Service for cfg. Call Init() after the Wails app is created.
func New(cfg *config.Config, version string) (*Service, error) {
	d, err := NewDispatcher(cfg)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:        cfg,
		dispatcher: d,
		queue:      make(chan types.Request),
		version:    version,
	}

	var rec Recorder
	if cfg.History.Enabled {
		store, err := OpenHistory(cfg)
		if err != nil {
			slog.Warn("open history", "error", err)
		} else {
			s.history = store
			rec = store
		}
	}
	s.pipeline = NewPipeline(d, rec, cfg.Post)
	return s, nil
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init attaches the Wails app, installs the selection overlay and starts the
// capture worker and hotkey listener.
func (s *Service) Init(app *application.App, server *overlay.Server) {
	s.app = app
	s.dispatcher.SetSelector(overlay.NewSelector(app, server, s.dispatcher.Monitors))

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.work(ctx)
	}()

	s.setupHotkey()
}

// Shutdown stops the hotkey listener and the worker, then closes history.
// It is safe to call more than once.
func (s *Service) Shutdown() {
	s.shutdown.Do(func() {
		if s.hotkey != nil {
			s.hotkey.Stop()
		}
		if s.cancel != nil {
			s.cancel()
			s.wg.Wait()
		}
		if s.history != nil {
			if err := s.history.Close(); err != nil {
				slog.Error("close history", "error", err)
			}
		}
	})
}

// Trigger hands req to the capture worker. It returns false, and drops the
// request, when a capture is already running.
func (s *Service) Trigger(req types.Request) bool {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	select {
	case s.queue <- req:
		return true
	default:
		slog.Info("capture in progress, trigger dropped", "mode", req.Mode.String())
		return false
	}
}

func (s *Service) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.queue:
			s.serve(ctx, req)
		}
	}
}

// serve is the request boundary: nothing past it may take the service down.
func (s *Service) serve(ctx context.Context, req types.Request) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("capture panicked", "id", req.ID, "panic", r)
		}
	}()

	res, err := s.pipeline.Process(ctx, req)
	switch {
	case err == nil:
		s.emit(EventCaptureSaved, res)
	case errors.Is(err, screenshot.ErrSelectionCancelled):
	default:
		s.emit(EventCaptureFailed, err.Error())
	}
}

func (s *Service) setupHotkey() {
	bindings, err := Bindings(s.cfg.Hotkeys)
	if err != nil {
		slog.Error("hotkey bindings", "error", err)
		return
	}

	m, err := hotkey.NewHotkeyManager(bindings, func(b hotkey.Binding) error {
		s.Trigger(types.Request{Mode: b.Mode, Monitor: b.Monitor})
		return nil
	})
	if err != nil {
		slog.Error("create hotkey manager", "error", err)
		return
	}
	s.hotkey = m

	s.hotkey.SetStatusCallback(func(granted bool) {
		s.emit(EventAccessibilityPerm, granted)
		if granted {
			slog.Info("accessibility permission granted")
		} else {
			slog.Warn("accessibility permission denied")
		}
	})

	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
	}
}

// emit is a safe wrapper around app.Event.Emit
func (s *Service) emit(name string, data any) {
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

// Bindings converts configured hotkeys into listener bindings.
func Bindings(hotkeys []config.Hotkey) ([]hotkey.Binding, error) {
	out := make([]hotkey.Binding, 0, len(hotkeys))
	for _, h := range hotkeys {
		chord, err := hotkey.ParseChord(h.Chord)
		if err != nil {
			return nil, fmt.Errorf("hotkey %q: %w", h.Chord, err)
		}
		mode, err := types.ParseMode(h.Action)
		if err != nil {
			return nil, fmt.Errorf("hotkey %q: %w", h.Chord, err)
		}
		out = append(out, hotkey.Binding{Chord: chord, Mode: mode, Monitor: h.Monitor})
	}
	return out, nil
}
