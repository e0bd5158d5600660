package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"go.aimuz.me/flicker/clipboard"
	"go.aimuz.me/flicker/config"
	"go.aimuz.me/flicker/history"
	"go.aimuz.me/flicker/internal/types"
	"go.aimuz.me/flicker/notify"
	"go.aimuz.me/flicker/screenshot"
)

// Capturer serves capture requests. *screenshot.Dispatcher implements it.
type Capturer interface {
	Capture(ctx context.Context, req types.Request) (types.Result, error)
}

// Recorder stores successful captures. *history.Store implements it.
type Recorder interface {
	Add(r types.Result) error
}

// Pipeline runs a capture and the post-processing steps that follow it.
// Zero value is not useful; create via NewPipeline.
type Pipeline struct {
	capturer Capturer
	history  Recorder
	post     config.PostConfig

	open   func(path string) error
	copy   func(path string) error
	saved  func(path string) error
	failed func(err error) error
}

// NewPipeline creates a Pipeline. history may be nil.
func NewPipeline(c Capturer, history Recorder, post config.PostConfig) *Pipeline {
	return &Pipeline{
		capturer: c,
		history:  history,
		post:     post,
		open:     notify.Open,
		copy:     clipboard.CopyImage,
		saved:    notify.Saved,
		failed:   notify.Failed,
	}
}

// Process captures req and, on success, records and hands off the file.
// Post-processing failures are logged and never returned. A cancelled
// selection returns screenshot.ErrSelectionCancelled.
func (p *Pipeline) Process(ctx context.Context, req types.Request) (types.Result, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	log := slog.With("id", req.ID, "mode", req.Mode.String())

	start := time.Now()
	res, err := p.capturer.Capture(ctx, req)
	if err != nil {
		if screenshot.IsCancelled(err) {
			log.Info("selection cancelled")
			return types.Result{}, err
		}
		log.Error("capture", "error", err)
		if p.post.Notify {
			if nerr := p.failed(err); nerr != nil {
				log.Warn("notify failure", "error", nerr)
			}
		}
		return types.Result{}, fmt.Errorf("capture %s: %w", req.Mode, err)
	}
	log.Info("screenshot saved", "path", res.Path, "backend", res.Backend, "took", time.Since(start))

	if p.history != nil {
		if err := p.history.Add(res); err != nil {
			log.Warn("record history", "error", err)
		}
	}
	p.finish(log, res.Path)
	return res, nil
}

func (p *Pipeline) finish(log *slog.Logger, path string) {
	if p.post.Clipboard {
		if err := p.copy(path); err != nil {
			log.Warn("copy to clipboard", "error", err)
		}
	}
	if p.post.Notify {
		if err := p.saved(path); err != nil {
			log.Warn("notify", "error", err)
		}
	}
	if p.post.Open {
		if err := p.open(path); err != nil {
			log.Warn("open screenshot", "path", path, "error", err)
		}
	}
}

// HistoryDir is where the capture history lives.
func HistoryDir() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// OpenHistory opens the capture history under the config directory.
func OpenHistory(cfg *config.Config) (*history.Store, error) {
	dir, err := HistoryDir()
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
	return history.Open(dir, ttl)
}

// OpenRecorder opens the capture history for a one-off capture. When
// another process (the tray service) holds the store, results are spooled
// and imported the next time the store is opened. The returned close
// function is never nil.
func OpenRecorder(cfg *config.Config) (Recorder, func(), error) {
	store, err := OpenHistory(cfg)
	if err == nil {
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Warn("close history", "error", err)
			}
		}, nil
	}
	slog.Debug("history store unavailable, spooling", "error", err)

	dir, derr := HistoryDir()
	if derr != nil {
		return nil, func() {}, derr
	}
	return history.NewSpool(dir), func() {}, nil
}

// NewDispatcher builds the production dispatcher for cfg.
func NewDispatcher(cfg *config.Config) (*screenshot.Dispatcher, error) {
	opts, err := screenshot.DefaultOptions()
	if err != nil {
		return nil, fmt.Errorf("dispatcher defaults: %w", err)
	}
	if cfg.OutputDir != "" {
		opts.Output = &screenshot.Output{Dir: cfg.OutputDir}
	}
	d := screenshot.New(opts)
	slog.Debug("dispatcher ready",
		"session", d.Session().String(),
		"tools", fmt.Sprintf("%+v", d.Tools()),
		"dir", d.OutputDir())
	return d, nil
}
