// Package overlay provides the interactive selection window used when no
// native region picker is available.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"go.aimuz.me/flicker/internal/types"
	"go.aimuz.me/flicker/screenshot"
)

// WindowName identifies the overlay window inside the Wails application.
const WindowName = "flicker-overlay"

// settleDelay gives the compositor time to remove the overlay before the
// framebuffer is read.
const settleDelay = 150 * time.Millisecond

// MonitorFunc enumerates the monitors the overlay must cover.
type MonitorFunc func() ([]types.Monitor, error)

// Selector shows a transparent window over the whole virtual desktop and
// waits for the user to drag a rectangle. It satisfies screenshot.Selector.
type Selector struct {
	server   *Server
	monitors MonitorFunc
	open     func(desktop image.Rectangle) (closeWindow func())
	settle   time.Duration
}

// NewSelector binds the overlay to a running Wails application whose asset
// handler is server.
func NewSelector(app *application.App, server *Server, monitors MonitorFunc) *Selector {
	return &Selector{
		server:   server,
		monitors: monitors,
		settle:   settleDelay,
		open: func(desktop image.Rectangle) func() {
			w := app.Window.NewWithOptions(windowOptions(desktop))
			w.Show()
			w.Focus()
			return w.Close
		},
	}
}

// windowOptions places a borderless window over desktop, the union of all
// monitors. A fullscreen window would only cover a single output.
func windowOptions(desktop image.Rectangle) application.WebviewWindowOptions {
	return application.WebviewWindowOptions{
		Name:            WindowName,
		Title:           "Flicker",
		URL:             PagePath,
		Frameless:       true,
		AlwaysOnTop:     true,
		DisableResize:   true,
		BackgroundType:  application.BackgroundTypeTransparent,
		InitialPosition: application.WindowXY,
		X:               desktop.Min.X,
		Y:               desktop.Min.Y,
		Width:           desktop.Dx(),
		Height:          desktop.Dy(),
	}
}

// Select blocks until the user finishes dragging, presses Escape, or ctx
// ends. An empty selection is returned unchanged; callers treat it as a
// cancellation.
func (s *Selector) Select(ctx context.Context) (types.Selection, error) {
	monitors, err := s.monitors()
	if err != nil {
		return types.Selection{}, fmt.Errorf("enumerate monitors: %w", err)
	}
	desktop := screenshot.Union(monitors)
	if desktop.Empty() {
		return types.Selection{}, errors.New("no monitors to cover")
	}

	ch, err := s.server.expect()
	if err != nil {
		return types.Selection{}, err
	}
	defer s.server.done()

	closeWindow := s.open(desktop)

	select {
	case sel := <-ch:
		closeWindow()
		slog.Debug("overlay selection", "rect", sel.Rect(), "desktop", desktop)
		time.Sleep(s.settle)
		return sel, nil
	case <-ctx.Done():
		closeWindow()
		return types.Selection{}, ctx.Err()
	}
}

// Run starts a Wails application that only hosts the overlay and calls fn
// on its own goroutine once the application is up. The application quits
// when fn returns. Run must be called from the main goroutine.
func Run(name string, monitors MonitorFunc, fn func(ctx context.Context, sel *Selector) error) error {
	server := NewServer()
	app := application.New(application.Options{
		Name: name,
		Assets: application.AssetOptions{
			Handler: server,
		},
		Mac: application.MacOptions{
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})
	sel := NewSelector(app, server, monitors)

	errCh := make(chan error, 1)
	app.Event.OnApplicationEvent(events.Common.ApplicationStarted, func(*application.ApplicationEvent) {
		go func() {
			errCh <- fn(context.Background(), sel)
			app.Quit()
		}()
	})

	if err := app.Run(); err != nil {
		return err
	}
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
