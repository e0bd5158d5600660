package app

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.aimuz.me/flicker/config"
	"go.aimuz.me/flicker/internal/types"
	"go.aimuz.me/flicker/notify"
	"go.aimuz.me/flicker/overlay"
)

//go:embed assets/tray.png
var trayIcon []byte

// Run starts the tray service and blocks until the user quits.
func Run(cfg *config.Config, version string) error {
	svc, err := New(cfg, version)
	if err != nil {
		return err
	}

	server := overlay.NewServer()
	app := application.New(application.Options{
		Name:        "Flicker",
		Description: "Screenshot utility",
		Services: []application.Service{
			application.NewService(svc),
		},
		Assets: application.AssetOptions{
			Handler: server,
		},
		Mac: application.MacOptions{
			// Keep running with no windows open; the tray is the UI.
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	svc.Init(app, server)

	systemTray := app.SystemTray.New()
	systemTray.SetIcon(trayIcon)
	systemTray.SetTooltip("Flicker")
	systemTray.SetMenu(svc.trayMenu(app))

	slog.Info("tray service started",
		"session", svc.dispatcher.Session().String(),
		"dir", svc.dispatcher.OutputDir())

	err = app.Run()
	svc.Shutdown()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}

func (s *Service) trayMenu(app *application.App) *application.Menu {
	menu := app.NewMenu()

	capture := func(mode types.Mode, monitor int) func(*application.Context) {
		return func(*application.Context) {
			s.Trigger(types.Request{Mode: mode, Monitor: monitor})
		}
	}

	menu.Add("Selection").OnClick(capture(types.ModeSelection, 0))
	menu.Add("Full screen").OnClick(capture(types.ModeFullScreen, 0))
	menu.Add("Current screen").OnClick(capture(types.ModeCurrentScreen, 0))
	menu.Add("Window").OnClick(capture(types.ModeWindow, 0))

	monitors, err := s.dispatcher.Monitors()
	if err != nil {
		slog.Warn("list monitors for tray", "error", err)
	}
	if len(monitors) > 0 {
		sub := menu.AddSubmenu("Monitor")
		for _, m := range monitors {
			sub.Add(m.String()).OnClick(capture(types.ModeMonitor, m.Index))
		}
	}

	menu.AddSeparator()
	menu.Add("Open folder").OnClick(func(*application.Context) {
		if err := notify.Open(s.dispatcher.OutputDir()); err != nil {
			slog.Error("open screenshot folder", "error", err)
		}
	})
	menu.Add("Quit").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(*application.Context) {
			s.Shutdown()
			app.Quit()
		})
	return menu
}
