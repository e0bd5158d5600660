// Package screenshot decides how a capture request is served and writes the
// resulting PNG.
//
// Native compositor tools are preferred: grim and slurp on Wayland, ImageMagick
// import and xdotool on X11, screencapture on macOS. When none applies, or a
// non-interactive tool fails, the request falls back to a toolkit grab of the
// monitor framebuffers.
package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.aimuz.me/flicker/internal/types"
)

// Backend names reported in types.Result.
const (
	BackendGrim          = "grim"
	BackendImport        = "import"
	BackendScreencapture = "screencapture"
	BackendToolkit       = "toolkit"
)

var errNoNativeTool = errors.New("no native tool")

// Selector lets the user draw a rectangle on screen.
type Selector interface {
	Select(ctx context.Context) (types.Selection, error)
}

// Options configures a Dispatcher. Zero fields get production defaults,
// except Selector which has none.
type Options struct {
	Session  types.SessionKind
	Tools    ToolAvailability
	Runner   Runner
	Display  Display
	Locator  Locator
	Selector Selector
	Output   *Output
	Logger   *slog.Logger
	GOOS     string
	Now      func() time.Time

	// HasPermission and RequestPermission gate capture on macOS.
	HasPermission     func() bool
	RequestPermission func()
}

// DefaultOptions detects the session and tools of the running process.
func DefaultOptions() (Options, error) {
	dir, err := DefaultDir()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Session: DetectSession(nil),
		Tools:   LookupTools(nil),
		Output:  &Output{Dir: dir},
	}, nil
}

// Dispatcher serves capture requests one at a time.
type Dispatcher struct {
	mu sync.Mutex

	session  types.SessionKind
	tools    ToolAvailability
	runner   Runner
	display  Display
	locator  Locator
	selector Selector
	output   *Output
	log      *slog.Logger
	goos     string
	now      func() time.Time

	hasPermission     func() bool
	requestPermission func()
}

// New creates a Dispatcher.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		session:           opts.Session,
		tools:             opts.Tools,
		runner:            opts.Runner,
		display:           opts.Display,
		locator:           opts.Locator,
		selector:          opts.Selector,
		output:            opts.Output,
		log:               opts.Logger,
		goos:              opts.GOOS,
		now:               opts.Now,
		hasPermission:     opts.HasPermission,
		requestPermission: opts.RequestPermission,
	}
	if d.runner == nil {
		d.runner = ExecRunner{}
	}
	if d.display == nil {
		d.display = ToolkitDisplay{}
	}
	if d.locator == nil {
		d.locator = DesktopLocator{}
	}
	if d.output == nil {
		d.output = &Output{Dir: "."}
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	if d.goos == "" {
		d.goos = runtime.GOOS
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.output.Now == nil {
		d.output.Now = d.now
	}
	if d.hasPermission == nil {
		d.hasPermission = HasPermission
	}
	if d.requestPermission == nil {
		d.requestPermission = RequestPermission
	}
	return d
}

// Session returns the detected session kind.
func (d *Dispatcher) Session() types.SessionKind { return d.session }

// Tools returns the cached tool availability.
func (d *Dispatcher) Tools() ToolAvailability { return d.tools }

// OutputDir returns the directory screenshots are written to.
func (d *Dispatcher) OutputDir() string { return d.output.Dir }

// SetSelector installs the selection overlay used by the toolkit tier.
func (d *Dispatcher) SetSelector(s Selector) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selector = s
}

// Monitors enumerates the current monitors.
func (d *Dispatcher) Monitors() ([]types.Monitor, error) {
	return d.display.Monitors()
}

// NeedsOverlay reports whether a request in mode m would be served by the
// toolkit selection overlay.
func (d *Dispatcher) NeedsOverlay(m types.Mode) bool {
	if m != types.ModeSelection {
		return false
	}
	switch d.session {
	case types.SessionWayland:
		return !(d.tools.Grim && d.tools.Slurp)
	case types.SessionX11:
		return !d.tools.Import
	default:
		return !(d.goos == "darwin" && d.tools.Screencapture)
	}
}

// Capture serves req and returns the written file. A cancelled selection
// returns ErrSelectionCancelled and writes nothing.
func (d *Dispatcher) Capture(ctx context.Context, req types.Request) (types.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	log := d.log.With("id", req.ID, "mode", req.Mode.String())

	var monitors []types.Monitor
	if req.Mode == types.ModeMonitor {
		mons, err := d.display.Monitors()
		if err != nil {
			return types.Result{}, fmt.Errorf("%w: enumerate monitors: %v", ErrUnsupportedSession, err)
		}
		if req.Monitor < 1 || req.Monitor > len(mons) {
			return types.Result{}, fmt.Errorf("%w: %d (have %d)", ErrMonitorIndexOutOfRange, req.Monitor, len(mons))
		}
		monitors = mons
	}

	if d.goos == "darwin" && !d.hasPermission() {
		d.requestPermission()
		return types.Result{}, ErrPermissionRequired
	}

	path, err := d.output.Path(req.FilePrefix())
	if err != nil {
		return types.Result{}, err
	}

	backend, err := d.native(ctx, req, path, monitors)
	switch {
	case err == nil:
		log.Info("screenshot captured", "backend", backend, "path", path)
		return d.result(req, path, backend), nil
	case IsCancelled(err):
		return types.Result{}, err
	case errors.Is(err, errNoNativeTool):
		log.Debug("no native tool, using toolkit", "session", d.session.String())
	default:
		log.Warn("native capture failed, using toolkit", "error", err)
	}

	if err := d.toolkit(ctx, req, path, monitors); err != nil {
		return types.Result{}, err
	}
	log.Info("screenshot captured", "backend", BackendToolkit, "path", path)
	return d.result(req, path, BackendToolkit), nil
}

func (d *Dispatcher) result(req types.Request, path, backend string) types.Result {
	return types.Result{Request: req, Path: path, Backend: backend, CreatedAt: d.now()}
}

// ─────────────────────────────────────────────────────────────────────────────
// Native tools
// ─────────────────────────────────────────────────────────────────────────────

func (d *Dispatcher) native(ctx context.Context, req types.Request, path string, monitors []types.Monitor) (string, error) {
	switch d.session {
	case types.SessionWayland:
		return d.wayland(ctx, req, path, monitors)
	case types.SessionX11:
		return d.x11(ctx, req, path, monitors)
	default:
		if d.goos == "darwin" && d.tools.Screencapture {
			return d.macos(ctx, req, path)
		}
	}
	return "", errNoNativeTool
}

func (d *Dispatcher) wayland(ctx context.Context, req types.Request, path string, monitors []types.Monitor) (string, error) {
	if !d.tools.Grim {
		return "", errNoNativeTool
	}

	switch req.Mode {
	case types.ModeFullScreen:
		return BackendGrim, d.runTool(ctx, path, "grim", path)
	case types.ModeSelection:
		if !d.tools.Slurp {
			return "", errNoNativeTool
		}
		script := fmt.Sprintf(`grim -g "$(slurp)" %s`, shellQuote(path))
		if _, err := d.runner.Run(ctx, "/bin/bash", "-c", script); err != nil || !fileExists(path) {
			return "", selectionAborted(err)
		}
		return BackendGrim, nil
	case types.ModeCurrentScreen, types.ModeMonitor:
		m, err := d.targetMonitor(req, monitors)
		if err != nil {
			return "", err
		}
		return BackendGrim, d.runTool(ctx, path, "grim", "-g", grimGeometry(m.Bounds), path)
	}
	return "", errNoNativeTool
}

func (d *Dispatcher) x11(ctx context.Context, req types.Request, path string, monitors []types.Monitor) (string, error) {
	if !d.tools.Import {
		return "", errNoNativeTool
	}

	switch req.Mode {
	case types.ModeFullScreen:
		return BackendImport, d.runTool(ctx, path, "import", "-window", "root", path)
	case types.ModeSelection:
		if _, err := d.runner.Run(ctx, "import", path); err != nil || !fileExists(path) {
			return "", selectionAborted(err)
		}
		return BackendImport, nil
	case types.ModeCurrentScreen, types.ModeMonitor:
		m, err := d.targetMonitor(req, monitors)
		if err != nil {
			return "", err
		}
		return BackendImport, d.runTool(ctx, path, "import", "-window", "root", "-crop", importGeometry(m.Bounds), "+repage", path)
	case types.ModeWindow:
		if !d.tools.Xdotool {
			return "", errNoNativeTool
		}
		out, err := d.runner.Run(ctx, "xdotool", "getactivewindow")
		if err != nil {
			return "", err
		}
		id := strings.TrimSpace(string(out))
		if id == "" {
			return "", &ToolError{Tool: "xdotool", Args: []string{"getactivewindow"}, Err: errors.New("no active window")}
		}
		return BackendImport, d.runTool(ctx, path, "import", "-window", id, path)
	}
	return "", errNoNativeTool
}

// macos only serves selection. screencapture writes one file per display,
// so full screen goes through the toolkit compositor.
func (d *Dispatcher) macos(ctx context.Context, req types.Request, path string) (string, error) {
	switch req.Mode {
	case types.ModeSelection:
		// -i: capture interactively (selection)
		// -x: do not play sound
		if _, err := d.runner.Run(ctx, "screencapture", "-i", "-x", path); err != nil || !fileExists(path) {
			return "", selectionAborted(err)
		}
		return BackendScreencapture, nil
	}
	return "", errNoNativeTool
}

// runTool runs a non-interactive capture command that must leave a file at
// path.
func (d *Dispatcher) runTool(ctx context.Context, path, name string, args ...string) error {
	if _, err := d.runner.Run(ctx, name, args...); err != nil {
		return err
	}
	if !fileExists(path) {
		return &ToolError{Tool: name, Args: args, Err: errors.New("no output written")}
	}
	return nil
}

func (d *Dispatcher) targetMonitor(req types.Request, monitors []types.Monitor) (types.Monitor, error) {
	if req.Mode == types.ModeMonitor {
		return monitors[req.Monitor-1], nil
	}
	mons, err := d.display.Monitors()
	if err != nil {
		return types.Monitor{}, fmt.Errorf("enumerate monitors: %w", err)
	}
	p, ok := d.locator.Pointer()
	return monitorAt(mons, p, ok), nil
}

func selectionAborted(err error) error {
	if err == nil {
		return ErrSelectionCancelled
	}
	return fmt.Errorf("%w: %v", ErrSelectionCancelled, err)
}

func grimGeometry(r image.Rectangle) string {
	return fmt.Sprintf("%d,%d %dx%d", r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}

func importGeometry(r image.Rectangle) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ─────────────────────────────────────────────────────────────────────────────
// Toolkit fallback
// ─────────────────────────────────────────────────────────────────────────────

func (d *Dispatcher) toolkit(ctx context.Context, req types.Request, path string, monitors []types.Monitor) error {
	if monitors == nil {
		mons, err := d.display.Monitors()
		if err != nil {
			return fmt.Errorf("%w: enumerate monitors: %v", ErrUnsupportedSession, err)
		}
		monitors = mons
	}

	img, err := d.toolkitImage(ctx, req, monitors)
	if err != nil {
		return err
	}
	return writePNG(path, img)
}

func (d *Dispatcher) toolkitImage(ctx context.Context, req types.Request, monitors []types.Monitor) (image.Image, error) {
	switch req.Mode {
	case types.ModeFullScreen:
		if len(monitors) == 1 {
			return d.grabMonitor(monitors[0])
		}
		return Compose(Union(monitors), monitors, d.display)

	case types.ModeCurrentScreen:
		p, ok := d.locator.Pointer()
		return d.grabMonitor(monitorAt(monitors, p, ok))

	case types.ModeMonitor:
		return d.grabMonitor(monitors[req.Monitor-1])

	case types.ModeWindow:
		if r, ok := d.locator.ActiveWindow(); ok {
			if m, ok := principalMonitor(monitors, r); ok {
				return Compose(r.Intersect(m.Bounds), []types.Monitor{m}, d.display)
			}
		}
		d.log.Info("no focused window, capturing current monitor", "id", req.ID)
		p, ok := d.locator.Pointer()
		return d.grabMonitor(monitorAt(monitors, p, ok))

	case types.ModeSelection:
		if d.selector == nil {
			return nil, fmt.Errorf("%w: no selection overlay available", ErrUnsupportedSession)
		}
		sel, err := d.selector.Select(ctx)
		if err != nil {
			return nil, err
		}
		if sel.Empty() {
			return nil, ErrSelectionCancelled
		}
		return Compose(sel.Rect(), monitors, d.display)
	}
	return nil, fmt.Errorf("unsupported capture mode %s", req.Mode)
}

func (d *Dispatcher) grabMonitor(m types.Monitor) (image.Image, error) {
	img, err := d.display.Grab(m, image.Rect(0, 0, m.Bounds.Dx(), m.Bounds.Dy()))
	if err != nil {
		return nil, fmt.Errorf("grab monitor %d: %w", m.Index, err)
	}
	return img, nil
}
