package screenshot

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"runtime"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/go-vgo/robotgo"
)

// Locator finds the pointer and the focused window in global coordinates.
type Locator interface {
	Pointer() (image.Point, bool)
	ActiveWindow() (image.Rectangle, bool)
}

// DesktopLocator queries the X server when one is reachable and uses
// robotgo for the pointer elsewhere.
type DesktopLocator struct{}

// Pointer returns the current pointer position.
func (DesktopLocator) Pointer() (image.Point, bool) {
	if os.Getenv("DISPLAY") != "" {
		p, err := x11Pointer()
		if err == nil {
			return p, true
		}
		slog.Debug("query x11 pointer", "error", err)
	}
	if runtime.GOOS == "linux" {
		return image.Point{}, false
	}
	x, y := robotgo.GetMousePos()
	return image.Pt(x, y), true
}

// ActiveWindow returns the frame rectangle of the EWMH active window.
func (DesktopLocator) ActiveWindow() (image.Rectangle, bool) {
	if os.Getenv("DISPLAY") == "" {
		return image.Rectangle{}, false
	}
	r, err := x11ActiveWindow()
	if err != nil {
		slog.Debug("query active window", "error", err)
		return image.Rectangle{}, false
	}
	return r, true
}

func x11Pointer() (image.Point, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return image.Point{}, fmt.Errorf("connect x11: %w", err)
	}
	defer xu.Conn().Close()

	reply, err := xproto.QueryPointer(xu.Conn(), xu.RootWin()).Reply()
	if err != nil {
		return image.Point{}, fmt.Errorf("query pointer: %w", err)
	}
	return image.Pt(int(reply.RootX), int(reply.RootY)), nil
}

func x11ActiveWindow() (image.Rectangle, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("connect x11: %w", err)
	}
	defer xu.Conn().Close()

	wid, err := ewmh.ActiveWindowGet(xu)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("get active window: %w", err)
	}
	if wid == 0 {
		return image.Rectangle{}, errors.New("no active window")
	}

	geom, err := xwindow.New(xu, wid).DecorGeometry()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("window geometry: %w", err)
	}
	r := image.Rect(geom.X(), geom.Y(), geom.X()+geom.Width(), geom.Y()+geom.Height())
	if r.Empty() {
		return image.Rectangle{}, errors.New("active window has no area")
	}
	return r, nil
}
