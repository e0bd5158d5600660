// Package types provides shared type definitions for the application.
package types

import (
	"fmt"
	"image"
	"strings"
	"time"
)

// SessionKind is the display server family the process runs under.
type SessionKind int

const (
	SessionOther SessionKind = iota
	SessionX11
	SessionWayland
)

func (k SessionKind) String() string {
	switch k {
	case SessionX11:
		return "x11"
	case SessionWayland:
		return "wayland"
	default:
		return "other"
	}
}

// ParseSessionKind classifies an XDG_SESSION_TYPE value.
func ParseSessionKind(v string) SessionKind {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "x11":
		return SessionX11
	case "wayland":
		return SessionWayland
	default:
		return SessionOther
	}
}

// Mode selects what a capture request grabs.
type Mode int

const (
	ModeSelection Mode = iota
	ModeFullScreen
	ModeWindow
	ModeCurrentScreen
	ModeMonitor
)

var modeNames = map[Mode]string{
	ModeSelection:     "selection",
	ModeFullScreen:    "full",
	ModeWindow:        "window",
	ModeCurrentScreen: "screen",
	ModeMonitor:       "monitor",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode accepts the names used in config files and CLI flags.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "selection", "region":
		return ModeSelection, nil
	case "full", "full_screen", "fullscreen":
		return ModeFullScreen, nil
	case "window":
		return ModeWindow, nil
	case "screen", "current_screen":
		return ModeCurrentScreen, nil
	case "monitor":
		return ModeMonitor, nil
	}
	return 0, fmt.Errorf("unknown capture mode %q", s)
}

// Request is a single capture invocation.
type Request struct {
	ID      string `json:"id"`
	Mode    Mode   `json:"mode"`
	Monitor int    `json:"monitor,omitempty"` // 1-based, only for ModeMonitor
}

// FilePrefix is the file name prefix for the request's output image.
func (r Request) FilePrefix() string {
	switch r.Mode {
	case ModeFullScreen:
		return "full_screen"
	case ModeWindow:
		return "window"
	case ModeCurrentScreen:
		return "screen"
	case ModeMonitor:
		return fmt.Sprintf("monitor%d", r.Monitor)
	default:
		return "selection"
	}
}

// Monitor describes one display in global coordinates.
type Monitor struct {
	Index   int             `json:"index"` // 1-based enumeration order
	Name    string          `json:"name"`
	Bounds  image.Rectangle `json:"bounds"`
	Primary bool            `json:"primary"`
}

func (m Monitor) String() string {
	b := m.Bounds
	s := fmt.Sprintf("%d: %s %dx%d+%d+%d", m.Index, m.Name, b.Dx(), b.Dy(), b.Min.X, b.Min.Y)
	if m.Primary {
		s += " (primary)"
	}
	return s
}

// Selection is a user-dragged rectangle in global coordinates.
type Selection struct {
	Begin image.Point `json:"begin"`
	End   image.Point `json:"end"`
}

// Rect returns the normalized rectangle spanned by the selection.
func (s Selection) Rect() image.Rectangle {
	return image.Rectangle{Min: s.Begin, Max: s.End}.Canon()
}

// Empty reports whether the selection has zero width or height.
func (s Selection) Empty() bool {
	return s.Rect().Empty()
}

// Result describes a written screenshot.
type Result struct {
	Request   Request   `json:"request"`
	Path      string    `json:"path"`
	Backend   string    `json:"backend"`
	CreatedAt time.Time `json:"created_at"`
}
