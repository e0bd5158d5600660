package screenshot

import (
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
	"go.aimuz.me/flicker/internal/types"
)

// Display enumerates monitors and grabs their framebuffers.
type Display interface {
	Framebuffer
	Monitors() ([]types.Monitor, error)
}

// ToolkitDisplay is the toolkit grab backed by kbinani/screenshot.
type ToolkitDisplay struct{}

// Monitors lists the active displays in enumeration order.
func (ToolkitDisplay) Monitors() ([]types.Monitor, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, errors.New("no active displays found")
	}

	monitors := make([]types.Monitor, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		monitors = append(monitors, types.Monitor{
			Index:   i + 1,
			Name:    fmt.Sprintf("display-%d", i+1),
			Bounds:  bounds,
			Primary: bounds.Min == image.Point{},
		})
	}
	return monitors, nil
}

// Grab captures local on monitor m.
func (ToolkitDisplay) Grab(m types.Monitor, local image.Rectangle) (image.Image, error) {
	img, err := screenshot.CaptureRect(local.Add(m.Bounds.Min))
	if err != nil {
		return nil, fmt.Errorf("capture rect: %w", err)
	}
	return img, nil
}

// monitorAt returns the monitor containing p, falling back to the primary
// and then the first monitor.
func monitorAt(monitors []types.Monitor, p image.Point, ok bool) types.Monitor {
	if ok {
		for _, m := range monitors {
			if p.In(m.Bounds) {
				return m
			}
		}
	}
	for _, m := range monitors {
		if m.Primary {
			return m
		}
	}
	return monitors[0]
}

// principalMonitor returns the monitor sharing the largest area with r.
func principalMonitor(monitors []types.Monitor, r image.Rectangle) (types.Monitor, bool) {
	var (
		best     types.Monitor
		bestArea int
	)
	for _, m := range monitors {
		in := r.Intersect(m.Bounds)
		if area := in.Dx() * in.Dy(); area > bestArea {
			best, bestArea = m, area
		}
	}
	return best, bestArea > 0
}
