package screenshot

import (
	"fmt"
	"image"
	"image/draw"

	"go.aimuz.me/flicker/internal/types"
)

// Framebuffer grabs pixels from a single monitor.
type Framebuffer interface {
	// Grab returns the pixels of local, given in monitor-local coordinates.
	Grab(m types.Monitor, local image.Rectangle) (image.Image, error)
}

// Union returns the bounding box of all monitor geometries.
func Union(monitors []types.Monitor) image.Rectangle {
	var r image.Rectangle
	for _, m := range monitors {
		r = r.Union(m.Bounds)
	}
	return r
}

// Compose assembles target, in global coordinates, from the monitors that
// intersect it. Monitors must not overlap; pixels outside every monitor stay
// zero.
func Compose(target image.Rectangle, monitors []types.Monitor, fb Framebuffer) (*image.RGBA, error) {
	target = target.Canon()
	if target.Empty() {
		return nil, fmt.Errorf("compose empty rectangle %v", target)
	}

	dst := image.NewRGBA(image.Rect(0, 0, target.Dx(), target.Dy()))
	for _, m := range monitors {
		part := target.Intersect(m.Bounds)
		if part.Empty() {
			continue
		}

		src, err := fb.Grab(m, part.Sub(m.Bounds.Min))
		if err != nil {
			return nil, fmt.Errorf("grab monitor %d: %w", m.Index, err)
		}

		off := part.Min.Sub(target.Min)
		draw.Draw(dst, image.Rectangle{Min: off, Max: off.Add(part.Size())}, src, src.Bounds().Min, draw.Src)
	}
	return dst, nil
}
