// Package notify tells the user about a saved screenshot.
package notify

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/gen2brain/beeep"
	"github.com/pkg/browser"
)

func init() {
	// xdg-open and open print to the terminal otherwise.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// AppName is used as the notification title prefix.
const AppName = "Flicker"

// Saved shows a desktop notification for the screenshot at path. The image
// itself is used as the notification icon.
func Saved(path string) error {
	if err := beeep.Notify(AppName+": screenshot saved", filepath.Base(path), path); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// Failed shows a desktop notification for a failed capture.
func Failed(err error) error {
	if nerr := beeep.Notify(AppName+": screenshot failed", err.Error(), ""); nerr != nil {
		return fmt.Errorf("notify: %w", nerr)
	}
	return nil
}

// Open opens path with the desktop's default viewer (xdg-open or open).
func Open(path string) error {
	if err := browser.OpenFile(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}
