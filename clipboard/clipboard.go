// Package clipboard copies saved screenshots to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

var errNoImageTool = errors.New("no image clipboard tool")

// CopyImage puts the PNG at path on the clipboard. When the platform cannot
// hold image data the path is copied as text instead.
func CopyImage(path string) error {
	err := copyImage(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errNoImageTool) {
		return fmt.Errorf("copy image: %w", err)
	}
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available")
	}
	if err := clipboard.WriteAll(path); err != nil {
		return fmt.Errorf("copy path: %w", err)
	}
	return nil
}
