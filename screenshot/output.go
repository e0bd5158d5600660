package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// TimestampLayout is the timestamp format embedded in file names.
const TimestampLayout = "2006-01-02_15-04-05"

// DefaultDir returns ~/Pictures/FLICKERs.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, "Pictures", "FLICKERs"), nil
}

// Output generates write-once screenshot paths inside Dir.
type Output struct {
	Dir string
	Now func() time.Time
}

// Path creates Dir if needed and returns an unused
// <prefix>_<timestamp>.png path. A numeric suffix is appended when a file
// with the same timestamp already exists.
func (o *Output) Path(prefix string) (string, error) {
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create dir: %v", ErrFileWrite, err)
	}

	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	base := fmt.Sprintf("%s_%s", prefix, now().Format(TimestampLayout))

	candidate := filepath.Join(o.Dir, base+".png")
	for i := 2; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: stat %s: %v", ErrFileWrite, candidate, err)
		}
		candidate = filepath.Join(o.Dir, fmt.Sprintf("%s_%d.png", base, i))
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileWrite, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("%w: encode png: %v", ErrFileWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrFileWrite, err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
