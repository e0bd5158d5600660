//go:build !darwin

package screenshot

// HasPermission reports true; only macOS gates screen capture.
func HasPermission() bool {
	return true
}

// RequestPermission is a no-op outside macOS.
func RequestPermission() {}
