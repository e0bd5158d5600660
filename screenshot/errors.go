package screenshot

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedSession is returned when neither a native tool nor the
	// toolkit fallback can serve a request.
	ErrUnsupportedSession = errors.New("unsupported display session")

	// ErrToolInvocation marks a failed external tool run.
	ErrToolInvocation = errors.New("tool invocation failed")

	// ErrMonitorIndexOutOfRange is returned for monitor numbers outside 1..N.
	ErrMonitorIndexOutOfRange = errors.New("monitor index out of range")

	// ErrSelectionCancelled is the outcome of an aborted or zero-area
	// selection. No file is written.
	ErrSelectionCancelled = errors.New("selection cancelled")

	// ErrPermissionRequired is returned on macOS until the process is
	// allowed to record the screen.
	ErrPermissionRequired = errors.New("screen recording permission required")

	// ErrFileWrite wraps directory creation and image encoding failures.
	ErrFileWrite = errors.New("write screenshot")
)

// ToolError records a failed external command.
type ToolError struct {
	Tool   string
	Args   []string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Tool, strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

func (e *ToolError) Is(target error) bool {
	return target == ErrToolInvocation
}

// IsCancelled reports whether err is a selection cancellation rather than a
// real failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrSelectionCancelled)
}
