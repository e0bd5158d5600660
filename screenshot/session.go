package screenshot

import (
	"os"
	"os/exec"

	"go.aimuz.me/flicker/internal/types"
)

// DetectSession classifies the display session from XDG_SESSION_TYPE.
func DetectSession(getenv func(string) string) types.SessionKind {
	if getenv == nil {
		getenv = os.Getenv
	}
	return types.ParseSessionKind(getenv("XDG_SESSION_TYPE"))
}

// ToolAvailability records which external capture tools are on PATH.
type ToolAvailability struct {
	Grim          bool
	Slurp         bool
	Import        bool
	Xdotool       bool
	Screencapture bool
}

// LookupTools looks up every capture tool once. A nil lookPath uses
// exec.LookPath.
func LookupTools(lookPath func(string) (string, error)) ToolAvailability {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	has := func(name string) bool {
		_, err := lookPath(name)
		return err == nil
	}
	return ToolAvailability{
		Grim:          has("grim"),
		Slurp:         has("slurp"),
		Import:        has("import"),
		Xdotool:       has("xdotool"),
		Screencapture: has("screencapture"),
	}
}
