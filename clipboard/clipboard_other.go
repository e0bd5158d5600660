//go:build !darwin

package clipboard

import (
	"os"
	"os/exec"
)

func copyImage(path string) error {
	name, args, ok := imageCommand(os.Getenv, exec.LookPath)
	if !ok {
		return errNoImageTool
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cmd := exec.Command(name, args...)
	cmd.Stdin = f
	return cmd.Run()
}

// imageCommand picks wl-copy on Wayland and xclip on X11.
func imageCommand(getenv func(string) string, lookPath func(string) (string, error)) (string, []string, bool) {
	has := func(name string) bool {
		_, err := lookPath(name)
		return err == nil
	}
	switch {
	case getenv("WAYLAND_DISPLAY") != "" && has("wl-copy"):
		return "wl-copy", []string{"--type", "image/png"}, true
	case getenv("DISPLAY") != "" && has("xclip"):
		return "xclip", []string{"-selection", "clipboard", "-t", "image/png", "-i"}, true
	}
	return "", nil, false
}
