//go:build !darwin

package clipboard

import (
	"errors"
	"testing"
)

func TestImageCommand(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		tools    []string
		wantTool string
		wantOK   bool
	}{
		{"wayland", map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, []string{"wl-copy", "xclip"}, "wl-copy", true},
		{"xwayland without wl-copy", map[string]string{"WAYLAND_DISPLAY": "wayland-0", "DISPLAY": ":0"}, []string{"xclip"}, "xclip", true},
		{"x11", map[string]string{"DISPLAY": ":0"}, []string{"xclip"}, "xclip", true},
		{"x11 without xclip", map[string]string{"DISPLAY": ":0"}, nil, "", false},
		{"headless", nil, []string{"wl-copy", "xclip"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookPath := func(name string) (string, error) {
				for _, tool := range tt.tools {
					if tool == name {
						return "/usr/bin/" + name, nil
					}
				}
				return "", errors.New("not found")
			}

			name, args, ok := imageCommand(func(k string) string { return tt.env[k] }, lookPath)
			if ok != tt.wantOK || name != tt.wantTool {
				t.Fatalf("imageCommand() = %q, %v; want %q, %v", name, ok, tt.wantTool, tt.wantOK)
			}
			if ok && len(args) == 0 {
				t.Error("expected arguments")
			}
		})
	}
}
