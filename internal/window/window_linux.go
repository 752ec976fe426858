//go:build linux

package window

// Default uses xdotool, which works under X11 and XWayland.
func Default() Detector {
	return CommandDetector{Name: "xdotool", Args: []string{"getactivewindow", "getwindowname"}}
}
