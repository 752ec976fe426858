//go:build darwin

package window

const frontWindowScript = `tell application "System Events"
	set frontApp to first application process whose frontmost is true
	try
		return name of front window of frontApp
	on error
		return name of frontApp
	end try
end tell`

// Default asks System Events for the front window, falling back to the
// frontmost application's name.
func Default() Detector {
	return CommandDetector{Name: "osascript", Args: []string{"-e", frontWindowScript}}
}
