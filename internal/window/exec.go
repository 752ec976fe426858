package window

import (
	"context"
	"fmt"
	"os/exec"
)

// CommandDetector runs an external tool and reads the title from stdout.
type CommandDetector struct {
	Name string
	Args []string
}

// ForegroundTitle runs the command and returns its trimmed output.
func (d CommandDetector) ForegroundTitle(ctx context.Context) (string, error) {
	if _, err := exec.LookPath(d.Name); err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", d.Name, err)
	}
	out, err := exec.CommandContext(ctx, d.Name, d.Args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", d.Name, err)
	}
	return cleanTitle(string(out))
}

// Tool returns the external program the detector depends on, or "" when it
// needs none. Used by the doctor command.
func Tool(d Detector) string {
	if c, ok := d.(CommandDetector); ok {
		return c.Name
	}
	return ""
}
