// Package window reports the title of the focused desktop window.
package window

import (
	"context"
	"errors"
	"strings"
)

// ErrNoWindow is returned when no window has focus or its title is empty.
var ErrNoWindow = errors.New("no foreground window")

// ErrUnsupported is returned on platforms without a lookup backend.
var ErrUnsupported = errors.New("foreground window lookup not supported on this platform")

// Detector looks up the foreground window title.
type Detector interface {
	ForegroundTitle(ctx context.Context) (string, error)
}

// DetectorFunc adapts a function to [Detector].
type DetectorFunc func(ctx context.Context) (string, error)

// ForegroundTitle calls f.
func (f DetectorFunc) ForegroundTitle(ctx context.Context) (string, error) { return f(ctx) }

// Static returns a Detector that always reports title.
func Static(title string) Detector {
	return DetectorFunc(func(context.Context) (string, error) { return title, nil })
}

// cleanTitle trims the tool output and maps an empty title to ErrNoWindow.
func cleanTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrNoWindow
	}
	return title, nil
}
