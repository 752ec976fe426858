//go:build !linux && !darwin && !windows

package window

import "context"

// Default returns a detector that always fails with ErrUnsupported.
func Default() Detector {
	return DetectorFunc(func(context.Context) (string, error) { return "", ErrUnsupported })
}
