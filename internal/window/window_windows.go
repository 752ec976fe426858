//go:build windows

package window

import (
	"context"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow  = user32.NewProc("GetForegroundWindow")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
)

type user32Detector struct{}

// Default reads the title through user32.
func Default() Detector { return user32Detector{} }

func (user32Detector) ForegroundTitle(context.Context) (string, error) {
	if err := procGetForegroundWindow.Find(); err != nil {
		return "", err
	}
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return "", ErrNoWindow
	}
	n, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if n == 0 {
		return "", ErrNoWindow
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return cleanTitle(windows.UTF16ToString(buf))
}
