//go:build windows

package steam

import (
	"errors"
	"strconv"

	"golang.org/x/sys/windows/registry"
)

const (
	steamKeyPath = `Software\Valve\Steam`
	appsKeyPath  = `Software\Valve\Steam\Apps\`

	// nameValueIndex is the enumeration position of the display name under
	// an Apps\<id> key.
	nameValueIndex = 2
)

// RegistryResolver reads the Windows client's per-user registry keys.
type RegistryResolver struct{}

// RunningGame reads HKCU\Software\Valve\Steam\RunningAppID and, when it is
// non-zero, the display name under Apps\<id>. Missing keys or values mean
// no game is running.
func (RegistryResolver) RunningGame() (*Game, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, steamKeyPath, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	raw, _, err := k.GetIntegerValue("RunningAppID")
	k.Close()
	if errors.Is(err, registry.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	id := strconv.FormatUint(raw, 10)
	if notRunning(id) {
		return nil, nil
	}
	return &Game{ID: id, Name: appName(id)}, nil
}

// appName returns the string stored at the fixed enumeration index of the
// app's key, falling back to a "Name" value and then to UnknownGameName.
func appName(id string) string {
	k, err := registry.OpenKey(registry.CURRENT_USER, appsKeyPath+id, registry.QUERY_VALUE|registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return UnknownGameName
	}
	defer k.Close()

	if names, err := k.ReadValueNames(0); err == nil && len(names) > nameValueIndex {
		if s, _, err := k.GetStringValue(names[nameValueIndex]); err == nil && s != "" {
			return s
		}
	}
	if s, _, err := k.GetStringValue("Name"); err == nil && s != "" {
		return s
	}
	return UnknownGameName
}
