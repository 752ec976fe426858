package steam

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var (
	reRunningAppID = regexp.MustCompile(`"RunningAppID"\s+"(\d+)"`)
	reManifestName = regexp.MustCompile(`"name"\s+"([^"]*)"`)
	reLibraryPath  = regexp.MustCompile(`"path"\s+"([^"]+)"`)
)

// VDFResolver reads the Linux client's registry mirror. The state file only
// carries the app ID; the display name is taken from the app's manifest in
// one of the Steam libraries when it can be found.
type VDFResolver struct {
	// StatePath is the registry.vdf file. Default: ~/.steam/registry.vdf.
	StatePath string
	// SteamRoot is the client install containing steamapps/.
	// Default: ~/.steam/steam. Empty disables the name lookup.
	SteamRoot string
}

// NewVDFResolver returns a VDFResolver with the default Linux locations.
// A missing home directory leaves the paths empty, which resolves to
// "no game running".
func NewVDFResolver() *VDFResolver {
	home, err := os.UserHomeDir()
	if err != nil {
		return &VDFResolver{}
	}
	return &VDFResolver{
		StatePath: filepath.Join(home, ".steam", "registry.vdf"),
		SteamRoot: filepath.Join(home, ".steam", "steam"),
	}
}

// RunningGame returns the running app, or nil when the state file is
// missing, has no RunningAppID, or the ID is zero.
func (r *VDFResolver) RunningGame() (*Game, error) {
	if r.StatePath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(r.StatePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	m := reRunningAppID.FindSubmatch(data)
	if m == nil || notRunning(string(m[1])) {
		return nil, nil
	}
	id := string(m[1])
	return &Game{ID: id, Name: r.lookupName(id)}, nil
}

// lookupName searches the main library and every library listed in
// libraryfolders.vdf for appmanifest_<id>.acf.
func (r *VDFResolver) lookupName(id string) string {
	if r.SteamRoot == "" {
		return UnknownGameName
	}
	for _, lib := range r.libraries() {
		data, err := os.ReadFile(filepath.Join(lib, "steamapps", "appmanifest_"+id+".acf"))
		if err != nil {
			continue
		}
		if m := reManifestName.FindSubmatch(data); m != nil && len(m[1]) > 0 {
			return string(m[1])
		}
	}
	return UnknownGameName
}

func (r *VDFResolver) libraries() []string {
	libs := []string{r.SteamRoot}
	data, err := os.ReadFile(filepath.Join(r.SteamRoot, "steamapps", "libraryfolders.vdf"))
	if err != nil {
		return libs
	}
	for _, m := range reLibraryPath.FindAllSubmatch(data, -1) {
		p := string(m[1])
		if p != r.SteamRoot {
			libs = append(libs, p)
		}
	}
	return libs
}
