package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned by Load for files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("config file must end in .toml, .yaml or .yml")

// Load decodes the file at path on top of base. Keys absent from the file
// keep their value from base. An empty path returns base unchanged.
func Load(path string, base Config) (Config, error) {
	cfg := base
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return base, fmt.Errorf("parsing %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return base, fmt.Errorf("parsing %s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return base, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return base, ErrUnknownFormat
	}

	cfg.Path = path
	return cfg, nil
}

// DefaultPath returns the first existing config file under the user config
// directory ($XDG_CONFIG_HOME/clipnamer or ~/.config/clipnamer), trying
// config.toml, config.yaml, then config.yml. Returns "" when none exists.
func DefaultPath() string {
	var dir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dir = filepath.Join(xdg, "clipnamer")
	} else if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".config", "clipnamer")
	} else {
		return ""
	}
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ApplyEnv overrides cfg from CLIPNAMER_* environment variables. Invalid
// values are reported, not ignored.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("CLIPNAMER_MODE"); v != "" {
		m, err := ParseRenameMode(v)
		if err != nil {
			return fmt.Errorf("CLIPNAMER_MODE: %w", err)
		}
		cfg.Mode = m
	}
	if v := os.Getenv("CLIPNAMER_TWITCH_CHANNEL"); v != "" {
		cfg.TwitchChannel = v
	}
	if v := os.Getenv("CLIPNAMER_OBS_URL"); v != "" {
		cfg.OBS.URL = v
	}
	if v := os.Getenv("CLIPNAMER_OBS_PASSWORD"); v != "" {
		cfg.OBS.Password = v
	}
	if v := os.Getenv("CLIPNAMER_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CLIPNAMER_DEBUG: %w", err)
		}
		cfg.Debug = b
	}
	return nil
}

// ExpandTilde replaces a leading "~/" with the user's home directory.
func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
