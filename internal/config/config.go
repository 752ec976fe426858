// Package config holds runtime configuration: defaults, file loading (TOML or
// YAML), environment overrides, and validation. Defaults match the settings
// form of the OBS script this tool replaces.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// --- Enum types for validated fields ---

// RenameMode selects which context string is embedded in the filename.
// The numeric settings 0, 1 and 2 are accepted as aliases.
type RenameMode int

const (
	ModeSteamGame        RenameMode = 0 // Currently running Steam title (default).
	ModeTwitchTitle      RenameMode = 1 // Twitch game and stream title.
	ModeForegroundWindow RenameMode = 2 // Title of the focused window.
)

var modeNames = map[RenameMode]string{
	ModeSteamGame:        "steam",
	ModeTwitchTitle:      "twitch",
	ModeForegroundWindow: "window",
}

func (m RenameMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// Valid reports whether m is one of the implemented modes.
func (m RenameMode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseRenameMode accepts a mode name ("steam", "twitch", "window") or its
// settings-form integer ("0", "1", "2").
func ParseRenameMode(s string) (RenameMode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if v == name || v == strconv.Itoa(int(m)) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid rename mode %q (use 'steam', 'twitch' or 'window')", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m RenameMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler (used by the TOML decoder).
func (m *RenameMode) UnmarshalText(b []byte) error {
	v, err := ParseRenameMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// UnmarshalYAML accepts both "twitch" and 1.
func (m *RenameMode) UnmarshalYAML(n *yaml.Node) error {
	return m.UnmarshalText([]byte(n.Value))
}

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Duration is a time.Duration that decodes from strings like "100ms" or "2m".
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.UnmarshalText([]byte(n.Value))
}

// OBSConfig describes how to reach obs-websocket.
type OBSConfig struct {
	URL               string   `toml:"url" yaml:"url"`                               // Default: "ws://127.0.0.1:4455".
	Password          string   `toml:"password" yaml:"password"`                     // Empty when auth is disabled in OBS.
	ReconnectInterval Duration `toml:"reconnect_interval" yaml:"reconnect_interval"` // Default: 5s.
}

// Config holds all runtime settings. It is populated by [DefaultConfig], then
// by [Load] and [ApplyEnv], then by CLI flags. Once validated it is treated as
// an immutable snapshot: rename tasks receive a copy, never a pointer into
// shared state.
type Config struct {
	// Rename behavior.
	Mode          RenameMode `toml:"mode" yaml:"mode"`
	TwitchChannel string     `toml:"twitch_channel" yaml:"twitch_channel"`
	RenameReplays bool       `toml:"rename_replays" yaml:"rename_replays"`
	Debug         bool       `toml:"debug" yaml:"debug"`

	// Remux wait and cleanup.
	FinalExtension string   `toml:"final_extension" yaml:"final_extension"` // Default: "mp4".
	PollInterval   Duration `toml:"poll_interval" yaml:"poll_interval"`     // Default: 100ms.
	MaxPolls       int      `toml:"max_polls" yaml:"max_polls"`             // Default: 500 (~50s).
	LockDeadline   Duration `toml:"lock_deadline" yaml:"lock_deadline"`     // Default: 2m.

	// Title resolution.
	NoGameLabel     string   `toml:"no_game_label" yaml:"no_game_label"`         // Fragment when no Steam game runs. Default: "".
	TitleAPIBaseURL string   `toml:"title_api_url" yaml:"title_api_url"`         // Default: "https://decapi.me".
	TitleAPITimeout Duration `toml:"title_api_timeout" yaml:"title_api_timeout"` // Default: 10s.

	OBS OBSConfig `toml:"obs" yaml:"obs"`

	// Display, logging, metrics.
	MetricsAddr string    `toml:"metrics_addr" yaml:"metrics_addr"` // Empty disables the /metrics listener.
	LogFile     string    `toml:"log_file" yaml:"log_file"`
	ColorMode   ColorMode `toml:"color" yaml:"color"` // Default: "auto".

	// Path is the file the config was loaded from ("" for defaults only).
	Path string `toml:"-" yaml:"-"`
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// the config file, environment, and flags are applied.
func DefaultConfig() Config {
	return Config{
		Mode:            ModeSteamGame,
		RenameReplays:   false,
		Debug:           false,
		FinalExtension:  "mp4",
		PollInterval:    Duration(100 * time.Millisecond),
		MaxPolls:        500,
		LockDeadline:    Duration(2 * time.Minute),
		NoGameLabel:     "",
		TitleAPIBaseURL: "https://decapi.me",
		TitleAPITimeout: Duration(10 * time.Second),
		OBS: OBSConfig{
			URL:               "ws://127.0.0.1:4455",
			ReconnectInterval: Duration(5 * time.Second),
		},
		ColorMode: ColorAuto,
	}
}

// Validate checks enum fields and numeric bounds, and canonicalizes
// FinalExtension (leading dot stripped, lowercased).
func (c *Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("invalid rename mode %d (use 'steam', 'twitch' or 'window')", int(c.Mode))
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.FinalExtension), "."))
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("invalid final extension %q", c.FinalExtension)
	}
	c.FinalExtension = ext

	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.MaxPolls <= 0 {
		return errors.New("max polls must be positive")
	}
	if c.LockDeadline <= 0 {
		return errors.New("lock deadline must be positive")
	}
	if c.TitleAPITimeout <= 0 {
		return errors.New("title API timeout must be positive")
	}
	if _, err := url.ParseRequestURI(c.TitleAPIBaseURL); err != nil {
		return fmt.Errorf("invalid title API URL %q: %w", c.TitleAPIBaseURL, err)
	}
	c.TitleAPIBaseURL = strings.TrimRight(c.TitleAPIBaseURL, "/")

	u, err := url.Parse(c.OBS.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("invalid OBS websocket URL %q (use ws://host:port)", c.OBS.URL)
	}
	if c.OBS.ReconnectInterval <= 0 {
		return errors.New("OBS reconnect interval must be positive")
	}
	c.TwitchChannel = strings.TrimSpace(c.TwitchChannel)
	return nil
}
