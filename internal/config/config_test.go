package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRenameMode(t *testing.T) {
	tests := []struct {
		in      string
		want    RenameMode
		wantErr bool
	}{
		{"steam", ModeSteamGame, false},
		{"0", ModeSteamGame, false},
		{"Twitch", ModeTwitchTitle, false},
		{"1", ModeTwitchTitle, false},
		{" window ", ModeForegroundWindow, false},
		{"2", ModeForegroundWindow, false},
		{"3", 0, true},
		{"scene", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRenameMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "mp4", cfg.FinalExtension)
}

func TestValidate_Mode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = RenameMode(5)
	assert.Error(t, cfg.Validate())
}

func TestValidate_FinalExtension(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		want    string
		wantErr bool
	}{
		{"plain", "mp4", "mp4", false},
		{"leading dot", ".MOV", "mov", false},
		{"empty", "", "", true},
		{"separator", "a/b", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.FinalExtension = tt.ext
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.FinalExtension)
		})
	}
}

func TestValidate_OBSURL(t *testing.T) {
	for _, u := range []string{"http://localhost:4455", "localhost:4455", "ws://"} {
		cfg := DefaultConfig()
		cfg.OBS.URL = u
		assert.Error(t, cfg.Validate(), u)
	}
	cfg := DefaultConfig()
	cfg.OBS.URL = "wss://obs.lan:4455"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Bounds(t *testing.T) {
	mutators := map[string]func(*Config){
		"poll interval": func(c *Config) { c.PollInterval = 0 },
		"max polls":     func(c *Config) { c.MaxPolls = -1 },
		"lock deadline": func(c *Config) { c.LockDeadline = 0 },
		"api timeout":   func(c *Config) { c.TitleAPITimeout = 0 },
		"reconnect":     func(c *Config) { c.OBS.ReconnectInterval = 0 },
		"color":         func(c *Config) { c.ColorMode = "sometimes" },
	}
	for name, mutate := range mutators {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
mode = 1
twitch_channel = "exampleuser"
rename_replays = true
poll_interval = "250ms"
lock_deadline = "30s"

[obs]
url = "ws://10.0.0.2:4455"
password = "hunter2"
`)
	cfg, err := Load(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, ModeTwitchTitle, cfg.Mode)
	assert.Equal(t, "exampleuser", cfg.TwitchChannel)
	assert.True(t, cfg.RenameReplays)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval.D())
	assert.Equal(t, 30*time.Second, cfg.LockDeadline.D())
	assert.Equal(t, "ws://10.0.0.2:4455", cfg.OBS.URL)
	assert.Equal(t, "hunter2", cfg.OBS.Password)
	// Untouched keys keep their defaults.
	assert.Equal(t, 500, cfg.MaxPolls)
	assert.Equal(t, 5*time.Second, cfg.OBS.ReconnectInterval.D())
	assert.Equal(t, path, cfg.Path)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
mode: window
debug: true
no_game_label: Desktop
obs:
  reconnect_interval: 1s
`)
	cfg, err := Load(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, ModeForegroundWindow, cfg.Mode)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "Desktop", cfg.NoGameLabel)
	assert.Equal(t, time.Second, cfg.OBS.ReconnectInterval.D())
	assert.Equal(t, "ws://127.0.0.1:4455", cfg.OBS.URL)
}

func TestLoad_YAMLIntegerMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, "mode: 1\n")
	cfg, err := Load(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, ModeTwitchTitle, cfg.Mode)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"), DefaultConfig())
	assert.Error(t, err)

	ini := filepath.Join(dir, "config.ini")
	writeFile(t, ini, "mode=1")
	_, err = Load(ini, DefaultConfig())
	assert.ErrorIs(t, err, ErrUnknownFormat)

	unknown := filepath.Join(dir, "config.toml")
	writeFile(t, unknown, `modee = 1`)
	_, err = Load(unknown, DefaultConfig())
	assert.Error(t, err)

	badMode := filepath.Join(dir, "bad.yaml")
	writeFile(t, badMode, "mode: scene\n")
	_, err = Load(badMode, DefaultConfig())
	assert.Error(t, err)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CLIPNAMER_MODE", "twitch")
	t.Setenv("CLIPNAMER_TWITCH_CHANNEL", "someone")
	t.Setenv("CLIPNAMER_OBS_PASSWORD", "pw")
	t.Setenv("CLIPNAMER_DEBUG", "true")

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg))
	assert.Equal(t, ModeTwitchTitle, cfg.Mode)
	assert.Equal(t, "someone", cfg.TwitchChannel)
	assert.Equal(t, "pw", cfg.OBS.Password)
	assert.True(t, cfg.Debug)

	t.Setenv("CLIPNAMER_DEBUG", "maybe")
	assert.Error(t, ApplyEnv(&cfg))
}

func TestDefaultPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	assert.Equal(t, "", DefaultPath())

	dir := filepath.Join(xdg, "clipnamer")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeFile(t, filepath.Join(dir, "config.yaml"), "debug: true\n")
	assert.Equal(t, filepath.Join(dir, "config.yaml"), DefaultPath())

	writeFile(t, filepath.Join(dir, "config.toml"), "debug = true\n")
	assert.Equal(t, filepath.Join(dir, "config.toml"), DefaultPath())
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore(DefaultConfig())
	snap := s.Snapshot()
	snap.TwitchChannel = "mutated"
	assert.Equal(t, "", s.Snapshot().TwitchChannel)

	next := DefaultConfig()
	next.Mode = ModeTwitchTitle
	s.Replace(next)
	assert.Equal(t, ModeSteamGame, snap.Mode)
	assert.Equal(t, ModeTwitchTitle, s.Snapshot().Mode)
}

func TestStore_WatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `mode = "steam"`)

	reload := func() (Config, error) {
		cfg, err := Load(path, DefaultConfig())
		if err != nil {
			return cfg, err
		}
		return cfg, cfg.Validate()
	}
	initial, err := reload()
	require.NoError(t, err)
	s := NewStore(initial)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan error, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Watch(ctx, path, reload, func(_ Config, err error) { results <- err })
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, `mode = "twitch"`)

	select {
	case err := <-results:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("config reload not observed")
	}
	assert.Equal(t, ModeTwitchTitle, s.Snapshot().Mode)

	cancel()
	<-done
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
