// Package title produces the context fragment embedded in a renamed
// recording, using the strategy selected by the configured rename mode.
package title

import (
	"context"
	"fmt"

	"github.com/backmassage/clipnamer/internal/config"
	"github.com/backmassage/clipnamer/internal/naming"
	"github.com/backmassage/clipnamer/internal/steam"
	"github.com/backmassage/clipnamer/internal/window"
)

// UnknownWindow is the fragment used when the foreground window lookup fails.
const UnknownWindow = "Unknown Window"

// twitchPrefix starts every Twitch fragment.
const twitchPrefix = "VOD_"

// TwitchSource fetches the channel's game and stream title.
type TwitchSource interface {
	Game(ctx context.Context, channel string) (string, error)
	Title(ctx context.Context, channel string) (string, error)
}

// Logger is the subset of logging.Logger the resolver needs.
type Logger interface {
	Warn(string, ...any)
	Debug(bool, string, ...any)
}

// Resolver turns a config snapshot into a sanitized fragment.
type Resolver struct {
	Steam  steam.Resolver
	Window window.Detector
	Twitch TwitchSource
	Log    Logger
}

// Resolve returns the fragment for cfg.Mode. Absence (no game, no window)
// resolves to a label, never an error; only the Twitch mode can fail, when
// the channel is unset or the lookup service is unreachable.
func (r *Resolver) Resolve(ctx context.Context, cfg config.Config) (string, error) {
	switch cfg.Mode {
	case config.ModeSteamGame:
		return r.steamGame(cfg), nil
	case config.ModeTwitchTitle:
		return r.twitch(ctx, cfg)
	case config.ModeForegroundWindow:
		return r.foregroundWindow(ctx, cfg), nil
	default:
		r.Log.Debug(cfg.Debug, "Rename mode %s is not implemented; leaving name unchanged", cfg.Mode)
		return "", nil
	}
}

func (r *Resolver) steamGame(cfg config.Config) string {
	game, err := r.Steam.RunningGame()
	if err != nil {
		r.Log.Warn("Steam lookup failed, treating as no game: %v", err)
	}
	if game == nil {
		r.Log.Debug(cfg.Debug, "No Steam game running; using %q", cfg.NoGameLabel)
		return naming.Sanitize(cfg.NoGameLabel)
	}
	name := naming.Sanitize(game.Name)
	r.Log.Debug(cfg.Debug, "Current Steam game: %q (app %s)", name, game.ID)
	return name
}

func (r *Resolver) twitch(ctx context.Context, cfg config.Config) (string, error) {
	game, err := r.Twitch.Game(ctx, cfg.TwitchChannel)
	if err != nil {
		return "", fmt.Errorf("twitch game: %w", err)
	}
	streamTitle, err := r.Twitch.Title(ctx, cfg.TwitchChannel)
	if err != nil {
		return "", fmt.Errorf("twitch title: %w", err)
	}
	raw := TwitchFragment(cfg.TwitchChannel, game, streamTitle)
	r.Log.Debug(cfg.Debug, "Twitch channel %s: game %q, title %q", cfg.TwitchChannel, game, streamTitle)
	return naming.Sanitize(raw), nil
}

// TwitchFragment builds the unsanitized Twitch fragment:
// VOD_<channel>_<game>_<title>.
func TwitchFragment(channel, game, streamTitle string) string {
	return twitchPrefix + channel + "_" + game + "_" + streamTitle
}

func (r *Resolver) foregroundWindow(ctx context.Context, cfg config.Config) string {
	t, err := r.Window.ForegroundTitle(ctx)
	if err != nil {
		r.Log.Debug(cfg.Debug, "Foreground window lookup failed: %v", err)
		t = UnknownWindow
	}
	name := naming.Sanitize(t)
	r.Log.Debug(cfg.Debug, "Current foreground window: %q", name)
	return name
}
