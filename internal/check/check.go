// Package check runs the doctor diagnostics: it reports whether each
// collaborator the daemon relies on (OBS, Steam, the foreground-window tool,
// the title lookup service) is reachable from this machine.
package check

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/backmassage/clipnamer/internal/config"
	"github.com/backmassage/clipnamer/internal/obs"
	"github.com/backmassage/clipnamer/internal/steam"
	"github.com/backmassage/clipnamer/internal/title"
	"github.com/backmassage/clipnamer/internal/window"
)

// Sentinel errors for failed checks.
var (
	ErrOBSUnreachable      = errors.New("OBS websocket unreachable")
	ErrTitleAPIUnreachable = errors.New("title lookup service unreachable")
	ErrWindowToolMissing   = errors.New("foreground window tool not on PATH")
)

const checkTimeout = 5 * time.Second

// Logger is the minimal logging interface needed by Run.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
	Debug(bool, string, ...any)
}

// VersionCaller issues an obs-websocket request.
type VersionCaller interface {
	Call(ctx context.Context, requestType string, data any) (json.RawMessage, error)
	Close() error
}

// Deps are the collaborators under test.
type Deps struct {
	Steam  steam.Resolver
	Window window.Detector
	Twitch title.TwitchSource
	// Dial opens an OBS connection. Defaults to obs.Dial.
	Dial func(ctx context.Context, url, password string) (VersionCaller, error)
}

// Result lists the failed checks that matter for the configured mode.
type Result struct {
	Failures []error
}

// OK reports whether every required check passed.
func (r Result) OK() bool { return len(r.Failures) == 0 }

// Run logs the outcome of each check. Only failures that would stop the
// configured mode from working are returned; the rest are warnings.
func Run(ctx context.Context, cfg config.Config, deps Deps, log Logger) Result {
	log.Info("=== clipnamer doctor ===")
	log.Info("Rename mode: %s, final extension: .%s", cfg.Mode, cfg.FinalExtension)

	var res Result
	fail := func(err error, required bool) {
		if required {
			res.Failures = append(res.Failures, err)
		}
	}

	if err := checkOBS(ctx, cfg, deps, log); err != nil {
		fail(err, true)
	}
	checkSteam(cfg, deps.Steam, log)
	if err := checkWindow(ctx, deps.Window, log); err != nil {
		fail(err, cfg.Mode == config.ModeForegroundWindow)
	}
	if err := checkTitleAPI(ctx, cfg, deps.Twitch, log); err != nil {
		fail(err, cfg.Mode == config.ModeTwitchTitle)
	}
	return res
}

// checkOBS connects and asks for the server version.
func checkOBS(ctx context.Context, cfg config.Config, deps Deps, log Logger) error {
	dial := deps.Dial
	if dial == nil {
		dial = func(ctx context.Context, url, password string) (VersionCaller, error) {
			return obs.Dial(ctx, url, password)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	c, err := dial(ctx, cfg.OBS.URL, cfg.OBS.Password)
	if err != nil {
		log.Error("OBS: %v", err)
		return fmt.Errorf("%w: %v", ErrOBSUnreachable, err)
	}
	defer c.Close()

	raw, err := c.Call(ctx, "GetVersion", nil)
	if err != nil {
		log.Error("OBS GetVersion: %v", err)
		return fmt.Errorf("%w: %v", ErrOBSUnreachable, err)
	}
	var v struct {
		OBSVersion          string `json:"obsVersion"`
		OBSWebSocketVersion string `json:"obsWebSocketVersion"`
		Platform            string `json:"platform"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Warn("OBS at %s answered GetVersion with an unreadable reply: %v", cfg.OBS.URL, err)
		return nil
	}
	log.Success("OBS %s (obs-websocket %s) at %s", v.OBSVersion, v.OBSWebSocketVersion, cfg.OBS.URL)
	return nil
}

// checkSteam reports the running game. Steam being closed is not a failure.
func checkSteam(cfg config.Config, r steam.Resolver, log Logger) {
	if r == nil {
		log.Warn("Steam: no lookup available on this platform")
		return
	}
	g, err := r.RunningGame()
	switch {
	case err != nil:
		log.Warn("Steam: %v", err)
	case g == nil:
		log.Info("Steam: no game running (recordings get %q)", cfg.NoGameLabel)
	default:
		log.Success("Steam: %s", g)
	}
}

func checkWindow(ctx context.Context, d window.Detector, log Logger) error {
	if d == nil {
		log.Warn("Foreground window: not supported on this platform")
		return window.ErrUnsupported
	}
	if tool := window.Tool(d); tool != "" {
		if _, err := exec.LookPath(tool); err != nil {
			log.Warn("Foreground window: %s not found", tool)
			return fmt.Errorf("%w: %s", ErrWindowToolMissing, tool)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	t, err := d.ForegroundTitle(ctx)
	if err != nil {
		log.Warn("Foreground window: %v", err)
		return err
	}
	log.Success("Foreground window: %q", t)
	return nil
}

func checkTitleAPI(ctx context.Context, cfg config.Config, src title.TwitchSource, log Logger) error {
	if cfg.TwitchChannel == "" {
		log.Info("Title service: no Twitch channel configured, skipped")
		if cfg.Mode == config.ModeTwitchTitle {
			return fmt.Errorf("%w: no channel configured", ErrTitleAPIUnreachable)
		}
		return nil
	}
	if src == nil {
		return fmt.Errorf("%w: no client", ErrTitleAPIUnreachable)
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	game, err := src.Game(ctx, cfg.TwitchChannel)
	if err != nil {
		log.Warn("Title service %s: %v", cfg.TitleAPIBaseURL, err)
		return fmt.Errorf("%w: %v", ErrTitleAPIUnreachable, err)
	}
	log.Success("Title service: %s is playing %q", cfg.TwitchChannel, game)
	return nil
}
