package obs

import (
	"context"
	"errors"
	"time"
)

// Logger is the subset of logging.Logger the listener needs.
type Logger interface {
	Success(string, ...any)
	Warn(string, ...any)
	Debug(bool, string, ...any)
}

// Listener keeps a connection open and hands each event to a handler,
// reconnecting whenever the host goes away.
type Listener struct {
	URL               string
	Password          string
	ReconnectInterval time.Duration
	Debug             bool
	Log               Logger

	// OnConnect, when set, runs after each successful handshake.
	OnConnect func(*Client)
}

// Listen blocks until ctx is done. Handlers run on the listener goroutine
// and should return quickly.
func (l *Listener) Listen(ctx context.Context, handle func(Event)) error {
	interval := l.ReconnectInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	for {
		c, err := Dial(ctx, l.URL, l.Password)
		switch {
		case ctx.Err() != nil:
			if c != nil {
				c.Close()
			}
			return nil
		case errors.Is(err, ErrAuthRequired):
			l.Log.Warn("OBS at %s requires a password; set obs.password", l.URL)
		case err != nil:
			l.Log.Warn("Cannot reach OBS: %v; retrying in %s", err, interval)
		default:
			l.Log.Success("Connected to OBS at %s (obs-websocket %s)", l.URL, c.Version)
			if l.OnConnect != nil {
				l.OnConnect(c)
			}
			l.consume(ctx, c, handle)
			c.Close()
			if ctx.Err() != nil {
				return nil
			}
			l.Log.Warn("Lost connection to OBS: %v; reconnecting in %s", c.Err(), interval)
		}

		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

func (l *Listener) consume(ctx context.Context, c *Client, handle func(Event)) {
	for {
		select {
		case <-ctx.Done():
			c.Close()
			return
		case ev, ok := <-c.Events():
			if !ok {
				return
			}
			l.Log.Debug(l.Debug, "OBS event %s: %s", ev.Type, ev.Path)
			handle(ev)
		}
	}
}
