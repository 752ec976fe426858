package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events editors produce on save.
const reloadDebounce = 200 * time.Millisecond

// Store publishes the current configuration. Readers take a copy with
// [Store.Snapshot]; writers swap the whole value, so a reader never observes
// a partially updated config.
type Store struct {
	cur atomic.Pointer[Config]
}

// NewStore returns a Store holding cfg.
func NewStore(cfg Config) *Store {
	s := &Store{}
	s.Replace(cfg)
	return s
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	return *s.cur.Load()
}

// Replace publishes cfg as the current configuration.
func (s *Store) Replace(cfg Config) {
	c := cfg
	s.cur.Store(&c)
}

// ReloadFunc rebuilds the full configuration (file, environment, flags).
type ReloadFunc func() (Config, error)

// Watch re-runs reload whenever the file at path is written, created, or
// renamed into place, and publishes the result. The directory is watched
// rather than the file so atomic-save editors are handled. onResult is
// called after each attempt with the new config or the error; a failed
// reload keeps the previous config. Watch blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, path string, reload ReloadFunc, onResult func(Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if onResult != nil {
				onResult(s.Snapshot(), fmt.Errorf("config watcher: %w", err))
			}
		case <-fire:
			fire = nil
			cfg, err := reload()
			if err == nil {
				s.Replace(cfg)
			}
			if onResult != nil {
				onResult(cfg, err)
			}
		}
	}
}
