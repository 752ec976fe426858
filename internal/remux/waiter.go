package remux

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/backmassage/clipnamer/internal/config"
	"github.com/backmassage/clipnamer/internal/naming"
)

// ErrCleanupTimeout is returned when the intermediate file is still locked
// after the lock deadline.
var ErrCleanupTimeout = errors.New("intermediate file still locked")

// progressEvery controls how often the wait loop logs while polling.
const progressEvery = 100

// Logger is the subset of logging.Logger the waiter needs.
type Logger interface {
	Info(string, ...any)
	Warn(string, ...any)
	Debug(bool, string, ...any)
}

// Waiter holds the timing for one task. Build it from the task's config
// snapshot with [NewWaiter].
type Waiter struct {
	FinalExt     string
	PollInterval time.Duration
	MaxPolls     int
	LockDeadline time.Duration
	Debug        bool
	Log          Logger

	// Remove deletes a file. Defaults to os.Remove.
	Remove func(string) error
}

// NewWaiter returns a Waiter configured from cfg.
func NewWaiter(cfg config.Config, log Logger) *Waiter {
	return &Waiter{
		FinalExt:     cfg.FinalExtension,
		PollInterval: cfg.PollInterval.D(),
		MaxPolls:     cfg.MaxPolls,
		LockDeadline: cfg.LockDeadline.D(),
		Debug:        cfg.Debug,
		Log:          log,
		Remove:       os.Remove,
	}
}

// Result describes what Await found and did.
type Result struct {
	// Path is the file the caller should rename: the final file when it
	// appeared, otherwise the intermediate.
	Path string
	// Intermediate is the path the host reported.
	Intermediate string
	// Remuxed is true when Path is in the final container.
	Remuxed bool
	// Cleaned is true when the intermediate was deleted.
	Cleaned bool
	// Polls counts poll ticks spent waiting; zero when the final file was
	// already present.
	Polls int
	// Waited is the total time spent in Await.
	Waited time.Duration
}

// FinalPath returns the expected remux output for intermediate.
func FinalPath(intermediate, ext string) string {
	return naming.ReplaceExt(intermediate, ext)
}

// Await waits for the final file of intermediate and deletes intermediate.
//
//   - If intermediate already has the final extension there is nothing to
//     wait for and nothing is deleted.
//   - If the final file does not appear within MaxPolls polls a warning is
//     logged and Await returns without error; intermediate is kept because
//     it is the only copy of the recording.
//   - If intermediate stays locked past LockDeadline, ErrCleanupTimeout is
//     returned along with a Result whose Path is the final file.
func (w *Waiter) Await(ctx context.Context, intermediate string) (Result, error) {
	start := time.Now()
	res := Result{Path: intermediate, Intermediate: intermediate}
	if strings.EqualFold(strings.TrimPrefix(filepath.Ext(intermediate), "."), w.FinalExt) {
		w.Log.Debug(w.Debug, "%s already has the final extension; no remux to wait for", filepath.Base(intermediate))
		res.Remuxed = true
		return res, nil
	}

	final := FinalPath(intermediate, w.FinalExt)
	found, polls, err := w.waitFor(ctx, final, intermediate)
	res.Polls = polls
	if err != nil {
		res.Waited = time.Since(start)
		return res, err
	}
	if !found {
		res.Waited = time.Since(start)
		w.Log.Warn("Remux output %s did not appear after %d polls; keeping %s",
			filepath.Base(final), polls, filepath.Base(intermediate))
		return res, nil
	}
	res.Path = final
	res.Remuxed = true

	if err := w.removeLocked(ctx, intermediate); err != nil {
		res.Waited = time.Since(start)
		return res, err
	}
	res.Cleaned = true
	res.Waited = time.Since(start)
	return res, nil
}

// waitFor polls for path every PollInterval, up to MaxPolls ticks. A
// directory watch wakes the loop as soon as path is created; when the watch
// cannot be set up the loop falls back to polling alone.
func (w *Waiter) waitFor(ctx context.Context, path, intermediate string) (bool, int, error) {
	if exists(path) {
		return true, 0, nil
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(path)); err == nil {
			events, errs = watcher.Events, watcher.Errors
		} else {
			w.Log.Debug(w.Debug, "Directory watch unavailable, polling only: %v", err)
		}
	}

	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	polls := 0
	for polls < w.MaxPolls {
		select {
		case <-ctx.Done():
			return false, polls, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) == filepath.Clean(path) && exists(path) {
				return true, polls, nil
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		case <-ticker.C:
			polls++
			if exists(path) {
				return true, polls, nil
			}
			if polls%progressEvery == 0 {
				w.Log.Debug(w.Debug, "Waiting on remux... final: %s intermediate: %s", path, intermediate)
			}
		}
	}
	return exists(path), polls, nil
}

// removeLocked deletes path, retrying while the host still holds it open.
func (w *Waiter) removeLocked(ctx context.Context, path string) error {
	remove := w.Remove
	if remove == nil {
		remove = os.Remove
	}
	deadline := time.Now().Add(w.LockDeadline)
	for attempt := 1; ; attempt++ {
		err := remove(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) || !exists(path) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s after %d attempts: %v", ErrCleanupTimeout, filepath.Base(path), attempt, err)
		}
		if attempt == 1 {
			w.Log.Info("Waiting for the remux to finish before removing %s...", filepath.Base(path))
		}

		t := time.NewTimer(w.PollInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
