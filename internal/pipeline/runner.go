package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/backmassage/clipnamer/internal/config"
	"github.com/backmassage/clipnamer/internal/display"
	"github.com/backmassage/clipnamer/internal/logging"
	"github.com/backmassage/clipnamer/internal/metrics"
	"github.com/backmassage/clipnamer/internal/naming"
	"github.com/backmassage/clipnamer/internal/remux"
)

// TitleResolver produces the fragment for a config snapshot.
type TitleResolver interface {
	Resolve(ctx context.Context, cfg config.Config) (string, error)
}

// Awaiter waits for the remux of an intermediate file.
type Awaiter interface {
	Await(ctx context.Context, intermediate string) (remux.Result, error)
}

// Runner starts and tracks rename tasks.
type Runner struct {
	Config     *config.Store
	Titles     TitleResolver
	Log        *logging.Logger
	Metrics    *metrics.Metrics
	Collisions *naming.CollisionResolver

	// Waiter builds the remux waiter for a task. Defaults to remux.NewWaiter.
	Waiter func(cfg config.Config, log remux.Logger) Awaiter

	ctx      context.Context
	wg       sync.WaitGroup
	stats    statsCounter
	collOnce sync.Once
}

// NewRunner returns a Runner whose background tasks run under ctx. Cancel
// ctx to abort pending remux waits.
func NewRunner(ctx context.Context, store *config.Store, titles TitleResolver, log *logging.Logger, m *metrics.Metrics) *Runner {
	return &Runner{
		Config:     store,
		Titles:     titles,
		Log:        log,
		Metrics:    m,
		Collisions: naming.NewCollisionResolver(),
		ctx:        ctx,
	}
}

// OnRecordingStopped starts a task for a finished recording.
func (r *Runner) OnRecordingStopped(path string) { r.spawn(KindRecording, path) }

// OnReplaySaved starts a task for a saved replay.
func (r *Runner) OnReplaySaved(path string) { r.spawn(KindReplay, path) }

// Wait blocks until every started task has finished.
func (r *Runner) Wait() { r.wg.Wait() }

// Stats returns a copy of the task counters.
func (r *Runner) Stats() TaskStats { return r.stats.snapshot() }

// RunOnce runs one task synchronously with the current config snapshot.
func (r *Runner) RunOnce(ctx context.Context, kind Kind, path string) Outcome {
	return r.execute(ctx, r.Config.Snapshot(), kind, path)
}

func (r *Runner) spawn(kind Kind, path string) {
	if path == "" {
		r.Log.Warn("Host reported a %s without a file path; nothing to rename", kind)
		return
	}
	cfg := r.Config.Snapshot()
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(ctx, cfg, kind, path)
	}()
}

// execute runs a task end to end. It never panics.
func (r *Runner) execute(ctx context.Context, cfg config.Config, kind Kind, path string) (out Outcome) {
	out = Outcome{
		TaskID: ulid.Make().String(),
		Kind:   kind,
		Source: path,
		Path:   path,
		Status: StatusFailed,
	}
	log := r.Log.With(out.TaskID)

	r.stats.start()
	r.Metrics.TaskStarted(kind.String())
	defer func() {
		if p := recover(); p != nil {
			out.Status = StatusFailed
			out.Err = fmt.Errorf("%w: %v", ErrPanic, p)
			log.Error("Rename task aborted: %v", out.Err)
		}
		r.stats.finish(out.Status)
		r.Metrics.TaskFinished(kind.String(), out.Status.String(), out.Remux.Waited)
	}()

	log.Info("New %s: %s", kind, filepath.Base(path))
	log.Debug(cfg.Debug, "Mode: %s, rename replays: %t, source: %s", cfg.Mode, cfg.RenameReplays, path)

	if err := r.task(ctx, cfg, log, &out); err != nil {
		out.Status = StatusFailed
		out.Err = err
		log.Error("Rename failed for %s: %v", filepath.Base(path), err)
	}
	return out
}

func (r *Runner) task(ctx context.Context, cfg config.Config, log *logging.Logger, out *Outcome) error {
	res, err := r.waiter(cfg, log).Await(ctx, out.Source)
	out.Remux = res
	out.Path = res.Path
	switch {
	case errors.Is(err, remux.ErrCleanupTimeout):
		log.Warn("%v; renaming the remuxed file anyway", err)
	case err != nil:
		return fmt.Errorf("remux wait: %w", err)
	}
	if res.Cleaned {
		log.Debug(cfg.Debug, "Removed %s after %s", filepath.Base(out.Source), display.FormatWait(res.Waited))
	}

	if out.Kind == KindReplay && !cfg.RenameReplays {
		out.Status = StatusSkipped
		log.Info("Replay renaming is off; keeping %s", filepath.Base(out.Path))
		return nil
	}

	fragment, err := r.Titles.Resolve(ctx, cfg)
	if err != nil {
		return fmt.Errorf("resolve title: %w", err)
	}
	out.Fragment = fragment

	requested := naming.RenamedPath(out.Path, fragment)
	if requested == out.Path {
		out.Status = StatusUnchanged
		log.Info("No title for this %s; keeping %s", out.Kind, filepath.Base(out.Path))
		return nil
	}

	dest := r.collisions().Claim(out.Path, requested)
	defer r.collisions().Release(dest)
	if dest != requested {
		log.Warn("%s already exists; using %s", filepath.Base(requested), filepath.Base(dest))
	}

	if err := os.Rename(out.Path, dest); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	out.Path = dest
	out.Status = StatusRenamed

	size := "?"
	if fi, err := os.Stat(dest); err == nil {
		size = display.FormatBytes(fi.Size())
	}
	log.Success("Renamed to %s (%s)", filepath.Base(dest), size)
	return nil
}

func (r *Runner) waiter(cfg config.Config, log *logging.Logger) Awaiter {
	if r.Waiter != nil {
		return r.Waiter(cfg, log)
	}
	return remux.NewWaiter(cfg, log)
}

func (r *Runner) collisions() *naming.CollisionResolver {
	r.collOnce.Do(func() {
		if r.Collisions == nil {
			r.Collisions = naming.NewCollisionResolver()
		}
	})
	return r.Collisions
}
