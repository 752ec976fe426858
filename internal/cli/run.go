package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/backmassage/clipnamer/internal/config"
	"github.com/backmassage/clipnamer/internal/display"
	"github.com/backmassage/clipnamer/internal/logging"
	"github.com/backmassage/clipnamer/internal/metrics"
	"github.com/backmassage/clipnamer/internal/obs"
	"github.com/backmassage/clipnamer/internal/pipeline"
	"github.com/backmassage/clipnamer/internal/version"
)

func NewRunCmd(deps *Dependencies, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch OBS and rename recordings as they finish",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			display.PrintBanner(cmd.OutOrStdout(), version.Version)
			reload := func() (config.Config, error) { return loadConfig(cmd, flags) }
			return runDaemon(ctx, deps, reload)
		},
	}
}

// runDaemon connects to OBS and starts a rename task per event until ctx
// ends, then waits for in-flight tasks.
func runDaemon(ctx context.Context, deps *Dependencies, reload config.ReloadFunc) error {
	cfg := deps.Config
	log := deps.Log
	dumpConfig(log, cfg)

	store := config.NewStore(cfg)
	m := metrics.New()
	runner := pipeline.NewRunner(ctx, store, deps.titles(cfg), log, m)

	listener := &obs.Listener{
		URL:               cfg.OBS.URL,
		Password:          cfg.OBS.Password,
		ReconnectInterval: cfg.OBS.ReconnectInterval.D(),
		Debug:             cfg.Debug,
		Log:               log.With("obs"),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listener.Listen(gctx, func(ev obs.Event) {
			m.Event(ev.Type)
			switch ev.Kind {
			case obs.RecordingStopped:
				runner.OnRecordingStopped(ev.Path)
			case obs.ReplaySaved:
				runner.OnReplaySaved(ev.Path)
			}
		})
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			log.Info("Serving metrics on http://%s/metrics", cfg.MetricsAddr)
			return m.Serve(gctx, cfg.MetricsAddr)
		})
	}
	if cfg.Path != "" {
		g.Go(func() error {
			return store.Watch(gctx, cfg.Path, reload, func(next config.Config, err error) {
				if err != nil {
					log.Warn("Config reload failed, keeping previous settings: %v", err)
					return
				}
				log.Info("Config reloaded from %s (mode: %s)", next.Path, next.Mode)
				dumpConfig(log, next)
			})
		})
	}

	log.Info("Mode: %s; waiting for recordings from %s", cfg.Mode, cfg.OBS.URL)
	err := g.Wait()

	if n := runner.Stats().InFlight(); n > 0 {
		log.Info("Waiting for %d rename task(s) to finish...", n)
	}
	runner.Wait()
	st := runner.Stats()
	log.Info("Done: %d renamed, %d unchanged, %d skipped, %d failed", st.Renamed, st.Unchanged, st.Skipped, st.Failed)
	return err
}

// dumpConfig logs the effective settings at debug level with the OBS
// password masked.
func dumpConfig(log *logging.Logger, cfg config.Config) {
	if !cfg.Debug {
		return
	}
	if cfg.OBS.Password != "" {
		cfg.OBS.Password = "********"
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		log.Debug(true, "Config: %+v", cfg)
		return
	}
	log.Debug(true, "Effective config (%s):", orDefault(cfg.Path, "defaults"))
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		log.Debug(true, "  %s", line)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
