// Package cli wires the clipnamer commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/clipnamer/internal/config"
	"github.com/backmassage/clipnamer/internal/logging"
	"github.com/backmassage/clipnamer/internal/steam"
	"github.com/backmassage/clipnamer/internal/title"
	"github.com/backmassage/clipnamer/internal/twitch"
	"github.com/backmassage/clipnamer/internal/version"
	"github.com/backmassage/clipnamer/internal/window"
)

// Dependencies are the platform collaborators plus the state the root
// command fills in before a subcommand runs.
type Dependencies struct {
	Steam  steam.Resolver
	Window window.Detector

	// Set by the root command's pre-run.
	Config config.Config
	Log    *logging.Logger
}

// NewDependencies returns the platform defaults.
func NewDependencies() *Dependencies {
	return &Dependencies{
		Steam:  steam.Default(),
		Window: window.Default(),
	}
}

// Close releases the logger's file sink.
func (d *Dependencies) Close() error {
	if d.Log == nil {
		return nil
	}
	return d.Log.Close()
}

func (d *Dependencies) twitchClient(cfg config.Config) *twitch.Client {
	return twitch.NewClient(cfg.TitleAPIBaseURL, cfg.TitleAPITimeout.D())
}

func (d *Dependencies) titles(cfg config.Config) *title.Resolver {
	return &title.Resolver{
		Steam:  d.Steam,
		Window: d.Window,
		Twitch: d.twitchClient(cfg),
		Log:    d.Log,
	}
}

// rootFlags override the config file and environment.
type rootFlags struct {
	configPath string
	mode       string
	channel    string
	obsURL     string
	logFile    string
	color      string
	debug      bool
	replays    bool
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "clipnamer",
		Short: "Rename OBS recordings after the game, stream or window they captured",
		Long: "clipnamer listens to OBS over obs-websocket and, when a recording stops or a replay is saved, " +
			"waits for the remux and renames the file to <name>_<context>.<ext>.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			log, err := logging.NewLogger(&cfg)
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			deps.Config = cfg
			deps.Log = log
			return nil
		},
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (.toml or .yaml; default $XDG_CONFIG_HOME/clipnamer/config.toml)")
	pf.StringVarP(&flags.mode, "mode", "m", "", "rename mode: steam, twitch or window")
	pf.StringVar(&flags.channel, "twitch-channel", "", "Twitch channel for the twitch mode")
	pf.StringVar(&flags.obsURL, "obs-url", "", "obs-websocket URL")
	pf.StringVar(&flags.logFile, "log-file", "", "also append log lines to this file")
	pf.StringVar(&flags.color, "color", "", "color output: auto, always or never")
	pf.BoolVarP(&flags.debug, "debug", "d", false, "log debug messages")
	pf.BoolVar(&flags.replays, "rename-replays", false, "rename saved replays too")

	rootCmd.AddCommand(NewRunCmd(deps, flags))
	rootCmd.AddCommand(NewRenameCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))
	rootCmd.AddCommand(NewSteamCmd(deps))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// loadConfig layers defaults, the config file, CLIPNAMER_* variables and
// explicitly set flags, then validates the result.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (config.Config, error) {
	path := config.ExpandTilde(flags.configPath)
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, config.DefaultConfig())
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	fs := cmd.Flags()
	if fs.Changed("mode") {
		m, err := config.ParseRenameMode(flags.mode)
		if err != nil {
			return cfg, fmt.Errorf("--mode: %w", err)
		}
		cfg.Mode = m
	}
	if fs.Changed("twitch-channel") {
		cfg.TwitchChannel = flags.channel
	}
	if fs.Changed("obs-url") {
		cfg.OBS.URL = flags.obsURL
	}
	if fs.Changed("log-file") {
		cfg.LogFile = flags.logFile
	}
	if fs.Changed("color") {
		cfg.ColorMode = config.ColorMode(flags.color)
	}
	if fs.Changed("debug") {
		cfg.Debug = flags.debug
	}
	if fs.Changed("rename-replays") {
		cfg.RenameReplays = flags.replays
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
