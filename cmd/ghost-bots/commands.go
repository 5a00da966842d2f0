package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/flappyghost/internal/adapters/docstore/httpstore"
	"github.com/okian/flappyghost/internal/bots"
	"github.com/okian/flappyghost/internal/config"
	"github.com/okian/flappyghost/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type rootFlags struct {
	closeLog   func() error
	storeURL   string
	collection string
	logFile    string
	logLevel   string
	timeout    time.Duration
}

type playFlags struct {
	players   int
	rounds    int
	maxTicks  int
	noise     float64
	seed      int64
	frame     time.Duration
	countdown time.Duration
	localPath string
	debug     bool
}

func normalize(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// close releases the log file opened for the command, if any.
func (rf *rootFlags) close() error {
	if rf.closeLog == nil {
		return nil
	}
	err := rf.closeLog()
	rf.closeLog = nil
	return err
}

func newRootCmd() (*cobra.Command, *rootFlags) {
	rf := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "ghost-bots",
		Short:         "Headless Flappy Ghost players and death feed for a ghost store.",
		Args:          cobra.NoArgs,
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			closeLog, err := bots.SetupLogging(rf.logFile)
			if err != nil {
				return err
			}
			rf.closeLog = closeLog
			if rf.logLevel != "" {
				return logger.SetLevelString(rf.logLevel)
			}
			return nil
		},
	}

	cmd.SetGlobalNormalizationFunc(normalize)

	pfs := cmd.PersistentFlags()
	pfs.StringVarP(&rf.storeURL, "store-url", "u", "", "ghost store base URL (env: FLAPPYGHOST_STORE_URL)")
	pfs.StringVarP(&rf.collection, "collection", "c", "", "death record collection (env: FLAPPYGHOST_COLLECTION)")
	pfs.StringVar(&rf.logFile, "log-file", "", "also write logs to this file")
	pfs.StringVar(&rf.logLevel, "log-level", "", "debug, info, warn or error (env: FLAPPYGHOST_LOG_LEVEL)")
	pfs.DurationVar(&rf.timeout, "timeout", 5*time.Second, "HTTP request timeout")

	cmd.AddCommand(newPlayCmd(rf), newWatchCmd(rf))
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("ghost-bots v{{.Version}}\n")
	return cmd, rf
}

// loadConfig layers flags that were set on top of file and env config.
func loadConfig(cmd *cobra.Command, rf *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("store-url") {
		cfg.StoreURL = rf.storeURL
	}
	if flags.Changed("collection") {
		cfg.Collection = rf.collection
	}
	if !flags.Changed("log-level") {
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	cfg.StoreURL = strings.TrimRight(cfg.StoreURL, "/")
	return cfg, nil
}

func newPlayCmd(rf *rootFlags) *cobra.Command {
	pf := &playFlags{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play rounds with autopilot bots and record their deaths.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, rf)
			if err != nil {
				return err
			}
			bc := bots.FromConfig(cfg)
			bc.Timeout = rf.timeout
			bc.Players = pf.players
			bc.Rounds = pf.rounds
			bc.MaxTicks = pf.maxTicks
			bc.Noise = pf.noise
			bc.Seed = pf.seed
			flags := cmd.Flags()
			if flags.Changed("frame") {
				bc.FrameInterval = pf.frame
			}
			if flags.Changed("countdown") {
				bc.CountdownInterval = pf.countdown
			}
			if flags.Changed("local-path") {
				bc.LocalPath = pf.localPath
			}
			if flags.Changed("debug") {
				bc.Debug = pf.debug
			}

			stats, err := bots.Run(cmd.Context(), bc)
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "rounds=%d best=%d recorded=%d stored=%d duration=%s\n",
					stats.RoundsPlayed, stats.BestScore, stats.Recorded, stats.Stored, stats.Duration.Round(time.Millisecond))
			}
			return err
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&pf.players, "players", "p", 4, "concurrent bot players")
	fs.IntVarP(&pf.rounds, "rounds", "r", 3, "rounds per player")
	fs.IntVar(&pf.maxTicks, "max-ticks", 3000, "ticks after which a bot stops flapping")
	fs.Float64Var(&pf.noise, "noise", 4, "autopilot aim jitter in pixels")
	fs.Int64Var(&pf.seed, "seed", 0, "random seed; 0 seeds from the clock")
	fs.DurationVar(&pf.frame, "frame", 0, "frame interval (env: FLAPPYGHOST_FRAME_INTERVAL_MS)")
	fs.DurationVar(&pf.countdown, "countdown", 0, "countdown step interval (env: FLAPPYGHOST_COUNTDOWN_INTERVAL_MS)")
	fs.StringVar(&pf.localPath, "local-path", "", "YAML file for best scores (env: FLAPPYGHOST_LOCAL_STORE_PATH)")
	fs.BoolVar(&pf.debug, "debug", false, "panic on out-of-phase ticks (env: FLAPPYGHOST_DEBUG_ASSERTIONS)")
	return cmd
}

func newWatchCmd(rf *rootFlags) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print deaths as they are recorded.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, rf)
			if err != nil {
				return err
			}
			client, err := httpstore.New(cfg.StoreURL, httpstore.WithTimeout(rf.timeout))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}
			return bots.Watch(ctx, client, cfg.Collection, cmd.OutOrStdout())
		},
	}
	fs := cmd.Flags()
	fs.DurationVarP(&duration, "for", "d", 0, "stop after this long; 0 watches until interrupted")
	return cmd
}
