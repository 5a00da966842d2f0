// Package config defines process configuration and its layered loading.
//
// Conventions:
// - New() returns defaults; Load layers a YAML file and the environment on top.
// - Errors are wrapped with ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/okian/flappyghost/internal/domain/model"
)

// Config contains process configuration for the ghost store server and the game shells.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the ghost store HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreURL is the base URL game shells use to reach the ghost store.
	StoreURL string `koanf:"store_url"`

	// Collection names the document collection holding death records.
	Collection string `koanf:"collection"`

	// GhostTopN bounds the top-scoring ghost query.
	GhostTopN int `koanf:"ghost_top_n"`

	// GhostOwnLimit bounds how many of the player's own most recent deaths are shown.
	// Zero shows none.
	GhostOwnLimit int `koanf:"ghost_own_limit"`

	// QueueSize bounds the pending death record writes.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of death record writers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the store's insert-id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// LocalStorePath is the YAML file holding durable local values (best score).
	LocalStorePath string `koanf:"local_store_path"`

	// FrameIntervalMS and CountdownIntervalMS drive the round loop.
	FrameIntervalMS     int `koanf:"frame_interval_ms"`
	CountdownIntervalMS int `koanf:"countdown_interval_ms"`

	// World geometry overrides.
	ViewportWidth      float64 `koanf:"viewport_width"`
	WorldHeight        float64 `koanf:"world_height"`
	GapSize            float64 `koanf:"gap_size"`
	SpawnIntervalTicks int     `koanf:"spawn_interval_ticks"`
	ScrollSpeed        float64 `koanf:"scroll_speed"`

	// DebugAssertions makes invariant violations panic instead of being ignored.
	DebugAssertions bool `koanf:"debug_assertions"`
}

// New creates a Config populated with defaults.
func New() *Config {
	g := model.DefaultGeometry()
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		StoreURL:            "http://localhost:9080",
		Collection:          "deaths",
		GhostTopN:           20,
		GhostOwnLimit:       5,
		QueueSize:           1024,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          100_000,
		LocalStorePath:      "flappyghost.local.yaml",
		FrameIntervalMS:     16,
		CountdownIntervalMS: 1000,
		ViewportWidth:       g.ViewportWidth,
		WorldHeight:         g.WorldHeight,
		GapSize:             g.GapSize,
		SpawnIntervalTicks:  g.SpawnIntervalTicks,
		ScrollSpeed:         g.ScrollSpeed,
	}
}

// Geometry returns the default geometry with this config's overrides applied.
func (c *Config) Geometry() model.Geometry {
	g := model.DefaultGeometry()
	g.ViewportWidth = c.ViewportWidth
	g.WorldHeight = c.WorldHeight
	g.GapSize = c.GapSize
	g.SpawnIntervalTicks = c.SpawnIntervalTicks
	g.ScrollSpeed = c.ScrollSpeed
	return g
}

// FrameInterval is the round loop's frame period.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

// CountdownInterval is the period between countdown steps.
func (c *Config) CountdownInterval() time.Duration {
	return time.Duration(c.CountdownIntervalMS) * time.Millisecond
}

// Validate checks the configuration for values the game cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Collection == "":
		return fmt.Errorf("%w: collection must not be empty", ErrInvalidConfig)
	case c.GhostTopN < 1:
		return fmt.Errorf("%w: ghost_top_n must be positive", ErrInvalidConfig)
	case c.GhostOwnLimit < 0:
		return fmt.Errorf("%w: ghost_own_limit must not be negative", ErrInvalidConfig)
	case c.FrameIntervalMS < 1 || c.CountdownIntervalMS < 1:
		return fmt.Errorf("%w: loop intervals must be positive", ErrInvalidConfig)
	}
	if err := c.Geometry().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
