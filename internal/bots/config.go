package bots

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/flappyghost/internal/config"
	"github.com/okian/flappyghost/internal/domain/model"
)

// Config holds configuration for a bot run.
type Config struct {
	StoreURL   string        // base URL of the ghost store
	Collection string        // collection death records go to
	Players    int           // concurrent bot players
	Rounds     int           // rounds each player plays
	MaxTicks   int           // after this many ticks a bot stops flapping
	Noise      float64       // autopilot aim jitter in pixels
	Seed       int64         // 0 seeds from the clock
	Timeout    time.Duration // HTTP request timeout
	LocalPath  string        // YAML file for best scores; empty keeps them in memory
	Debug      bool          // panic on out-of-phase ticks

	Geometry          model.Geometry
	TopN              int
	OwnLimit          int
	QueueSize         int
	Workers           int
	FrameInterval     time.Duration
	CountdownInterval time.Duration
}

// FromConfig derives a bot Config from process configuration.
func FromConfig(c *config.Config) *Config {
	return &Config{
		StoreURL:          c.StoreURL,
		Collection:        c.Collection,
		Players:           4,
		Rounds:            3,
		MaxTicks:          3000,
		Noise:             4,
		Timeout:           5 * time.Second,
		LocalPath:         c.LocalStorePath,
		Debug:             c.DebugAssertions,
		Geometry:          c.Geometry(),
		TopN:              c.GhostTopN,
		OwnLimit:          c.GhostOwnLimit,
		QueueSize:         c.QueueSize,
		Workers:           c.WorkerCount,
		FrameInterval:     c.FrameInterval(),
		CountdownInterval: c.CountdownInterval(),
	}
}

// ErrInvalidConfig marks unusable bot settings.
var ErrInvalidConfig = errors.New("invalid bot config")

// Validate checks the settings a run cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.StoreURL == "":
		return fmt.Errorf("%w: store url must not be empty", ErrInvalidConfig)
	case c.Players < 1:
		return fmt.Errorf("%w: players must be positive", ErrInvalidConfig)
	case c.Rounds < 1:
		return fmt.Errorf("%w: rounds must be positive", ErrInvalidConfig)
	case c.FrameInterval <= 0 || c.CountdownInterval <= 0:
		return fmt.Errorf("%w: loop intervals must be positive", ErrInvalidConfig)
	}
	if err := c.Geometry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	Players      int
	RoundsPlayed int
	TotalScore   int
	BestScore    int
	GhostsSeen   int
	Recorded     int
	Stored       int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
