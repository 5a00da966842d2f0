package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/flappyghost/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Collection, convey.ShouldEqual, "deaths")
			convey.So(cfg.GhostTopN, convey.ShouldEqual, 20)
			convey.So(cfg.GhostOwnLimit, convey.ShouldEqual, 5)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.FrameInterval(), convey.ShouldEqual, 16*time.Millisecond)
			convey.So(cfg.CountdownInterval(), convey.ShouldEqual, time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then geometry mirrors the game defaults", func() {
			g := cfg.Geometry()
			convey.So(g.ViewportWidth, convey.ShouldEqual, 320)
			convey.So(g.WorldHeight, convey.ShouldEqual, 480)
			convey.So(g.GapSize, convey.ShouldEqual, 150)
			convey.So(g.SpawnIntervalTicks, convey.ShouldEqual, 120)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configs", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":       func(c *config.Config) { c.Addr = "" },
			"empty collection": func(c *config.Config) { c.Collection = "" },
			"zero top n":       func(c *config.Config) { c.GhostTopN = 0 },
			"negative own":     func(c *config.Config) { c.GhostOwnLimit = -1 },
			"zero frame":       func(c *config.Config) { c.FrameIntervalMS = 0 },
			"gap too large":    func(c *config.Config) { c.GapSize = 400 },
			"zero spawn":       func(c *config.Config) { c.SpawnIntervalTicks = 0 },
		}
		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			_ = name
		}
	})

	convey.Convey("Given own ghosts turned off", t, func() {
		cfg := config.New()
		cfg.GhostOwnLimit = 0
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}
