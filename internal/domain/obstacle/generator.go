// Package obstacle spawns pipe pairs at a fixed tick cadence.
package obstacle

import (
	"math/rand"
	"time"

	"github.com/okian/flappyghost/internal/domain/model"
)

// Source yields uniform values in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Generator is an infinite, lazily evaluated obstacle stream. It never
// removes obstacles; pruning belongs to the round.
type Generator struct {
	geometry model.Geometry
	interval int
	frame    int
	src      Source
}

// New creates a generator. Without WithSource it draws from a clock-seeded source.
func New(opts ...Option) *Generator {
	g := &Generator{
		geometry: model.DefaultGeometry(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.interval <= 0 {
		g.interval = g.geometry.SpawnIntervalTicks
	}
	if g.src == nil {
		g.src = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // gameplay randomness
	}
	return g
}

// Reset rewinds the frame counter for a new round.
func (g *Generator) Reset() {
	g.frame = 0
}

// Frame returns the number of frames counted since the last Reset.
func (g *Generator) Frame() int {
	return g.frame
}

// Interval returns the spawn cadence in ticks.
func (g *Generator) Interval() int {
	return g.interval
}

// Next counts one frame and, on every interval-th frame, returns a new
// obstacle entering at the right edge of the viewport.
func (g *Generator) Next(worldOffset float64) (model.Obstacle, bool) {
	g.frame++
	if g.frame%g.interval != 0 {
		return model.Obstacle{}, false
	}
	return model.Obstacle{
		WorldX: worldOffset + g.geometry.ViewportWidth,
		GapY:   g.gapY(),
	}, true
}

func (g *Generator) gapY() float64 {
	lo, hi := g.geometry.GapRange()
	if hi <= lo {
		return lo
	}
	return lo + g.src.Float64()*(hi-lo)
}
