package obstacle

import "github.com/okian/flappyghost/internal/domain/model"

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSource injects the random source, e.g. a seeded *rand.Rand in tests.
func WithSource(src Source) Option {
	return func(g *Generator) {
		if src != nil {
			g.src = src
		}
	}
}

// WithGeometry sets the playfield the generator places gaps in.
func WithGeometry(geometry model.Geometry) Option {
	return func(g *Generator) {
		g.geometry = geometry
	}
}

// WithInterval overrides the geometry's spawn cadence.
func WithInterval(ticks int) Option {
	return func(g *Generator) {
		if ticks > 0 {
			g.interval = ticks
		}
	}
}
