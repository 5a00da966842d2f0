package round

import (
	"time"

	"github.com/okian/flappyghost/internal/domain/model"
	"github.com/okian/flappyghost/pkg/logger"
)

// Option applies a configuration option to the Machine.
type Option func(*Machine)

// WithGeometry sets the playfield.
func WithGeometry(g model.Geometry) Option {
	return func(m *Machine) {
		m.geometry = g
	}
}

// WithDebugAssertions makes a tick outside Running panic.
func WithDebugAssertions(on bool) Option {
	return func(m *Machine) {
		m.debug = on
	}
}

// WithLogger sets the machine's logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

// LoopOption applies a configuration option to the Loop.
type LoopOption func(*Loop)

// WithFrameInterval sets the time between ticks while Running.
func WithFrameInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.frame = d
		}
	}
}

// WithCountdownInterval sets the time between countdown steps.
func WithCountdownInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.countdown = d
		}
	}
}

// WithFrameHook is called with a snapshot after every tick and countdown step.
func WithFrameHook(fn func(State)) LoopOption {
	return func(l *Loop) {
		l.onFrame = fn
	}
}

// WithPhaseHook is called after every phase change.
func WithPhaseHook(fn func(from, to Phase)) LoopOption {
	return func(l *Loop) {
		l.onPhase = fn
	}
}

// WithLoopLogger sets the loop's logger.
func WithLoopLogger(lg logger.Logger) LoopOption {
	return func(l *Loop) {
		if lg != nil {
			l.log = lg
		}
	}
}
