package round

import (
	"context"
	"time"

	"github.com/okian/flappyghost/pkg/logger"
)

// Signal is player input delivered to a Loop.
type Signal int

const (
	SignalStart Signal = iota
	SignalJump
)

const (
	defaultFrameInterval     = time.Second / 60
	defaultCountdownInterval = time.Second
	signalBuffer             = 16
)

// Loop drives a Machine on a single goroutine. The frame ticker exists only
// while Running and the countdown ticker only during Countdown, so no tick
// is ever scheduled before the previous one returned.
type Loop struct {
	m         *Machine
	frame     time.Duration
	countdown time.Duration
	signals   chan Signal
	onFrame   func(State)
	onPhase   func(from, to Phase)
	log       logger.Logger
}

// NewLoop wraps m. The machine must not be used elsewhere once Run starts.
func NewLoop(m *Machine, opts ...LoopOption) *Loop {
	l := &Loop{
		m:         m,
		frame:     defaultFrameInterval,
		countdown: defaultCountdownInterval,
		signals:   make(chan Signal, signalBuffer),
		log:       logger.Component("round-loop"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Machine returns the driven machine.
func (l *Loop) Machine() *Machine { return l.m }

// Send delivers input without blocking. It reports false when the input
// buffer is full.
func (l *Loop) Send(s Signal) bool {
	select {
	case l.signals <- s:
		return true
	default:
		return false
	}
}

// Run processes input and timers until ctx ends, then stops every timer and
// returns ctx's error.
func (l *Loop) Run(ctx context.Context) error {
	var frames, steps ticker
	defer frames.stop()
	defer steps.stop()

	phase := l.m.Phase()
	for {
		select {
		case <-ctx.Done():
			l.log.Debug(ctx, "loop stopped", logger.String("phase", l.m.Phase().String()))
			return ctx.Err()

		case s := <-l.signals:
			switch s {
			case SignalStart:
				l.m.Start(ctx)
			case SignalJump:
				l.m.Jump()
			}

		case <-steps.c:
			if l.m.CountdownStep(ctx) {
				l.emit()
			}

		case <-frames.c:
			// A frame that was already queued when the phase changed.
			if l.m.Phase() != Running {
				continue
			}
			l.m.Tick(ctx)
			l.emit()
		}

		if now := l.m.Phase(); now != phase {
			if l.onPhase != nil {
				l.onPhase(phase, now)
			}
			phase = now
		}
		frames.set(phase == Running, l.frame)
		steps.set(phase == Countdown, l.countdown)
	}
}

func (l *Loop) emit() {
	if l.onFrame != nil {
		l.onFrame(l.m.State())
	}
}

// ticker is a time.Ticker that can be switched on and off; c is nil while off.
type ticker struct {
	t *time.Ticker
	c <-chan time.Time
}

func (t *ticker) set(on bool, every time.Duration) {
	switch {
	case on && t.t == nil:
		t.t = time.NewTicker(every)
		t.c = t.t.C
	case !on && t.t != nil:
		t.stop()
	}
}

func (t *ticker) stop() {
	if t.t != nil {
		t.t.Stop()
		t.t = nil
		t.c = nil
	}
}
