// Package round drives one player's rounds: the Idle, Countdown, Running and
// GameOver lifecycle, the per-tick simulation and the frame loop.
package round

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/okian/flappyghost/internal/domain/collision"
	"github.com/okian/flappyghost/internal/domain/ghost"
	"github.com/okian/flappyghost/internal/domain/kinematics"
	"github.com/okian/flappyghost/internal/domain/model"
	"github.com/okian/flappyghost/internal/domain/obstacle"
	"github.com/okian/flappyghost/internal/domain/scoring"
	"github.com/okian/flappyghost/pkg/logger"
	"github.com/okian/flappyghost/pkg/metrics"
)

// GhostLoader fetches a ghost set in the background and calls done once.
type GhostLoader interface {
	LoadAsync(ctx context.Context, id *model.Identity, done func(*model.GhostSet))
}

// DeathRecorder persists a death without blocking.
type DeathRecorder interface {
	Record(ctx context.Context, id *model.Identity, score int, pos model.Position) bool
}

// Deps are the collaborators a Machine wires together. Ghosts, Recorder and
// Identity may be left nil; Generator and Tracker default to fresh ones.
type Deps struct {
	Generator *obstacle.Generator
	Tracker   *scoring.Tracker
	Ghosts    GhostLoader
	Recorder  DeathRecorder
	Identity  *model.Identity
}

// State is a snapshot of the simulation for presentation layers.
type State struct {
	Phase       Phase
	Countdown   int
	Player      model.PlayerBody
	Obstacles   []model.Obstacle
	WorldOffset float64
	Ticks       int
	Score       int
	Best        int
	Collision   collision.Result
}

type pendingGhosts struct {
	generation uint64
	set        *model.GhostSet
}

// Machine owns the round state. Every method except Ghosts must be called
// from a single goroutine; Loop does that.
type Machine struct {
	geometry model.Geometry
	deps     Deps
	debug    bool
	log      logger.Logger

	state State

	generation atomic.Uint64
	pending    atomic.Pointer[pendingGhosts]
	active     atomic.Pointer[model.GhostSet]
}

// New creates a machine in Idle.
func New(deps Deps, opts ...Option) *Machine {
	m := &Machine{
		geometry: model.DefaultGeometry(),
		log:      logger.Component("round"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if deps.Generator == nil {
		deps.Generator = obstacle.New(obstacle.WithGeometry(m.geometry))
	}
	if deps.Tracker == nil {
		deps.Tracker = scoring.NewTracker()
	}
	m.deps = deps
	m.state = State{
		Phase:  Idle,
		Player: kinematics.Spawn(m.geometry),
		Best:   deps.Tracker.Best(),
	}
	m.active.Store(model.EmptyGhostSet)
	return m
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.state.Phase }

// Geometry returns the playfield the machine simulates.
func (m *Machine) Geometry() model.Geometry { return m.geometry }

// State returns a copy of the simulation state.
func (m *Machine) State() State {
	s := m.state
	s.Obstacles = append([]model.Obstacle(nil), m.state.Obstacles...)
	s.Best = m.deps.Tracker.Best()
	return s
}

// Ghosts returns the set adopted for the current round.
func (m *Machine) Ghosts() *model.GhostSet { return m.active.Load() }

// VisibleGhosts places the current round's ghosts in viewport coordinates.
func (m *Machine) VisibleGhosts() []ghost.Ghost {
	return ghost.Visible(m.active.Load(), m.state.WorldOffset, m.geometry.ViewportWidth, m.geometry.GhostMargin)
}

func (m *Machine) transition(ctx context.Context, to Phase) {
	from := m.state.Phase
	m.state.Phase = to
	metrics.RecordRoundTransition(from.String(), to.String())
	m.log.Debug(ctx, "round transition", logger.String("from", from.String()), logger.String("to", to.String()))
}

// Start begins a countdown from Idle or GameOver and kicks off a ghost
// load for the coming round. It is ignored in any other phase.
func (m *Machine) Start(ctx context.Context) bool {
	if m.state.Phase != Idle && m.state.Phase != GameOver {
		return false
	}
	m.state.Countdown = CountdownFrom
	m.transition(ctx, Countdown)

	gen := m.generation.Add(1)
	m.pending.Store(nil)
	if m.deps.Ghosts != nil {
		m.deps.Ghosts.LoadAsync(ctx, m.deps.Identity, func(set *model.GhostSet) {
			if m.generation.Load() != gen {
				m.log.Debug(ctx, "discarding stale ghost load")
				return
			}
			m.pending.Store(&pendingGhosts{generation: gen, set: set})
		})
	}
	return true
}

// CountdownStep counts down once; reaching zero enters Running.
func (m *Machine) CountdownStep(ctx context.Context) bool {
	if m.state.Phase != Countdown {
		return false
	}
	m.state.Countdown--
	if m.state.Countdown <= 0 {
		m.enterRunning(ctx)
	}
	return true
}

func (m *Machine) enterRunning(ctx context.Context) {
	m.state.Countdown = 0
	m.state.Player = kinematics.Spawn(m.geometry)
	m.state.Obstacles = m.state.Obstacles[:0]
	m.state.WorldOffset = 0
	m.state.Ticks = 0
	m.state.Collision = collision.Result{Kind: collision.None, ObstacleIndex: -1}
	m.deps.Tracker.Reset()
	m.state.Score = 0
	m.deps.Generator.Reset()

	set := model.EmptyGhostSet
	if p := m.pending.Swap(nil); p != nil && p.generation == m.generation.Load() {
		set = p.set
	}
	m.active.Store(set)

	m.transition(ctx, Running)
	kinematics.Jump(&m.state.Player)
	m.log.Info(ctx, "round started", logger.Int("ghosts", set.Len()))
}

// Jump applies the lift impulse. It only has an effect while Running.
func (m *Machine) Jump() bool {
	if m.state.Phase != Running {
		return false
	}
	kinematics.Jump(&m.state.Player)
	return true
}

// Tick advances the simulation by one frame: motion, scroll, spawn, prune,
// scoring, then collision against the new position. Outside Running it
// panics with debug assertions on and is a no-op otherwise.
func (m *Machine) Tick(ctx context.Context) bool {
	if m.state.Phase != Running {
		if m.debug {
			panic(fmt.Sprintf("round: tick while %s", m.state.Phase))
		}
		return false
	}
	s := &m.state
	g := m.geometry

	kinematics.Tick(&s.Player)
	s.WorldOffset += g.ScrollSpeed
	if o, ok := m.deps.Generator.Next(s.WorldOffset); ok {
		s.Obstacles = append(s.Obstacles, o)
	}
	m.prune()
	for i := range s.Obstacles {
		if !s.Obstacles[i].Passed && s.Obstacles[i].ScreenX(s.WorldOffset) < s.Player.X {
			m.deps.Tracker.Pass(&s.Obstacles[i])
		}
	}
	s.Score = m.deps.Tracker.Score()
	s.Ticks++
	metrics.RecordTick()

	if res := collision.Detect(s.Player, s.Obstacles, s.WorldOffset, g); res.Collided() {
		m.gameOver(ctx, res)
	}
	return true
}

// prune drops obstacles whose trailing edge has left the viewport.
func (m *Machine) prune() {
	kept := m.state.Obstacles[:0]
	for _, o := range m.state.Obstacles {
		if o.ScreenX(m.state.WorldOffset)+m.geometry.ObstacleWidth > 0 {
			kept = append(kept, o)
		}
	}
	m.state.Obstacles = kept
}

// gameOver freezes the round. Entering it twice is a no-op.
func (m *Machine) gameOver(ctx context.Context, res collision.Result) {
	if m.state.Phase == GameOver {
		return
	}
	m.state.Collision = res
	m.transition(ctx, GameOver)

	score := m.deps.Tracker.Score()
	pos := model.Position{X: m.state.WorldOffset + m.state.Player.X, Y: m.state.Player.Y}
	metrics.RecordDeath(res.Kind.String(), score)
	m.log.Info(ctx, "round over",
		logger.String("cause", res.Kind.String()),
		logger.Int("score", score),
		logger.Int("ticks", m.state.Ticks),
		logger.Float64("x", pos.X),
		logger.Float64("y", pos.Y),
	)

	if m.deps.Recorder != nil {
		m.deps.Recorder.Record(ctx, m.deps.Identity, score, pos)
	}
	if m.deps.Tracker.Commit(ctx) {
		m.log.Info(ctx, "new best score", logger.Int("best", m.deps.Tracker.Best()))
	}
	m.state.Best = m.deps.Tracker.Best()
}
