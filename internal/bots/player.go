package bots

import (
	"context"
	"errors"

	"github.com/okian/flappyghost/internal/adapters/localstore"
	"github.com/okian/flappyghost/internal/domain/death"
	"github.com/okian/flappyghost/internal/domain/ghost"
	"github.com/okian/flappyghost/internal/domain/model"
	"github.com/okian/flappyghost/internal/domain/obstacle"
	"github.com/okian/flappyghost/internal/domain/round"
	"github.com/okian/flappyghost/internal/domain/scoring"
	"github.com/okian/flappyghost/pkg/logger"
)

// RoundResult summarises one finished round.
type RoundResult struct {
	Round     int
	Score     int
	Best      int
	Ticks     int
	Ghosts    int
	Collision string
}

// Player is one headless bot: a round loop steered by an autopilot.
type Player struct {
	identity *model.Identity
	loop     *round.Loop
	pilot    *Autopilot
	tracker  *scoring.Tracker
	rounds   int
	log      logger.Logger

	results []RoundResult
	done    context.CancelFunc
}

// PlayerDeps are the collaborators a Player is built from.
type PlayerDeps struct {
	Ghosts   *ghost.Registry
	Recorder *death.Recorder
	Durable  localstore.Durable
	Source   obstacle.Source
}

// NewPlayer builds a bot for identity.
func NewPlayer(cfg *Config, identity *model.Identity, deps PlayerDeps) *Player {
	p := &Player{
		identity: identity,
		rounds:   cfg.Rounds,
		log:      logger.Component("bot").Named(identity.DisplayName),
	}

	trackerOpts := []scoring.Option{scoring.WithKey(scoring.DefaultKey + "." + identity.ID)}
	if deps.Durable != nil {
		trackerOpts = append(trackerOpts, scoring.WithDurable(deps.Durable))
	}
	p.tracker = scoring.NewTracker(trackerOpts...)

	genOpts := []obstacle.Option{obstacle.WithGeometry(cfg.Geometry)}
	if deps.Source != nil {
		genOpts = append(genOpts, obstacle.WithSource(deps.Source))
	}

	rd := round.Deps{
		Generator: obstacle.New(genOpts...),
		Tracker:   p.tracker,
		Identity:  identity,
	}
	// typed nils must not reach the machine's interfaces
	if deps.Ghosts != nil {
		rd.Ghosts = deps.Ghosts
	}
	if deps.Recorder != nil {
		rd.Recorder = deps.Recorder
	}
	m := round.New(rd, round.WithGeometry(cfg.Geometry), round.WithDebugAssertions(cfg.Debug))

	p.pilot = NewAutopilot(cfg.Geometry, deps.Source, cfg.Noise, cfg.MaxTicks)
	p.loop = round.NewLoop(m,
		round.WithFrameInterval(cfg.FrameInterval),
		round.WithCountdownInterval(cfg.CountdownInterval),
		round.WithFrameHook(p.onFrame),
		round.WithPhaseHook(p.onPhase),
	)
	return p
}

// Identity returns the bot's identity.
func (p *Player) Identity() *model.Identity { return p.identity }

// Results returns the finished rounds. Call it after Play returns.
func (p *Player) Results() []RoundResult { return p.results }

func (p *Player) onFrame(s round.State) {
	if p.pilot.ShouldJump(s) {
		p.loop.Send(round.SignalJump)
	}
}

func (p *Player) onPhase(_, to round.Phase) {
	if to != round.GameOver {
		return
	}
	m := p.loop.Machine()
	s := m.State()
	r := RoundResult{
		Round:     len(p.results) + 1,
		Score:     s.Score,
		Best:      s.Best,
		Ticks:     s.Ticks,
		Ghosts:    m.Ghosts().Len(),
		Collision: s.Collision.Kind.String(),
	}
	p.results = append(p.results, r)
	p.log.Info(context.Background(), "round over",
		logger.Int("round", r.Round),
		logger.Int("score", r.Score),
		logger.Int("best", r.Best),
		logger.Int("ghosts", r.Ghosts),
		logger.String("collision", r.Collision),
	)

	if len(p.results) >= p.rounds {
		p.done()
		return
	}
	p.loop.Send(round.SignalStart)
}

// Play loads the best score and plays the configured number of rounds.
func (p *Player) Play(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.done = cancel

	p.tracker.Load(ctx)
	p.loop.Send(round.SignalStart)

	err := p.loop.Run(ctx)
	if len(p.results) >= p.rounds && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
