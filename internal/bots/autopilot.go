package bots

import (
	"github.com/okian/flappyghost/internal/domain/model"
	"github.com/okian/flappyghost/internal/domain/obstacle"
	"github.com/okian/flappyghost/internal/domain/round"
)

// aimAboveGapBottom is how far above the gap's lower edge the bot tries to
// keep its feet.
const aimAboveGapBottom = 12

// Autopilot decides when a bot flaps. It keeps the player's lower edge just
// above the bottom of the next gap, or the middle of the world when no
// obstacle is ahead.
type Autopilot struct {
	geometry model.Geometry
	src      obstacle.Source
	noise    float64
	maxTicks int
}

// NewAutopilot builds an autopilot. noise widens the aim line randomly by up
// to that many pixels each frame; maxTicks > 0 makes the bot give up after
// that many ticks so rounds always end.
func NewAutopilot(g model.Geometry, src obstacle.Source, noise float64, maxTicks int) *Autopilot {
	return &Autopilot{geometry: g, src: src, noise: noise, maxTicks: maxTicks}
}

// Target returns the y the player's lower edge is steered to.
func (a *Autopilot) Target(s round.State) float64 {
	for _, o := range s.Obstacles {
		if o.ScreenX(s.WorldOffset)+a.geometry.ObstacleWidth < s.Player.X {
			continue
		}
		return o.GapY + a.geometry.GapSize - aimAboveGapBottom
	}
	return a.geometry.WorldHeight / 2
}

// ShouldJump reports whether to flap on this frame.
func (a *Autopilot) ShouldJump(s round.State) bool {
	if s.Phase != round.Running {
		return false
	}
	if a.maxTicks > 0 && s.Ticks >= a.maxTicks {
		return false
	}
	if s.Player.Velocity < 0 {
		return false
	}
	line := a.Target(s)
	if a.noise > 0 && a.src != nil {
		line += (a.src.Float64()*2 - 1) * a.noise
	}
	return s.Player.Bottom() >= line
}
