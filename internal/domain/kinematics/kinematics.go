// Package kinematics integrates the player's vertical motion.
package kinematics

import "github.com/okian/flappyghost/internal/domain/model"

// Simulation constants. A jump reverses a full-speed descent within a few ticks.
const (
	Gravity     = 0.25
	LiftImpulse = -5.0
)

// Spawn returns the body a round starts with.
func Spawn(g model.Geometry) model.PlayerBody {
	return model.PlayerBody{
		X:      g.PlayerX,
		Y:      g.PlayerY,
		Width:  g.PlayerWidth,
		Height: g.PlayerHeight,
	}
}

// Tick advances the body by one tick.
func Tick(b *model.PlayerBody) {
	Advance(b, 1)
}

// Advance applies gravity then velocity once per tick.
func Advance(b *model.PlayerBody, ticks int) {
	for i := 0; i < ticks; i++ {
		b.Velocity += Gravity
		b.Y += b.Velocity
	}
}

// Jump overwrites the velocity with the lift impulse.
func Jump(b *model.PlayerBody) {
	b.Velocity = LiftImpulse
}
