// Package model contains the value types shared by the simulation, the ghost
// registry and the death recorder.
package model

// PlayerBody is the live player's bounding box and vertical motion.
// X, Width and Height never change during a round.
type PlayerBody struct {
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Velocity float64
}

// Bottom is the y coordinate of the body's lower edge.
func (b PlayerBody) Bottom() float64 { return b.Y + b.Height }

// Right is the x coordinate of the body's trailing edge.
func (b PlayerBody) Right() float64 { return b.X + b.Width }

// Obstacle is a pipe pair. WorldX is absolute stream position; GapY is the top
// edge of the opening, which spans [GapY, GapY+gapSize].
type Obstacle struct {
	WorldX float64
	GapY   float64
	Passed bool
}

// ScreenX converts the obstacle's absolute position into viewport space.
func (o Obstacle) ScreenX(worldOffset float64) float64 { return o.WorldX - worldOffset }
