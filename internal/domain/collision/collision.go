// Package collision decides whether a frame ends the round.
package collision

import "github.com/okian/flappyghost/internal/domain/model"

// Kind discriminates why a frame is terminal.
type Kind int

const (
	None Kind = iota
	Boundary
	Obstacle
)

func (k Kind) String() string {
	switch k {
	case Boundary:
		return "boundary"
	case Obstacle:
		return "obstacle"
	default:
		return "none"
	}
}

// Result is the outcome of Detect. ObstacleIndex is -1 unless Kind is Obstacle.
type Result struct {
	Kind          Kind
	ObstacleIndex int
}

// Collided reports whether the frame is terminal.
func (r Result) Collided() bool { return r.Kind != None }

// Detect checks the world bounds first, then every live obstacle in order.
// Ghosts never take part.
func Detect(p model.PlayerBody, obstacles []model.Obstacle, worldOffset float64, g model.Geometry) Result {
	if OutOfBounds(p, g) {
		return Result{Kind: Boundary, ObstacleIndex: -1}
	}
	for i, o := range obstacles {
		if HitsObstacle(p, o, worldOffset, g) {
			return Result{Kind: Obstacle, ObstacleIndex: i}
		}
	}
	return Result{Kind: None, ObstacleIndex: -1}
}

// OutOfBounds reports a body above the top edge or below the floor.
func OutOfBounds(p model.PlayerBody, g model.Geometry) bool {
	return p.Y < 0 || p.Bottom() > g.WorldHeight
}

// HitsObstacle reports a body that overlaps the obstacle horizontally without
// being fully inside its gap.
func HitsObstacle(p model.PlayerBody, o model.Obstacle, worldOffset float64, g model.Geometry) bool {
	left := o.ScreenX(worldOffset)
	right := left + g.ObstacleWidth
	if !(left < p.Right() && p.X < right) {
		return false
	}
	return p.Y < o.GapY || p.Bottom() > o.GapY+g.GapSize
}
