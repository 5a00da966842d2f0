package model

import (
	"errors"
	"fmt"
)

// Geometry holds the world dimensions and pacing the simulation runs with.
// Values default to a 320x480 playfield.
type Geometry struct {
	ViewportWidth float64
	WorldHeight   float64

	PlayerX      float64
	PlayerY      float64
	PlayerWidth  float64
	PlayerHeight float64

	ObstacleWidth      float64
	GapSize            float64
	GapMarginTop       float64
	GapMarginBottom    float64
	SpawnIntervalTicks int
	ScrollSpeed        float64

	// GhostMargin widens the viewport when deciding whether a ghost is drawn.
	GhostMargin float64
}

// DefaultGeometry returns the stock playfield.
func DefaultGeometry() Geometry {
	return Geometry{
		ViewportWidth:      320,
		WorldHeight:        480,
		PlayerX:            50,
		PlayerY:            150,
		PlayerWidth:        34,
		PlayerHeight:       24,
		ObstacleWidth:      52,
		GapSize:            150,
		GapMarginTop:       75,
		GapMarginBottom:    75,
		SpawnIntervalTicks: 120,
		ScrollSpeed:        2,
		GhostMargin:        52,
	}
}

// GapRange returns the inclusive range the top edge of a gap is drawn from.
func (g Geometry) GapRange() (lo, hi float64) {
	return g.GapMarginTop, g.WorldHeight - g.GapSize - g.GapMarginBottom
}

// Validate reports geometry the simulation cannot run with.
func (g Geometry) Validate() error {
	switch {
	case g.ViewportWidth <= 0 || g.WorldHeight <= 0:
		return errors.New("viewport dimensions must be positive")
	case g.PlayerWidth <= 0 || g.PlayerHeight <= 0:
		return errors.New("player dimensions must be positive")
	case g.ObstacleWidth <= 0 || g.GapSize <= 0:
		return errors.New("obstacle dimensions must be positive")
	case g.SpawnIntervalTicks < 1:
		return errors.New("spawn interval must be at least one tick")
	case g.ScrollSpeed <= 0:
		return errors.New("scroll speed must be positive")
	case g.GapSize < g.PlayerHeight:
		return fmt.Errorf("gap %.0f is smaller than the player height %.0f", g.GapSize, g.PlayerHeight)
	}
	if lo, hi := g.GapRange(); hi < lo {
		return fmt.Errorf("gap %.0f does not fit between margins in a %.0f high world", g.GapSize, g.WorldHeight)
	}
	return nil
}
