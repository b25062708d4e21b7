// Package sand owns the sand model: the time-driven fraction split between
// the two chambers and the discrete falling particles between them.
package sand

import (
	"time"

	"github.com/sandwatch-io/sandwatch/internal/geometry"
)

// Fractions is the split of the fixed sand volume at one instant.
// Top and Bottom always sum to 1.
type Fractions struct {
	Progress float64 // elapsed/duration clamped to [0,1]
	Top      float64 // sand remaining in the upper chamber
	Bottom   float64 // sand accumulated in the lower chamber
}

// Compute maps elapsed time onto chamber fractions. Duration is validated
// at configuration time; a non-positive duration never reaches this point.
func Compute(elapsed, duration time.Duration) Fractions {
	progress := elapsed.Seconds() / duration.Seconds()
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return Fractions{
		Progress: progress,
		Top:      1 - progress,
		Bottom:   progress,
	}
}

// TopSandHeight is the fill height of the remaining sand in the upper
// chamber. The sand sits against the neck, so this is measured upward from
// the neck's upper boundary.
func (f Fractions) TopSandHeight(g *geometry.GlassShape) float64 {
	return g.TopChamberHeight() * f.Top
}

// BottomPileHeight is the fill height of the accumulated pile, measured
// upward from the glass bottom.
func (f Fractions) BottomPileHeight(g *geometry.GlassShape) float64 {
	return g.BottomChamberHeight() * f.Bottom
}

// SurfaceYAt returns the canvas Y of the pile's collision surface at
// horizontal position x, given the current pile height. The surface is flat
// across the pile's top face; outside that face the falling grain meets the
// pile flank, approximated by the glass wall interpolation (the Y at which
// the interior half-width equals the grain's offset from center).
func SurfaceYAt(g *geometry.GlassShape, pileHeight, x float64) float64 {
	flatY := g.Bottom - pileHeight
	if flatY > g.Bottom {
		flatY = g.Bottom
	}

	dx := x - g.CenterX()
	if dx < 0 {
		dx = -dx
	}
	if dx <= g.HalfWidthAt(flatY) {
		return flatY
	}

	// On the flank: solve the bottom-chamber interpolation for the Y where
	// the half-width matches dx.
	neckHalf := g.NeckWidth / 2
	fullHalf := g.FullWidth() / 2
	t := (dx - neckHalf) / (fullHalf - neckHalf)
	y := g.NeckBottomY + t*g.BottomChamberHeight()
	if y > g.Bottom {
		y = g.Bottom
	}
	return y
}
