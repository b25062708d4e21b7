// Package geometry models the hourglass envelope: two opposing chambers
// joined by a narrow neck, centered on the canvas. All widths are interior
// widths; the glass walls are linear between the fixed boundary points.
package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned when glass or timer configuration
// values cannot describe a drawable hourglass.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// GlassShape holds the immutable envelope geometry. Constructed once from
// configuration; every other component reads it, nobody mutates it.
type GlassShape struct {
	CanvasWidth  float64
	CanvasHeight float64

	// Interior bounding box of the glass on the canvas.
	Top    float64
	Bottom float64
	Left   float64
	Right  float64

	NeckWidth  float64
	NeckHeight float64

	// Derived boundaries. MidY is the vertical center of the neck band.
	MidY        float64
	NeckTopY    float64
	NeckBottomY float64
}

// NewGlassShape validates the configuration and derives the fixed boundary
// coordinates. The neck band is vertically centered between Top and Bottom.
func NewGlassShape(canvasW, canvasH, margin, neckWidth, neckHeight float64) (*GlassShape, error) {
	if canvasW <= 0 || canvasH <= 0 {
		return nil, fmt.Errorf("%w: canvas %.0fx%.0f must be positive", ErrInvalidConfiguration, canvasW, canvasH)
	}
	if margin <= 0 || 2*margin >= canvasW || 2*margin >= canvasH {
		return nil, fmt.Errorf("%w: margin %.0f leaves no glass interior", ErrInvalidConfiguration, margin)
	}
	fullWidth := canvasW - 2*margin
	if neckWidth <= 0 || neckWidth >= fullWidth {
		return nil, fmt.Errorf("%w: neck width %.0f must be positive and narrower than the chambers (%.0f)", ErrInvalidConfiguration, neckWidth, fullWidth)
	}
	top := margin
	bottom := canvasH - margin
	if neckHeight <= 0 || neckHeight >= bottom-top {
		return nil, fmt.Errorf("%w: neck height %.0f leaves no chamber height", ErrInvalidConfiguration, neckHeight)
	}

	mid := (top + bottom) / 2
	return &GlassShape{
		CanvasWidth:  canvasW,
		CanvasHeight: canvasH,
		Top:          top,
		Bottom:       bottom,
		Left:         margin,
		Right:        canvasW - margin,
		NeckWidth:    neckWidth,
		NeckHeight:   neckHeight,
		MidY:         mid,
		NeckTopY:     mid - neckHeight/2,
		NeckBottomY:  mid + neckHeight/2,
	}, nil
}

// CenterX returns the horizontal center of the glass.
func (g *GlassShape) CenterX() float64 {
	return (g.Left + g.Right) / 2
}

// FullWidth returns the interior width at the glass top and bottom.
func (g *GlassShape) FullWidth() float64 {
	return g.Right - g.Left
}

// TopChamberHeight is the vertical extent of the upper chamber, from the
// glass top down to the neck's upper boundary.
func (g *GlassShape) TopChamberHeight() float64 {
	return g.NeckTopY - g.Top
}

// BottomChamberHeight is the vertical extent of the lower chamber, from the
// neck's lower boundary down to the glass bottom.
func (g *GlassShape) BottomChamberHeight() float64 {
	return g.Bottom - g.NeckBottomY
}

// WidthAt returns the interior width of the glass at height y. The walls
// are linear inside each chamber and constant across the neck band, so the
// result is exact at the four boundary Y values. The particle system uses
// this for collision estimation; Y values outside [Top, Bottom] are clamped
// to the nearest boundary.
func (g *GlassShape) WidthAt(y float64) float64 {
	switch {
	case y <= g.Top:
		return g.FullWidth()
	case y < g.NeckTopY:
		t := (y - g.Top) / g.TopChamberHeight()
		return g.FullWidth() + t*(g.NeckWidth-g.FullWidth())
	case y <= g.NeckBottomY:
		return g.NeckWidth
	case y < g.Bottom:
		t := (y - g.NeckBottomY) / g.BottomChamberHeight()
		return g.NeckWidth + t*(g.FullWidth()-g.NeckWidth)
	default:
		return g.FullWidth()
	}
}

// HalfWidthAt is WidthAt/2, the horizontal distance from center to wall.
func (g *GlassShape) HalfWidthAt(y float64) float64 {
	return g.WidthAt(y) / 2
}
