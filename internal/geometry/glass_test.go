package geometry

import (
	"errors"
	"math"
	"testing"
)

func testShape(t *testing.T) *GlassShape {
	t.Helper()
	g, err := NewGlassShape(400, 600, 60, 20, 20)
	if err != nil {
		t.Fatalf("NewGlassShape failed: %v", err)
	}
	return g
}

func TestBoundaryCoordinates(t *testing.T) {
	g := testShape(t)

	if g.Top != 60 || g.Bottom != 540 || g.Left != 60 || g.Right != 340 {
		t.Errorf("unexpected interior box: top=%v bottom=%v left=%v right=%v", g.Top, g.Bottom, g.Left, g.Right)
	}
	if g.MidY != 300 {
		t.Errorf("expected MidY 300, got %v", g.MidY)
	}
	if g.NeckTopY != 290 || g.NeckBottomY != 310 {
		t.Errorf("neck band must be centered: got [%v, %v]", g.NeckTopY, g.NeckBottomY)
	}
}

func TestWidthExactAtBoundaries(t *testing.T) {
	g := testShape(t)

	if w := g.WidthAt(g.Top); w != g.FullWidth() {
		t.Errorf("width at glass top = %v, want %v", w, g.FullWidth())
	}
	if w := g.WidthAt(g.Bottom); w != g.FullWidth() {
		t.Errorf("width at glass bottom = %v, want %v", w, g.FullWidth())
	}
	if w := g.WidthAt(g.NeckTopY); w != g.NeckWidth {
		t.Errorf("width at neck upper boundary = %v, want %v", w, g.NeckWidth)
	}
	if w := g.WidthAt(g.NeckBottomY); w != g.NeckWidth {
		t.Errorf("width at neck lower boundary = %v, want %v", w, g.NeckWidth)
	}
	if w := g.WidthAt(g.MidY); w != g.NeckWidth {
		t.Errorf("width inside neck band = %v, want %v", w, g.NeckWidth)
	}
}

func TestWidthContinuousAtNeck(t *testing.T) {
	g := testShape(t)
	const eps = 1e-9

	above := g.WidthAt(g.NeckTopY - eps)
	below := g.WidthAt(g.NeckBottomY + eps)

	if math.Abs(above-g.NeckWidth) > 1e-6 {
		t.Errorf("discontinuity at neck upper boundary: %v vs %v", above, g.NeckWidth)
	}
	if math.Abs(below-g.NeckWidth) > 1e-6 {
		t.Errorf("discontinuity at neck lower boundary: %v vs %v", below, g.NeckWidth)
	}
}

func TestWidthInterpolatesLinearly(t *testing.T) {
	g := testShape(t)

	// Halfway down the top chamber the width is halfway between full and neck.
	midTop := g.Top + g.TopChamberHeight()/2
	want := (g.FullWidth() + g.NeckWidth) / 2
	if w := g.WidthAt(midTop); math.Abs(w-want) > 1e-9 {
		t.Errorf("width at top-chamber midpoint = %v, want %v", w, want)
	}

	midBottom := g.NeckBottomY + g.BottomChamberHeight()/2
	if w := g.WidthAt(midBottom); math.Abs(w-want) > 1e-9 {
		t.Errorf("width at bottom-chamber midpoint = %v, want %v", w, want)
	}
}

func TestInvalidShapes(t *testing.T) {
	cases := []struct {
		name                                     string
		canvasW, canvasH, margin, neckW, neckH float64
	}{
		{"zero canvas", 0, 600, 60, 20, 20},
		{"negative canvas", 400, -1, 60, 20, 20},
		{"margin swallows glass", 400, 600, 200, 20, 20},
		{"neck wider than chamber", 400, 600, 60, 300, 20},
		{"zero neck width", 400, 600, 60, 0, 20},
		{"neck taller than glass", 400, 600, 60, 20, 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGlassShape(tc.canvasW, tc.canvasH, tc.margin, tc.neckW, tc.neckH)
			if err == nil {
				t.Fatal("expected configuration error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}
