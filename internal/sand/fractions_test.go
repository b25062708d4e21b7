package sand

import (
	"math"
	"testing"
	"time"

	"github.com/sandwatch-io/sandwatch/internal/geometry"
)

func testShape(t *testing.T) *geometry.GlassShape {
	t.Helper()
	g, err := geometry.NewGlassShape(400, 600, 60, 20, 20)
	if err != nil {
		t.Fatalf("NewGlassShape failed: %v", err)
	}
	return g
}

func TestFractionsSumToOne(t *testing.T) {
	duration := 5 * time.Second
	for elapsed := time.Duration(0); elapsed <= duration; elapsed += 250 * time.Millisecond {
		f := Compute(elapsed, duration)
		if sum := f.Top + f.Bottom; math.Abs(sum-1) > 1e-9 {
			t.Errorf("elapsed=%v: top+bottom = %v, want 1", elapsed, sum)
		}
		if f.Top < 0 || f.Top > 1 || f.Bottom < 0 || f.Bottom > 1 {
			t.Errorf("elapsed=%v: fractions out of range: %+v", elapsed, f)
		}
	}
}

func TestHalfwayScenario(t *testing.T) {
	f := Compute(2500*time.Millisecond, 5*time.Second)
	if math.Abs(f.Top-0.5) > 1e-9 {
		t.Errorf("topFraction at 2.5s of 5s = %v, want 0.5", f.Top)
	}
	if math.Abs(f.Bottom-0.5) > 1e-9 {
		t.Errorf("bottomFraction at 2.5s of 5s = %v, want 0.5", f.Bottom)
	}
}

func TestProgressClamped(t *testing.T) {
	if f := Compute(-time.Second, 5*time.Second); f.Progress != 0 {
		t.Errorf("negative elapsed must clamp to 0, got %v", f.Progress)
	}
	if f := Compute(10*time.Second, 5*time.Second); f.Progress != 1 {
		t.Errorf("overrun elapsed must clamp to 1, got %v", f.Progress)
	}
}

func TestProgressMonotonic(t *testing.T) {
	duration := 7 * time.Second
	prev := -1.0
	for elapsed := time.Duration(0); elapsed <= duration+time.Second; elapsed += 100 * time.Millisecond {
		f := Compute(elapsed, duration)
		if f.Progress < prev {
			t.Fatalf("progress regressed at elapsed=%v: %v < %v", elapsed, f.Progress, prev)
		}
		prev = f.Progress
	}
}

func TestFillHeights(t *testing.T) {
	g := testShape(t)
	f := Compute(2500*time.Millisecond, 5*time.Second)

	wantTop := g.TopChamberHeight() * 0.5
	if h := f.TopSandHeight(g); math.Abs(h-wantTop) > 1e-9 {
		t.Errorf("top sand height = %v, want %v", h, wantTop)
	}
	wantBottom := g.BottomChamberHeight() * 0.5
	if h := f.BottomPileHeight(g); math.Abs(h-wantBottom) > 1e-9 {
		t.Errorf("bottom pile height = %v, want %v", h, wantBottom)
	}
}

func TestSurfaceFlatAtCenter(t *testing.T) {
	g := testShape(t)

	// Empty pile: the surface is the glass bottom everywhere inside.
	if y := SurfaceYAt(g, 0, g.CenterX()); y != g.Bottom {
		t.Errorf("empty pile surface at center = %v, want %v", y, g.Bottom)
	}

	// Half-full pile: flat across its top face.
	h := g.BottomChamberHeight() / 2
	want := g.Bottom - h
	for _, dx := range []float64{0, -5, 5, 10} {
		if y := SurfaceYAt(g, h, g.CenterX()+dx); math.Abs(y-want) > 1e-9 {
			t.Errorf("surface at dx=%v = %v, want %v", dx, y, want)
		}
	}
}

func TestSurfaceFollowsWallOnFlank(t *testing.T) {
	g := testShape(t)

	// A grain off-center beyond the pile's top face meets the flank lower
	// down, at the Y where the interior half-width equals its offset.
	h := g.BottomChamberHeight() / 2
	x := g.CenterX() + 100
	y := SurfaceYAt(g, h, x)
	if y <= g.Bottom-h || y > g.Bottom {
		t.Fatalf("flank surface %v not between flat face %v and glass bottom %v", y, g.Bottom-h, g.Bottom)
	}
	if hw := g.HalfWidthAt(y); math.Abs(hw-100) > 1e-6 {
		t.Errorf("flank surface half-width = %v, want 100", hw)
	}
}
