package frame

import (
	"github.com/sandwatch-io/sandwatch/internal/geometry"
	"github.com/sandwatch-io/sandwatch/internal/sand"
)

// Palette matching the original dark-canvas look.
const (
	colorSand     = "#d4a017"
	colorGlass    = "#9fb4c7"
	colorFrame    = "#6b4f2a"
	colorStream   = "#e6b422"
	colorParticle = "#e6b422"
)

// Snapshot is the read-only view of simulation state the builder consumes.
// The builder never mutates simulation state.
type Snapshot struct {
	Tick             int64
	State            string
	Running          bool
	RemainingSeconds int
	Fractions        sand.Fractions
	Particles        []sand.Particle
}

// Builder turns simulation snapshots into frame descriptors. The static
// group depends only on the immutable glass shape, so it is computed once
// at construction and reused verbatim in every frame.
type Builder struct {
	shape          *geometry.GlassShape
	particleRadius float64
	streamWidth    float64
	static         []Primitive
}

// NewBuilder precomputes the static primitives for the given glass.
func NewBuilder(shape *geometry.GlassShape, particleRadius, streamWidth float64) *Builder {
	b := &Builder{
		shape:          shape,
		particleRadius: particleRadius,
		streamWidth:    streamWidth,
	}
	b.static = b.buildStatic()
	return b
}

// Static exposes the cached static group, mainly for tests.
func (b *Builder) Static() []Primitive {
	return b.static
}

// Build produces the descriptor for one tick. The static group is shared
// across frames; the dynamic group is rebuilt from scratch.
func (b *Builder) Build(snap Snapshot) *Descriptor {
	return &Descriptor{
		Tick:             snap.Tick,
		State:            snap.State,
		Progress:         snap.Fractions.Progress,
		RemainingSeconds: snap.RemainingSeconds,
		Static:           b.static,
		Dynamic:          b.buildDynamic(snap),
	}
}

// buildStatic assembles the glass outline, the neck band, and the wooden
// frame plates. Vertices follow the interior wall interpolation, so the
// drawn envelope matches the collision envelope exactly.
func (b *Builder) buildStatic() []Primitive {
	g := b.shape
	cx := g.CenterX()
	neckHalf := g.NeckWidth / 2

	topChamber := Primitive{
		Kind: KindPolygon,
		Points: []Point{
			{g.Left, g.Top},
			{g.Right, g.Top},
			{cx + neckHalf, g.NeckTopY},
			{cx - neckHalf, g.NeckTopY},
		},
		Style: Style{Outline: colorGlass, Width: 2},
	}
	neck := Primitive{
		Kind: KindPolygon,
		Points: []Point{
			{cx - neckHalf, g.NeckTopY},
			{cx + neckHalf, g.NeckTopY},
			{cx + neckHalf, g.NeckBottomY},
			{cx - neckHalf, g.NeckBottomY},
		},
		Style: Style{Outline: colorGlass, Width: 2},
	}
	bottomChamber := Primitive{
		Kind: KindPolygon,
		Points: []Point{
			{cx - neckHalf, g.NeckBottomY},
			{cx + neckHalf, g.NeckBottomY},
			{g.Right, g.Bottom},
			{g.Left, g.Bottom},
		},
		Style: Style{Outline: colorGlass, Width: 2},
	}

	// Frame plates extend past the glass on both sides.
	overhang := 12.0
	topPlate := Primitive{
		Kind:   KindLine,
		Points: []Point{{g.Left - overhang, g.Top}, {g.Right + overhang, g.Top}},
		Style:  Style{Outline: colorFrame, Width: 6},
	}
	bottomPlate := Primitive{
		Kind:   KindLine,
		Points: []Point{{g.Left - overhang, g.Bottom}, {g.Right + overhang, g.Bottom}},
		Style:  Style{Outline: colorFrame, Width: 6},
	}

	return []Primitive{topPlate, bottomPlate, topChamber, neck, bottomChamber}
}

// buildDynamic assembles the two sand masses, the falling stream, and one
// ellipse per live particle, in back-to-front draw order.
func (b *Builder) buildDynamic(snap Snapshot) []Primitive {
	g := b.shape
	cx := g.CenterX()
	dynamic := make([]Primitive, 0, 3+len(snap.Particles))

	// Top cone: remaining sand rests against the neck, its surface rising
	// into the chamber. Wall vertices follow the interior interpolation.
	if h := snap.Fractions.TopSandHeight(g); h > 0 {
		surfY := g.NeckTopY - h
		halfW := g.HalfWidthAt(surfY)
		neckHalf := g.NeckWidth / 2
		dynamic = append(dynamic, Primitive{
			Kind: KindPolygon,
			Points: []Point{
				{cx - halfW, surfY},
				{cx + halfW, surfY},
				{cx + neckHalf, g.NeckTopY},
				{cx - neckHalf, g.NeckTopY},
			},
			Style: Style{Fill: colorSand},
		})
	}

	// Bottom pile: symmetric derivation, anchored at the glass bottom.
	if h := snap.Fractions.BottomPileHeight(g); h > 0 {
		surfY := g.Bottom - h
		halfW := g.HalfWidthAt(surfY)
		bottomHalf := g.HalfWidthAt(g.Bottom)
		dynamic = append(dynamic, Primitive{
			Kind: KindPolygon,
			Points: []Point{
				{cx - halfW, surfY},
				{cx + halfW, surfY},
				{cx + bottomHalf, g.Bottom},
				{cx - bottomHalf, g.Bottom},
			},
			Style: Style{Fill: colorSand},
		})
	}

	// Falling stream: only while running and sand remains to fall.
	if snap.Running && snap.Fractions.Top > 0 {
		streamBottom := sand.SurfaceYAt(g, snap.Fractions.BottomPileHeight(g), cx)
		dynamic = append(dynamic, Primitive{
			Kind:   KindLine,
			Points: []Point{{cx, g.NeckTopY}, {cx, streamBottom}},
			Style:  Style{Outline: colorStream, Width: b.streamWidth},
		})
	}

	r := b.particleRadius
	for _, p := range snap.Particles {
		dynamic = append(dynamic, Primitive{
			Kind:   KindEllipse,
			Points: []Point{{p.X - r, p.Y - r}, {p.X + r, p.Y + r}},
			Style:  Style{Fill: colorParticle},
		})
	}

	return dynamic
}
