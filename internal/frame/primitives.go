// Package frame assembles renderer-agnostic frame descriptors. A frame is a
// pure value: an ordered list of drawable primitives with coordinates and
// style, split into a static group built once from the glass geometry and a
// dynamic group rebuilt every tick. The external renderer owns the actual
// draw-call lifecycle; nothing in here touches a drawing surface.
package frame

// Kind identifies the drawable primitive type.
type Kind string

const (
	KindPolygon Kind = "polygon"
	KindLine    Kind = "line"
	KindEllipse Kind = "ellipse"
)

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Style carries the drawing attributes for one primitive. Colors are CSS
// hex strings; an empty Fill means outline-only.
type Style struct {
	Fill    string  `json:"fill,omitempty"`
	Outline string  `json:"outline,omitempty"`
	Width   float64 `json:"width,omitempty"`
}

// Primitive is one drawable. Polygons list their vertices in order, lines
// list their endpoints, ellipses list the two corners of their bounding box.
type Primitive struct {
	Kind   Kind    `json:"kind"`
	Points []Point `json:"points"`
	Style  Style   `json:"style"`
}

// Descriptor is the complete draw list for one tick plus the timer metadata
// a renderer needs for labels. It is immutable once built.
type Descriptor struct {
	Tick             int64       `json:"tick"`
	State            string      `json:"state"`
	Progress         float64     `json:"progress"`
	RemainingSeconds int         `json:"remaining_seconds"`
	Static           []Primitive `json:"static"`
	Dynamic          []Primitive `json:"dynamic"`
}
