// Package diagram provides the shape registry for vector circuit diagrams
// (SVG). A Diagram is parsed once and treated as immutable for the duration
// of an analysis pass.
package diagram

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point represents a 2D coordinate in diagram space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Vec converts the point to a gonum vector.
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// FromVec converts a gonum vector to a Point.
func FromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	return r2.Norm(r2.Sub(p.Vec(), other.Vec()))
}

// Kind identifies the vector primitive a Shape was parsed from.
type Kind int

const (
	KindUnknown Kind = iota
	KindLine
	KindPath
	KindCircle
	KindRect
	KindPolyline
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindPath:
		return "path"
	case KindCircle:
		return "circle"
	case KindRect:
		return "rect"
	case KindPolyline:
		return "polyline"
	case KindPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// ParseKind maps an SVG element name to a Kind. Unrecognized names map to
// KindUnknown.
func ParseKind(tag string) Kind {
	switch strings.ToLower(tag) {
	case "line":
		return KindLine
	case "path":
		return KindPath
	case "circle":
		return KindCircle
	case "rect":
		return KindRect
	case "polyline":
		return KindPolyline
	case "polygon":
		return KindPolygon
	default:
		return KindUnknown
	}
}

// Style holds the presentation attributes the overlay layer reads and
// rewrites. Values are kept as written in the markup; empty means unset.
type Style struct {
	Stroke      string `json:"stroke,omitempty"`
	StrokeWidth string `json:"stroke_width,omitempty"`
	Fill        string `json:"fill,omitempty"`
	Opacity     string `json:"opacity,omitempty"`
}

// Shape is a single vector primitive. Only the fields relevant to its Kind
// are populated.
type Shape struct {
	ID    string // Element id (generated when the markup has none)
	Kind  Kind
	Tag   string // Element name as written
	Index int    // Document order among shapes

	// line
	X1, Y1, X2, Y2 float64

	// circle
	CX, CY, R float64

	// rect
	X, Y, Width, Height float64

	// path
	PathData string

	// polyline / polygon, raw coordinate list
	Coords []float64

	Style      Style
	Class      string
	Background bool // Designated background; never traced

	// Byte span of the element's start tag in Diagram.Source
	SourceStart, SourceEnd int64
}

// Diagram is a parsed vector diagram.
type Diagram struct {
	ViewBox BoundingBox
	Width   float64
	Height  float64
	Shapes  []*Shape
	Source  []byte // Original markup, kept for passthrough export

	byID map[string]*Shape
}

// Shape returns the shape with the given id, or nil.
func (d *Diagram) Shape(id string) *Shape {
	if d == nil {
		return nil
	}
	if d.byID == nil {
		d.index()
	}
	return d.byID[id]
}

func (d *Diagram) index() {
	d.byID = make(map[string]*Shape, len(d.Shapes))
	for _, s := range d.Shapes {
		d.byID[s.ID] = s
	}
}

// Traceable returns every shape except the background.
func (d *Diagram) Traceable() []*Shape {
	if d == nil {
		return nil
	}
	out := make([]*Shape, 0, len(d.Shapes))
	for _, s := range d.Shapes {
		if !s.Background {
			out = append(out, s)
		}
	}
	return out
}

// Background returns the designated background shape, or nil.
func (d *Diagram) Background() *Shape {
	if d == nil {
		return nil
	}
	for _, s := range d.Shapes {
		if s.Background {
			return s
		}
	}
	return nil
}

// CountByKind returns the number of shapes of each kind.
func (d *Diagram) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, s := range d.Shapes {
		counts[s.Kind]++
	}
	return counts
}

// BoundingBox represents a rectangular boundary
type BoundingBox struct {
	Min Point
	Max Point
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// IsEmpty checks if the bounding box is empty
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand expands the bounding box to include a position
func (bb *BoundingBox) Expand(p Point) {
	bb.Min.X = math.Min(bb.Min.X, p.X)
	bb.Min.Y = math.Min(bb.Min.Y, p.Y)
	bb.Max.X = math.Max(bb.Max.X, p.X)
	bb.Max.Y = math.Max(bb.Max.Y, p.Y)
}

// Contains checks if a position is within the bounding box
func (bb BoundingBox) Contains(p Point) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X &&
		p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
}

// Width returns the width of the bounding box
func (bb BoundingBox) Width() float64 {
	return bb.Max.X - bb.Min.X
}

// Height returns the height of the bounding box
func (bb BoundingBox) Height() float64 {
	return bb.Max.Y - bb.Min.Y
}

// GetBoundingBox returns the extent of all shape geometry. It falls back to
// the viewBox when no shape contributes a point.
func (d *Diagram) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()
	for _, s := range d.Shapes {
		for _, p := range s.Outline() {
			bbox.Expand(p)
		}
	}
	if bbox.IsEmpty() {
		return d.ViewBox
	}
	return bbox
}
