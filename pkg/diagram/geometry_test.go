package diagram

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestPointDistance(t *testing.T) {
	if d := Pt(0, 0).Distance(Pt(3, 4)); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
	if d := Pt(1, 1).Distance(Pt(1, 1)); d != 0 {
		t.Errorf("Distance to self = %v, want 0", d)
	}
}

func TestOutline(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  []Point
	}{
		{"line", Shape{Kind: KindLine, X1: 1, Y1: 2, X2: 3, Y2: 4}, []Point{{1, 2}, {3, 4}}},
		{"circle", Shape{Kind: KindCircle, CX: 0, CY: 0, R: 2}, []Point{{-2, -2}, {2, 2}}},
		{"rect", Shape{Kind: KindRect, X: 0, Y: 0, Width: 4, Height: 2}, []Point{{0, 0}, {4, 0}, {4, 2}, {0, 2}}},
		{"polyline odd", Shape{Kind: KindPolyline, Coords: []float64{0, 0, 1, 1, 9}}, []Point{{0, 0}, {1, 1}}},
		{"path with curve", Shape{Kind: KindPath, PathData: "M0 0 Q5 5 10 0"}, []Point{{0, 0}, {5, 5}, {10, 0}}},
		{"unknown", Shape{Kind: KindUnknown}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.shape.Outline()
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Outline mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiagramBoundingBox(t *testing.T) {
	d := &Diagram{
		ViewBox: BoundingBox{Max: Pt(100, 100)},
		Shapes: []*Shape{
			{ID: "a", Kind: KindLine, X1: 10, Y1: 20, X2: 30, Y2: 5},
			{ID: "b", Kind: KindCircle, CX: 50, CY: 50, R: 10},
		},
	}
	bb := d.GetBoundingBox()
	want := BoundingBox{Min: Pt(10, 5), Max: Pt(60, 60)}
	if bb != want {
		t.Errorf("GetBoundingBox = %+v, want %+v", bb, want)
	}

	empty := &Diagram{ViewBox: BoundingBox{Max: Pt(5, 5)}}
	if got := empty.GetBoundingBox(); got != empty.ViewBox {
		t.Errorf("empty diagram bbox = %+v, want viewBox", got)
	}
}

func TestBoundingBox(t *testing.T) {
	bb := NewBoundingBox()
	if !bb.IsEmpty() {
		t.Fatalf("new bounding box should be empty")
	}
	bb.Expand(Pt(1, 2))
	bb.Expand(Pt(-1, 5))
	if bb.IsEmpty() {
		t.Fatalf("expanded bounding box should not be empty")
	}
	if bb.Width() != 2 || bb.Height() != 3 {
		t.Errorf("size = %vx%v, want 2x3", bb.Width(), bb.Height())
	}
	if !bb.Contains(Pt(0, 3)) || bb.Contains(Pt(2, 3)) {
		t.Errorf("Contains gave wrong answer")
	}
}

func TestShapeHit(t *testing.T) {
	line := &Shape{Kind: KindLine, X1: 0, Y1: 0, X2: 10, Y2: 0}
	if !line.Hit(Pt(5, 1), 2) {
		t.Errorf("point near line should hit")
	}
	if line.Hit(Pt(5, 5), 2) {
		t.Errorf("point far from line should not hit")
	}
	if line.Hit(Pt(14, 0), 2) {
		t.Errorf("point past the line end should not hit")
	}

	tri := &Shape{Kind: KindPolygon, Coords: []float64{0, 0, 10, 0, 5, 10}}
	if !tri.Hit(Pt(5, 3), 0.5) {
		t.Errorf("point inside polygon should hit")
	}
	if tri.Hit(Pt(20, 20), 0.5) {
		t.Errorf("point outside polygon should not hit")
	}

	path := &Shape{Kind: KindPath, PathData: "M0 0 L10 0 M20 0 L30 0"}
	if path.Hit(Pt(15, 0), 1) {
		t.Errorf("gap between subpaths should not hit")
	}
	if !path.Hit(Pt(25, 0), 1) {
		t.Errorf("second subpath should hit")
	}
}

func TestShapeAt(t *testing.T) {
	d := &Diagram{Shapes: []*Shape{
		{ID: "bg", Kind: KindRect, Width: 100, Height: 100, Background: true},
		{ID: "under", Kind: KindRect, X: 10, Y: 10, Width: 20, Height: 20},
		{ID: "over", Kind: KindCircle, CX: 20, CY: 20, R: 3},
	}}

	tests := []struct {
		p    Point
		want string
	}{
		{Pt(20, 20), "over"},
		{Pt(12, 12), "under"},
		{Pt(80, 80), "bg"},
		{Pt(500, 500), ""},
	}
	for _, tt := range tests {
		got := d.ShapeAt(tt.p, 1)
		id := ""
		if got != nil {
			id = got.ID
		}
		if id != tt.want {
			t.Errorf("ShapeAt(%v) = %q, want %q", tt.p, id, tt.want)
		}
	}
}

func TestSegmentDistance(t *testing.T) {
	if d := segmentDistance(Pt(3, 4), Pt(0, 0), Pt(0, 0)); d != 5 {
		t.Errorf("degenerate segment distance = %v, want 5", d)
	}
	if d := segmentDistance(Pt(5, 3), Pt(0, 0), Pt(10, 0)); math.Abs(d-3) > 1e-9 {
		t.Errorf("distance = %v, want 3", d)
	}
}
