package diagram

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Outline returns the points that describe the drawn extent of the shape:
// line endpoints, the circle's bounding corners, the rect corners, polyline
// vertices and every resolved path position (control points included).
func (s *Shape) Outline() []Point {
	switch s.Kind {
	case KindLine:
		return []Point{Pt(s.X1, s.Y1), Pt(s.X2, s.Y2)}
	case KindCircle:
		return []Point{Pt(s.CX-s.R, s.CY-s.R), Pt(s.CX+s.R, s.CY+s.R)}
	case KindRect:
		return []Point{
			Pt(s.X, s.Y), Pt(s.X+s.Width, s.Y),
			Pt(s.X+s.Width, s.Y+s.Height), Pt(s.X, s.Y+s.Height),
		}
	case KindPolyline, KindPolygon:
		return s.Vertices()
	case KindPath:
		segs, _ := ParsePathData(s.PathData)
		var pts []Point
		for _, seg := range Absolute(segs) {
			pts = append(pts, seg.Controls...)
			pts = append(pts, seg.End)
		}
		return pts
	}
	return nil
}

// Vertices returns the coordinate list of a polyline or polygon read
// pairwise. A trailing odd coordinate is ignored.
func (s *Shape) Vertices() []Point {
	pts := make([]Point, 0, len(s.Coords)/2)
	for i := 0; i+1 < len(s.Coords); i += 2 {
		pts = append(pts, Pt(s.Coords[i], s.Coords[i+1]))
	}
	return pts
}

// Polylines returns the shape's drawn strokes as point runs. Curves are
// flattened to their end points; the result is meant for hit testing and
// preview drawing, not for connectivity.
func (s *Shape) Polylines() [][]Point {
	switch s.Kind {
	case KindLine:
		return [][]Point{{Pt(s.X1, s.Y1), Pt(s.X2, s.Y2)}}
	case KindRect:
		c := s.Outline()
		return [][]Point{append(c, c[0])}
	case KindPolyline:
		return [][]Point{s.Vertices()}
	case KindPolygon:
		v := s.Vertices()
		if len(v) > 0 {
			v = append(v, v[0])
		}
		return [][]Point{v}
	case KindPath:
		segs, _ := ParsePathData(s.PathData)
		var runs [][]Point
		var cur []Point
		for _, seg := range Absolute(segs) {
			if seg.Command == 'M' {
				if len(cur) > 1 {
					runs = append(runs, cur)
				}
				cur = []Point{seg.End}
				continue
			}
			cur = append(cur, seg.End)
		}
		if len(cur) > 1 {
			runs = append(runs, cur)
		}
		return runs
	}
	return nil
}

// Bounds returns the bounding box of the shape's outline.
func (s *Shape) Bounds() BoundingBox {
	bb := NewBoundingBox()
	for _, p := range s.Outline() {
		bb.Expand(p)
	}
	return bb
}

// Hit reports whether p lies on the shape's stroke within tolerance, or
// inside a closed shape.
func (s *Shape) Hit(p Point, tolerance float64) bool {
	switch s.Kind {
	case KindCircle:
		d := p.Distance(Pt(s.CX, s.CY))
		return d <= s.R+tolerance
	case KindRect:
		return s.X-tolerance <= p.X && p.X <= s.X+s.Width+tolerance &&
			s.Y-tolerance <= p.Y && p.Y <= s.Y+s.Height+tolerance
	}

	for _, run := range s.Polylines() {
		for i := 0; i+1 < len(run); i++ {
			if segmentDistance(p, run[i], run[i+1]) <= tolerance {
				return true
			}
		}
	}
	if s.Kind == KindPolygon {
		return insidePolygon(p, s.Vertices())
	}
	return false
}

// ShapeAt returns the topmost shape under p. The background is only returned
// when no other shape is hit, so callers can treat it as a deselect target.
func (d *Diagram) ShapeAt(p Point, tolerance float64) *Shape {
	if d == nil {
		return nil
	}
	var bg *Shape
	for i := len(d.Shapes) - 1; i >= 0; i-- {
		s := d.Shapes[i]
		if !s.Hit(p, tolerance) {
			continue
		}
		if s.Background {
			bg = s
			continue
		}
		return s
	}
	return bg
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b Point) float64 {
	ab := r2.Sub(b.Vec(), a.Vec())
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return p.Distance(a)
	}
	t := r2.Dot(r2.Sub(p.Vec(), a.Vec()), ab) / l2
	t = math.Max(0, math.Min(1, t))
	proj := r2.Add(a.Vec(), r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p.Vec(), proj))
}

// insidePolygon is the even-odd ray casting test.
func insidePolygon(p Point, poly []Point) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}
