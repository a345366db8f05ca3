package netlist

import (
	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
)

// Terminals returns the plausible electrical connection points of a shape.
// Unknown kinds yield no points. Malformed path data contributes the points
// parsed before the error. A nil cfg behaves like DefaultConfig.
func Terminals(s *diagram.Shape, cfg *Config) []diagram.Point {
	if s == nil {
		return nil
	}

	switch s.Kind {
	case diagram.KindLine:
		return []diagram.Point{
			diagram.Pt(s.X1, s.Y1),
			diagram.Pt(s.X2, s.Y2),
		}

	case diagram.KindCircle:
		return []diagram.Point{
			diagram.Pt(s.CX, s.CY),
			diagram.Pt(s.CX+s.R, s.CY),
			diagram.Pt(s.CX-s.R, s.CY),
			diagram.Pt(s.CX, s.CY+s.R),
			diagram.Pt(s.CX, s.CY-s.R),
		}

	case diagram.KindRect:
		x0, y0 := s.X, s.Y
		x1, y1 := s.X+s.Width, s.Y+s.Height
		mx, my := s.X+s.Width/2, s.Y+s.Height/2
		return []diagram.Point{
			// corners
			diagram.Pt(x0, y0), diagram.Pt(x1, y0),
			diagram.Pt(x1, y1), diagram.Pt(x0, y1),
			// edge midpoints: top, right, bottom, left
			diagram.Pt(mx, y0), diagram.Pt(x1, my),
			diagram.Pt(mx, y1), diagram.Pt(x0, my),
		}

	case diagram.KindPolyline, diagram.KindPolygon:
		return s.Vertices()

	case diagram.KindPath:
		return pathTerminals(s.PathData, cfg != nil && cfg.ResolveCurveEndpoints)
	}

	return nil
}

func pathTerminals(d string, curves bool) []diagram.Point {
	segs, _ := diagram.ParsePathData(d)

	var pts []diagram.Point
	for _, seg := range diagram.Absolute(segs) {
		switch seg.Command {
		case 'M', 'L', 'H', 'V':
			pts = append(pts, seg.End)
		case 'Z':
			// closes onto an existing vertex
		default:
			if curves {
				pts = append(pts, seg.End)
			}
		}
	}
	return pts
}
