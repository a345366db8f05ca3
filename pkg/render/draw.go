package render

import (
	"image"
	"strconv"
	"strings"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
)

// Screen sizes in pixels
const (
	minStrokeWidth = 1.0
	terminalRadius = 4.0
	hoverWidth     = 2.0
)

// circleK places cubic control points so four curves approximate a circle.
const circleK = 0.5522847498

// RenderDiagram draws every shape in document order. styles overrides the
// parsed style per shape id, as produced by overlay.Project; shapes absent
// from the map keep their own style.
func RenderDiagram(gtx layout.Context, camera *Camera, d *diagram.Diagram, styles map[string]diagram.Style, colors *Colors) {
	if d == nil {
		return
	}
	for _, s := range d.Shapes {
		st, ok := styles[s.ID]
		if !ok {
			st = s.Style
		}
		RenderShape(gtx, camera, s, st, colors)
	}
}

// RenderShape draws a single shape with the given style.
func RenderShape(gtx layout.Context, camera *Camera, s *diagram.Shape, st diagram.Style, colors *Colors) {
	if s.Kind == diagram.KindUnknown {
		return
	}
	opacity := ParseOpacity(st.Opacity)
	if opacity == 0 {
		return
	}

	// Unset fill is left unpainted so wire paths stay readable; unset
	// stroke falls back to the theme wire color unless the shape is filled.
	fill, filled := ParseColor(st.Fill)
	stroke, stroked := ParseColor(st.Stroke)
	if !stroked && !filled && strings.TrimSpace(st.Stroke) == "" {
		stroke, stroked = colors.Wire, true
	}

	if filled && closed(s) {
		paint.FillShape(gtx.Ops, WithOpacity(fill, opacity),
			clip.Outline{Path: shapePath(gtx, camera, s)}.Op())
	}
	if stroked {
		paint.FillShape(gtx.Ops, WithOpacity(stroke, opacity), clip.Stroke{
			Path:  shapePath(gtx, camera, s),
			Width: float32(strokeWidth(st.StrokeWidth, camera)),
		}.Op())
	}
}

// RenderTerminals draws junction dots at the given diagram positions.
func RenderTerminals(gtx layout.Context, camera *Camera, pts []diagram.Point, colors *Colors) {
	for _, p := range pts {
		x, y := camera.WorldToScreen(p)
		paint.FillShape(gtx.Ops, colors.Terminal,
			clip.Ellipse{
				Min: image.Pt(int(x-terminalRadius), int(y-terminalRadius)),
				Max: image.Pt(int(x+terminalRadius), int(y+terminalRadius)),
			}.Op(gtx.Ops))
	}
}

// RenderHover outlines the shape under the pointer.
func RenderHover(gtx layout.Context, camera *Camera, s *diagram.Shape, colors *Colors) {
	if s == nil || s.Background || s.Kind == diagram.KindUnknown {
		return
	}
	paint.FillShape(gtx.Ops, colors.Hover, clip.Stroke{
		Path:  shapePath(gtx, camera, s),
		Width: hoverWidth * 2,
	}.Op())
}

func closed(s *diagram.Shape) bool {
	switch s.Kind {
	case diagram.KindCircle, diagram.KindRect, diagram.KindPolygon, diagram.KindPath:
		return true
	}
	return false
}

// strokeWidth scales the SVG stroke width to screen pixels.
func strokeWidth(v string, camera *Camera) float64 {
	w, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil || w <= 0 {
		w = 1
	}
	w *= camera.Zoom
	if w < minStrokeWidth {
		return minStrokeWidth
	}
	return w
}

func shapePath(gtx layout.Context, camera *Camera, s *diagram.Shape) clip.PathSpec {
	pt := func(p diagram.Point) f32.Point {
		x, y := camera.WorldToScreen(p)
		return f32.Pt(float32(x), float32(y))
	}

	var path clip.Path
	path.Begin(gtx.Ops)

	switch s.Kind {
	case diagram.KindLine:
		path.MoveTo(pt(diagram.Pt(s.X1, s.Y1)))
		path.LineTo(pt(diagram.Pt(s.X2, s.Y2)))
	case diagram.KindRect, diagram.KindPolyline, diagram.KindPolygon:
		var pts []diagram.Point
		if s.Kind == diagram.KindRect {
			pts = s.Outline()
		} else {
			pts = s.Vertices()
		}
		for i, p := range pts {
			if i == 0 {
				path.MoveTo(pt(p))
			} else {
				path.LineTo(pt(p))
			}
		}
		if s.Kind != diagram.KindPolyline && len(pts) > 0 {
			path.Close()
		}
	case diagram.KindCircle:
		circlePath(&path, pt, s.CX, s.CY, s.R)
	case diagram.KindPath:
		svgPath(&path, pt, s.PathData)
	}
	return path.End()
}

func circlePath(path *clip.Path, pt func(diagram.Point) f32.Point, cx, cy, r float64) {
	k := r * circleK
	path.MoveTo(pt(diagram.Pt(cx+r, cy)))
	path.CubeTo(pt(diagram.Pt(cx+r, cy+k)), pt(diagram.Pt(cx+k, cy+r)), pt(diagram.Pt(cx, cy+r)))
	path.CubeTo(pt(diagram.Pt(cx-k, cy+r)), pt(diagram.Pt(cx-r, cy+k)), pt(diagram.Pt(cx-r, cy)))
	path.CubeTo(pt(diagram.Pt(cx-r, cy-k)), pt(diagram.Pt(cx-k, cy-r)), pt(diagram.Pt(cx, cy-r)))
	path.CubeTo(pt(diagram.Pt(cx+k, cy-r)), pt(diagram.Pt(cx+r, cy-k)), pt(diagram.Pt(cx+r, cy)))
	path.Close()
}

// svgPath replays resolved path commands. Arcs are drawn as chords.
func svgPath(path *clip.Path, pt func(diagram.Point) f32.Point, data string) {
	segs, _ := diagram.ParsePathData(data)
	for _, seg := range diagram.Absolute(segs) {
		switch seg.Command {
		case 'M':
			path.MoveTo(pt(seg.End))
		case 'Z':
			path.Close()
		case 'C', 'S':
			path.CubeTo(pt(seg.Controls[0]), pt(seg.Controls[1]), pt(seg.End))
		case 'Q', 'T':
			path.QuadTo(pt(seg.Controls[0]), pt(seg.End))
		default:
			path.LineTo(pt(seg.End))
		}
	}
}

// Fill paints the whole canvas with the theme background.
func Fill(gtx layout.Context, colors *Colors) {
	paint.Fill(gtx.Ops, colors.Background)
}
