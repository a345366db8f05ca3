package render

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gioui.org/layout"
	"gioui.org/op"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
)

func TestCameraRoundTrip(t *testing.T) {
	cam := NewCamera(800, 600)
	cam.CenterX, cam.CenterY = 50, 25
	cam.Zoom = 4

	p := diagram.Pt(12.5, -3)
	x, y := cam.WorldToScreen(p)
	got := cam.ScreenToWorld(x, y)
	if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
		t.Errorf("round trip = %v, want %v", got, p)
	}

	x, y = cam.WorldToScreen(diagram.Pt(50, 25))
	if x != 400 || y != 300 {
		t.Errorf("center maps to (%v, %v), want (400, 300)", x, y)
	}
}

func TestCameraPan(t *testing.T) {
	cam := NewCamera(100, 100)
	cam.Zoom = 2
	cam.Pan(10, -20)
	assert.Equal(t, -5.0, cam.CenterX)
	assert.Equal(t, 10.0, cam.CenterY)
}

func TestCameraZoomAtKeepsAnchor(t *testing.T) {
	cam := NewCamera(800, 600)
	before := cam.ScreenToWorld(100, 50)
	cam.ZoomAt(100, 50, 3)
	after := cam.ScreenToWorld(100, 50)

	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.Equal(t, 3.0, cam.Zoom)

	cam.ZoomAt(0, 0, 1e9)
	assert.Equal(t, MaxZoom, cam.Zoom)
	cam.ZoomAt(0, 0, 1e-12)
	assert.Equal(t, MinZoom, cam.Zoom)
}

func TestCameraFit(t *testing.T) {
	cam := NewCamera(1000, 500)
	cam.Fit(diagram.BoundingBox{Min: diagram.Pt(0, 0), Max: diagram.Pt(200, 50)})

	assert.Equal(t, 100.0, cam.CenterX)
	assert.Equal(t, 25.0, cam.CenterY)
	assert.InDelta(t, 4.5, cam.Zoom, 1e-9)

	vb := cam.VisibleBounds()
	assert.True(t, vb.Contains(diagram.Pt(0, 0)))
	assert.True(t, vb.Contains(diagram.Pt(200, 50)))

	zoom := cam.Zoom
	cam.Fit(diagram.NewBoundingBox())
	assert.Equal(t, zoom, cam.Zoom, "empty box must not change the camera")
}

func TestCameraTolerance(t *testing.T) {
	cam := NewCamera(10, 10)
	cam.Zoom = 4
	assert.Equal(t, 1.5, cam.Tolerance(6))
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"black", color.NRGBA{A: 255}, true},
		{"#ff0000", color.NRGBA{R: 255, A: 255}, true},
		{"#0f0", color.NRGBA{G: 255, A: 255}, true},
		{"none", color.NRGBA{}, false},
		{"", color.NRGBA{}, false},
		{"not-a-color", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseColor(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseColor(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	fallback := color.NRGBA{R: 1, G: 2, B: 3, A: 4}
	assert.Equal(t, fallback, Paint("none", fallback))
}

func TestParseOpacity(t *testing.T) {
	assert.Equal(t, 1.0, ParseOpacity(""))
	assert.Equal(t, 0.25, ParseOpacity(" 0.25 "))
	assert.Equal(t, 0.0, ParseOpacity("-2"))
	assert.Equal(t, 1.0, ParseOpacity("7"))
	assert.Equal(t, uint8(128), WithOpacity(color.NRGBA{A: 255}, 0.5).A)
}

func TestParseTheme(t *testing.T) {
	th, err := ParseTheme("Dark")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, th)
	assert.Equal(t, "dark", th.String())

	_, err = ParseTheme("sepia")
	assert.Error(t, err)

	assert.NotEqual(t, GetColors(ThemeLight).Background, GetColors(ThemeDark).Background)
}

func TestRenderDiagramRecordsOps(t *testing.T) {
	d, err := diagram.ParseString(`<svg viewBox="0 0 100 100">
	  <rect id="background" width="100" height="100" fill="white"/>
	  <line id="a" x1="0" y1="0" x2="10" y2="0" stroke="black"/>
	  <circle id="b" cx="10" cy="0" r="2" fill="red"/>
	  <path id="c" d="M10 0 C 15 5 20 5 25 0 Q 30 -5 35 0 A 5 5 0 0 1 45 0 Z"/>
	  <polygon id="d" points="50,50 60,50 55,60" stroke="none" fill="none"/>
	  <text id="t" x="1" y="1">label</text>
	</svg>`)
	require.NoError(t, err)

	var ops op.Ops
	gtx := layout.Context{Ops: &ops, Constraints: layout.Exact(image.Pt(200, 200))}
	cam := NewCamera(200, 200)
	cam.Fit(d.GetBoundingBox())
	colors := GetColors(ThemeLight)

	styles := map[string]diagram.Style{"a": {Stroke: "#ff3b30", StrokeWidth: "3", Opacity: "0.2"}}
	assert.NotPanics(t, func() {
		Fill(gtx, colors)
		RenderDiagram(gtx, cam, d, styles, colors)
		RenderTerminals(gtx, cam, []diagram.Point{diagram.Pt(10, 0)}, colors)
		RenderHover(gtx, cam, d.Shape("b"), colors)
		RenderHover(gtx, cam, nil, colors)
		RenderDiagram(gtx, cam, nil, nil, colors)
	})
}

func TestStrokeWidth(t *testing.T) {
	cam := NewCamera(10, 10)
	cam.Zoom = 2
	assert.Equal(t, 6.0, strokeWidth("3px", cam))
	assert.Equal(t, 2.0, strokeWidth("bogus", cam))
	cam.Zoom = 0.1
	assert.Equal(t, minStrokeWidth, strokeWidth("1", cam))
}
