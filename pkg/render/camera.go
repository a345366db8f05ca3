package render

import (
	"math"

	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
)

// Zoom limits in screen pixels per diagram unit.
const (
	MinZoom = 0.05
	MaxZoom = 500.0
)

// Camera represents a viewport onto a diagram. SVG coordinates grow
// downward like screen coordinates, so no axis is inverted.
type Camera struct {
	// Center position in diagram coordinates
	CenterX float64
	CenterY float64

	// Zoom level (pixels per diagram unit)
	Zoom float64

	// Screen dimensions (pixels)
	ScreenWidth  int
	ScreenHeight int
}

// NewCamera creates a camera at 1:1 zoom.
func NewCamera(screenWidth, screenHeight int) *Camera {
	return &Camera{
		Zoom:         1.0,
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
	}
}

// WorldToScreen converts diagram coordinates to screen coordinates (pixels)
func (c *Camera) WorldToScreen(p diagram.Point) (float64, float64) {
	x := (p.X-c.CenterX)*c.Zoom + float64(c.ScreenWidth)/2.0
	y := (p.Y-c.CenterY)*c.Zoom + float64(c.ScreenHeight)/2.0
	return x, y
}

// ScreenToWorld converts screen coordinates (pixels) to diagram coordinates
func (c *Camera) ScreenToWorld(screenX, screenY float64) diagram.Point {
	x := (screenX-float64(c.ScreenWidth)/2.0)/c.Zoom + c.CenterX
	y := (screenY-float64(c.ScreenHeight)/2.0)/c.Zoom + c.CenterY
	return diagram.Pt(x, y)
}

// Pan moves the camera by screen pixel offsets
func (c *Camera) Pan(deltaX, deltaY float64) {
	c.CenterX -= deltaX / c.Zoom
	c.CenterY -= deltaY / c.Zoom
}

// ZoomAt zooms in/out keeping the diagram point under the given screen
// position stationary. factor > 1 zooms in, factor < 1 zooms out.
func (c *Camera) ZoomAt(screenX, screenY, factor float64) {
	before := c.ScreenToWorld(screenX, screenY)

	c.Zoom = math.Max(MinZoom, math.Min(MaxZoom, c.Zoom*factor))

	after := c.ScreenToWorld(screenX, screenY)
	c.CenterX += before.X - after.X
	c.CenterY += before.Y - after.Y
}

// Fit adjusts camera to fit the bounding box in view with a 5% margin on
// each side.
func (c *Camera) Fit(bbox diagram.BoundingBox) {
	width := bbox.Width()
	height := bbox.Height()
	if bbox.IsEmpty() || width <= 0 || height <= 0 {
		return
	}

	c.CenterX = (bbox.Min.X + bbox.Max.X) / 2.0
	c.CenterY = (bbox.Min.Y + bbox.Max.Y) / 2.0

	zoomX := float64(c.ScreenWidth) * 0.9 / width
	zoomY := float64(c.ScreenHeight) * 0.9 / height
	c.Zoom = math.Max(MinZoom, math.Min(MaxZoom, math.Min(zoomX, zoomY)))
}

// UpdateScreenSize updates camera when window is resized
func (c *Camera) UpdateScreenSize(width, height int) {
	c.ScreenWidth = width
	c.ScreenHeight = height
}

// VisibleBounds returns the visible area in diagram coordinates.
func (c *Camera) VisibleBounds() diagram.BoundingBox {
	return diagram.BoundingBox{
		Min: c.ScreenToWorld(0, 0),
		Max: c.ScreenToWorld(float64(c.ScreenWidth), float64(c.ScreenHeight)),
	}
}

// Tolerance converts a hit tolerance in screen pixels to diagram units.
func (c *Camera) Tolerance(pixels float64) float64 {
	if c.Zoom <= 0 {
		return pixels
	}
	return pixels / c.Zoom
}
