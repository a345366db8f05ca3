package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
)

// MaxPixels caps the area of a rasterized export.
const MaxPixels = 1 << 26

// Rasterize renders the styled diagram onto a white RGBA image. The base
// size is the root width and height, falling back to the viewBox, and is
// multiplied by scale.
func Rasterize(d *diagram.Diagram, styles map[string]diagram.Style, scale int) (*image.RGBA, error) {
	if err := ValidateScale(scale); err != nil {
		return nil, err
	}
	markup, err := StyledSVG(d, styles)
	if err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(markup), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("export: rasterize: %w", err)
	}

	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		bb := d.GetBoundingBox()
		if bb.IsEmpty() || bb.Width() <= 0 || bb.Height() <= 0 {
			return nil, fmt.Errorf("export: rasterize: diagram has no extent")
		}
		icon.ViewBox.X, icon.ViewBox.Y = bb.Min.X, bb.Min.Y
		icon.ViewBox.W, icon.ViewBox.H = bb.Width(), bb.Height()
	}

	baseW, baseH := baseSize(d, icon.ViewBox.W, icon.ViewBox.H)
	fw := math.Ceil(baseW * float64(scale))
	fh := math.Ceil(baseH * float64(scale))
	if fw*fh > MaxPixels {
		return nil, fmt.Errorf("%w: %.0fx%.0f exceeds %d pixels", ErrImageTooLarge, fw, fh, MaxPixels)
	}
	w, h := int(fw), int(fh)
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	return img, nil
}

// baseSize returns the unscaled image size for a diagram whose viewBox is
// vbW x vbH. A single root dimension keeps the viewBox aspect ratio.
func baseSize(d *diagram.Diagram, vbW, vbH float64) (float64, float64) {
	w, h := d.Width, d.Height
	switch {
	case w > 0 && h > 0:
		return w, h
	case w > 0:
		return w, w * vbH / vbW
	case h > 0:
		return h * vbW / vbH, h
	}
	return vbW, vbH
}

// RenderPNG rasterizes the styled diagram and encodes it as PNG.
func RenderPNG(w io.Writer, d *diagram.Diagram, styles map[string]diagram.Style, scale int) error {
	img, err := Rasterize(d, styles, scale)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("export: encode png: %w", err)
	}
	return nil
}

// Write exports the styled diagram in the given format. scale is ignored
// for SVG.
func Write(w io.Writer, d *diagram.Diagram, styles map[string]diagram.Style, f Format, scale int) error {
	switch f {
	case FormatSVG:
		return WriteSVG(w, d, styles)
	case FormatPNG:
		return RenderPNG(w, d, styles, scale)
	}
	return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
}
