// Package export writes snapshots of a styled diagram: the original SVG with
// overlay styles spliced in, or a PNG rasterized at an integer scale.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedScale is returned for raster scales outside MinScale..MaxScale.
	ErrUnsupportedScale = errors.New("export: unsupported scale")
	// ErrUnknownFormat is returned for an unrecognized export format.
	ErrUnknownFormat = errors.New("export: unknown format")
	// ErrImageTooLarge is returned when a raster export would exceed MaxPixels.
	ErrImageTooLarge = errors.New("export: image too large")
)

// Raster scale limits.
const (
	MinScale = 1
	MaxScale = 4
)

// Format is an export file format.
type Format int

const (
	FormatSVG Format = iota
	FormatPNG
)

func (f Format) String() string {
	switch f {
	case FormatSVG:
		return "svg"
	case FormatPNG:
		return "png"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// ParseFormat parses a format name such as "png" or ".SVG".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from a file name's extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ValidateScale checks a raster scale.
func ValidateScale(scale int) error {
	if scale < MinScale || scale > MaxScale {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrUnsupportedScale, scale, MinScale, MaxScale)
	}
	return nil
}
