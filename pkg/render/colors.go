package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
)

// Theme represents a color scheme for diagram rendering
type Theme int

const (
	// ThemeLight draws on a white background
	ThemeLight Theme = iota
	// ThemeDark draws on a near-black background
	ThemeDark
)

// String returns the theme name as used in the config file.
func (t Theme) String() string {
	switch t {
	case ThemeDark:
		return "dark"
	default:
		return "light"
	}
}

// ParseTheme maps a config value to a Theme.
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "light":
		return ThemeLight, nil
	case "dark":
		return ThemeDark, nil
	}
	return ThemeLight, fmt.Errorf("render: unknown theme %q", s)
}

// Colors defines the color scheme for the canvas. Shapes keep their own
// stroke and fill where the markup sets one; these colors cover the rest.
type Colors struct {
	Background color.NRGBA
	Wire       color.NRGBA // Stroke for shapes with no usable stroke
	Terminal   color.NRGBA // Junction dots of the highlighted net
	Hover      color.NRGBA
	Panel      color.NRGBA
	Text       color.NRGBA
}

// GetColors returns the color scheme for the given theme
func GetColors(theme Theme) *Colors {
	switch theme {
	case ThemeDark:
		return &Colors{
			Background: color.NRGBA{R: 30, G: 30, B: 30, A: 255},
			Wire:       color.NRGBA{R: 200, G: 200, B: 200, A: 255},
			Terminal:   color.NRGBA{R: 255, G: 214, B: 10, A: 255},
			Hover:      color.NRGBA{R: 100, G: 180, B: 255, A: 160},
			Panel:      color.NRGBA{R: 45, G: 45, B: 48, A: 255},
			Text:       color.NRGBA{R: 230, G: 230, B: 230, A: 255},
		}
	default:
		return &Colors{
			Background: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
			Wire:       color.NRGBA{R: 0, G: 0, B: 0, A: 255},
			Terminal:   color.NRGBA{R: 255, G: 149, B: 0, A: 255},
			Hover:      color.NRGBA{R: 0, G: 122, B: 255, A: 160},
			Panel:      color.NRGBA{R: 242, G: 242, B: 247, A: 255},
			Text:       color.NRGBA{R: 28, G: 28, B: 30, A: 255},
		}
	}
}

// ParseColor converts an SVG paint value (keyword, #rgb, #rrggbb or
// rgb()) to a color. ok is false for "none", url() paints and values that
// cannot be read.
func ParseColor(s string) (c color.NRGBA, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return color.NRGBA{}, false
	}
	parsed, err := oksvg.ParseSVGColor(s)
	if err != nil || parsed == nil {
		return color.NRGBA{}, false
	}
	return color.NRGBAModel.Convert(parsed).(color.NRGBA), true
}

// Paint resolves an SVG paint value, falling back when it is unset or
// unreadable.
func Paint(s string, fallback color.NRGBA) color.NRGBA {
	if c, ok := ParseColor(s); ok {
		return c
	}
	return fallback
}

// ParseOpacity reads an opacity value clamped to [0, 1]. Empty or invalid
// values mean fully opaque.
func ParseOpacity(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 1
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// WithOpacity scales the alpha channel.
func WithOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}
