package overlay

import (
	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
)

// Palette is the styling applied by the overlays.
type Palette struct {
	Highlight      string // Stroke color of highlighted shapes
	HighlightWidth string // Stroke width of highlighted shapes
	Match          string // Stroke color of search matches
	DimOpacity     string // Opacity of shapes dimmed by a search
}

// DefaultPalette returns the built-in overlay colors.
func DefaultPalette() Palette {
	return Palette{
		Highlight:      "#ff3b30",
		HighlightWidth: "3",
		Match:          "#0a84ff",
		DimOpacity:     "0.2",
	}
}

// Project returns the style to draw for every shape of d under state s. It
// has no side effects; with an empty State every shape maps to its own
// parsed style.
func Project(d *diagram.Diagram, s State, p Palette) map[string]diagram.Style {
	if d == nil {
		return nil
	}
	out := make(map[string]diagram.Style, len(d.Shapes))
	for _, sh := range d.Shapes {
		st := sh.Style
		if saved, ok := s.Saved[sh.ID]; ok {
			st = saved
			st.Stroke = p.Highlight
			st.StrokeWidth = p.HighlightWidth
		}
		if s.Dimmed[sh.ID] {
			st.Opacity = p.DimOpacity
		}
		if s.Matched[sh.ID] {
			st.Stroke = p.Match
		}
		out[sh.ID] = st
	}
	return out
}

// Changed returns the ids whose projected style differs from the parsed
// style, in document order.
func Changed(d *diagram.Diagram, styles map[string]diagram.Style) []string {
	if d == nil {
		return nil
	}
	var ids []string
	for _, sh := range d.Shapes {
		if st, ok := styles[sh.ID]; ok && st != sh.Style {
			ids = append(ids, sh.ID)
		}
	}
	return ids
}
