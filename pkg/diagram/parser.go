package diagram

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// BackgroundID is the id (or class) that marks a shape as the diagram
// background.
const BackgroundID = "background"

// idNamespace seeds generated shape ids so the same markup always yields the
// same id across reloads.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("circuitnet/diagram/shape"))

// skipped elements hold content that is not drawn in place.
var skipped = map[string]bool{
	"defs": true, "clipPath": true, "mask": true, "marker": true,
	"symbol": true, "pattern": true, "linearGradient": true,
	"radialGradient": true, "style": true, "title": true, "desc": true,
	"metadata": true, "script": true, "filter": true,
}

// containers group other elements and never become shapes themselves.
var containers = map[string]bool{
	"svg": true, "g": true, "a": true, "switch": true,
}

// untraceable drawable elements become KindUnknown shapes.
var untraceable = map[string]bool{
	"ellipse": true, "text": true, "use": true, "image": true, "foreignObject": true,
}

// ParseFile reads and parses an SVG diagram file
func ParseFile(filename string) (*Diagram, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("diagram: open %s: %w", filename, err)
	}
	defer file.Close()

	return Parse(file)
}

// ParseString parses an SVG diagram from a string
func ParseString(markup string) (*Diagram, error) {
	return Parse(strings.NewReader(markup))
}

// Parse reads and parses an SVG diagram from an io.Reader. The raw markup is
// retained on the Diagram for passthrough export.
func Parse(r io.Reader) (*Diagram, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("diagram: read: %w", err)
	}

	p := &parser{
		d:       &Diagram{Source: src},
		seenIDs: make(map[string]int),
		seenKey: make(map[string]int),
	}
	dec := xml.NewDecoder(bytes.NewReader(src))
	dec.Entity = xml.HTMLEntity

	sawRoot := false
	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("diagram: parse: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		name := se.Name.Local
		switch {
		case name == "svg" && !sawRoot:
			sawRoot = true
			p.readRoot(se)
		case skipped[name]:
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("diagram: parse %s: %w", name, err)
			}
		case containers[name]:
			// descend
		case ParseKind(name) != KindUnknown:
			p.addShape(se, start, dec.InputOffset())
		case untraceable[name]:
			p.addShape(se, start, dec.InputOffset())
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("diagram: parse %s: %w", name, err)
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("diagram: parse: no <svg> root element")
	}

	p.markBackground()
	p.d.index()
	return p.d, nil
}

type parser struct {
	d       *Diagram
	seenIDs map[string]int
	seenKey map[string]int
}

func (p *parser) readRoot(se xml.StartElement) {
	attrs := attrMap(se.Attr)
	p.d.Width = parseLength(attrs["width"])
	p.d.Height = parseLength(attrs["height"])

	vb := NewBoundingBox()
	if raw, ok := attrs["viewBox"]; ok {
		vals, _ := ParseCoords(raw)
		if len(vals) == 4 && vals[2] > 0 && vals[3] > 0 {
			vb = BoundingBox{
				Min: Point{X: vals[0], Y: vals[1]},
				Max: Point{X: vals[0] + vals[2], Y: vals[1] + vals[3]},
			}
		}
	}
	if vb.IsEmpty() && p.d.Width > 0 && p.d.Height > 0 {
		vb = BoundingBox{Max: Point{X: p.d.Width, Y: p.d.Height}}
	}
	p.d.ViewBox = vb
}

func (p *parser) addShape(se xml.StartElement, start, end int64) {
	attrs := attrMap(se.Attr)
	s := &Shape{
		Tag:         se.Name.Local,
		Kind:        ParseKind(se.Name.Local),
		Index:       len(p.d.Shapes),
		Class:       attrs["class"],
		Style:       readStyle(attrs),
		SourceStart: start,
		SourceEnd:   end,
	}

	switch s.Kind {
	case KindLine:
		s.X1, s.Y1 = parseLength(attrs["x1"]), parseLength(attrs["y1"])
		s.X2, s.Y2 = parseLength(attrs["x2"]), parseLength(attrs["y2"])
	case KindCircle:
		s.CX, s.CY, s.R = parseLength(attrs["cx"]), parseLength(attrs["cy"]), parseLength(attrs["r"])
	case KindRect:
		s.X, s.Y = parseLength(attrs["x"]), parseLength(attrs["y"])
		s.Width, s.Height = parseLength(attrs["width"]), parseLength(attrs["height"])
	case KindPath:
		s.PathData = attrs["d"]
	case KindPolyline, KindPolygon:
		// A malformed list keeps its well-formed prefix.
		s.Coords, _ = ParseCoords(attrs["points"])
	}

	s.ID = p.assignID(attrs["id"], s.Tag, se.Attr)
	p.d.Shapes = append(p.d.Shapes, s)
}

// assignID returns the element id, made unique within the diagram, or a
// deterministic generated id when the element has none.
func (p *parser) assignID(id, tag string, attrs []xml.Attr) string {
	if id == "" {
		key := markupKey(tag, attrs)
		p.seenKey[key]++
		if n := p.seenKey[key]; n > 1 {
			key = fmt.Sprintf("%s#%d", key, n)
		}
		id = tag + "-" + uuid.NewSHA1(idNamespace, []byte(key)).String()[:8]
	}

	if p.seenIDs[id] == 0 {
		p.seenIDs[id] = 1
		return id
	}
	base := id
	for n := p.seenIDs[base] + 1; ; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
		if p.seenIDs[id] == 0 {
			p.seenIDs[base] = n
			p.seenIDs[id] = 1
			return id
		}
	}
}

// markBackground designates at most one background shape: an explicit
// "background" id or class wins over a rect covering the whole viewBox.
func (p *parser) markBackground() {
	for _, s := range p.d.Shapes {
		if strings.EqualFold(s.ID, BackgroundID) || hasClass(s.Class, BackgroundID) {
			s.Background = true
			return
		}
	}
	vb := p.d.ViewBox
	if vb.IsEmpty() {
		return
	}
	for _, s := range p.d.Shapes {
		if s.Kind != KindRect {
			continue
		}
		if s.X <= vb.Min.X && s.Y <= vb.Min.Y &&
			s.X+s.Width >= vb.Max.X && s.Y+s.Height >= vb.Max.Y {
			s.Background = true
			return
		}
	}
}

func hasClass(classes, name string) bool {
	for _, c := range strings.Fields(classes) {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		// xlink:href, inkscape:label and friends are not geometry
		if a.Name.Space != "" {
			continue
		}
		m[a.Name.Local] = a.Value
	}
	return m
}

// markupKey builds a canonical string from an element's name and attributes.
func markupKey(tag string, attrs []xml.Attr) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, a.Name.Local+"="+a.Value)
	}
	sort.Strings(parts)
	return tag + "|" + strings.Join(parts, "|")
}

// readStyle collects presentation attributes; declarations in the inline
// style attribute take precedence.
func readStyle(attrs map[string]string) Style {
	st := Style{
		Stroke:      attrs["stroke"],
		StrokeWidth: attrs["stroke-width"],
		Fill:        attrs["fill"],
		Opacity:     attrs["opacity"],
	}
	for prop, val := range ParseStyleAttr(attrs["style"]) {
		switch prop {
		case "stroke":
			st.Stroke = val
		case "stroke-width":
			st.StrokeWidth = val
		case "fill":
			st.Fill = val
		case "opacity":
			st.Opacity = val
		}
	}
	return st
}

// ParseStyleAttr splits an inline CSS declaration list into properties.
func ParseStyleAttr(style string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		out[prop] = strings.TrimSpace(val)
	}
	return out
}

// parseLength reads a numeric attribute. Units other than px are not
// converted; unparsable values read as 0.
func parseLength(v string) float64 {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
