package export

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
)

// styleAttrs are the presentation attributes the overlays rewrite.
var styleAttrs = []string{"stroke", "stroke-width", "fill", "opacity"}

var attrPattern = regexp.MustCompile(`\s(stroke|stroke-width|fill|opacity|style)\s*=\s*("[^"]*"|'[^']*')`)

// WriteSVG writes the diagram's source markup with the given styles applied.
// Only the start tags of shapes whose style differs from the parsed style
// are rewritten; every other byte is copied through. Diagrams built in code
// (no Source) are serialized from their shapes instead.
func WriteSVG(w io.Writer, d *diagram.Diagram, styles map[string]diagram.Style) error {
	if d == nil {
		return fmt.Errorf("export: nil diagram")
	}
	if len(d.Source) == 0 {
		return writeGenerated(w, d, styles)
	}

	shapes := make([]*diagram.Shape, 0, len(d.Shapes))
	for _, sh := range d.Shapes {
		st, ok := styles[sh.ID]
		if !ok || st == sh.Style || sh.SourceEnd <= sh.SourceStart {
			continue
		}
		shapes = append(shapes, sh)
	}
	sort.Slice(shapes, func(i, j int) bool { return shapes[i].SourceStart < shapes[j].SourceStart })

	src := d.Source
	var pos int64
	for _, sh := range shapes {
		if sh.SourceStart < pos || sh.SourceEnd > int64(len(src)) {
			return fmt.Errorf("export: shape %s: source span out of range", sh.ID)
		}
		if _, err := w.Write(src[pos:sh.SourceStart]); err != nil {
			return err
		}
		tag := rewriteTag(string(src[sh.SourceStart:sh.SourceEnd]), styles[sh.ID])
		if _, err := io.WriteString(w, tag); err != nil {
			return err
		}
		pos = sh.SourceEnd
	}
	_, err := w.Write(src[pos:])
	return err
}

// StyledSVG returns WriteSVG's output as bytes.
func StyledSVG(d *diagram.Diagram, styles map[string]diagram.Style) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, d, styles); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rewriteTag replaces the style-related attributes of a start tag. The
// overlay properties are removed from any inline style declaration so they
// cannot shadow the new attributes; other declarations are kept.
func rewriteTag(tag string, st diagram.Style) string {
	var keptStyle string
	body := attrPattern.ReplaceAllStringFunc(tag, func(m string) string {
		sub := attrPattern.FindStringSubmatch(m)
		if sub[1] != "style" {
			return ""
		}
		keptStyle = stripStyleProps(strings.Trim(sub[2], `"'`))
		return ""
	})

	closing := ">"
	if strings.HasSuffix(body, "/>") {
		closing = "/>"
	}
	body = strings.TrimRight(strings.TrimSuffix(body, closing), " \t\r\n")

	var b strings.Builder
	b.WriteString(body)
	for _, kv := range styleValues(st) {
		fmt.Fprintf(&b, ` %s="%s"`, kv[0], escapeAttr(kv[1]))
	}
	if keptStyle != "" {
		fmt.Fprintf(&b, ` style="%s"`, escapeAttr(keptStyle))
	}
	b.WriteString(closing)
	return b.String()
}

func styleValues(st diagram.Style) [][2]string {
	vals := []string{st.Stroke, st.StrokeWidth, st.Fill, st.Opacity}
	var out [][2]string
	for i, name := range styleAttrs {
		if vals[i] != "" {
			out = append(out, [2]string{name, vals[i]})
		}
	}
	return out
}

func stripStyleProps(style string) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		prop, _, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(prop))
		overlay := false
		for _, a := range styleAttrs {
			if name == a {
				overlay = true
				break
			}
		}
		if !overlay {
			kept = append(kept, strings.TrimSpace(decl))
		}
	}
	return strings.Join(kept, "; ")
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;")

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// writeGenerated serializes shapes directly when no source markup exists.
func writeGenerated(w io.Writer, d *diagram.Diagram, styles map[string]diagram.Style) error {
	vb := d.ViewBox
	if vb.IsEmpty() {
		vb = d.GetBoundingBox()
	}
	if vb.IsEmpty() {
		vb = diagram.BoundingBox{}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%g %g %g %g">`+"\n",
		vb.Min.X, vb.Min.Y, vb.Width(), vb.Height())
	for _, sh := range d.Shapes {
		st, ok := styles[sh.ID]
		if !ok {
			st = sh.Style
		}
		el := shapeElement(sh)
		if el == "" {
			continue
		}
		fmt.Fprintf(&b, `  <%s id="%s"%s`, sh.Kind, escapeAttr(sh.ID), el)
		for _, kv := range styleValues(st) {
			fmt.Fprintf(&b, ` %s="%s"`, kv[0], escapeAttr(kv[1]))
		}
		b.WriteString("/>\n")
	}
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func shapeElement(sh *diagram.Shape) string {
	switch sh.Kind {
	case diagram.KindLine:
		return fmt.Sprintf(` x1="%g" y1="%g" x2="%g" y2="%g"`, sh.X1, sh.Y1, sh.X2, sh.Y2)
	case diagram.KindCircle:
		return fmt.Sprintf(` cx="%g" cy="%g" r="%g"`, sh.CX, sh.CY, sh.R)
	case diagram.KindRect:
		return fmt.Sprintf(` x="%g" y="%g" width="%g" height="%g"`, sh.X, sh.Y, sh.Width, sh.Height)
	case diagram.KindPath:
		return fmt.Sprintf(` d="%s"`, escapeAttr(sh.PathData))
	case diagram.KindPolyline, diagram.KindPolygon:
		parts := make([]string, len(sh.Coords))
		for i, c := range sh.Coords {
			parts[i] = fmt.Sprintf("%g", c)
		}
		return fmt.Sprintf(` points="%s"`, strings.Join(parts, " "))
	}
	return ""
}
