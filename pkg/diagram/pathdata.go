package diagram

import (
	"fmt"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// PathLexer tokenizes SVG path data and coordinate lists.
// "Invalid" swallows any character the grammar does not know so that lexing
// never fails; the parser stops at the first invalid token instead, leaving
// the well-formed prefix available to callers.
var PathLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Command", Pattern: `[MmLlHhVvCcSsQqTtAaZz]`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Separator", Pattern: `[\s,]+`},
	{Name: "Invalid", Pattern: `.`},
})

type pathAST struct {
	Segments []*segmentAST `@@*`
}

type segmentAST struct {
	Command string    `@Command`
	Args    []float64 `@Number*`
}

type coordsAST struct {
	Values []float64 `@Number*`
}

var (
	pathParser   = participle.MustBuild[pathAST](participle.Lexer(PathLexer), participle.Elide("Separator"))
	coordsParser = participle.MustBuild[coordsAST](participle.Lexer(PathLexer), participle.Elide("Separator"))
)

// Segment is one path command with its raw arguments, as written.
type Segment struct {
	Command rune
	Args    []float64
}

// Relative reports whether the command uses relative coordinates.
func (s Segment) Relative() bool {
	return unicode.IsLower(s.Command)
}

// ParsePathData parses the d attribute of a path element. On malformed input
// it returns the segments parsed before the first error together with the
// error.
func ParsePathData(d string) ([]Segment, error) {
	ast, err := pathParser.ParseString("", d)
	var segs []Segment
	if ast != nil {
		segs = make([]Segment, 0, len(ast.Segments))
		for _, s := range ast.Segments {
			if s == nil || s.Command == "" {
				continue
			}
			segs = append(segs, Segment{Command: rune(s.Command[0]), Args: s.Args})
		}
	}
	if err != nil {
		return segs, fmt.Errorf("diagram: path data: %w", err)
	}
	return segs, nil
}

// ParseCoords parses a whitespace/comma separated number list such as the
// points attribute of polyline and polygon elements.
func ParseCoords(s string) ([]float64, error) {
	ast, err := coordsParser.ParseString("", s)
	var values []float64
	if ast != nil {
		values = ast.Values
	}
	if err != nil {
		return values, fmt.Errorf("diagram: coordinates: %w", err)
	}
	return values, nil
}

// AbsSegment is a path command resolved to absolute coordinates, with implicit
// repetitions split into separate segments. Command is always upper case.
type AbsSegment struct {
	Command  rune
	Controls []Point // Curve control points (C, S, Q, T); empty otherwise
	End      Point   // Pen position after the command
	Arc      []float64
}

// IsCurve reports whether the segment is a curve or arc.
func (s AbsSegment) IsCurve() bool {
	switch s.Command {
	case 'C', 'S', 'Q', 'T', 'A':
		return true
	}
	return false
}

// argsPerCommand is the number of arguments consumed by one repetition.
var argsPerCommand = map[rune]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1,
	'C': 6, 'S': 4, 'Q': 4, 'T': 2,
	'A': 7, 'Z': 0,
}

// Absolute resolves relative commands and implicit repetition. The pen is
// tracked through every command, including curves, so later relative
// commands land where the renderer would place them. Incomplete trailing
// argument groups are dropped.
func Absolute(segs []Segment) []AbsSegment {
	var (
		out      []AbsSegment
		pen      Point
		start    Point
		lastCtrl Point
		lastCmd  rune
	)

	for _, seg := range segs {
		rel := seg.Relative()
		cmd := unicode.ToUpper(seg.Command)
		n, ok := argsPerCommand[cmd]
		if !ok {
			continue
		}

		if cmd == 'Z' {
			pen = start
			out = append(out, AbsSegment{Command: 'Z', End: pen})
			lastCmd = 'Z'
			continue
		}

		args := seg.Args
		first := true
		for len(args) >= n {
			a := args[:n]
			args = args[n:]

			cur := cmd
			// Extra pairs after a moveto are implicit linetos.
			if cmd == 'M' && !first {
				cur = 'L'
			}
			first = false

			abs := func(x, y float64) Point {
				if rel {
					return Point{X: pen.X + x, Y: pen.Y + y}
				}
				return Point{X: x, Y: y}
			}

			var as AbsSegment
			as.Command = cur
			switch cur {
			case 'M':
				as.End = abs(a[0], a[1])
				start = as.End
			case 'L', 'T':
				as.End = abs(a[0], a[1])
				if cur == 'T' {
					as.Controls = []Point{reflectControl(pen, lastCtrl, lastCmd, 'Q', 'T')}
				}
			case 'H':
				as.End = Point{X: a[0], Y: pen.Y}
				if rel {
					as.End.X = pen.X + a[0]
				}
			case 'V':
				as.End = Point{X: pen.X, Y: a[0]}
				if rel {
					as.End.Y = pen.Y + a[0]
				}
			case 'C':
				as.Controls = []Point{abs(a[0], a[1]), abs(a[2], a[3])}
				as.End = abs(a[4], a[5])
			case 'S':
				as.Controls = []Point{reflectControl(pen, lastCtrl, lastCmd, 'C', 'S'), abs(a[0], a[1])}
				as.End = abs(a[2], a[3])
			case 'Q':
				as.Controls = []Point{abs(a[0], a[1])}
				as.End = abs(a[2], a[3])
			case 'A':
				as.Arc = append([]float64(nil), a[:5]...)
				as.End = abs(a[5], a[6])
			}

			if len(as.Controls) > 0 {
				lastCtrl = as.Controls[len(as.Controls)-1]
			}
			pen = as.End
			lastCmd = cur
			out = append(out, as)
		}
	}
	return out
}

// reflectControl returns the implied first control point of a smooth curve:
// the reflection of the previous control point when the previous command was
// of the same family, otherwise the current pen.
func reflectControl(pen, lastCtrl Point, lastCmd, family, smooth rune) Point {
	if lastCmd != family && lastCmd != smooth {
		return pen
	}
	return Point{X: 2*pen.X - lastCtrl.X, Y: 2*pen.Y - lastCtrl.Y}
}
