// Package viewer implements the interactive circuit viewer. Session holds
// the analysis state and is driven from the UI goroutine only; App wires it
// to a Gio window.
package viewer

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"github.com/OpenTraceLab/circuitnet/pkg/catalog"
	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
	"github.com/OpenTraceLab/circuitnet/pkg/export"
	"github.com/OpenTraceLab/circuitnet/pkg/netlist"
	"github.com/OpenTraceLab/circuitnet/pkg/overlay"
)

// ClickResult describes what a click did to the overlay.
type ClickResult int

const (
	ClickNone    ClickResult = iota // Nothing under the pointer and nothing to clear
	ClickTraced                     // A net was traced and highlighted
	ClickCleared                    // Background or empty space cleared the highlight
)

// Session is one loaded diagram with its overlays. It is not safe for
// concurrent use.
type Session struct {
	Path string

	diagram    *diagram.Diagram
	cfg        *netlist.Config
	tracer     *netlist.Tracer
	palette    overlay.Palette
	components catalog.Repository
	state      overlay.State
	styles     map[string]diagram.Style
	log        *zap.Logger
}

// NewSession creates an empty session. cfg must already be validated.
func NewSession(cfg *netlist.Config, palette overlay.Palette, components catalog.Repository, log *zap.Logger) *Session {
	if cfg == nil {
		cfg = netlist.DefaultConfig()
	}
	if components == nil {
		components = catalog.NewMemoryRepository()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{cfg: cfg, palette: palette, components: components, log: log}
}

// Load parses the diagram at path and replaces the current one.
func (s *Session) Load(path string) error {
	d, err := diagram.ParseFile(path)
	if err != nil {
		return fmt.Errorf("viewer: load %s: %w", path, err)
	}
	s.SetDiagram(path, d)

	counts := d.CountByKind()
	s.log.Info("diagram loaded",
		zap.String("path", path),
		zap.Int("shapes", len(d.Shapes)),
		zap.Int("lines", counts[diagram.KindLine]),
		zap.Int("paths", counts[diagram.KindPath]),
		zap.Int("unknown", counts[diagram.KindUnknown]),
		zap.Float64("threshold", s.cfg.EffectiveThreshold(d)),
	)
	return nil
}

// SetDiagram replaces the diagram. A search query survives a reload and is
// recomputed against the new shapes; the highlight does not.
func (s *Session) SetDiagram(path string, d *diagram.Diagram) {
	query := s.state.Query
	s.Path = path
	s.diagram = d
	s.tracer = netlist.NewTracer(s.cfg, d)
	s.state = overlay.State{}
	s.apply(overlay.Search{Query: query, Components: s.components.List()})
}

// Diagram returns the loaded diagram, or nil.
func (s *Session) Diagram() *diagram.Diagram {
	return s.diagram
}

// State returns the current overlay state.
func (s *Session) State() overlay.State {
	return s.state
}

// Styles returns the projected style per shape id for drawing.
func (s *Session) Styles() map[string]diagram.Style {
	if s.styles == nil && s.diagram != nil {
		s.styles = overlay.Project(s.diagram, s.state, s.palette)
	}
	return s.styles
}

// Components returns the descriptor repository.
func (s *Session) Components() catalog.Repository {
	return s.components
}

// Describe returns the tooltip text for a shape: the label of the component
// whose designator equals id, followed by its description. Shapes without a
// descriptor are unlabeled.
func (s *Session) Describe(id string) (string, bool) {
	if id == "" || s.components == nil {
		return "", false
	}
	desc, ok := s.components.Lookup(id)
	if !ok {
		return "", false
	}
	if desc.Description == "" {
		return desc.Label(), true
	}
	return desc.Label() + ": " + desc.Description, true
}

// Click handles a pointer press at p in diagram coordinates. A hit on a
// traceable shape traces its net; additive unions it with the current
// highlight. A hit on the background, or on nothing, clears the highlight.
func (s *Session) Click(p diagram.Point, tolerance float64, additive bool) ClickResult {
	if s.diagram == nil {
		return ClickNone
	}

	hit := s.diagram.ShapeAt(p, tolerance)
	if hit == nil || hit.Background || !s.tracer.Participates(hit) {
		if s.state.Net == nil {
			return ClickNone
		}
		s.apply(overlay.ClearHighlight{})
		s.log.Debug("highlight cleared")
		return ClickCleared
	}

	return s.Trace(hit.ID, additive)
}

// Trace highlights the net reachable from the shape id.
func (s *Session) Trace(id string, additive bool) ClickResult {
	if s.diagram == nil {
		return ClickNone
	}
	net := s.tracer.TraceID(s.diagram, id)
	s.apply(overlay.Highlight{Net: net, Additive: additive})

	s.log.Debug("net traced",
		zap.String("seed", id),
		zap.Bool("additive", additive),
		zap.Int("shapes", net.Len()),
		zap.Int("highlighted", len(s.state.Highlighted)),
	)
	if net.IsEmpty() {
		return ClickCleared
	}
	return ClickTraced
}

// SetQuery recomputes the search overlay for a new query.
func (s *Session) SetQuery(query string) {
	if s.diagram == nil {
		return
	}
	s.apply(overlay.Search{Query: query, Components: s.components.List()})
}

// ClearAll removes both overlays. The side panel goes back to listing every
// component.
func (s *Session) ClearAll() {
	if s.diagram == nil {
		return
	}
	s.apply(overlay.ClearHighlight{})
	s.apply(overlay.Search{Components: s.components.List()})
}

// AddComponents merges descriptors into the repository and refreshes an
// active search.
func (s *Session) AddComponents(descs []catalog.Descriptor) {
	s.components.Upsert(descs...)
	s.SetQuery(s.state.Query)
}

// Export renders the current view.
func (s *Session) Export(f export.Format, scale int) ([]byte, error) {
	if s.diagram == nil {
		return nil, fmt.Errorf("viewer: no diagram loaded")
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, s.diagram, s.Styles(), f, scale); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Session) apply(a overlay.Action) {
	s.state = overlay.Reduce(s.diagram, s.state, a)
	s.styles = nil
}
