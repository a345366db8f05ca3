// Package netlist discovers electrical connectivity in a vector circuit
// diagram from geometry alone.
//
// Every shape is reduced to a short list of terminal points, two shapes are
// connected when any pair of their terminals lies within the proximity
// threshold, and a net is the transitive closure of that relation.
//
// # Overview
//
// Tracing a single net from a clicked shape:
//
//	d, err := diagram.ParseFile("board.svg")
//	cfg := netlist.DefaultConfig()
//	tracer := netlist.NewTracer(cfg, d)
//	net := tracer.Trace(d.Shape("W1"), d.Shapes)
//	fmt.Println(net.IDs(), net.Terminals)
//
// Partitioning the whole diagram:
//
//	nl := netlist.Partition(d, cfg)
//	data, _ := nl.ExportJSON()
//
// # Terminal Points
//
//   - line: both endpoints
//   - path: vertices of move/line commands (M, L, H, V)
//   - circle: center and the four points at center ± r on each axis
//   - rect: four corners and four edge midpoints
//   - polyline, polygon: every vertex
//
// Curve and arc commands are not resolved by default, so curved connectors
// may not join the nets they visually touch. Set Config.ResolveCurveEndpoints
// to include their end points.
//
// # Performance
//
// Trace is O(S²·P²) for S shapes with P terminals each. It is meant for
// diagrams with tens to a few hundred shapes.
package netlist
