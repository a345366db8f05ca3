package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/circuitnet/internal/sexpr"
)

// document is the object form of a descriptor file.
type document struct {
	Components []Descriptor `json:"components" yaml:"components"`
}

// LoadJSON reads descriptors from either a JSON array or an object with a
// "components" array.
func LoadJSON(r io.Reader) ([]Descriptor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var list []Descriptor
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("catalog: json: %w", err)
		}
		return clean(list), nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: json: %w", err)
	}
	return clean(doc.Components), nil
}

// LoadYAML reads descriptors from a YAML sequence or a mapping with a
// "components" key.
func LoadYAML(r io.Reader) ([]Descriptor, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: yaml: %w", err)
	}

	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	if root.Kind == yaml.SequenceNode {
		var list []Descriptor
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("catalog: yaml: %w", err)
		}
		return clean(list), nil
	}

	var doc document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: yaml: %w", err)
	}
	return clean(doc.Components), nil
}

// LoadKiCadNetlist reads the components section of a KiCad netlist export:
//
//	(export (version D)
//	  (components
//	    (comp (ref R1) (value 10k) (description "...")
//	      (libsource (lib Device) (part R) (description "Resistor")))))
//
// The part name becomes the descriptor type. When a component has no
// description of its own, the library description is used.
func LoadKiCadNetlist(r io.Reader) ([]Descriptor, error) {
	nodes, err := sexpr.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: netlist: %w", err)
	}

	var (
		descs []Descriptor
		found bool
	)
	for _, n := range nodes {
		root, ok := n.(*sexpr.List)
		if !ok || root.Key() != "export" {
			continue
		}
		comps, ok := root.Find("components")
		if !ok {
			continue
		}
		found = true
		for _, comp := range comps.FindAll("comp") {
			var d Descriptor
			d.Designator, _ = comp.Lookup("ref")
			d.Value, _ = comp.Lookup("value")
			d.Type, _ = comp.Lookup("libsource", "part")
			d.Description, _ = comp.Lookup("description")
			if d.Description == "" {
				d.Description, _ = comp.Lookup("libsource", "description")
			}
			descs = append(descs, d)
		}
	}
	if !found {
		return nil, fmt.Errorf("catalog: netlist: no (export (components ...)) section")
	}
	return clean(descs), nil
}

// clean drops descriptors without a designator.
func clean(list []Descriptor) []Descriptor {
	out := list[:0]
	for _, d := range list {
		if d.Designator == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}
