package models

import (
	"fmt"
)

// Score returns a pointer to v, for populating optional edge scores.
func Score(v float64) *float64 {
	return &v
}

// NewEdge creates an edge of the given type with default scores.
func NewEdge(source, target string, edgeType EdgeType) Edge {
	return Edge{Source: source, Target: target, Type: edgeType}
}

// WithScores returns a copy of e carrying explicit scores.
func (e Edge) WithScores(meaning, influence, chronology float64) Edge {
	e.Meaning = Score(meaning)
	e.Influence = Score(influence)
	e.Chronology = Score(chronology)
	return e
}

// NewDataset creates an empty dataset anchored at root.
func NewDataset(name, root string) *Dataset {
	return &Dataset{Name: name, Root: root}
}

// AddNode adds a node to the dataset
func (d *Dataset) AddNode(node Node) error {
	if _, err := d.FindNodeByID(node.ID); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}
	d.Nodes = append(d.Nodes, node)
	return nil
}

// AddEdge files the edge into the list matching its type. Primary edges go
// to Lineage, thematic edges to Waves and everything else to Resonance.
func (d *Dataset) AddEdge(edge Edge) error {
	if _, err := d.FindNodeByID(edge.Source); err != nil {
		return fmt.Errorf("%w: source %s", ErrDanglingEdge, edge.Source)
	}
	if _, err := d.FindNodeByID(edge.Target); err != nil {
		return fmt.Errorf("%w: target %s", ErrDanglingEdge, edge.Target)
	}

	switch edge.Type {
	case EdgePrimary:
		d.Lineage = append(d.Lineage, edge)
	case EdgeThematic:
		d.Waves = append(d.Waves, edge)
	default:
		d.Resonance = append(d.Resonance, edge)
	}
	return nil
}

// RemoveNode removes a node and all connected edges from the dataset
func (d *Dataset) RemoveNode(nodeID string) {
	var nodes []Node
	for _, node := range d.Nodes {
		if node.ID != nodeID {
			nodes = append(nodes, node)
		}
	}
	d.Nodes = nodes

	keep := func(edges []Edge) []Edge {
		var out []Edge
		for _, e := range edges {
			if !e.Touches(nodeID) {
				out = append(out, e)
			}
		}
		return out
	}
	d.Lineage = keep(d.Lineage)
	d.Resonance = keep(d.Resonance)
	d.Waves = keep(d.Waves)
}
