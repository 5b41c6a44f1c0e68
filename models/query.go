package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKind   = errors.New("unknown node kind")
	ErrDuplicateNode = errors.New("duplicate node id")
	ErrDanglingEdge  = errors.New("edge references missing node")
	ErrMissingRoot   = errors.New("root node not found")
	ErrNodeNotFound  = errors.New("node not found")
)

// NodeFilter is a function type used to filter nodes in queries
type NodeFilter func(node *Node) bool

// EdgeFilter is a function type used to filter edges in queries
type EdgeFilter func(edge *Edge) bool

// FindNodeByID returns a node by its ID
func (d *Dataset) FindNodeByID(id string) (*Node, error) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}

// AllEdges returns lineage, resonance and wave edges in that order.
func (d *Dataset) AllEdges() []Edge {
	out := make([]Edge, 0, len(d.Lineage)+len(d.Resonance)+len(d.Waves))
	out = append(out, d.Lineage...)
	out = append(out, d.Resonance...)
	out = append(out, d.Waves...)
	return out
}

// FilterNodes returns nodes that match the provided filter function
func (d *Dataset) FilterNodes(filter NodeFilter) []Node {
	var result []Node
	for i := range d.Nodes {
		if filter(&d.Nodes[i]) {
			result = append(result, d.Nodes[i])
		}
	}
	return result
}

// FilterEdges returns edges across all three lists that match filter
func (d *Dataset) FilterEdges(filter EdgeFilter) []Edge {
	var result []Edge
	for _, edge := range d.AllEdges() {
		if filter(&edge) {
			result = append(result, edge)
		}
	}
	return result
}

// FindConnectedNodes returns all nodes directly connected to a node
func (d *Dataset) FindConnectedNodes(nodeID string) []Node {
	linked := make(map[string]bool)
	for _, edge := range d.AllEdges() {
		if other := edge.Other(nodeID); other != "" {
			linked[other] = true
		}
	}

	var result []Node
	for _, node := range d.Nodes {
		if linked[node.ID] {
			result = append(result, node)
		}
	}
	return result
}

// Validate checks referential integrity: unique ids, a resolvable root and
// edges whose endpoints exist.
func (d *Dataset) Validate() error {
	seen := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
		}
		seen[n.ID] = struct{}{}
	}

	if d.Root != "" {
		if _, ok := seen[d.Root]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingRoot, d.Root)
		}
	}

	for _, e := range d.AllEdges() {
		if _, ok := seen[e.Source]; !ok {
			return fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, e.Source, e.Target)
		}
		if _, ok := seen[e.Target]; !ok {
			return fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, e.Source, e.Target)
		}
	}
	return nil
}
