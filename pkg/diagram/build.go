package diagram

import (
	"errors"
	"fmt"

	"github.com/matzehuels/flowtower/pkg/layout"
)

var (
	// ErrUnknownNodeReference is returned when an edge names a node ID that
	// is not in the diagram. It is the same value the layout engine returns,
	// so errors.Is works regardless of which layer detected the problem.
	ErrUnknownNodeReference = layout.ErrUnknownNodeReference

	// ErrDuplicateNodeID is returned when two nodes share an ID.
	ErrDuplicateNodeID = layout.ErrDuplicateNode

	// ErrEmptyNodeID is returned for nodes without an ID.
	ErrEmptyNodeID = errors.New("node ID must not be empty")
)

// SizedNode is a diagram node with its computed box size.
type SizedNode struct {
	GraphNode
	Width  float64
	Height float64
}

// Model is the layout engine input derived from a diagram: sized nodes in
// diagram order and the unmodified edge list.
type Model struct {
	Nodes []SizedNode
	Edges []GraphEdge
}

// LayoutInput converts the model into the layout engine's node and edge
// slices.
func (m Model) LayoutInput() ([]layout.Node, []layout.Edge) {
	nodes := make([]layout.Node, len(m.Nodes))
	for i, n := range m.Nodes {
		nodes[i] = layout.Node{ID: n.ID, Width: n.Width, Height: n.Height}
	}
	edges := make([]layout.Edge, len(m.Edges))
	for i, e := range m.Edges {
		edges[i] = layout.Edge{From: e.From, To: e.To}
	}
	return nodes, edges
}

// Build sizes every node and validates references. Self-edges and duplicate
// edges pass through unchanged.
//
// It fails with [ErrEmptyNodeID], [ErrDuplicateNodeID] or
// [ErrUnknownNodeReference], each wrapped with the offending node or edge.
func Build(d Diagram) (Model, error) {
	m := Model{
		Nodes: make([]SizedNode, 0, len(d.Nodes)),
		Edges: make([]GraphEdge, len(d.Edges)),
	}

	seen := make(map[string]struct{}, len(d.Nodes))
	for i, n := range d.Nodes {
		if n.ID == "" {
			return Model{}, fmt.Errorf("node %d: %w", i, ErrEmptyNodeID)
		}
		if _, dup := seen[n.ID]; dup {
			return Model{}, fmt.Errorf("%w: %q", ErrDuplicateNodeID, n.ID)
		}
		seen[n.ID] = struct{}{}

		w, h := Size(n)
		m.Nodes = append(m.Nodes, SizedNode{GraphNode: n, Width: w, Height: h})
	}

	for i, e := range d.Edges {
		for _, end := range [...]string{e.From, e.To} {
			if _, ok := seen[end]; !ok {
				return Model{}, fmt.Errorf("%w: edge %d (%s -> %s) names %q", ErrUnknownNodeReference, i, e.From, e.To, end)
			}
		}
		m.Edges[i] = e
	}
	return m, nil
}
