package diagram

import (
	"github.com/matzehuels/flowtower/pkg/layout"
	"github.com/matzehuels/flowtower/pkg/style"
)

// LayoutNode is a positioned, styled node. X and Y are the top-left corner
// (center minus half the size).
type LayoutNode struct {
	GraphNode
	DisplayLabel string          `json:"display_label"`
	Width        float64         `json:"width"`
	Height       float64         `json:"height"`
	X            float64         `json:"x"`
	Y            float64         `json:"y"`
	Rank         int             `json:"rank"`
	Order        int             `json:"order"`
	Style        style.NodeStyle `json:"style"`
}

// Center returns the node's center point.
func (n LayoutNode) Center() layout.Point {
	return layout.Point{X: n.X + n.Width/2, Y: n.Y + n.Height/2}
}

// LayoutEdge is a routed, styled edge. Points run from the source center to
// the target center; Back marks edges that close a cycle.
type LayoutEdge struct {
	GraphEdge
	Style  style.EdgeStyle `json:"style"`
	Points []layout.Point  `json:"points"`
	Back   bool            `json:"back,omitempty"`
}

// Laid is a fully laid-out diagram ready for rendering or JSON export.
type Laid struct {
	Nodes     []LayoutNode     `json:"nodes"`
	Edges     []LayoutEdge     `json:"edges"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Direction layout.Direction `json:"direction"`
	Crossings int              `json:"crossings"`
	BackEdges []layout.Edge    `json:"back_edges,omitempty"`
	Metadata  *Metadata        `json:"metadata,omitempty"`
	Summary   string           `json:"summary"`
}

// Empty reports whether the diagram has no nodes.
func (l *Laid) Empty() bool { return len(l.Nodes) == 0 }

// Node returns the laid-out node with the given ID.
func (l *Laid) Node(id string) (LayoutNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return LayoutNode{}, false
}

// Layout builds, lays out and styles a diagram. Options are passed to
// [layout.Compute]; the default is left-to-right with the dashboard's
// spacing.
func Layout(d Diagram, opts ...layout.Option) (*Laid, error) {
	m, err := Build(d)
	if err != nil {
		return nil, err
	}

	nodes, edges := m.LayoutInput()
	res, err := layout.Compute(nodes, edges, opts...)
	if err != nil {
		return nil, err
	}

	laid := &Laid{
		Nodes:     make([]LayoutNode, len(m.Nodes)),
		Edges:     make([]LayoutEdge, len(m.Edges)),
		Width:     res.Width,
		Height:    res.Height,
		Direction: res.Direction,
		Crossings: res.Crossings,
		BackEdges: res.BackEdges,
		Metadata:  d.Metadata,
		Summary:   d.Summary(),
	}

	for i, n := range m.Nodes {
		p := res.Nodes[i]
		tl := p.TopLeft()
		laid.Nodes[i] = LayoutNode{
			GraphNode:    n.GraphNode,
			DisplayLabel: style.Label(n.Type, n.Label),
			Width:        n.Width,
			Height:       n.Height,
			X:            tl.X,
			Y:            tl.Y,
			Rank:         p.Rank,
			Order:        p.Order,
			Style:        style.Node(n.Type),
		}
	}

	for i, e := range m.Edges {
		r := res.Routes[i]
		s := style.Edge(e.Type)
		if r.Back {
			s = style.BackEdge(s)
		}
		laid.Edges[i] = LayoutEdge{GraphEdge: e, Style: s, Points: r.Points, Back: r.Back}
	}
	return laid, nil
}
