// Package style maps workflow node and edge types to their visual appearance
// and formats node labels for display.
//
// Lookups are exhaustive switches over [NodeType] and [EdgeType]. Types the
// dashboard does not know (the upstream API may add new ones) are preserved
// as-is and fall through to a neutral gray style.
package style

// NodeType is the semantic kind of a diagram node.
type NodeType string

const (
	NodeStep     NodeType = "step"
	NodeActivity NodeType = "activity"
	NodeTimer    NodeType = "timer"
	NodeState    NodeType = "state"
)

// NodeTypes lists the known node types in legend order.
var NodeTypes = []NodeType{NodeStep, NodeActivity, NodeTimer, NodeState}

// Known reports whether t is one of the four known node types.
func (t NodeType) Known() bool {
	switch t {
	case NodeStep, NodeActivity, NodeTimer, NodeState:
		return true
	default:
		return false
	}
}

// EdgeType is the semantic kind of a diagram edge.
type EdgeType string

const (
	EdgeSequence EdgeType = "sequence"
	EdgeCalls    EdgeType = "calls"
	EdgeReads    EdgeType = "reads"
	EdgeWrites   EdgeType = "writes"
	EdgeWaits    EdgeType = "waits"
)

// Known reports whether t is one of the five known edge types.
func (t EdgeType) Known() bool {
	switch t {
	case EdgeSequence, EdgeCalls, EdgeReads, EdgeWrites, EdgeWaits:
		return true
	default:
		return false
	}
}

// Palette colors shared by nodes, edges and badges.
const (
	Blue   = "#3b82f6"
	Green  = "#22c55e"
	Yellow = "#eab308"
	Red    = "#ef4444"
	Gray   = "#6b7280"

	// TextColor is drawn on top of every node fill.
	TextColor = "#ffffff"
	// BorderColor outlines every node.
	BorderColor = "rgba(255, 255, 255, 0.3)"
	// LabelColor is used for edge labels.
	LabelColor = "#e5e7eb"
	// Background is the canvas color.
	Background = "#0a0a0a"
)

// NodeStyle describes how a node box is drawn.
type NodeStyle struct {
	Fill         string  `json:"fill"`
	BorderRadius float64 `json:"border_radius"`
	Shape        string  `json:"shape"` // Graphviz shape name
}

// EdgeStyle describes how an edge line is drawn.
type EdgeStyle struct {
	Stroke    string  `json:"stroke"`
	Width     float64 `json:"width"`
	DashArray string  `json:"dash_array,omitempty"`
	Animated  bool    `json:"animated,omitempty"`
}

// Dashed reports whether the edge is drawn with a dash pattern.
func (s EdgeStyle) Dashed() bool { return s.DashArray != "" }

// Node returns the style for a node type.
func Node(t NodeType) NodeStyle {
	switch t {
	case NodeStep:
		return NodeStyle{Fill: Blue, BorderRadius: 6, Shape: "box"}
	case NodeActivity:
		return NodeStyle{Fill: Green, BorderRadius: 6, Shape: "box"}
	case NodeTimer:
		return NodeStyle{Fill: Yellow, BorderRadius: 4, Shape: "square"}
	case NodeState:
		return NodeStyle{Fill: Red, BorderRadius: 8, Shape: "box"}
	default:
		return NodeStyle{Fill: Gray, BorderRadius: 6, Shape: "box"}
	}
}

// Edge returns the style for an edge type.
func Edge(t EdgeType) EdgeStyle {
	switch t {
	case EdgeSequence:
		return EdgeStyle{Stroke: Gray, Width: 2, Animated: true}
	case EdgeCalls:
		return EdgeStyle{Stroke: Green, Width: 2}
	case EdgeReads:
		return EdgeStyle{Stroke: Red, Width: 1.5, DashArray: "5,5"}
	case EdgeWrites:
		return EdgeStyle{Stroke: Red, Width: 2}
	case EdgeWaits:
		return EdgeStyle{Stroke: Yellow, Width: 2}
	default:
		return EdgeStyle{Stroke: Gray, Width: 1}
	}
}

// BackEdge returns s adjusted for an edge that closes a cycle: it is always
// drawn dashed so loops stand out.
func BackEdge(s EdgeStyle) EdgeStyle {
	if s.DashArray == "" {
		s.DashArray = "8,4"
	}
	return s
}

// LegendEntry is one swatch in a diagram legend.
type LegendEntry struct {
	Type  NodeType
	Label string
	Fill  string
}

// Legend returns one entry per known node type.
func Legend() []LegendEntry {
	entries := make([]LegendEntry, len(NodeTypes))
	for i, t := range NodeTypes {
		entries[i] = LegendEntry{Type: t, Label: titleWord(string(t)), Fill: Node(t).Fill}
	}
	return entries
}
