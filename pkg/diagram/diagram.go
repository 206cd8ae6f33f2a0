package diagram

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowtower/pkg/style"
)

// GraphNode is a workflow element: a step, an activity it calls, a timer it
// waits on, or a piece of state it touches.
type GraphNode struct {
	ID       string         `json:"id" yaml:"id"`
	Type     style.NodeType `json:"type" yaml:"type"`
	Label    string         `json:"label" yaml:"label"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Description returns metadata["description"] if it is a non-empty string.
func (n GraphNode) Description() string {
	s, _ := n.Metadata["description"].(string)
	return s
}

// HasDescription reports whether the node carries a truthy description.
// Non-string values count when they are not a zero value.
func (n GraphNode) HasDescription() bool {
	v, ok := n.Metadata["description"]
	if !ok {
		return false
	}
	switch d := v.(type) {
	case nil:
		return false
	case string:
		return d != ""
	case bool:
		return d
	case float64:
		return d != 0
	case int:
		return d != 0
	default:
		return true
	}
}

// GraphEdge connects two nodes by ID.
type GraphEdge struct {
	From  string         `json:"from" yaml:"from"`
	To    string         `json:"to" yaml:"to"`
	Type  style.EdgeType `json:"type" yaml:"type"`
	Label string         `json:"label,omitempty" yaml:"label,omitempty"`
}

// Metadata describes the workflow a diagram belongs to.
type Metadata struct {
	WorkflowName        string `json:"workflow_name" yaml:"workflow_name"`
	WorkflowVersion     string `json:"workflow_version,omitempty" yaml:"workflow_version,omitempty"`
	WorkflowDescription string `json:"workflow_description,omitempty" yaml:"workflow_description,omitempty"`
}

// Diagram is a workflow definition graph as served by the API.
type Diagram struct {
	Nodes    []GraphNode `json:"nodes" yaml:"nodes"`
	Edges    []GraphEdge `json:"edges" yaml:"edges"`
	Metadata *Metadata   `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Summary returns a one-line description such as
// "Nodes: 3  Edges: 2  Version: 1.2  Ships orders".
func (d Diagram) Summary() string {
	parts := []string{
		fmt.Sprintf("Nodes: %d", len(d.Nodes)),
		fmt.Sprintf("Edges: %d", len(d.Edges)),
	}
	if d.Metadata != nil {
		if d.Metadata.WorkflowVersion != "" {
			parts = append(parts, "Version: "+d.Metadata.WorkflowVersion)
		}
		if d.Metadata.WorkflowDescription != "" {
			parts = append(parts, d.Metadata.WorkflowDescription)
		}
	}
	return strings.Join(parts, "  ")
}

// UnknownTypes returns the distinct non-empty node and edge types that have
// no dedicated style, in first-seen order. Such elements render with the
// fallback style.
func (d Diagram) UnknownTypes() []string {
	seen := make(map[string]bool)
	var unknown []string
	add := func(t string, known bool) {
		if t == "" || known || seen[t] {
			return
		}
		seen[t] = true
		unknown = append(unknown, t)
	}
	for _, n := range d.Nodes {
		add(string(n.Type), n.Type.Known())
	}
	for _, e := range d.Edges {
		add(string(e.Type), e.Type.Known())
	}
	return unknown
}

// Name returns the workflow name, or "" when metadata is absent.
func (d Diagram) Name() string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata.WorkflowName
}
