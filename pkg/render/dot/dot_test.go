package dot

import (
	"strings"
	"testing"

	"github.com/matzehuels/flowtower/pkg/diagram"
	"github.com/matzehuels/flowtower/pkg/layout"
	"github.com/matzehuels/flowtower/pkg/style"
)

func laid(t *testing.T, opts ...layout.Option) *diagram.Laid {
	t.Helper()
	l, err := diagram.Layout(diagram.Diagram{
		Nodes: []diagram.GraphNode{
			{ID: "a", Type: style.NodeStep, Label: "start"},
			{ID: "t", Type: style.NodeTimer, Label: "wait"},
			{ID: "s", Type: style.NodeState, Label: "state.count"},
		},
		Edges: []diagram.GraphEdge{
			{From: "a", To: "t", Type: style.EdgeWaits},
			{From: "t", To: "s", Type: style.EdgeReads, Label: "count"},
			{From: "s", To: "a", Type: style.EdgeSequence},
		},
	}, opts...)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	return l
}

func TestToDOT(t *testing.T) {
	out := ToDOT(laid(t), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`"a" [label="Start", fillcolor="#3b82f6"`,
		"shape=square",
		`pos="1.111,0.694!"`,
		`"t" -> "s" [color="#ef4444", penwidth=1.5, style=dashed, label="count"]`,
		`"s" -> "a" [color="#6b7280", penwidth=2, style=dashed, constraint=false]`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT missing %q\n%s", want, out)
		}
	}
}

func TestToDOTUnpinned(t *testing.T) {
	out := ToDOT(laid(t, layout.WithDirection(layout.TopBottom)), Options{Unpinned: true})
	if strings.Contains(out, "pos=") {
		t.Error("unpinned DOT should not contain positions")
	}
	if !strings.Contains(out, "rankdir=TB;") {
		t.Error("TB layout should set rankdir=TB")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := string(normalizeViewBox([]byte("<svg></svg>"))); got != "<svg></svg>" {
		t.Errorf("normalizeViewBox() without viewBox = %s", got)
	}
}
