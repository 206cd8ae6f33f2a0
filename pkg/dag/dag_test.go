package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode() error = %v", err)
	}
	if err := g.AddNode(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) error = %v, want %v", err, ErrInvalidNodeID)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) error = %v, want %v", err, ErrDuplicateNodeID)
	}
	n, ok := g.Node("a")
	if !ok {
		t.Fatal("Node(a) not found")
	}
	if n.Meta == nil {
		t.Error("Meta should be initialized")
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"valid", Edge{From: "a", To: "b"}, nil},
		{"duplicate allowed", Edge{From: "a", To: "b"}, nil},
		{"self loop allowed", Edge{From: "a", To: "a"}, nil},
		{"unknown source", Edge{From: "x", To: "b"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.want)
			}
		})
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
}

func TestRemoveEdgeRemovesDuplicates(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddNode(Node{ID: "c"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "c"})

	g.RemoveEdge("a", "b")

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if got := g.Children("a"); !slices.Equal(got, []string{"c"}) {
		t.Errorf("Children(a) = %v, want [c]", got)
	}
	if got := g.Parents("b"); len(got) != 0 {
		t.Errorf("Parents(b) = %v, want []", got)
	}
}

func TestInsertionOrder(t *testing.T) {
	g := New()
	ids := []string{"zeta", "alpha", "mid", "beta"}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}
	if got := NodeIDs(g.Nodes()); !slices.Equal(got, ids) {
		t.Errorf("Nodes() = %v, want %v", got, ids)
	}
	if got := NodeIDs(g.NodesInRank(0)); !slices.Equal(got, ids) {
		t.Errorf("NodesInRank(0) = %v, want %v", got, ids)
	}
}

func TestSetRanks(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddNode(Node{ID: "c"})

	g.SetRanks(map[string]int{"b": 1, "c": 3})

	if got := g.RankIDs(); !slices.Equal(got, []int{0, 1, 3}) {
		t.Errorf("RankIDs() = %v, want [0 1 3]", got)
	}
	if g.RankCount() != 3 {
		t.Errorf("RankCount() = %d, want 3", g.RankCount())
	}
	if n, _ := g.Node("b"); n.Rank != 1 {
		t.Errorf("b.Rank = %d, want 1", n.Rank)
	}
}

func TestSources(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "a", To: "c"})
	_ = g.AddEdge(Edge{From: "b", To: "c"})

	if got := NodeIDs(g.Sources()); !slices.Equal(got, []string{"a", "b", "d"}) {
		t.Errorf("Sources() = %v", got)
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		g := New()
		_ = g.AddNode(Node{ID: "a", Rank: 0})
		_ = g.AddNode(Node{ID: "b", Rank: 1})
		_ = g.AddEdge(Edge{From: "a", To: "b"})
		if err := g.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})
	t.Run("long edge", func(t *testing.T) {
		g := New()
		_ = g.AddNode(Node{ID: "a", Rank: 0})
		_ = g.AddNode(Node{ID: "b", Rank: 2})
		_ = g.AddEdge(Edge{From: "a", To: "b"})
		if err := g.Validate(); !errors.Is(err, ErrNonConsecutiveRanks) {
			t.Errorf("Validate() = %v, want %v", err, ErrNonConsecutiveRanks)
		}
	})
	t.Run("cycle", func(t *testing.T) {
		g := New()
		_ = g.AddNode(Node{ID: "a"})
		_ = g.AddEdge(Edge{From: "a", To: "a"})
		if err := g.detectCycles(); !errors.Is(err, ErrGraphHasCycle) {
			t.Errorf("detectCycles() = %v, want %v", err, ErrGraphHasCycle)
		}
	})
}

func TestNodeEffectiveID(t *testing.T) {
	if got := (Node{ID: "v1", MasterID: "a", Kind: NodeKindVirtual}).EffectiveID(); got != "a" {
		t.Errorf("EffectiveID() = %q, want a", got)
	}
	if got := (Node{ID: "a"}).EffectiveID(); got != "a" {
		t.Errorf("EffectiveID() = %q, want a", got)
	}
}
