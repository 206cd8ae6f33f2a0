package transform

import (
	"slices"
	"testing"

	"github.com/matzehuels/flowtower/pkg/dag"
)

func build(ids []string, edges [][2]string) *dag.DAG {
	g := dag.New()
	for _, id := range ids {
		g.AddNode(dag.Node{ID: id})
	}
	for _, e := range edges {
		g.AddEdge(dag.Edge{From: e[0], To: e[1]})
	}
	return g
}

func pairs(edges []dag.Edge) [][2]string {
	out := make([][2]string, len(edges))
	for i, e := range edges {
		out[i] = [2]string{e.From, e.To}
	}
	return out
}

func TestFindBackEdges(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  [][2]string
	}{
		{"acyclic", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}}, [][2]string{}},
		{"two cycle", []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}}, [][2]string{{"b", "a"}}},
		{"triangle", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, [][2]string{{"c", "a"}}},
		{"self loop", []string{"a"}, [][2]string{{"a", "a"}}, [][2]string{{"a", "a"}}},
		{"entry then loop", []string{"s", "a", "b"}, [][2]string{{"s", "a"}, {"a", "b"}, {"b", "a"}}, [][2]string{{"b", "a"}}},
		{"duplicate back edge", []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}, {"b", "a"}}, [][2]string{{"b", "a"}, {"b", "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(tt.ids, tt.edges)
			got := pairs(FindBackEdges(g))
			if !slices.Equal(got, tt.want) {
				t.Errorf("FindBackEdges() = %v, want %v", got, tt.want)
			}
			if g.EdgeCount() != len(tt.edges) {
				t.Errorf("FindBackEdges modified the graph")
			}
		})
	}
}

func TestBreakCyclesLeavesAcyclicGraph(t *testing.T) {
	g := build([]string{"a", "b", "c", "d"}, [][2]string{
		{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "c"}, {"b", "c"},
	})

	removed := BreakCycles(g)

	if len(removed) != 2 {
		t.Errorf("BreakCycles() removed %d edges, want 2", len(removed))
	}
	if len(FindBackEdges(g)) != 0 {
		t.Error("graph still has back-edges")
	}
}

func TestAssignRanksLongestPath(t *testing.T) {
	// a → b → c and a → c: c must sit below b, not directly below a.
	g := build([]string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}})

	AssignRanks(g)

	want := map[string]int{"a": 0, "b": 1, "c": 2, "d": 0}
	for id, rank := range want {
		if n, _ := g.Node(id); n.Rank != rank {
			t.Errorf("%s.Rank = %d, want %d", id, n.Rank, rank)
		}
	}
}

func TestSubdivide(t *testing.T) {
	g := build([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}})
	AssignRanks(g)

	added := Subdivide(g)

	if added != 1 {
		t.Fatalf("Subdivide() added %d nodes, want 1", added)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	v, ok := g.Node("a_sub_1")
	if !ok {
		t.Fatal("virtual node a_sub_1 missing")
	}
	if !v.IsVirtual() || v.MasterID != "a" {
		t.Errorf("virtual node = %+v", v)
	}
}

func TestSubdivideIDCollision(t *testing.T) {
	g := build([]string{"a", "a_sub_1", "x", "c"}, [][2]string{{"a", "x"}, {"x", "c"}, {"a", "c"}})
	AssignRanks(g)
	Subdivide(g)

	if _, ok := g.Node("a_sub_1__1"); !ok {
		t.Error("expected suffixed virtual id a_sub_1__1")
	}
}

func TestNormalize(t *testing.T) {
	g := build([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"a", "c"}})

	back := Normalize(g)

	if got := pairs(back); !slices.Equal(got, [][2]string{{"c", "a"}}) {
		t.Errorf("back edges = %v", got)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}
