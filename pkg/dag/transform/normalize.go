package transform

import "github.com/matzehuels/flowtower/pkg/dag"

// Normalize prepares a graph for layered layout in place: it removes
// back-edges, assigns ranks and subdivides long edges. The removed back-edges
// are returned in discovery order.
func Normalize(g *dag.DAG) []dag.Edge {
	back := BreakCycles(g)
	AssignRanks(g)
	Subdivide(g)
	return back
}
