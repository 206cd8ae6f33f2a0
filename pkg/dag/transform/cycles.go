package transform

import "github.com/matzehuels/flowtower/pkg/dag"

// FindBackEdges returns the edges that close a cycle, without modifying g.
//
// The search is a depth-first traversal with white/gray/black coloring that
// starts from every source in insertion order and then from any node still
// unvisited (nodes that sit only on cycles). An edge into a node on the
// current DFS stack is a back-edge; self-loops always are. Duplicate edges
// between the same pair are reported once per occurrence.
//
// The result depends only on insertion order, so identical graphs produce
// identical back-edge lists.
func FindBackEdges(g *dag.DAG) []dag.Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	var back []dag.Edge

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				back = append(back, dag.Edge{From: node, To: child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	return back
}

// BreakCycles removes every back-edge found by [FindBackEdges] and returns
// them. After BreakCycles the graph is acyclic.
func BreakCycles(g *dag.DAG) []dag.Edge {
	back := FindBackEdges(g)
	for _, e := range back {
		g.RemoveEdge(e.From, e.To)
	}
	return back
}
