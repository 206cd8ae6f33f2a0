package transform

import "github.com/matzehuels/flowtower/pkg/dag"

// AssignRanks assigns every node a rank equal to the length of the longest
// path reaching it from a source.
//
// AssignRanks walks the graph in topological order (Kahn's algorithm). Each
// node is placed at one plus the maximum rank of its parents, so that:
//   - Source nodes (no incoming edges) are at rank 0
//   - Every edge points from a lower rank to a strictly higher one
//
// Existing rank assignments in the DAG are overwritten.
//
// # Cycles
//
// AssignRanks assumes the graph is acyclic. Nodes caught in a cycle never
// reach zero in-degree and stay at rank 0. Run [BreakCycles] first.
//
// Time complexity is O(V + E).
func AssignRanks(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	ranks := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		ranks[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if r := ranks[curr] + 1; r > ranks[child] {
				ranks[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRanks(ranks)
}
