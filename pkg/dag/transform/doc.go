// Package transform prepares a [dag.DAG] for layered layout.
//
// A workflow graph arrives as an arbitrary directed graph: steps can loop
// back to earlier steps, and an edge may skip past several ranks. The
// transformations here turn it into a proper layered graph:
//
//   - [FindBackEdges] / [BreakCycles]: deterministic DFS back-edge detection
//     (self-loops included); breaking removes them so the rest is acyclic
//   - [AssignRanks]: longest-path ranking with Kahn's algorithm
//   - [Subdivide]: chains of virtual nodes so every edge spans one rank
//
// [Normalize] applies all three in order:
//
//	back := transform.Normalize(g) // modifies g in place
//
// The layout engine keeps the returned back-edges so renderers can draw them
// even though they took no part in ranking.
package transform
