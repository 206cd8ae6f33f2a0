// Package dag provides a directed graph organized into ranks (layers) for
// Sugiyama-style layered layouts of workflow diagrams.
//
// # Overview
//
// Workflow diagrams flow from their entry steps to the activities, timers and
// state they touch. The layout engine places every node on a rank along the
// primary axis and orders nodes within a rank to reduce edge crossings. This
// package provides the data structure those algorithms work on.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "start", Width: 160, Height: 70})
//	g.AddNode(dag.Node{ID: "send_email", Width: 140, Height: 60})
//	g.AddEdge(dag.Edge{From: "start", To: "send_email"})
//
// Unlike a map-backed graph, iteration order is insertion order everywhere
// ([DAG.Nodes], [DAG.Sources], [DAG.NodesInRank]). The layout engine depends
// on this to produce identical output for identical input.
//
// # Node Kinds
//
//   - [NodeKindRegular]: original diagram nodes
//   - [NodeKindVirtual]: synthetic nodes that break long edges into
//     single-rank hops so crossings can be counted rank by rank
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree to count
// inversions in O(E log V) time. [CountPairCrossingsWithPos] evaluates a
// single adjacent swap for local refinement.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. The layout engine builds a
// fresh DAG for every call and discards it afterwards, so layouts themselves
// can run in parallel.
//
// The [transform] subpackage provides back-edge detection, rank assignment
// and edge subdivision.
//
// [transform]: github.com/matzehuels/flowtower/pkg/dag/transform
package dag
