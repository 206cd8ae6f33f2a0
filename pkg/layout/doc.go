// Package layout computes layered (Sugiyama-style) positions for workflow
// diagrams.
//
// # Pipeline
//
// [Compute] runs four phases on a private [dag.DAG] that never outlives the
// call:
//
//  1. Back-edge detection: a deterministic DFS marks edges that close a cycle
//     (self-loops included). They take no part in ranking or ordering but are
//     reported in [Result.BackEdges] and still routed.
//  2. Ranking: longest-path layering, so every forward edge points to a
//     strictly higher rank. Long edges are cut into single-rank hops with
//     virtual nodes.
//  3. Ordering: alternating down/up barycenter sweeps followed by adjacent
//     transposition. The best ordering seen (fewest crossings) wins.
//  4. Coordinates: ranks are laid out along the primary axis (x for
//     [LeftRight], y for [TopBottom]); nodes are stacked along the secondary
//     axis and every rank is centered against the widest one.
//
// Coordinates in [Position] are node centers. [Position.TopLeft] converts to
// the top-left corner that most renderers want.
//
// # Determinism
//
// Identical input (same nodes, edges, order and options) yields identical
// output. Nothing depends on map iteration order or randomness.
//
// # Concurrency
//
// Compute is pure and safe to call from multiple goroutines.
//
// [dag.DAG]: github.com/matzehuels/flowtower/pkg/dag.DAG
package layout
