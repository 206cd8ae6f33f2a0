// Package diagram turns workflow diagrams served by the orchestration API
// into laid-out, styled graphs.
//
// A [Diagram] is the wire shape returned by
// /api/graphs/workflow/{id}/definition/render: flat lists of typed nodes and
// edges plus optional workflow metadata. [Build] sizes every node and checks
// that edges only reference known nodes; [Layout] additionally runs the
// layered layout engine and resolves styles, producing a [Laid] diagram that
// renderers consume directly.
//
// Diagrams are decoded with [Decode] or [ReadFile], which validate the
// payload against an embedded JSON Schema before unmarshalling. ReadFile also
// accepts YAML for hand-written diagrams.
//
// Node sizes depend only on the node type, the label length in characters
// and whether a description is present:
//
//	activity  clamp(label×7, 140, 200) × 60
//	timer     100 × 100
//	state     clamp(label×7, 120, 180) × 60
//	step      clamp(label×8, 160, 240) × 70 (90 with a description)
//
// Unknown types are sized like steps.
package diagram
