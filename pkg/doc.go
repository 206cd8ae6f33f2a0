// Package pkg provides the core libraries for flowtower workflow monitoring
// and diagram layout.
//
// # Overview
//
// Flowtower talks to a durable workflow engine over its REST API and draws
// workflow definition diagrams: steps call activities, which read and write
// state and wait on timers. The diagrams are laid out with a layered
// (Sugiyama) algorithm so that control flows along one axis with as few edge
// crossings as possible.
//
// # Architecture
//
// The data flow for a diagram:
//
//	REST API / JSON or YAML file
//	         ↓
//	    [diagram] package (decode, validate, size nodes)
//	         ↓
//	    [layout] package (back edges → ranks → ordering → coordinates)
//	         ↓
//	    [render] package (SVG, DOT, Graphviz SVG/PNG, JSON)
//
// [pipeline] ties the stages together and caches each of them.
//
// # Quick Start
//
//	d, _ := diagram.ReadFile("order.yaml")
//	laid, _ := diagram.Layout(d, layout.WithDirection(layout.TopBottom))
//	svg, _ := render.Render(ctx, laid, render.FormatSVG, render.Options{Legend: true})
//
// # Main Packages
//
// ## Layout
//
// [dag] - Insertion-ordered directed graph with ranks, plus the Fenwick-tree
// crossing counter.
//
// [dag/transform] - Back-edge detection, longest-path ranking and long-edge
// subdivision.
//
// [layout] - The layered layout engine: crossing reduction sweeps, transpose
// refinement, coordinate assignment and edge routing.
//
// [diagram] - The workflow diagram model, its JSON schema and node sizing.
//
// [style] - Node and edge visual styles and the status and level color tables.
//
// [render] - Output formats. [render/svg] is the built-in renderer;
// [render/dot] emits Graphviz source and drives go-graphviz.
//
// ## Monitoring
//
// [api] - Typed client for the workflow engine REST API with retries and
// response caching.
//
// [poll] - Interval polling and in-flight request sharing.
//
// [format] - Date, duration and count formatting for tables and dashboards.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches behind one interface, with stable
// cache keys.
//
// [httputil] - Retry with backoff and the shared HTTP client.
//
// [errors] - Coded errors and input validators.
//
// [observability] - Hook registries for pipeline, cache and HTTP events.
//
// [pipeline] - Fetch → layout → render with per-stage caching.
//
// [server] - The layout HTTP server.
//
// [buildinfo] - Version information.
//
// [api]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/api
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/buildinfo
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/cache
// [dag]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/dag/transform
// [diagram]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/diagram
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/errors
// [format]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/format
// [httputil]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/httputil
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/layout
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/pipeline
// [poll]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/poll
// [render]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/render
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/render/dot
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/render/svg
// [server]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/server
// [style]: https://pkg.go.dev/github.com/matzehuels/flowtower/pkg/style
package pkg
