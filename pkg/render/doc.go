// Package render turns laid-out workflow diagrams into output formats.
//
// # Formats
//
//   - [FormatSVG]: self-contained SVG drawn natively (see [svg])
//   - [FormatDOT]: Graphviz DOT source with pinned positions (see [dot])
//   - [FormatGraphviz]: SVG produced by Graphviz from the DOT source
//   - [FormatPNG]: PNG produced by Graphviz
//   - [FormatJSON]: the full layout (positions, routes, styles) as JSON
//
// [Render] dispatches on the format:
//
//	laid, _ := diagram.Layout(d)
//	out, err := render.Render(ctx, laid, render.FormatSVG, render.Options{Legend: true})
//
// [svg]: github.com/matzehuels/flowtower/pkg/render/svg
// [dot]: github.com/matzehuels/flowtower/pkg/render/dot
package render
