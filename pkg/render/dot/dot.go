// Package dot exports laid-out workflow diagrams as Graphviz DOT and renders
// them with go-graphviz.
//
// Node positions computed by the layout engine are written as pinned
// coordinates (pos="x,y!"), and rendering uses the neato engine so Graphviz
// keeps them and only routes the edges. Coordinates are converted from
// points to inches and the y axis is flipped, since Graphviz grows upward.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowtower/pkg/diagram"
	"github.com/matzehuels/flowtower/pkg/style"
)

const pointsPerInch = 72.0

// Format is a Graphviz output format.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// Options configures DOT export.
type Options struct {
	// Unpinned omits node positions so Graphviz computes its own layout with
	// the dot engine.
	Unpinned bool
	// Detailed appends the node description to labels.
	Detailed bool
}

// ToDOT converts a laid-out diagram to DOT.
func ToDOT(l *diagram.Laid, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if l.Direction == "TB" {
		buf.WriteString("  rankdir=TB;\n")
	} else {
		buf.WriteString("  rankdir=LR;\n")
	}
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", style.Background)
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12, fontcolor=white, fixedsize=true];\n")
	fmt.Fprintf(&buf, "  edge [fontname=\"Helvetica\", fontsize=10, fontcolor=%q];\n", style.LabelColor)
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		attrs := nodeAttrs(n, l.Height, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n diagram.LayoutNode, height float64, opts Options) []string {
	label := n.DisplayLabel
	if opts.Detailed {
		if d := n.Description(); d != "" {
			label += "\n" + d
		}
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", n.Style.Fill),
		fmt.Sprintf("color=%q", style.BorderColor),
		fmt.Sprintf("width=%s", inches(n.Width)),
		fmt.Sprintf("height=%s", inches(n.Height)),
	}
	if n.Style.Shape != "box" {
		attrs = append(attrs, fmt.Sprintf("shape=%s", n.Style.Shape))
	}
	if !opts.Unpinned {
		c := n.Center()
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", inches(c.X), inches(height-c.Y)))
	}
	return attrs
}

func edgeAttrs(e diagram.LayoutEdge) []string {
	attrs := []string{
		fmt.Sprintf("color=%q", e.Style.Stroke),
		fmt.Sprintf("penwidth=%s", strconv.FormatFloat(e.Style.Width, 'f', -1, 64)),
	}
	if e.Style.Dashed() {
		attrs = append(attrs, "style=dashed")
	}
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if e.Back {
		attrs = append(attrs, "constraint=false")
	}
	return attrs
}

func inches(points float64) string {
	return strconv.FormatFloat(points/pointsPerInch, 'f', 3, 64)
}

// Render renders DOT source with Graphviz. Pinned input is laid out with
// neato so positions are kept; unpinned input with dot.
func Render(ctx context.Context, src string, format Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	if strings.Contains(src, "!\"") {
		gv.SetLayout(graphviz.NEATO)
	} else {
		gv.SetLayout(graphviz.DOT)
	}

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var gvFormat graphviz.Format
	switch format {
	case PNG:
		gvFormat = graphviz.PNG
	case SVG, "":
		gvFormat = graphviz.SVG
	default:
		return nil, fmt.Errorf("unsupported graphviz format %q", format)
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if gvFormat == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

// RenderSVG is shorthand for Render with [SVG].
func RenderSVG(ctx context.Context, l *diagram.Laid, opts Options) ([]byte, error) {
	return Render(ctx, ToDOT(l, opts), SVG)
}

// RenderPNG is shorthand for Render with [PNG].
func RenderPNG(ctx context.Context, l *diagram.Laid, opts Options) ([]byte, error) {
	return Render(ctx, ToDOT(l, opts), PNG)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz <svg> tag with one whose viewBox
// starts at the origin, so the output scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
