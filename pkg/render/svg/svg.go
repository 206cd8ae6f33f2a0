// Package svg renders laid-out workflow diagrams as self-contained SVG.
//
// The output needs no external stylesheet or fonts: node colors, edge
// strokes and the legend are inlined, and sequence edges carry a small CSS
// animation. Nodes are drawn from the top-left coordinates computed by
// [diagram.Layout]; edges follow the routed points and are clipped to the
// node borders.
//
//	laid, _ := diagram.Layout(d)
//	out := svg.Render(laid, svg.WithLegend(), svg.WithTitle(d.Name()))
//
// [diagram.Layout]: github.com/matzehuels/flowtower/pkg/diagram.Layout
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/flowtower/pkg/diagram"
	"github.com/matzehuels/flowtower/pkg/layout"
	"github.com/matzehuels/flowtower/pkg/style"
)

const (
	defaultPadding = 24.0
	titleHeight    = 32.0
	legendHeight   = 28.0
	emptyWidth     = 400.0
	emptyHeight    = 120.0
	nodeFontSize   = 12.0
	descFontSize   = 10.0
	edgeFontSize   = 10.0
	charWidth      = 0.6 // average glyph width relative to font size
	loopRadius     = 18.0
)

const animationCSS = `
    .edge.animated { stroke-dasharray: 6 4; animation: flow 1s linear infinite; }
    @keyframes flow { to { stroke-dashoffset: -10; } }
    .node:hover rect { stroke-width: 3; }`

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	padding    float64
	legend     bool
	title      string
	background string
	summary    bool
}

// WithPadding sets the margin around the drawing.
func WithPadding(p float64) Option { return func(r *renderer) { r.padding = p } }

// WithLegend adds a node-type legend below the diagram.
func WithLegend() Option { return func(r *renderer) { r.legend = true } }

// WithTitle draws a title above the diagram.
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

// WithSummary draws the diagram summary line (node/edge counts, version) under
// the title.
func WithSummary() Option { return func(r *renderer) { r.summary = true } }

// WithBackground sets the canvas fill. An empty string leaves it transparent.
func WithBackground(color string) Option { return func(r *renderer) { r.background = color } }

// Render draws l as SVG. An empty diagram renders a placeholder message.
func Render(l *diagram.Laid, opts ...Option) []byte {
	r := renderer{padding: defaultPadding, background: style.Background}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	if l == nil || l.Empty() {
		r.renderEmpty(&buf)
		return buf.Bytes()
	}

	top := r.padding
	if r.title != "" {
		top += titleHeight
	}
	if r.summary && l.Summary != "" {
		top += legendHeight
	}
	width := l.Width + 2*r.padding
	height := top + l.Height + r.padding
	if r.legend {
		height += legendHeight
	}

	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", animationCSS)
	renderMarkers(&buf, l.Edges)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)
	}

	y := r.padding
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="18" font-weight="bold" fill="%s">%s</text>`+"\n",
			r.padding, y+18, style.LabelColor, escape(r.title))
		y += titleHeight
	}
	if r.summary && l.Summary != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="12" fill="%s">%s</text>`+"\n",
			r.padding, y+14, style.Gray, escape(l.Summary))
	}

	fmt.Fprintf(&buf, `  <g transform="translate(%.1f,%.1f)">`+"\n", r.padding, top)
	nodes := make(map[string]diagram.LayoutNode, len(l.Nodes))
	for _, n := range l.Nodes {
		nodes[n.ID] = n
	}
	for i, e := range l.Edges {
		renderEdge(&buf, i, e, nodes)
	}
	for _, n := range l.Nodes {
		renderNode(&buf, n)
	}
	buf.WriteString("  </g>\n")

	if r.legend {
		renderLegend(&buf, r.padding, top+l.Height+r.padding/2)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r renderer) renderEmpty(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`+"\n",
		emptyWidth, emptyHeight, emptyWidth, emptyHeight)
	if r.background != "" {
		fmt.Fprintf(buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)
	}
	fmt.Fprintf(buf, `  <text x="%.0f" y="%.0f" text-anchor="middle" font-family="sans-serif" font-size="14" fill="%s">No diagram available</text>`+"\n",
		emptyWidth/2, emptyHeight/2, style.Gray)
	buf.WriteString("</svg>\n")
}

func markerID(stroke string) string {
	return "arrow-" + strings.TrimPrefix(stroke, "#")
}

func renderMarkers(buf *bytes.Buffer, edges []diagram.LayoutEdge) {
	seen := map[string]bool{}
	buf.WriteString("  <defs>\n")
	for _, e := range edges {
		if seen[e.Style.Stroke] {
			continue
		}
		seen[e.Style.Stroke] = true
		fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/></marker>`+"\n",
			markerID(e.Style.Stroke), e.Style.Stroke)
	}
	buf.WriteString("  </defs>\n")
}

func renderNode(buf *bytes.Buffer, n diagram.LayoutNode) {
	fmt.Fprintf(buf, `    <g class="node" id="node-%s">`+"\n", escape(n.ID))
	fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
		n.X, n.Y, n.Width, n.Height, n.Style.BorderRadius, n.Style.Fill, style.BorderColor)

	c := n.Center()
	label := truncate(n.DisplayLabel, n.Width-24, nodeFontSize)
	desc := n.Description()
	labelY := c.Y + nodeFontSize/3
	if desc != "" {
		labelY -= descFontSize / 2
	}
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="%.0f" font-weight="600" fill="%s">%s</text>`+"\n",
		c.X, labelY, nodeFontSize, style.TextColor, escape(label))
	if desc != "" {
		fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="%.0f" fill="%s" fill-opacity="0.8">%s</text>`+"\n",
			c.X, labelY+descFontSize+4, descFontSize, style.TextColor, escape(truncate(desc, n.Width-24, descFontSize)))
	}
	fmt.Fprintf(buf, "      <title>%s</title>\n", escape(n.ID))
	buf.WriteString("    </g>\n")
}

func renderEdge(buf *bytes.Buffer, i int, e diagram.LayoutEdge, nodes map[string]diagram.LayoutNode) {
	from, to := nodes[e.From], nodes[e.To]

	var d string
	var mid layout.Point
	if e.From == e.To {
		d, mid = loopPath(from)
	} else {
		pts := clipped(e.Points, from, to)
		d = polyline(pts)
		mid = midpoint(pts)
	}

	class := "edge"
	if e.Style.Animated {
		class += " animated"
	}
	dash := ""
	if e.Style.DashArray != "" {
		dash = fmt.Sprintf(` stroke-dasharray="%s"`, e.Style.DashArray)
	}
	fmt.Fprintf(buf, `    <path id="edge-%d" class="%s" d="%s" fill="none" stroke="%s" stroke-width="%.1f"%s marker-end="url(#%s)"/>`+"\n",
		i, class, d, e.Style.Stroke, e.Style.Width, dash, markerID(e.Style.Stroke))

	if e.Label != "" {
		w := float64(utf8.RuneCountInString(e.Label))*edgeFontSize*charWidth + 8
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="2" fill="%s" fill-opacity="0.8"/>`+"\n",
			mid.X-w/2, mid.Y-edgeFontSize, w, edgeFontSize+6, style.Background)
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="%.0f" fill="%s">%s</text>`+"\n",
			mid.X, mid.Y, edgeFontSize, style.LabelColor, escape(e.Label))
	}
}

// clipped moves the first and last points of a route from the node centers
// to the node borders.
func clipped(pts []layout.Point, from, to diagram.LayoutNode) []layout.Point {
	if len(pts) < 2 {
		return pts
	}
	out := append([]layout.Point(nil), pts...)
	out[0] = clipToBox(from, out[1])
	out[len(out)-1] = clipToBox(to, out[len(out)-2])
	return out
}

// clipToBox returns where the ray from the node center toward p leaves the
// node's box.
func clipToBox(n diagram.LayoutNode, p layout.Point) layout.Point {
	c := n.Center()
	dx, dy := p.X-c.X, p.Y-c.Y
	if dx == 0 && dy == 0 {
		return c
	}
	hw, hh := n.Width/2, n.Height/2
	t := math.Inf(1)
	if dx != 0 {
		t = min(t, hw/math.Abs(dx))
	}
	if dy != 0 {
		t = min(t, hh/math.Abs(dy))
	}
	if t > 1 {
		t = 1
	}
	return layout.Point{X: c.X + dx*t, Y: c.Y + dy*t}
}

func polyline(pts []layout.Point) string {
	var sb strings.Builder
	for i, p := range pts {
		if i == 0 {
			fmt.Fprintf(&sb, "M %.1f %.1f", p.X, p.Y)
			continue
		}
		fmt.Fprintf(&sb, " L %.1f %.1f", p.X, p.Y)
	}
	return sb.String()
}

func midpoint(pts []layout.Point) layout.Point {
	if len(pts) == 0 {
		return layout.Point{}
	}
	if len(pts)%2 == 1 {
		return pts[len(pts)/2]
	}
	a, b := pts[len(pts)/2-1], pts[len(pts)/2]
	return layout.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// loopPath draws a self-loop as an arc over the node's top edge.
func loopPath(n diagram.LayoutNode) (string, layout.Point) {
	c := n.Center()
	x1, x2 := c.X-n.Width/4, c.X+n.Width/4
	top := n.Y
	d := fmt.Sprintf("M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f",
		x1, top, x1, top-2*loopRadius, x2, top-2*loopRadius, x2, top)
	return d, layout.Point{X: c.X, Y: top - 1.5*loopRadius}
}

func renderLegend(buf *bytes.Buffer, x, y float64) {
	fmt.Fprintf(buf, `  <g class="legend" transform="translate(%.1f,%.1f)">`+"\n", x, y)
	fmt.Fprintf(buf, `    <text x="0" y="12" font-family="sans-serif" font-size="12" font-weight="600" fill="%s">Legend:</text>`+"\n", style.LabelColor)
	offset := 60.0
	for _, e := range style.Legend() {
		rx := 3.0
		if e.Type == style.NodeTimer {
			rx = 0
		}
		fmt.Fprintf(buf, `    <rect x="%.0f" y="0" width="16" height="16" rx="%.0f" fill="%s"/>`+"\n", offset, rx, e.Fill)
		fmt.Fprintf(buf, `    <text x="%.0f" y="12" font-family="sans-serif" font-size="12" fill="%s">%s</text>`+"\n", offset+22, style.LabelColor, e.Label)
		offset += 22 + float64(len(e.Label))*12*charWidth + 18
	}
	buf.WriteString("  </g>\n")
}

// truncate shortens s to fit in width at the given font size, appending "..".
func truncate(s string, width, fontSize float64) string {
	maxChars := int(width / (fontSize * charWidth))
	if maxChars < 3 {
		maxChars = 3
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars-2]) + ".."
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
