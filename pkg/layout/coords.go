package layout

import "github.com/matzehuels/flowtower/pkg/dag"

type placed struct {
	point Point
	order int
}

// place assigns center coordinates to every node (virtual ones included)
// and returns the overall drawing size.
//
// Along the primary axis each rank is as thick as its largest real node and
// consecutive rank centers are half-extents plus RankSep apart. Along the
// secondary axis real nodes are stacked with NodeSep gaps and each rank is
// centered against the longest one. Virtual nodes occupy no space; they sit
// in the gap after the preceding real node.
func place(g *dag.DAG, orders map[int][]string, o Options) (map[string]placed, float64, float64) {
	ranks := g.RankIDs()
	if len(ranks) == 0 {
		return map[string]placed{}, 0, 0
	}

	primary := func(n *dag.Node) float64 {
		if o.Direction == TopBottom {
			return n.Height
		}
		return n.Width
	}
	secondary := func(n *dag.Node) float64 {
		if o.Direction == TopBottom {
			return n.Width
		}
		return n.Height
	}

	extent := make([]float64, len(ranks))
	span := make([]float64, len(ranks))
	for i, r := range ranks {
		count := 0
		for _, id := range orders[r] {
			n, _ := g.Node(id)
			if n.IsVirtual() {
				continue
			}
			extent[i] = max(extent[i], primary(n))
			span[i] += secondary(n)
			count++
		}
		if count > 1 {
			span[i] += float64(count-1) * o.NodeSep
		}
	}

	maxSpan := 0.0
	for _, s := range span {
		maxSpan = max(maxSpan, s)
	}

	out := make(map[string]placed, g.NodeCount())
	center := extent[0] / 2
	for i, r := range ranks {
		if i > 0 {
			center += extent[i-1]/2 + o.RankSep + extent[i]/2
		}
		cursor := (maxSpan - span[i]) / 2
		order, seenReal := 0, false
		for _, id := range orders[r] {
			n, _ := g.Node(id)
			var s float64
			if n.IsVirtual() {
				s = cursor
				if seenReal {
					s -= o.NodeSep / 2
				}
				out[id] = placed{point: orient(center, s, o.Direction), order: -1}
				continue
			}
			size := secondary(n)
			s = cursor + size/2
			cursor += size + o.NodeSep
			seenReal = true
			out[id] = placed{point: orient(center, s, o.Direction), order: order}
			order++
		}
	}

	last := len(ranks) - 1
	total := center + extent[last]/2
	if o.Direction == TopBottom {
		return out, maxSpan, total
	}
	return out, total, maxSpan
}

func orient(primary, secondary float64, d Direction) Point {
	if d == TopBottom {
		return Point{X: secondary, Y: primary}
	}
	return Point{X: primary, Y: secondary}
}
