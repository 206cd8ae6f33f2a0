package layout

import (
	"maps"
	"slices"

	"github.com/matzehuels/flowtower/pkg/dag"
)

// Orderer determines the secondary-axis sequence of nodes in each rank.
// The graph must be normalized: acyclic, ranked, and with every edge
// spanning exactly one rank.
type Orderer interface {
	OrderRanks(g *dag.DAG) map[int][]string
}

// Barycentric orders ranks with alternating barycenter sweeps.
//
// Even passes sweep down (each rank sorted by the mean position of its
// parents), odd passes sweep up (by the mean position of its children). The
// sort is stable and nodes without neighbours in the reference rank keep
// their current position as their weight. When Transpose is set, each pass
// is followed by adjacent swaps that strictly reduce crossings.
//
// The ordering with the fewest crossings seen across all passes is returned;
// the initial insertion order counts as a candidate.
type Barycentric struct {
	Passes    int
	Transpose bool
}

// OrderRanks implements [Orderer].
func (b Barycentric) OrderRanks(g *dag.DAG) map[int][]string {
	ranks := g.RankIDs()
	orders := make(map[int][]string, len(ranks))
	for _, r := range ranks {
		orders[r] = dag.NodeIDs(g.NodesInRank(r))
	}

	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)

	for pass := 0; pass < b.Passes && bestCrossings > 0; pass++ {
		if pass%2 == 0 {
			for i := 1; i < len(ranks); i++ {
				orders[ranks[i]] = sortByBarycenter(g, orders[ranks[i]], orders[ranks[i-1]], true)
			}
		} else {
			for i := len(ranks) - 2; i >= 0; i-- {
				orders[ranks[i]] = sortByBarycenter(g, orders[ranks[i]], orders[ranks[i+1]], false)
			}
		}
		if b.Transpose {
			transpose(g, orders, ranks)
		}

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best = cloneOrders(orders)
			bestCrossings = c
		}
	}
	return best
}

func sortByBarycenter(g *dag.DAG, rank, ref []string, useParents bool) []string {
	refPos := dag.PosMap(ref)
	weights := make(map[string]float64, len(rank))
	for i, id := range rank {
		nbrs := g.Children(id)
		if useParents {
			nbrs = g.Parents(id)
		}
		sum, n := 0.0, 0
		for _, nb := range nbrs {
			if p, ok := refPos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			weights[id] = float64(i)
			continue
		}
		weights[id] = sum / float64(n)
	}

	sorted := slices.Clone(rank)
	slices.SortStableFunc(sorted, func(a, b string) int {
		wa, wb := weights[a], weights[b]
		switch {
		case wa < wb:
			return -1
		case wa > wb:
			return 1
		}
		return 0
	})
	return sorted
}

// transpose swaps neighbours within each rank while doing so reduces the
// crossings against both adjacent ranks. Every swap strictly lowers the total,
// so the loop terminates.
func transpose(g *dag.DAG, orders map[int][]string, ranks []int) {
	for improved := true; improved; {
		improved = false
		for i, r := range ranks {
			row := orders[r]
			var above, below map[string]int
			if i > 0 {
				above = dag.PosMap(orders[ranks[i-1]])
			}
			if i < len(ranks)-1 {
				below = dag.PosMap(orders[ranks[i+1]])
			}
			for j := 0; j+1 < len(row); j++ {
				v, w := row[j], row[j+1]
				before := pairCrossings(g, v, w, above, below)
				after := pairCrossings(g, w, v, above, below)
				if after < before {
					row[j], row[j+1] = w, v
					improved = true
				}
			}
		}
	}
}

func pairCrossings(g *dag.DAG, left, right string, above, below map[string]int) int {
	c := 0
	if above != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, above, true)
	}
	if below != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, below, false)
	}
	return c
}

func cloneOrders(orders map[int][]string) map[int][]string {
	c := maps.Clone(orders)
	for r, ids := range c {
		c[r] = slices.Clone(ids)
	}
	return c
}
