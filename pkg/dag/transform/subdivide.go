package transform

import (
	"fmt"

	"github.com/matzehuels/flowtower/pkg/dag"
)

// Subdivide breaks edges that span multiple ranks into sequences of
// single-rank edges connected by virtual nodes.
//
// Afterwards every edge in the graph connects nodes in consecutive ranks
// (From.Rank + 1 == To.Rank), which is what crossing counting needs:
//
//	Before: start (rank 0) → audit (rank 3)
//	After:  start → start_sub_1 → start_sub_2 → audit
//
// Each virtual node records the source of the cut edge in MasterID. Edge
// metadata is kept on the final edge of each chain.
//
// Virtual IDs have the form "master_sub_rank"; on collision a numeric suffix
// is appended ("start_sub_1__2"). Subdivide returns the number of virtual
// nodes it added.
//
// The graph must be acyclic with ranks assigned (see [AssignRanks]).
func Subdivide(g *dag.DAG) int {
	gen := newIDGen(g.Nodes())

	added := 0
	type cut struct{ from, to string }
	var cuts []cut
	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Rank <= src.Rank+1 {
			continue
		}

		cuts = append(cuts, cut{e.From, e.To})
		prevID := src.ID
		for rank := src.Rank + 1; rank < dst.Rank; rank++ {
			prevID = addVirtual(g, gen, prevID, src.ID, rank)
			added++
		}
		if err := g.AddEdge(dag.Edge{From: prevID, To: dst.ID, Meta: e.Meta}); err != nil {
			panic(err)
		}
	}

	for _, c := range cuts {
		g.RemoveEdge(c.from, c.to)
	}
	return added
}

func addVirtual(g *dag.DAG, gen *idGen, from, master string, rank int) string {
	id := gen.next(master, rank)
	if err := g.AddNode(dag.Node{
		ID:       id,
		Rank:     rank,
		Kind:     dag.NodeKindVirtual,
		MasterID: master,
	}); err != nil {
		panic(err)
	}
	if err := g.AddEdge(dag.Edge{From: from, To: id}); err != nil {
		panic(err)
	}
	return id
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, rank int) string {
	prefix := fmt.Sprintf("%s_sub_%d", base, rank)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
