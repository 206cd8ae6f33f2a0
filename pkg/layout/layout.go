package layout

import (
	"errors"
	"fmt"

	"github.com/matzehuels/flowtower/pkg/dag"
	"github.com/matzehuels/flowtower/pkg/dag/transform"
)

var (
	// ErrUnknownNodeReference is returned when an edge names a node that is
	// not part of the input.
	ErrUnknownNodeReference = errors.New("edge references unknown node")

	// ErrDuplicateNode is returned when two input nodes share an ID.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrInvalidNode is returned for nodes with an empty ID or negative size.
	ErrInvalidNode = errors.New("invalid node")
)

// Node is a sized vertex to be positioned.
type Node struct {
	ID     string
	Width  float64
	Height float64
}

// Edge is a directed connection between two node IDs. Self-loops and
// duplicates are allowed.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position is the computed placement of one input node. X and Y are the
// node's center.
type Position struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rank   int     `json:"rank"`
	Order  int     `json:"order"`
}

// TopLeft returns the top-left corner of the node's box.
func (p Position) TopLeft() Point {
	return Point{X: p.X - p.Width/2, Y: p.Y - p.Height/2}
}

// Route is the path of one input edge. Points runs from the source center
// through any virtual bends to the target center.
type Route struct {
	Edge
	Points []Point `json:"points"`
	Back   bool    `json:"back,omitempty"`
}

// Result is the output of [Compute].
type Result struct {
	Nodes     []Position `json:"nodes"` // in input order
	Routes    []Route    `json:"routes"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Ranks     int        `json:"ranks"`
	Crossings int        `json:"crossings"`
	BackEdges []Edge     `json:"back_edges,omitempty"`
	Direction Direction  `json:"direction"`
}

// Position looks up the placement of a node by ID.
func (r Result) Position(id string) (Position, bool) {
	for _, p := range r.Nodes {
		if p.ID == id {
			return p, true
		}
	}
	return Position{}, false
}

// Compute lays out nodes and edges. Empty input yields an empty result.
//
// It returns [ErrDuplicateNode] or [ErrInvalidNode] for bad nodes and
// [ErrUnknownNodeReference] for edges naming missing nodes; in both cases the
// error is wrapped with the offending item.
func Compute(nodes []Node, edges []Edge, opts ...Option) (Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	g, err := buildGraph(nodes, edges)
	if err != nil {
		return Result{}, err
	}

	back := transform.Normalize(g)

	orderer := Barycentric{Passes: o.Sweeps, Transpose: o.Transpose}
	orders := orderer.OrderRanks(g)

	res := Result{
		Ranks:     g.RankCount(),
		Crossings: dag.CountCrossings(g, orders),
		Direction: o.Direction,
	}
	for _, e := range back {
		res.BackEdges = append(res.BackEdges, Edge{From: e.From, To: e.To})
	}

	centers, w, h := place(g, orders, o)
	res.Width, res.Height = w, h

	res.Nodes = make([]Position, len(nodes))
	for i, n := range nodes {
		c := centers[n.ID]
		node, _ := g.Node(n.ID)
		res.Nodes[i] = Position{
			ID:     n.ID,
			X:      c.point.X,
			Y:      c.point.Y,
			Width:  n.Width,
			Height: n.Height,
			Rank:   node.Rank,
			Order:  c.order,
		}
	}

	res.Routes = route(g, edges, back, centers)
	return res, nil
}

func buildGraph(nodes []Node, edges []Edge) (*dag.DAG, error) {
	g := dag.New()
	for i, n := range nodes {
		if n.Width < 0 || n.Height < 0 {
			return nil, fmt.Errorf("%w: node %q has negative size", ErrInvalidNode, n.ID)
		}
		err := g.AddNode(dag.Node{ID: n.ID, Width: n.Width, Height: n.Height})
		switch {
		case errors.Is(err, dag.ErrDuplicateNodeID):
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)
		case err != nil:
			return nil, fmt.Errorf("%w: node %d: %v", ErrInvalidNode, i, err)
		}
	}
	for i, e := range edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To}); err != nil {
			return nil, fmt.Errorf("%w: edge %d (%s -> %s): %v", ErrUnknownNodeReference, i, e.From, e.To, err)
		}
	}
	return g, nil
}

// route builds one Route per input edge, in input order. Forward edges
// follow their virtual chains; back-edges are straight segments.
func route(g *dag.DAG, edges []Edge, back []dag.Edge, centers map[string]placed) []Route {
	isBack := make(map[Edge]bool, len(back))
	for _, e := range back {
		isBack[Edge{From: e.From, To: e.To}] = true
	}
	chains := collectChains(g)

	routes := make([]Route, len(edges))
	for i, e := range edges {
		r := Route{Edge: e, Back: isBack[e]}
		var via []string
		if !r.Back {
			if queue := chains[e]; len(queue) > 0 {
				via, chains[e] = queue[0], queue[1:]
			}
		}
		r.Points = append(r.Points, centers[e.From].point)
		for _, id := range via {
			r.Points = append(r.Points, centers[id].point)
		}
		r.Points = append(r.Points, centers[e.To].point)
		routes[i] = r
	}
	return routes
}

// collectChains walks every virtual chain from its real source to its real
// target. Chains for the same (from, to) pair are queued in discovery order,
// which matches the order Subdivide created them in.
func collectChains(g *dag.DAG) map[Edge][][]string {
	chains := make(map[Edge][][]string)
	for _, n := range g.Nodes() {
		if n.IsVirtual() {
			continue
		}
		for _, child := range g.Children(n.ID) {
			c, _ := g.Node(child)
			if !c.IsVirtual() || c.EffectiveID() != n.ID {
				continue
			}
			var via []string
			id := child
			for {
				via = append(via, id)
				next := g.Children(id)
				if len(next) != 1 {
					break
				}
				nn, _ := g.Node(next[0])
				if !nn.IsVirtual() {
					key := Edge{From: n.ID, To: nn.ID}
					chains[key] = append(chains[key], via)
					break
				}
				id = next[0]
			}
		}
	}
	return chains
}
