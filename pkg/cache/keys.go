package cache

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Query identifies an API read the way the dashboard's query keys do: a
// hierarchical path plus the request parameters.
type Query struct {
	Segments []string
	Params   any
}

// Path joins the segments with "/".
func (q Query) Path() string {
	return strings.Join(q.Segments, "/")
}

// String returns the path, followed by a short hash of the parameters when
// any are set.
func (q Query) String() string {
	if q.Params == nil {
		return q.Path()
	}
	data, err := json.Marshal(q.Params)
	if err != nil {
		return q.Path()
	}
	switch string(data) {
	case "null", "{}":
		return q.Path()
	}
	return q.Path() + "?" + Hash(data)[:16]
}

func query(params any, segments ...string) Query {
	return Query{Segments: segments, Params: params}
}

// WorkflowList is the query for a page of workflows.
func WorkflowList(params any) Query { return query(params, "workflows", "list") }

// WorkflowDetail is the query for one workflow.
func WorkflowDetail(id string) Query { return query(nil, "workflows", "detail", id) }

// WorkflowDiagram is the query for a workflow's definition diagram.
func WorkflowDiagram(id string) Query {
	return query(nil, "workflows", "detail", id, "diagram")
}

func WorkflowEvents(id string, params any) Query {
	return query(params, "workflows", "detail", id, "events")
}

func WorkflowLogs(id string, params any) Query {
	return query(params, "workflows", "detail", id, "logs")
}

func TaskList(params any) Query { return query(params, "tasks", "list") }

func TaskDetail(id string) Query { return query(nil, "tasks", "detail", id) }

func TaskPending(params any) Query { return query(params, "tasks", "pending") }

func EventList(params any) Query { return query(params, "events", "list") }

func EventDetail(id int64) Query { return query(nil, "events", "detail", fmt.Sprint(id)) }

func LogList(params any) Query { return query(params, "logs", "list") }

func LogErrors(params any) Query { return query(params, "logs", "errors") }

func LogRecent(params any) Query { return query(params, "logs", "recent") }

// SystemStats is the query polled by the stats dashboard.
func SystemStats() Query { return query(nil, "stats", "system") }

func WorkflowStats() Query { return query(nil, "stats", "workflows") }

func TaskStats() Query { return query(nil, "stats", "tasks") }

// LayoutKeyOpts holds the options that change a computed layout.
type LayoutKeyOpts struct {
	Direction string  `json:"direction"`
	RankSep   float64 `json:"rank_sep"`
	NodeSep   float64 `json:"node_sep"`
	Sweeps    int     `json:"sweeps"`
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Legend   bool   `json:"legend,omitempty"`
	Title    string `json:"title,omitempty"`
	Summary  bool   `json:"summary,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// QueryKey returns the key for an API response.
	QueryKey(q Query) string
	// LayoutKey returns the key for a layout of the diagram with hash diagramHash.
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string
	// ArtifactKey returns the key for a rendering of the layout with hash layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() *DefaultKeyer { return &DefaultKeyer{} }

// QueryKey returns "api:" followed by the query string.
func (DefaultKeyer) QueryKey(q Query) string {
	return "api:" + q.String()
}

// LayoutKey hashes the diagram hash together with the options.
func (DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", diagramHash, opts)
}

// ArtifactKey hashes the layout hash together with the options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// ScopedKeyer prefixes every key produced by an inner Keyer, e.g. to isolate
// two API base URLs sharing one Redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) *ScopedKeyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) QueryKey(q Query) string {
	return k.prefix + k.inner.QueryKey(q)
}

func (k *ScopedKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(diagramHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = (*ScopedKeyer)(nil)
)
