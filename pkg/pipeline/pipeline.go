// Package pipeline provides the fetch → layout → render pipeline shared by
// the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: load a diagram from the API by workflow id, from a local JSON or
//     YAML file, or take one supplied inline
//  2. Layout: build, lay out and style the diagram ([diagram.Layout])
//  3. Render: produce SVG, DOT, Graphviz SVG, PNG or JSON output
//
// Layouts and artifacts are cached by content hash, so re-rendering an
// unchanged diagram with the same options costs one cache read.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, client, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    WorkflowID: "wf-123",
//	    Formats:    []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/diagram"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/layout"
	"github.com/matzehuels/flowtower/pkg/render"
)

// Cache lifetimes. Layouts and artifacts are keyed by content, so they only
// expire to bound the cache size.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = string(render.FormatSVG)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Fetch options: exactly one source is used, in this order.
	Diagram    *diagram.Diagram `json:"diagram,omitempty"`
	File       string           `json:"-"`
	WorkflowID string           `json:"workflow_id,omitempty"`
	Refresh    bool             `json:"refresh,omitempty"`

	// Layout options
	Direction string  `json:"direction,omitempty"`
	RankSep   float64 `json:"rank_sep,omitempty"`
	NodeSep   float64 `json:"node_sep,omitempty"`
	Sweeps    int     `json:"sweeps,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Legend   bool     `json:"legend,omitempty"`
	Title    string   `json:"title,omitempty"`
	Summary  bool     `json:"summary,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// TraceID identifies the run in logs.
	TraceID string

	// Diagram is the fetched diagram.
	Diagram diagram.Diagram

	// DiagramHash is the content hash of the diagram.
	DiagramHash string

	// Layout is the positioned, styled diagram.
	Layout *diagram.Laid

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BackEdges  int
	Crossings  int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if _, err := render.ParseFormat(format); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid format")
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDirection checks that a layout direction is valid.
func ValidateDirection(direction string) error {
	if _, err := layout.ParseDirection(direction); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDirection, err, "invalid direction")
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks that a diagram source is set.
func (o *Options) ValidateForFetch() error {
	o.setLogger()
	switch {
	case o.Diagram != nil, o.File != "":
		return nil
	case o.WorkflowID != "":
		return errors.ValidateWorkflowID(o.WorkflowID)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "a workflow id, file or inline diagram is required")
	}
}

// ValidateForLayout validates and normalizes the layout options.
func (o *Options) ValidateForLayout() error {
	o.setLogger()
	if err := ValidateDirection(o.Direction); err != nil {
		return err
	}
	dir, _ := layout.ParseDirection(o.Direction)
	o.Direction = string(dir)
	if o.RankSep < 0 || o.NodeSep < 0 || o.Sweeps < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "spacing and sweeps cannot be negative")
	}
	if !finite(o.RankSep) || !finite(o.NodeSep) {
		return errors.New(errors.ErrCodeInvalidInput, "spacing must be a finite number")
	}
	if o.Sweeps > layout.MaxSweeps {
		return errors.New(errors.ErrCodeInvalidInput, "sweeps cannot exceed %d", layout.MaxSweeps)
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// ValidateForRender validates formats, defaulting to [DefaultFormat].
func (o *Options) ValidateForRender() error {
	o.setLogger()
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutOptions converts the options for [diagram.Layout]. Zero spacing and
// sweeps keep the layout defaults.
func (o *Options) LayoutOptions() []layout.Option {
	dir, _ := layout.ParseDirection(o.Direction)
	return []layout.Option{layout.WithOptions(layout.Options{
		Direction: dir,
		RankSep:   o.RankSep,
		NodeSep:   o.NodeSep,
		Sweeps:    o.Sweeps,
	})}
}

// RenderOptions converts the options for [render.Render].
func (o *Options) RenderOptions() render.Options {
	return render.Options{
		Legend:   o.Legend,
		Title:    o.Title,
		Summary:  o.Summary,
		Detailed: o.Detailed,
	}
}

// LayoutKeyOpts returns cache key options for layout computation. Defaults
// are resolved first so that "LR" and "" share an entry.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	resolved := layout.DefaultOptions()
	for _, opt := range o.LayoutOptions() {
		opt(&resolved)
	}
	return cache.LayoutKeyOpts{
		Direction: string(resolved.Direction),
		RankSep:   resolved.RankSep,
		NodeSep:   resolved.NodeSep,
		Sweeps:    resolved.Sweeps,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Legend:   o.Legend,
		Title:    o.Title,
		Summary:  o.Summary,
		Detailed: o.Detailed,
	}
}

// String describes the diagram source for log lines.
func (o *Options) String() string {
	switch {
	case o.Diagram != nil:
		return "inline diagram"
	case o.File != "":
		return fmt.Sprintf("file %s", o.File)
	default:
		return fmt.Sprintf("workflow %s", o.WorkflowID)
	}
}
