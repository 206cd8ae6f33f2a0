package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/diagram"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/layout"
	"github.com/matzehuels/flowtower/pkg/observability"
	"github.com/matzehuels/flowtower/pkg/poll"
	"github.com/matzehuels/flowtower/pkg/render"
)

// Source fetches workflow diagrams. *api.Client implements it.
type Source interface {
	Diagram(ctx context.Context, workflowID string) (diagram.Diagram, error)
}

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options; concurrent fetches of the same workflow
// share one upstream request.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Source Source
	Logger *log.Logger

	fetches poll.Group[diagram.Diagram]
}

// NewRunner creates a runner with the given cache, keyer and diagram source.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// A nil source limits the runner to files and inline diagrams.
func NewRunner(c cache.Cache, keyer cache.Keyer, source Source, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Source: source,
		Logger: logger,
	}
}

// Execute runs the complete fetch → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{TraceID: uuid.NewString()}
	logger := r.Logger.With("trace", result.TraceID[:8])

	// Stage 1: Fetch
	fetchStart := time.Now()
	d, err := r.Fetch(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Diagram = d
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.NodeCount = len(d.Nodes)
	result.Stats.EdgeCount = len(d.Edges)

	logger.Info("loaded diagram",
		"source", opts.String(),
		"nodes", len(d.Nodes),
		"edges", len(d.Edges),
		"duration", result.Stats.FetchTime)
	for _, t := range d.UnknownTypes() {
		logger.Warn("unknown element type, using fallback style", "type", t)
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	laid, hash, layoutHit, err := r.layout(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = laid
	result.DiagramHash = hash
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.BackEdges = len(laid.BackEdges)
	result.Stats.Crossings = laid.Crossings
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"width", laid.Width,
		"height", laid.Height,
		"crossings", laid.Crossings,
		"back_edges", len(laid.BackEdges),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)
	for _, e := range laid.BackEdges {
		logger.Warn("cycle in workflow diagram", "from", e.From, "to", e.To)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, laid, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Fetch loads the diagram named by opts.
func (r *Runner) Fetch(ctx context.Context, opts Options) (diagram.Diagram, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return diagram.Diagram{}, err
	}
	switch {
	case opts.Diagram != nil:
		return *opts.Diagram, nil
	case opts.File != "":
		d, err := diagram.ReadFile(opts.File)
		if err != nil {
			return diagram.Diagram{}, classifyReadError(err, opts.File)
		}
		return d, nil
	}

	if r.Source == nil {
		return diagram.Diagram{}, errors.New(errors.ErrCodeUnsupported, "no API configured to fetch workflow %s", opts.WorkflowID)
	}
	d, shared, err := r.fetches.Do(ctx, opts.WorkflowID, func(ctx context.Context) (diagram.Diagram, error) {
		return r.Source.Diagram(ctx, opts.WorkflowID)
	})
	if shared {
		r.Logger.Debug("shared in-flight diagram fetch", "workflow", opts.WorkflowID)
	}
	return d, err
}

func classifyReadError(err error, path string) error {
	switch {
	case stderrors.Is(err, diagram.ErrInvalidDiagram):
		return errors.Wrap(errors.ErrCodeInvalidDiagram, err, "invalid diagram in %s", path)
	case errors.GetCode(err) != "":
		return err
	default:
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "cannot read %s", path)
	}
}

// Layout lays out d with caching and reports whether the cache was hit.
func (r *Runner) Layout(ctx context.Context, d diagram.Diagram, opts Options) (*diagram.Laid, bool, error) {
	laid, _, hit, err := r.layout(ctx, d, opts)
	return laid, hit, err
}

func (r *Runner) layout(ctx context.Context, d diagram.Diagram, opts Options) (*diagram.Laid, string, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, "", false, err
	}

	data, err := json.Marshal(d)
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInternal, err, "serialize diagram for cache key")
	}
	hash := cache.Hash(data)
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		var cached diagram.Laid
		if ok, err := cache.GetJSON(ctx, r.Cache, key, &cached); err == nil && ok {
			return &cached, hash, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Direction, len(d.Nodes))
	start := time.Now()
	laid, err := diagram.Layout(d, opts.LayoutOptions()...)
	hooks.OnLayoutComplete(ctx, opts.Direction, time.Since(start), err)
	if err != nil {
		return nil, hash, false, layoutError(err)
	}

	if err := cache.SetJSON(ctx, r.Cache, key, laid, TTLLayout); err != nil {
		r.Logger.Debug("layout cache write failed", "err", err)
	}
	return laid, hash, false, nil
}

// layoutError marks graph-structure failures as LAYOUT_UNAVAILABLE while
// keeping the sentinel reachable through errors.Is.
func layoutError(err error) error {
	switch {
	case stderrors.Is(err, layout.ErrUnknownNodeReference),
		stderrors.Is(err, layout.ErrDuplicateNode),
		stderrors.Is(err, layout.ErrInvalidNode),
		stderrors.Is(err, diagram.ErrEmptyNodeID):
		return errors.Wrap(errors.ErrCodeLayoutUnavailable, err, "diagram cannot be laid out")
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "layout failed")
	}
}

// RenderWithCacheInfo renders every requested format with caching and
// reports whether all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, laid *diagram.Laid, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := json.Marshal(laid)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit && !opts.Refresh {
			artifacts[format] = data
			continue
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	for _, format := range missing {
		f, _ := render.ParseFormat(format)
		data, err := render.Render(ctx, laid, f, opts.RenderOptions())
		if err != nil {
			hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
		_ = r.Cache.Set(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, TTLArtifact)
	}
	hooks.OnRenderComplete(ctx, missing, time.Since(start), nil)

	return artifacts, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, laid *diagram.Laid, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, laid, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
