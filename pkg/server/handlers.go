package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/buildinfo"
	"github.com/matzehuels/flowtower/pkg/diagram"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/pipeline"
	"github.com/matzehuels/flowtower/pkg/render"
)

// Response headers describing a pipeline run.
const (
	TraceIDHeader     = "X-Trace-ID"
	LayoutCacheHeader = "X-Layout-Cache"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Request string      `json:"request_id,omitempty"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Stats     api.SystemStats `json:"stats"`
	FetchedAt time.Time       `json:"fetched_at"`
	Stale     bool            `json:"stale"`
	Error     string          `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "statistics polling is not enabled"))
		return
	}
	res, ok := s.stats.Last()
	if !ok {
		if res.Err != nil {
			s.writeError(w, r, res.Err)
			return
		}
		s.writeError(w, r, errors.New(errors.ErrCodeUpstream, "statistics not fetched yet"))
		return
	}

	body := StatsResponse{Stats: res.Value, FetchedAt: res.FetchedAt}
	if res.Err != nil {
		body.Stale = true
		body.Error = errors.UserMessage(res.Err)
	}
	writeJSON(w, http.StatusOK, body)
}

// handleLayout serves GET /diagrams/{id}/layout.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.optionsFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.WorkflowID = chi.URLParam(r, "id")
	opts.Formats = []string{string(render.FormatJSON)}
	s.run(w, r, opts, render.FormatJSON)
}

// handleArtifact serves GET /diagrams/{id}.{ext}.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)
	id := strings.TrimSuffix(file, ext)
	if ext == "" || id == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "missing format extension in %q", file))
		return
	}
	format, err := render.ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil || format == render.FormatGraphviz {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "unsupported extension %q", ext))
		return
	}
	if format == render.FormatSVG && r.URL.Query().Get("engine") == "graphviz" {
		format = render.FormatGraphviz
	}

	opts, err := s.optionsFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.WorkflowID = id
	opts.Formats = []string{string(format)}
	s.run(w, r, opts, format)
}

// handleLayoutBody serves POST /layout. The body is a diagram; the response
// is its layout as JSON unless ?format= asks for another rendering.
func (s *Server) handleLayoutBody(w http.ResponseWriter, r *http.Request) {
	d, err := diagram.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "invalid diagram"))
		return
	}

	q := r.URL.Query()
	format := render.FormatJSON
	if f := q.Get("format"); f != "" {
		if format, err = render.ParseFormat(f); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid format"))
			return
		}
	}

	opts, err := s.optionsFromQuery(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Diagram = &d
	opts.Formats = []string{string(format)}
	s.run(w, r, opts, format)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, opts pipeline.Options, format render.Format) {
	opts.Logger = s.logger
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set(TraceIDHeader, res.TraceID)
	if res.CacheInfo.LayoutHit {
		w.Header().Set(LayoutCacheHeader, "hit")
	} else {
		w.Header().Set(LayoutCacheHeader, "miss")
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[string(format)])
}

// optionsFromQuery applies query parameters over the server defaults.
func (s *Server) optionsFromQuery(q url.Values) (pipeline.Options, error) {
	opts := pipeline.Options{
		Direction: s.defaults.Direction,
		RankSep:   s.defaults.RankSep,
		NodeSep:   s.defaults.NodeSep,
		Sweeps:    s.defaults.Sweeps,
		Legend:    s.defaults.Legend,
		Title:     s.defaults.Title,
		Summary:   s.defaults.Summary,
		Detailed:  s.defaults.Detailed,
	}

	if v := q.Get("direction"); v != "" {
		opts.Direction = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}

	var err error
	floats := map[string]*float64{"rank_sep": &opts.RankSep, "node_sep": &opts.NodeSep}
	for name, dst := range floats {
		if v := q.Get(name); v != "" {
			if *dst, err = strconv.ParseFloat(v, 64); err != nil {
				return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s", name)
			}
		}
	}
	if v := q.Get("sweeps"); v != "" {
		if opts.Sweeps, err = strconv.Atoi(v); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid sweeps")
		}
	}

	bools := map[string]*bool{
		"legend":   &opts.Legend,
		"summary":  &opts.Summary,
		"detailed": &opts.Detailed,
		"refresh":  &opts.Refresh,
	}
	for name, dst := range bools {
		if v := q.Get(name); v != "" {
			if *dst, err = strconv.ParseBool(v); err != nil {
				return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s", name)
			}
		}
	}
	return opts, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}

	var rl *errors.RateLimitedError
	if stderrors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}

	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    code,
		Message: errors.UserMessage(err),
		Request: RequestID(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
