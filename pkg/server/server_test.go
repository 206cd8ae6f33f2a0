package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/diagram"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/pipeline"
	"github.com/matzehuels/flowtower/pkg/poll"
)

const orderJSON = `{
  "nodes": [
    {"id": "a", "type": "step", "label": "checkout"},
    {"id": "b", "type": "activity", "label": "charge_card"},
    {"id": "c", "type": "state", "label": "state.order_total"}
  ],
  "edges": [
    {"from": "a", "to": "b", "type": "calls"},
    {"from": "b", "to": "c", "type": "writes"}
  ],
  "metadata": {"workflow_name": "order"}
}`

type fakeSource map[string]string

func (s fakeSource) Diagram(ctx context.Context, id string) (diagram.Diagram, error) {
	body, ok := s[id]
	if !ok {
		return diagram.Diagram{}, errors.New(errors.ErrCodeWorkflowNotFound, "workflow %s not found", id)
	}
	return diagram.Parse([]byte(body))
}

type fakeStats struct {
	res poll.Result[api.SystemStats]
	ok  bool
}

func (f fakeStats) Last() (poll.Result[api.SystemStats], bool) { return f.res, f.ok }

func quiet() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := pipeline.NewRunner(fc, nil, fakeSource{"wf-1": orderJSON}, quiet())
	srv := httptest.NewServer(New(runner, append([]Option{WithLogger(quiet())}, opts...)...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeError(t *testing.T, body []byte) errorDetail {
	t.Helper()
	var eb errorBody
	require.NoError(t, json.Unmarshal(body, &eb))
	return eb.Error
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, body := get(t, srv.URL+"/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestWorkflowLayout(t *testing.T) {
	srv := newTestServer(t)
	resp, body := get(t, srv.URL+"/diagrams/wf-1/layout")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "miss", resp.Header.Get(LayoutCacheHeader))
	assert.NotEmpty(t, resp.Header.Get(TraceIDHeader))

	var laid diagram.Laid
	require.NoError(t, json.Unmarshal(body, &laid))
	require.Len(t, laid.Nodes, 3)
	a, _ := laid.Node("a")
	c, _ := laid.Node("c")
	assert.Less(t, a.Center().X, c.Center().X)
	assert.Equal(t, "Order Total", c.DisplayLabel)

	resp, _ = get(t, srv.URL+"/diagrams/wf-1/layout")
	assert.Equal(t, "hit", resp.Header.Get(LayoutCacheHeader))
}

func TestWorkflowLayoutDirection(t *testing.T) {
	srv := newTestServer(t)
	resp, body := get(t, srv.URL+"/diagrams/wf-1/layout?direction=TB")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var laid diagram.Laid
	require.NoError(t, json.Unmarshal(body, &laid))
	a, _ := laid.Node("a")
	b, _ := laid.Node("b")
	assert.Less(t, a.Center().Y, b.Center().Y)
	assert.Equal(t, "TB", string(laid.Direction))
}

func TestArtifacts(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path        string
		contentType string
		prefix      string
	}{
		{"/diagrams/wf-1.svg", "image/svg+xml", "<svg"},
		{"/diagrams/wf-1.dot", "text/vnd.graphviz", "digraph"},
		{"/diagrams/wf-1.json", "application/json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, srv.URL+tt.path)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			assert.True(t, strings.HasPrefix(strings.TrimSpace(string(body)), tt.prefix), "body starts with %q", tt.prefix)
		})
	}
}

func TestArtifactErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		code   errors.Code
	}{
		{"unknown extension", "/diagrams/wf-1.pdf", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"no extension", "/diagrams/wf-1", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"unknown workflow", "/diagrams/wf-9.svg", http.StatusNotFound, errors.ErrCodeWorkflowNotFound},
		{"bad direction", "/diagrams/wf-1.svg?direction=RL", http.StatusBadRequest, errors.ErrCodeInvalidDirection},
		{"bad bool", "/diagrams/wf-1.svg?legend=maybe", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad spacing", "/diagrams/wf-1/layout?rank_sep=wide", http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv.URL+tt.path)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
			detail := decodeError(t, body)
			assert.Equal(t, tt.code, detail.Code)
			assert.NotEmpty(t, detail.Message)
			assert.Equal(t, resp.Header.Get(RequestIDHeader), detail.Request)
		})
	}
}

func TestPostLayout(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/layout", "application/json", strings.NewReader(orderJSON))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var laid diagram.Laid
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&laid))
	assert.Len(t, laid.Nodes, 3)
	assert.Len(t, laid.Edges, 2)
}

func TestPostLayoutSVG(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/layout?format=svg&legend=true", "application/json", strings.NewReader(orderJSON))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
}

func TestPostLayoutErrors(t *testing.T) {
	srv := newTestServer(t)

	dangling := `{"nodes": [{"id": "a", "type": "step", "label": "a"}],
		"edges": [{"from": "a", "to": "ghost", "type": "sequence"}]}`

	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"not json", "nodes: []", http.StatusBadRequest, errors.ErrCodeInvalidDiagram},
		{"schema violation", `{"nodes": [{"id": "a", "type": "step"}], "edges": []}`, http.StatusBadRequest, errors.ErrCodeInvalidDiagram},
		{"dangling reference", dangling, http.StatusUnprocessableEntity, errors.ErrCodeLayoutUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/layout", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			assert.Equal(t, tt.status, resp.StatusCode, string(body))
			assert.Equal(t, tt.code, decodeError(t, body).Code)
		})
	}
}

func TestPostLayoutRejectsUnboundedOptions(t *testing.T) {
	srv := newTestServer(t)

	for _, query := range []string{
		"rank_sep=Inf",
		"rank_sep=-Inf",
		"node_sep=NaN",
		"sweeps=2000000000",
	} {
		t.Run(query, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/layout?"+query, "application/json", strings.NewReader(orderJSON))
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
			assert.Equal(t, errors.ErrCodeInvalidInput, decodeError(t, body).Code)
		})
	}
}

func TestStats(t *testing.T) {
	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("disabled", func(t *testing.T) {
		srv := newTestServer(t)
		resp, _ := get(t, srv.URL+"/stats")
		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	})

	t.Run("not yet fetched", func(t *testing.T) {
		srv := newTestServer(t, WithStats(fakeStats{}))
		resp, _ := get(t, srv.URL+"/stats")
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("fresh", func(t *testing.T) {
		stats := fakeStats{ok: true, res: poll.Result[api.SystemStats]{
			Value:     api.SystemStats{Workflows: api.WorkflowStats{Total: 12}},
			FetchedAt: fetched,
		}}
		srv := newTestServer(t, WithStats(stats))
		resp, body := get(t, srv.URL+"/stats")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got StatsResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, 12, got.Stats.Workflows.Total)
		assert.False(t, got.Stale)
		assert.True(t, fetched.Equal(got.FetchedAt))
	})

	t.Run("stale", func(t *testing.T) {
		stats := fakeStats{ok: true, res: poll.Result[api.SystemStats]{
			Value: api.SystemStats{Workflows: api.WorkflowStats{Total: 12}},
			Err:   errors.New(errors.ErrCodeNetwork, "connection refused"),
		}}
		srv := newTestServer(t, WithStats(stats))
		_, body := get(t, srv.URL+"/stats")

		var got StatsResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.True(t, got.Stale)
		assert.Equal(t, "connection refused", got.Error)
	})
}

func TestListenAndServeShutsDown(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, nil, quiet())
	s := New(runner, WithLogger(log.NewWithOptions(os.Stderr, log.Options{Level: log.ErrorLevel})))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
