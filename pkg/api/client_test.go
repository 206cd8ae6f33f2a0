package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/errors"
)

const orderDiagram = `{
  "nodes": [
    {"id": "a", "type": "step", "label": "checkout"},
    {"id": "b", "type": "activity", "label": "charge_card"}
  ],
  "edges": [{"from": "a", "to": "b", "type": "calls"}],
  "metadata": {"workflow_name": "order"}
}`

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond)}, opts...)
	c, err := NewClient(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c, err = NewClient("https://api.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", c.BaseURL())

	_, err = NewClient("localhost:8000")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestWorkflows(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/workflows/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "RUNNING", r.URL.Query().Get("status"))
		assert.Equal(t, "desc", r.URL.Query().Get("sort_order"))
		assert.False(t, r.URL.Query().Has("name"))
		writeJSON(w, Page[WorkflowSummary]{
			Data: []WorkflowSummary{{ID: "wf-1", Name: "order", Status: WorkflowRunning}},
			Meta: PaginationMeta{Total: 21, Page: 2, PerPage: 20, Pages: 2, HasPrev: true},
		})
	}))

	page, err := c.Workflows(context.Background(), WorkflowListParams{
		Pagination: Pagination{Page: 2},
		Sort:       Sort{SortOrder: SortDesc},
		Status:     WorkflowRunning,
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "wf-1", page.Data[0].ID)
	assert.Equal(t, WorkflowRunning, page.Data[0].Status)
	assert.True(t, page.Meta.HasPrev)
	assert.False(t, page.Meta.HasNext)
}

func TestWorkflowNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Workflow not found"}`, http.StatusNotFound)
	}))

	_, err := c.Workflow(context.Background(), "wf-missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeWorkflowNotFound))
	assert.Equal(t, "workflow wf-missing not found", errors.UserMessage(err))
}

func TestInvalidIDNeverHitsServer(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	_, err := c.Workflow(context.Background(), "../stats")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidWorkflowID))
	_, err = c.Event(context.Background(), 0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	assert.Zero(t, calls.Load())
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, SystemStats{Events: 7})
	}))

	stats, err := c.SystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Events)
	assert.EqualValues(t, 3, calls.Load())
}

func TestServerErrorExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"database is down"}`))
	}))

	_, err := c.TaskStats(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUpstream))
	assert.Contains(t, err.Error(), "database is down")
	assert.EqualValues(t, 3, calls.Load())
}

func TestClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	_, err := c.Tasks(context.Background(), TaskListParams{Kind: "BOGUS"})
	assert.True(t, errors.Is(err, errors.ErrCodeUpstream))
	assert.EqualValues(t, 1, calls.Load())
}

func TestRateLimited(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}), WithRetry(1, time.Millisecond))

	_, err := c.Logs(context.Background(), LogListParams{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeRateLimited))

	var rl *errors.RateLimitedError
	require.True(t, stderrors.As(err, &rl))
	assert.Equal(t, 30, rl.RetryAfter)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithTimeout(20*time.Millisecond), WithRetry(1, time.Millisecond))
	require.NoError(t, err)

	_, err = c.SystemStats(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeTimeout), "got %v", err)
}

func TestUndecodableBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>proxy error</html>"))
	}))

	_, err := c.Event(context.Background(), 5)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestDiagram(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/graphs/workflow/wf-1/definition/render", r.URL.Path)
		_, _ = w.Write([]byte(orderDiagram))
	}))

	d, err := c.Diagram(context.Background(), "wf-1")
	require.NoError(t, err)
	require.Len(t, d.Nodes, 2)
	assert.Equal(t, "order", d.Name())
	assert.Equal(t, "calls", string(d.Edges[0].Type))
}

func TestDiagramSchemaViolation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"nodes": [{"id": "a"}], "edges": []}`))
	}))

	_, err := c.Diagram(context.Background(), "wf-1")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDiagram))
}

func TestResponsesAreCached(t *testing.T) {
	var calls atomic.Int32
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(orderDiagram))
	}), WithCache(fc, time.Hour))

	for range 3 {
		_, err := c.Diagram(context.Background(), "wf-1")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, calls.Load())

	key := cache.NewDefaultKeyer().QueryKey(cache.WorkflowDiagram("wf-1"))
	_, hit, err := fc.Get(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestWorkflowHistory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/workflows/wf-1/events", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "STATE_SET", r.URL.Query().Get("type"))
		writeJSON(w, Page[EventDetail]{Data: []EventDetail{{
			EventSummary: EventSummary{ID: 1, WorkflowID: "wf-1", Type: EventStateSet},
			Payload:      map[string]any{"key": "total"},
		}}})
	})
	mux.HandleFunc("/api/workflows/wf-1/logs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ERROR", r.URL.Query().Get("level"))
		writeJSON(w, Page[LogEntry]{Data: []LogEntry{{ID: 9, Level: LevelError, Message: "boom"}}})
	})
	c := newTestClient(t, mux)

	events, err := c.WorkflowEvents(context.Background(), "wf-1", EventListParams{Type: EventStateSet})
	require.NoError(t, err)
	assert.Equal(t, "total", events.Data[0].Payload["key"])

	logs, err := c.WorkflowLogs(context.Background(), "wf-1", LogListParams{Level: LevelError})
	require.NoError(t, err)
	assert.Equal(t, "boom", logs.Data[0].Message)
}

func TestParamsValues(t *testing.T) {
	since := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	v := LogListParams{WorkflowID: "wf-1", Since: since, Pagination: Pagination{PerPage: 50}}.Values()
	assert.Equal(t, "2024-03-01T11:00:00Z", v.Get("since"))
	assert.Equal(t, "50", v.Get("per_page"))
	assert.Equal(t, "wf-1", v.Get("workflow_id"))
	assert.False(t, v.Has("page"))

	assert.Empty(t, TaskListParams{}.Values())
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, WorkflowCanceled.Valid())
	assert.False(t, WorkflowStatus("PAUSED").Valid())
	assert.True(t, TaskKindTimer.Valid())
	assert.True(t, LevelWarning.Valid())
	assert.True(t, EventTimerFired.Valid())
	assert.False(t, EventType("").Valid())
}
