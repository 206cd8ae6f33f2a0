package api

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/diagram"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/observability"
)

// =============================================================================
// Workflows
// =============================================================================

// Workflows lists workflow runs.
func (c *Client) Workflows(ctx context.Context, p WorkflowListParams) (Page[WorkflowSummary], error) {
	return get[Page[WorkflowSummary]](ctx, c, cache.WorkflowList(p), "/api/workflows/", p.Values(), c.ttl)
}

// Workflow returns one workflow run.
func (c *Client) Workflow(ctx context.Context, id string) (WorkflowDetail, error) {
	if err := errors.ValidateWorkflowID(id); err != nil {
		return WorkflowDetail{}, err
	}
	w, err := get[WorkflowDetail](ctx, c, cache.WorkflowDetail(id), "/api/workflows/"+url.PathEscape(id), nil, c.ttl)
	return w, workflowNotFound(err, id)
}

// WorkflowEvents lists the event history of a workflow.
func (c *Client) WorkflowEvents(ctx context.Context, id string, p EventListParams) (Page[EventDetail], error) {
	if err := errors.ValidateWorkflowID(id); err != nil {
		return Page[EventDetail]{}, err
	}
	path := "/api/workflows/" + url.PathEscape(id) + "/events"
	page, err := get[Page[EventDetail]](ctx, c, cache.WorkflowEvents(id, p), path, p.Values(), c.ttl)
	return page, workflowNotFound(err, id)
}

// WorkflowLogs lists the log entries of a workflow.
func (c *Client) WorkflowLogs(ctx context.Context, id string, p LogListParams) (Page[LogEntry], error) {
	if err := errors.ValidateWorkflowID(id); err != nil {
		return Page[LogEntry]{}, err
	}
	path := "/api/workflows/" + url.PathEscape(id) + "/logs"
	page, err := get[Page[LogEntry]](ctx, c, cache.WorkflowLogs(id, p), path, p.Values(), c.ttl)
	return page, workflowNotFound(err, id)
}

// Diagram fetches a workflow's definition diagram and validates it against
// the diagram schema.
func (c *Client) Diagram(ctx context.Context, id string) (diagram.Diagram, error) {
	if err := errors.ValidateWorkflowID(id); err != nil {
		return diagram.Diagram{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, id)
	start := time.Now()

	path := "/api/graphs/workflow/" + url.PathEscape(id) + "/definition/render"
	data, err := c.cached(ctx, cache.WorkflowDiagram(id), DiagramTTL, path, nil)
	if err != nil {
		err = workflowNotFound(err, id)
		hooks.OnFetchComplete(ctx, id, 0, time.Since(start), err)
		return diagram.Diagram{}, err
	}

	d, err := diagram.Parse(data)
	if err != nil {
		// Drop the entry so a fixed deployment is picked up on the next call.
		_ = c.cache.Delete(ctx, c.keyer.QueryKey(cache.WorkflowDiagram(id)))
		err = errors.Wrap(errors.ErrCodeInvalidDiagram, err, "diagram for workflow %s", id)
	}
	hooks.OnFetchComplete(ctx, id, len(d.Nodes), time.Since(start), err)
	return d, err
}

func workflowNotFound(err error, id string) error {
	if errors.Is(err, errors.ErrCodeNotFound) {
		return errors.Wrap(errors.ErrCodeWorkflowNotFound, err, "workflow %s not found", id)
	}
	return err
}

// =============================================================================
// Tasks
// =============================================================================

// Tasks lists tasks.
func (c *Client) Tasks(ctx context.Context, p TaskListParams) (Page[TaskSummary], error) {
	return get[Page[TaskSummary]](ctx, c, cache.TaskList(p), "/api/tasks/", p.Values(), c.ttl)
}

// Task returns one task.
func (c *Client) Task(ctx context.Context, id string) (TaskDetail, error) {
	if err := errors.ValidateTaskID(id); err != nil {
		return TaskDetail{}, err
	}
	return get[TaskDetail](ctx, c, cache.TaskDetail(id), "/api/tasks/"+url.PathEscape(id), nil, c.ttl)
}

// PendingTasks lists tasks waiting to run.
func (c *Client) PendingTasks(ctx context.Context, p Pagination) (Page[TaskSummary], error) {
	return get[Page[TaskSummary]](ctx, c, cache.TaskPending(p), "/api/tasks/pending", p.Values(), StatsTTL)
}

// =============================================================================
// Events
// =============================================================================

// Events lists events across all workflows.
func (c *Client) Events(ctx context.Context, p EventListParams) (Page[EventDetail], error) {
	return get[Page[EventDetail]](ctx, c, cache.EventList(p), "/api/events/", p.Values(), c.ttl)
}

// Event returns one event.
func (c *Client) Event(ctx context.Context, id int64) (EventDetail, error) {
	if err := errors.ValidateEventID(id); err != nil {
		return EventDetail{}, err
	}
	return get[EventDetail](ctx, c, cache.EventDetail(id), "/api/events/"+strconv.FormatInt(id, 10), nil, c.ttl)
}

// =============================================================================
// Logs
// =============================================================================

// Logs lists log entries across all workflows.
func (c *Client) Logs(ctx context.Context, p LogListParams) (Page[LogEntry], error) {
	return get[Page[LogEntry]](ctx, c, cache.LogList(p), "/api/logs/", p.Values(), c.ttl)
}

// ErrorLogs lists ERROR-level entries.
func (c *Client) ErrorLogs(ctx context.Context, p LogListParams) (Page[LogEntry], error) {
	return get[Page[LogEntry]](ctx, c, cache.LogErrors(p), "/api/logs/errors", p.Values(), c.ttl)
}

// RecentLogs lists the newest entries.
func (c *Client) RecentLogs(ctx context.Context, p Pagination) (Page[LogEntry], error) {
	return get[Page[LogEntry]](ctx, c, cache.LogRecent(p), "/api/logs/recent", p.Values(), StatsTTL)
}

// =============================================================================
// Statistics
// =============================================================================

// SystemStats returns counts across workflows, tasks, events and logs.
func (c *Client) SystemStats(ctx context.Context) (SystemStats, error) {
	return get[SystemStats](ctx, c, cache.SystemStats(), "/api/stats/", nil, StatsTTL)
}

// WorkflowStats returns workflow counts by status.
func (c *Client) WorkflowStats(ctx context.Context) (WorkflowStats, error) {
	return get[WorkflowStats](ctx, c, cache.WorkflowStats(), "/api/stats/workflows", nil, StatsTTL)
}

// TaskStats returns task counts by status.
func (c *Client) TaskStats(ctx context.Context) (TaskStats, error) {
	return get[TaskStats](ctx, c, cache.TaskStats(), "/api/stats/tasks", nil, StatsTTL)
}
