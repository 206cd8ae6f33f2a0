// Package api is a read-only client for the workflow engine's REST API.
//
// # Overview
//
// [Client] covers every endpoint the monitoring tool reads:
//
//   - Workflows: [Client.Workflows], [Client.Workflow], [Client.WorkflowEvents],
//     [Client.WorkflowLogs], [Client.Diagram]
//   - Tasks: [Client.Tasks], [Client.Task], [Client.PendingTasks]
//   - Events: [Client.Events], [Client.Event]
//   - Logs: [Client.Logs], [Client.ErrorLogs], [Client.RecentLogs]
//   - Statistics: [Client.SystemStats], [Client.WorkflowStats], [Client.TaskStats]
//
// List endpoints return a [Page] holding the items and the server's
// [PaginationMeta].
//
// # Caching and Retries
//
// Responses are cached through a [cache.Cache] under keys derived from
// [cache.Query] values, so a diagram fetched by the CLI and by the server
// share one entry. Transient failures (network errors, timeouts, 5xx and 429
// responses) are retried with exponential backoff via [httputil.Retry].
//
// # Errors
//
// Every error returned by the client carries a [errors.Code]: NOT_FOUND and
// WORKFLOW_NOT_FOUND for 404s, NETWORK_ERROR, TIMEOUT, RATE_LIMITED,
// UPSTREAM_ERROR for other non-2xx statuses, INVALID_FORMAT for undecodable
// bodies and INVALID_DIAGRAM for diagrams that fail schema validation.
//
// [errors.Code]: github.com/matzehuels/flowtower/pkg/errors.Code
package api
