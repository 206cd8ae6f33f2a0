package api

import "slices"

// WorkflowStatus is the lifecycle state of a workflow run.
type WorkflowStatus string

const (
	WorkflowRunning   WorkflowStatus = "RUNNING"
	WorkflowCompleted WorkflowStatus = "COMPLETED"
	WorkflowFailed    WorkflowStatus = "FAILED"
	WorkflowCanceled  WorkflowStatus = "CANCELED"
)

// WorkflowStatuses lists every workflow status in display order.
var WorkflowStatuses = []WorkflowStatus{WorkflowRunning, WorkflowCompleted, WorkflowFailed, WorkflowCanceled}

// TaskStatus is the lifecycle state of a queued task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskRunning   TaskStatus = "RUNNING"
	TaskCompleted TaskStatus = "COMPLETED"
	TaskFailed    TaskStatus = "FAILED"
)

// TaskStatuses lists every task status in display order.
var TaskStatuses = []TaskStatus{TaskPending, TaskRunning, TaskCompleted, TaskFailed}

// TaskKind is what a task executes.
type TaskKind string

const (
	TaskKindStep     TaskKind = "STEP"
	TaskKindActivity TaskKind = "ACTIVITY"
	TaskKindTimer    TaskKind = "TIMER"
)

// TaskKinds lists every task kind.
var TaskKinds = []TaskKind{TaskKindStep, TaskKindActivity, TaskKindTimer}

// LogLevel is the severity of a workflow log entry.
type LogLevel string

const (
	LevelDebug   LogLevel = "DEBUG"
	LevelInfo    LogLevel = "INFO"
	LevelWarning LogLevel = "WARNING"
	LevelError   LogLevel = "ERROR"
)

// LogLevels lists every log level from least to most severe.
var LogLevels = []LogLevel{LevelDebug, LevelInfo, LevelWarning, LevelError}

// EventType identifies an entry in a workflow's event history.
type EventType string

const (
	EventWorkflowStarted   EventType = "WORKFLOW_STARTED"
	EventWorkflowCompleted EventType = "WORKFLOW_COMPLETED"
	EventWorkflowFailed    EventType = "WORKFLOW_FAILED"
	EventStepStart         EventType = "STEP_START"
	EventStepComplete      EventType = "STEP_COMPLETE"
	EventStepFailed        EventType = "STEP_FAILED"
	EventStateSet          EventType = "STATE_SET"
	EventTimerStarted      EventType = "TIMER_STARTED"
	EventTimerFired        EventType = "TIMER_FIRED"
)

// EventTypes lists every event type.
var EventTypes = []EventType{
	EventWorkflowStarted, EventWorkflowCompleted, EventWorkflowFailed,
	EventStepStart, EventStepComplete, EventStepFailed,
	EventStateSet, EventTimerStarted, EventTimerFired,
}

func (s WorkflowStatus) Valid() bool { return slices.Contains(WorkflowStatuses, s) }
func (s TaskStatus) Valid() bool     { return slices.Contains(TaskStatuses, s) }
func (k TaskKind) Valid() bool       { return slices.Contains(TaskKinds, k) }
func (l LogLevel) Valid() bool       { return slices.Contains(LogLevels, l) }
func (t EventType) Valid() bool      { return slices.Contains(EventTypes, t) }

// Timestamps are kept as the server sends them; pkg/format parses them and
// treats values without a zone as UTC.

// WorkflowSummary is a row of the workflow list.
type WorkflowSummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Version     string         `json:"version,omitempty"`
	Status      WorkflowStatus `json:"status"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
	CompletedAt string         `json:"completed_at,omitempty"`
	EventCount  *int           `json:"event_count,omitempty"`
}

// WorkflowDetail is a single workflow run with its input and current state.
type WorkflowDetail struct {
	WorkflowSummary
	Module       string         `json:"module,omitempty"`
	Input        map[string]any `json:"input,omitempty"`
	CurrentState map[string]any `json:"current_state,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Duration     *float64       `json:"duration,omitempty"` // seconds
}

// TaskSummary is a row of the task list.
type TaskSummary struct {
	ID           string     `json:"id"`
	WorkflowID   string     `json:"workflow_id"`
	WorkflowName string     `json:"workflow_name,omitempty"`
	Kind         TaskKind   `json:"kind"`
	Target       string     `json:"target"`
	Status       TaskStatus `json:"status"`
	Attempts     int        `json:"attempts"`
	MaxAttempts  *int       `json:"max_attempts,omitempty"`
	RunAt        string     `json:"run_at,omitempty"`
	CreatedAt    string     `json:"created_at"`
	UpdatedAt    string     `json:"updated_at,omitempty"`
	LastError    *string    `json:"last_error,omitempty"`
}

// TaskDetail is a single task with its input and result.
type TaskDetail struct {
	TaskSummary
	Input          map[string]any `json:"input,omitempty"`
	Result         any            `json:"result,omitempty"`
	TimeoutSeconds *int           `json:"timeout_seconds,omitempty"`
}

// EventSummary is an entry in a workflow's history.
type EventSummary struct {
	ID         int64     `json:"id"`
	WorkflowID string    `json:"workflow_id"`
	Type       EventType `json:"type"`
	CreatedAt  string    `json:"created_at"`
}

// EventDetail is an event with its payload.
type EventDetail struct {
	EventSummary
	Payload map[string]any `json:"payload"`
}

// LogEntry is a log line emitted by a workflow.
type LogEntry struct {
	ID         int64          `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	Level      LogLevel       `json:"level"`
	Message    string         `json:"message"`
	CreatedAt  string         `json:"created_at"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// PaginationMeta describes where a page sits in the full result set.
type PaginationMeta struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// Page is a paginated list response.
type Page[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// WorkflowStats counts workflows by status.
type WorkflowStats struct {
	Total     int `json:"total"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Canceled  int `json:"canceled"`
}

// TaskStats counts tasks by status.
type TaskStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// SystemStats is the system-wide overview.
type SystemStats struct {
	Workflows WorkflowStats `json:"workflows"`
	Tasks     TaskStats     `json:"tasks"`
	Events    int           `json:"events"`
	Logs      int           `json:"logs"`
}
