package api

import (
	"net/url"
	"strconv"
	"time"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Pagination selects a page. Zero values leave the server defaults in place.
type Pagination struct {
	Page    int `json:"page,omitempty"`
	PerPage int `json:"per_page,omitempty"`
}

func (p Pagination) apply(v url.Values) {
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
}

// Values encodes the pagination as query parameters.
func (p Pagination) Values() url.Values {
	v := url.Values{}
	p.apply(v)
	return v
}

// Sort orders a list by a server-side field.
type Sort struct {
	SortBy    string    `json:"sort_by,omitempty"`
	SortOrder SortOrder `json:"sort_order,omitempty"`
}

func (s Sort) apply(v url.Values) {
	setString(v, "sort_by", s.SortBy)
	setString(v, "sort_order", string(s.SortOrder))
}

// WorkflowListParams filters GET /api/workflows/.
type WorkflowListParams struct {
	Pagination
	Sort
	Status WorkflowStatus `json:"status,omitempty"`
	Name   string         `json:"name,omitempty"`
}

// Values encodes the parameters as a query string.
func (p WorkflowListParams) Values() url.Values {
	v := url.Values{}
	p.Pagination.apply(v)
	p.Sort.apply(v)
	setString(v, "status", string(p.Status))
	setString(v, "name", p.Name)
	return v
}

// TaskListParams filters GET /api/tasks/.
type TaskListParams struct {
	Pagination
	Sort
	WorkflowID string     `json:"workflow_id,omitempty"`
	Status     TaskStatus `json:"status,omitempty"`
	Kind       TaskKind   `json:"kind,omitempty"`
}

// Values encodes the parameters as a query string.
func (p TaskListParams) Values() url.Values {
	v := url.Values{}
	p.Pagination.apply(v)
	p.Sort.apply(v)
	setString(v, "workflow_id", p.WorkflowID)
	setString(v, "status", string(p.Status))
	setString(v, "kind", string(p.Kind))
	return v
}

// EventListParams filters event listings.
type EventListParams struct {
	Pagination
	Sort
	WorkflowID string    `json:"workflow_id,omitempty"`
	Type       EventType `json:"type,omitempty"`
	Since      time.Time `json:"since,omitzero"`
}

// Values encodes the parameters as a query string.
func (p EventListParams) Values() url.Values {
	v := url.Values{}
	p.Pagination.apply(v)
	p.Sort.apply(v)
	setString(v, "workflow_id", p.WorkflowID)
	setString(v, "type", string(p.Type))
	setTime(v, "since", p.Since)
	return v
}

// LogListParams filters log listings.
type LogListParams struct {
	Pagination
	Sort
	WorkflowID string    `json:"workflow_id,omitempty"`
	Level      LogLevel  `json:"level,omitempty"`
	Since      time.Time `json:"since,omitzero"`
}

// Values encodes the parameters as a query string.
func (p LogListParams) Values() url.Values {
	v := url.Values{}
	p.Pagination.apply(v)
	p.Sort.apply(v)
	setString(v, "workflow_id", p.WorkflowID)
	setString(v, "level", string(p.Level))
	setTime(v, "since", p.Since)
	return v
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setTime(v url.Values, key string, t time.Time) {
	if !t.IsZero() {
		v.Set(key, t.UTC().Format(time.RFC3339))
	}
}
