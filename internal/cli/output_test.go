package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/errors"
)

type sampleRow struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestEmit(t *testing.T) {
	rows := []sampleRow{{"wf-1", "running"}, {"wf-2", "failed"}}
	ctx := context.Background()

	tests := []struct {
		name string
		jq   string
		want string
	}{
		{"json", "", "[\n  {\n    \"id\": \"wf-1\",\n    \"status\": \"running\"\n  },\n  {\n    \"id\": \"wf-2\",\n    \"status\": \"failed\"\n  }\n]\n"},
		{"strings print raw", ".[].id", "wf-1\nwf-2\n"},
		{"select", `map(select(.status == "failed")) | length`, "1\n"},
		{"empty result", ".[] | select(.id == \"none\")", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (outputFlags{json: true, jq: tt.jq}).emit(ctx, &buf, rows); err != nil {
				t.Fatalf("emit() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("emit() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestApplyJQErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := applyJQ(ctx, ".[", nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("parse error = %v, want INVALID_INPUT", err)
	}
	if _, err := applyJQ(ctx, `error("boom")`, 1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("runtime error = %v, want INVALID_INPUT", err)
	}
	got, err := applyJQ(ctx, "1, halt, 2", nil)
	if err != nil || len(got) != 1 {
		t.Errorf("halt: got %v, %v; want one result", got, err)
	}
}

func TestOutputFlagsRaw(t *testing.T) {
	if (outputFlags{}).raw() {
		t.Error("no flags should print tables")
	}
	if !(outputFlags{jq: ".id"}).raw() {
		t.Error("--jq implies --json")
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"charge_card failed", 8, "charge_…"},
		{"line\nbreak", 20, "line break"},
		{"héllo wörld", 5, "héll…"},
		{"abc", 1, "…"},
	}
	for _, tt := range tests {
		if got := truncateText(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateText(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestPageFooter(t *testing.T) {
	if got := pageFooter(2, 5, 97); got != "page 2/5 · 97 total" {
		t.Errorf("pageFooter() = %q", got)
	}
	if got := pageFooter(1, 0, 0); got != "page 1/1 · 0 total" {
		t.Errorf("pageFooter(empty) = %q", got)
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseSince("90m", now)
	if err != nil || !got.Equal(now.Add(-90*time.Minute)) {
		t.Errorf("parseSince(90m) = %v, %v", got, err)
	}
	if got, err := parseSince("", now); err != nil || !got.IsZero() {
		t.Errorf("parseSince(\"\") = %v, %v", got, err)
	}
	for _, bad := range []string{"yesterday", "-1h", "0s"} {
		if _, err := parseSince(bad, now); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("parseSince(%q) error = %v, want INVALID_INPUT", bad, err)
		}
	}
}

func TestParseSortOrder(t *testing.T) {
	for in, want := range map[string]api.SortOrder{"": "", "asc": api.SortAsc, "desc": api.SortDesc} {
		if got, err := parseSortOrder(in); err != nil || got != want {
			t.Errorf("parseSortOrder(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := parseSortOrder("random"); err == nil {
		t.Error("parseSortOrder(random) should fail")
	}
}

func TestPrintTable(t *testing.T) {
	buf := withOutput(t)

	printTable([]string{"ID", "STATUS"}, nil)
	if !strings.Contains(buf.String(), "No results") {
		t.Errorf("empty table output = %q", buf.String())
	}

	buf.Reset()
	printTable([]string{"ID", "STATUS"}, [][]string{{"wf-1", "running"}})
	for _, want := range []string{"ID", "STATUS", "wf-1", "running"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("table missing %q:\n%s", want, buf.String())
		}
	}
}

func TestCheckEnum(t *testing.T) {
	if err := checkEnum("status", "", false); err != nil {
		t.Errorf("empty value: %v", err)
	}
	if err := checkEnum("status", "running", api.WorkflowStatus("RUNNING").Valid()); err != nil {
		t.Errorf("valid value: %v", err)
	}
	if err := checkEnum("status", "paused", api.WorkflowStatus("paused").Valid()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("invalid value: %v", err)
	}
}
