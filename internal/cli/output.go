package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/errors"
)

// outputFlags select raw JSON output and an optional jq filter for the API
// commands.
type outputFlags struct {
	json bool
	jq   string
}

func addOutputFlags(cmd *cobra.Command, o *outputFlags) {
	cmd.PersistentFlags().BoolVar(&o.json, "json", false, "print the raw JSON response")
	cmd.PersistentFlags().StringVar(&o.jq, "jq", "", "filter the JSON response with a jq expression (implies --json)")
}

// raw reports whether the response should be printed as JSON instead of a
// table.
func (o outputFlags) raw() bool {
	return o.json || o.jq != ""
}

// emit prints v as indented JSON, filtered through --jq when set.
func (o outputFlags) emit(ctx context.Context, w io.Writer, v any) error {
	if o.jq == "" {
		return writeJSON(w, v)
	}
	results, err := applyJQ(ctx, o.jq, v)
	if err != nil {
		return err
	}
	for _, r := range results {
		if s, ok := r.(string); ok {
			fmt.Fprintln(w, s)
			continue
		}
		if err := writeJSON(w, r); err != nil {
			return err
		}
	}
	return nil
}

// applyJQ runs expr over v. v is round-tripped through JSON first so that
// gojq sees plain maps and slices.
func applyJQ(ctx context.Context, expr string, v any) ([]any, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid jq expression")
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid jq expression")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var results []any
	iter := code.RunWithContext(ctx, input)
	for {
		r, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := r.(error); isErr {
			var halt *gojq.HaltError
			if stderrors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "jq")
		}
		results = append(results, r)
	}
	return results, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTable draws rows under headers with the CLI's rounded border.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		printInfo("No results")
		return
	}
	fmt.Fprintln(out, renderTable(headers, rows))
}

// pageFooter summarizes a page position, e.g. "page 2/5 · 97 total".
func pageFooter(page, pages, total int) string {
	if pages == 0 {
		pages = 1
	}
	parts := []string{fmt.Sprintf("page %d/%d", page, pages), fmt.Sprintf("%d total", total)}
	return strings.Join(parts, " · ")
}

// truncateText shortens s to n runes with an ellipsis.
func truncateText(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	if n <= 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
