package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/format"
)

// logsCommand creates the "logs" command group.
func (c *CLI) logsCommand() *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Browse workflow logs",
	}
	addOutputFlags(cmd, &o)

	cmd.AddCommand(c.logsListCommand(&o, "list", "List logs", func(cl *api.Client) func(context.Context, api.LogListParams) (api.Page[api.LogEntry], error) {
		return cl.Logs
	}))
	cmd.AddCommand(c.logsListCommand(&o, "errors", "List error logs", func(cl *api.Client) func(context.Context, api.LogListParams) (api.Page[api.LogEntry], error) {
		return cl.ErrorLogs
	}))
	cmd.AddCommand(c.logsRecentCommand(&o))
	return cmd
}

type logFetcher func(*api.Client) func(context.Context, api.LogListParams) (api.Page[api.LogEntry], error)

func (c *CLI) logsListCommand(o *outputFlags, use, short string, endpoint logFetcher) *cobra.Command {
	var (
		p     api.LogListParams
		level string
		since string
		order string
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if p.Level, err = parseLevel(level); err != nil {
				return err
			}
			if p.Since, err = parseSince(since, time.Now()); err != nil {
				return err
			}
			if p.SortOrder, err = parseSortOrder(order); err != nil {
				return err
			}
			return runAPI(c, cmd, *o, "Fetching logs...",
				func(ctx context.Context, cl *api.Client) (api.Page[api.LogEntry], error) {
					return endpoint(cl)(ctx, p)
				}, showLogs)
		},
	}
	addPageFlags(cmd, &p.Pagination)
	addSortFlags(cmd, &p.Sort, &order)
	cmd.Flags().StringVar(&p.WorkflowID, "workflow", "", "only logs of this workflow")
	if use != "errors" {
		cmd.Flags().StringVar(&level, "level", "", "filter by level: DEBUG, INFO, WARNING, ERROR")
	}
	cmd.Flags().StringVar(&since, "since", "", "only logs newer than this duration (e.g. 1h)")
	return cmd
}

func (c *CLI) logsRecentCommand(o *outputFlags) *cobra.Command {
	var p api.Pagination
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(c, cmd, *o, "Fetching logs...",
				func(ctx context.Context, cl *api.Client) (api.Page[api.LogEntry], error) {
					return cl.RecentLogs(ctx, p)
				}, showLogs)
		},
	}
	addPageFlags(cmd, &p)
	return cmd
}

func showLogs(page api.Page[api.LogEntry]) {
	rows := make([][]string, len(page.Data))
	for i, l := range page.Data {
		msg := truncateText(l.Message, 60)
		if extra := payloadSummary(l.Extra); extra != "" {
			msg += " " + StyleDim.Render(truncateText(extra, 40))
		}
		rows[i] = []string{format.FormatDate(l.CreatedAt), levelBadge(string(l.Level)), l.WorkflowID, msg}
	}
	printTable([]string{"Time", "Level", "Workflow", "Message"}, rows)
	printDetail("%s", pageFooter(page.Meta.Page, page.Meta.Pages, page.Meta.Total))
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

// compactValue prints strings bare and everything else as compact JSON.
func compactValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
