package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/diagram"
	"github.com/matzehuels/flowtower/pkg/format"
	"github.com/matzehuels/flowtower/pkg/style"
)

// workflowsCommand creates the "workflows" command group.
func (c *CLI) workflowsCommand() *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:     "workflows",
		Aliases: []string{"wf"},
		Short:   "Browse workflow runs",
	}
	addOutputFlags(cmd, &o)

	cmd.AddCommand(c.workflowsListCommand(&o))
	cmd.AddCommand(c.workflowsGetCommand(&o))
	cmd.AddCommand(c.workflowsEventsCommand(&o))
	cmd.AddCommand(c.workflowsLogsCommand(&o))
	cmd.AddCommand(c.workflowsDiagramCommand(&o))
	return cmd
}

func (c *CLI) workflowsListCommand(o *outputFlags) *cobra.Command {
	var (
		p      api.WorkflowListParams
		status string
		order  string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflow runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Status = api.WorkflowStatus(strings.ToUpper(status))
			if err := checkEnum("status", status, p.Status.Valid()); err != nil {
				return err
			}
			var err error
			if p.SortOrder, err = parseSortOrder(order); err != nil {
				return err
			}
			return runAPI(c, cmd, *o, "Fetching workflows...",
				func(ctx context.Context, cl *api.Client) (api.Page[api.WorkflowSummary], error) {
					return cl.Workflows(ctx, p)
				}, showWorkflows)
		},
	}
	addPageFlags(cmd, &p.Pagination)
	addSortFlags(cmd, &p.Sort, &order)
	cmd.Flags().StringVar(&status, "status", "", "filter by status: RUNNING, COMPLETED, FAILED, CANCELED")
	cmd.Flags().StringVar(&p.Name, "name", "", "filter by workflow name")
	return cmd
}

func showWorkflows(page api.Page[api.WorkflowSummary]) {
	rows := make([][]string, len(page.Data))
	for i, w := range page.Data {
		events := "-"
		if w.EventCount != nil {
			events = format.Count(*w.EventCount)
		}
		rows[i] = []string{w.ID, w.Name, w.Version, statusBadge(string(w.Status)), format.FormatRelative(w.CreatedAt), events}
	}
	printTable([]string{"ID", "Name", "Version", "Status", "Created", "Events"}, rows)
	printDetail("%s", pageFooter(page.Meta.Page, page.Meta.Pages, page.Meta.Total))
}

func (c *CLI) workflowsGetCommand(o *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <workflow-id>",
		Short: "Show a workflow run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(c, cmd, *o, "Fetching workflow...",
				func(ctx context.Context, cl *api.Client) (api.WorkflowDetail, error) {
					return cl.Workflow(ctx, args[0])
				}, showWorkflow)
		},
	}
}

func showWorkflow(w api.WorkflowDetail) {
	printTitle(w.Name)
	printKeyValue("ID", w.ID)
	printKeyValue("Status", statusBadge(string(w.Status)))
	printKeyValue("Version", w.Version)
	printKeyValue("Module", w.Module)
	printKeyValue("Created", format.FormatDate(w.CreatedAt))
	printKeyValue("Updated", format.FormatDate(w.UpdatedAt))
	printKeyValue("Completed", format.FormatDate(w.CompletedAt))
	printKeyValue("Duration", format.FormatOptionalDuration(w.Duration))
	if w.ErrorMessage != "" {
		printNewline()
		printError("%s", w.ErrorMessage)
	}
	if len(w.CurrentState) > 0 {
		printNewline()
		printTitle("State")
		_ = writeJSON(out, w.CurrentState)
	}
}

func (c *CLI) workflowsEventsCommand(o *outputFlags) *cobra.Command {
	var (
		p     api.EventListParams
		typ   string
		since string
	)
	cmd := &cobra.Command{
		Use:   "events <workflow-id>",
		Short: "Show a workflow's event history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Type = api.EventType(strings.ToUpper(typ))
			if err := checkEnum("type", typ, p.Type.Valid()); err != nil {
				return err
			}
			var err error
			if p.Since, err = parseSince(since, time.Now()); err != nil {
				return err
			}
			return runAPI(c, cmd, *o, "Fetching events...",
				func(ctx context.Context, cl *api.Client) (api.Page[api.EventDetail], error) {
					return cl.WorkflowEvents(ctx, args[0], p)
				}, showEvents)
		},
	}
	addPageFlags(cmd, &p.Pagination)
	cmd.Flags().StringVar(&typ, "type", "", "filter by event type (e.g. WORKFLOW_STARTED)")
	cmd.Flags().StringVar(&since, "since", "", "only events newer than this duration (e.g. 1h)")
	return cmd
}

func (c *CLI) workflowsLogsCommand(o *outputFlags) *cobra.Command {
	var (
		p     api.LogListParams
		level string
		since string
	)
	cmd := &cobra.Command{
		Use:   "logs <workflow-id>",
		Short: "Show a workflow's logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if p.Level, err = parseLevel(level); err != nil {
				return err
			}
			if p.Since, err = parseSince(since, time.Now()); err != nil {
				return err
			}
			return runAPI(c, cmd, *o, "Fetching logs...",
				func(ctx context.Context, cl *api.Client) (api.Page[api.LogEntry], error) {
					return cl.WorkflowLogs(ctx, args[0], p)
				}, showLogs)
		},
	}
	addPageFlags(cmd, &p.Pagination)
	cmd.Flags().StringVar(&level, "level", "", "filter by level: DEBUG, INFO, WARNING, ERROR")
	cmd.Flags().StringVar(&since, "since", "", "only logs newer than this duration (e.g. 1h)")
	return cmd
}

func (c *CLI) workflowsDiagramCommand(o *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "diagram <workflow-id>",
		Short: "Show a workflow's definition diagram",
		Long: `Show the nodes and edges of a workflow's definition diagram.

Use 'flowtower render --workflow <id>' to draw it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(c, cmd, *o, "Fetching diagram...",
				func(ctx context.Context, cl *api.Client) (diagram.Diagram, error) {
					return cl.Diagram(ctx, args[0])
				}, func(d diagram.Diagram) { showDiagram(args[0], d) })
		},
	}
}

func showDiagram(id string, d diagram.Diagram) {
	name := d.Name()
	if name == "" {
		name = id
	}
	printTitle(name)
	printDetail("%s", d.Summary())
	printNewline()

	rows := make([][]string, len(d.Nodes))
	for i, n := range d.Nodes {
		rows[i] = []string{n.ID, string(n.Type), style.Label(n.Type, n.Label), truncateText(n.Description(), 40)}
	}
	printTable([]string{"ID", "Type", "Label", "Description"}, rows)

	edges := make([][]string, len(d.Edges))
	for i, e := range d.Edges {
		edges[i] = []string{e.From, iconArrow, e.To, string(e.Type), e.Label}
	}
	printTable([]string{"From", "", "To", "Type", "Label"}, edges)
	printNextStep("Draw it", fmt.Sprintf("%s render --workflow %s", appName, id))
}

func parseLevel(s string) (api.LogLevel, error) {
	l := api.LogLevel(strings.ToUpper(s))
	if err := checkEnum("level", s, l.Valid()); err != nil {
		return "", err
	}
	if !l.Valid() {
		return "", nil
	}
	return l, nil
}
