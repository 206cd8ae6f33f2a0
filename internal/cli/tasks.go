package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/format"
)

// tasksCommand creates the "tasks" command group.
func (c *CLI) tasksCommand() *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Browse activity and timer tasks",
	}
	addOutputFlags(cmd, &o)

	cmd.AddCommand(c.tasksListCommand(&o))
	cmd.AddCommand(c.tasksGetCommand(&o))
	cmd.AddCommand(c.tasksPendingCommand(&o))
	return cmd
}

func (c *CLI) tasksListCommand(o *outputFlags) *cobra.Command {
	var (
		p            api.TaskListParams
		status, kind string
		order        string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Status = api.TaskStatus(strings.ToUpper(status))
			if err := checkEnum("status", status, p.Status.Valid()); err != nil {
				return err
			}
			p.Kind = api.TaskKind(strings.ToUpper(kind))
			if err := checkEnum("kind", kind, p.Kind.Valid()); err != nil {
				return err
			}
			var err error
			if p.SortOrder, err = parseSortOrder(order); err != nil {
				return err
			}
			return runAPI(c, cmd, *o, "Fetching tasks...",
				func(ctx context.Context, cl *api.Client) (api.Page[api.TaskSummary], error) {
					return cl.Tasks(ctx, p)
				}, showTasks)
		},
	}
	addPageFlags(cmd, &p.Pagination)
	addSortFlags(cmd, &p.Sort, &order)
	cmd.Flags().StringVar(&p.WorkflowID, "workflow", "", "only tasks of this workflow")
	cmd.Flags().StringVar(&status, "status", "", "filter by status: PENDING, RUNNING, COMPLETED, FAILED")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by kind: STEP, ACTIVITY, TIMER")
	return cmd
}

func showTasks(page api.Page[api.TaskSummary]) {
	rows := make([][]string, len(page.Data))
	for i, t := range page.Data {
		rows[i] = []string{
			t.ID,
			string(t.Kind),
			t.Target,
			statusBadge(string(t.Status)),
			attempts(t),
			t.WorkflowID,
			format.FormatRelative(t.CreatedAt),
		}
	}
	printTable([]string{"ID", "Kind", "Target", "Status", "Attempts", "Workflow", "Created"}, rows)
	printDetail("%s", pageFooter(page.Meta.Page, page.Meta.Pages, page.Meta.Total))
}

func attempts(t api.TaskSummary) string {
	if t.MaxAttempts == nil {
		return fmt.Sprint(t.Attempts)
	}
	return fmt.Sprintf("%d/%d", t.Attempts, *t.MaxAttempts)
}

func (c *CLI) tasksGetCommand(o *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(c, cmd, *o, "Fetching task...",
				func(ctx context.Context, cl *api.Client) (api.TaskDetail, error) {
					return cl.Task(ctx, args[0])
				}, showTask)
		},
	}
}

func showTask(t api.TaskDetail) {
	printTitle(t.Target)
	printKeyValue("ID", t.ID)
	printKeyValue("Kind", string(t.Kind))
	printKeyValue("Status", statusBadge(string(t.Status)))
	printKeyValue("Attempts", attempts(t.TaskSummary))
	printKeyValue("Workflow", t.WorkflowID)
	printKeyValue("Run at", format.FormatDate(t.RunAt))
	printKeyValue("Created", format.FormatDate(t.CreatedAt))
	printKeyValue("Updated", format.FormatDate(t.UpdatedAt))
	if t.TimeoutSeconds != nil {
		printKeyValue("Timeout", format.FormatDuration(float64(*t.TimeoutSeconds)))
	}
	if msg := deref(t.LastError, ""); msg != "" {
		printNewline()
		printError("%s", msg)
	}
	if t.Result != nil {
		printNewline()
		printTitle("Result")
		_ = writeJSON(out, t.Result)
	}
}

func (c *CLI) tasksPendingCommand(o *outputFlags) *cobra.Command {
	var p api.Pagination
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List tasks waiting to run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(c, cmd, *o, "Fetching pending tasks...",
				func(ctx context.Context, cl *api.Client) (api.Page[api.TaskSummary], error) {
					return cl.PendingTasks(ctx, p)
				}, showTasks)
		},
	}
	addPageFlags(cmd, &p)
	return cmd
}
