package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/format"
)

// eventsCommand creates the "events" command group.
func (c *CLI) eventsCommand() *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Browse workflow history events",
	}
	addOutputFlags(cmd, &o)

	cmd.AddCommand(c.eventsListCommand(&o))
	cmd.AddCommand(c.eventsGetCommand(&o))
	return cmd
}

func (c *CLI) eventsListCommand(o *outputFlags) *cobra.Command {
	var (
		p     api.EventListParams
		typ   string
		since string
		order string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events across workflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Type = api.EventType(strings.ToUpper(typ))
			if err := checkEnum("type", typ, p.Type.Valid()); err != nil {
				return err
			}
			var err error
			if p.Since, err = parseSince(since, time.Now()); err != nil {
				return err
			}
			if p.SortOrder, err = parseSortOrder(order); err != nil {
				return err
			}
			return runAPI(c, cmd, *o, "Fetching events...",
				func(ctx context.Context, cl *api.Client) (api.Page[api.EventDetail], error) {
					return cl.Events(ctx, p)
				}, showEvents)
		},
	}
	addPageFlags(cmd, &p.Pagination)
	addSortFlags(cmd, &p.Sort, &order)
	cmd.Flags().StringVar(&p.WorkflowID, "workflow", "", "only events of this workflow")
	cmd.Flags().StringVar(&typ, "type", "", "filter by event type (e.g. STEP_FAILED)")
	cmd.Flags().StringVar(&since, "since", "", "only events newer than this duration (e.g. 1h)")
	return cmd
}

func showEvents(page api.Page[api.EventDetail]) {
	rows := make([][]string, len(page.Data))
	for i, e := range page.Data {
		rows[i] = []string{
			strconv.FormatInt(e.ID, 10),
			string(e.Type),
			e.WorkflowID,
			format.FormatDate(e.CreatedAt),
			truncateText(payloadSummary(e.Payload), 50),
		}
	}
	printTable([]string{"ID", "Type", "Workflow", "Time", "Payload"}, rows)
	printDetail("%s", pageFooter(page.Meta.Page, page.Meta.Pages, page.Meta.Total))
}

// payloadSummary renders a payload as compact "key=value" pairs in key
// order.
func payloadSummary(payload map[string]any) string {
	if len(payload) == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range sortedKeys(payload) {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(compactValue(payload[k]))
	}
	return b.String()
}

func (c *CLI) eventsGetCommand(o *outputFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <event-id>",
		Short: "Show an event and its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "event id must be a number, got %q", args[0])
			}
			return runAPI(c, cmd, *o, "Fetching event...",
				func(ctx context.Context, cl *api.Client) (api.EventDetail, error) {
					return cl.Event(ctx, id)
				}, showEvent)
		},
	}
}

func showEvent(e api.EventDetail) {
	printTitle(string(e.Type))
	printKeyValue("ID", strconv.FormatInt(e.ID, 10))
	printKeyValue("Workflow", e.WorkflowID)
	printKeyValue("Time", format.FormatDate(e.CreatedAt))
	if len(e.Payload) > 0 {
		printNewline()
		_ = writeJSON(out, e.Payload)
	}
}
