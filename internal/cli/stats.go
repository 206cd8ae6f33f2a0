package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/format"
	"github.com/matzehuels/flowtower/pkg/poll"
	"github.com/matzehuels/flowtower/pkg/style"
)

// statsCommand creates the "stats" command.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		o        outputFlags
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show system statistics",
		Long: `Show workflow and task counts by status.

With --watch, an interactive dashboard refreshes every 5 seconds
(press r to refresh now, q to quit).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !watch {
				return runAPI(c, cmd, o, "Fetching statistics...",
					func(ctx context.Context, cl *api.Client) (api.SystemStats, error) {
						return cl.SystemStats(ctx)
					}, func(s api.SystemStats) { fmt.Fprintln(out, statsPanels(s)) })
			}
			if o.raw() {
				return errors.New(errors.ErrCodeInvalidInput, "--watch cannot be combined with --json or --jq")
			}
			return c.watchStats(cmd.Context(), interval)
		},
	}
	addOutputFlags(cmd, &o)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "refresh continuously")
	cmd.Flags().DurationVar(&interval, "interval", poll.DefaultInterval, "refresh interval for --watch")
	return cmd
}

func (c *CLI) watchStats(ctx context.Context, interval time.Duration) error {
	cc := c.newCache(ctx)
	defer cc.Close()
	client, err := c.newClient(cc)
	if err != nil {
		return err
	}

	poller := poll.NewPoller(interval, client.SystemStats)
	_, err = tea.NewProgram(newStatsModel(ctx, poller), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// =============================================================================
// statsModel - Live dashboard
// =============================================================================

// statsMsg and statsTickMsg carry the refresh generation they belong to; a
// manual refresh bumps it so late results and ticks from before are dropped.
type statsMsg struct {
	res poll.Result[api.SystemStats]
	gen uint64
}

type statsTickMsg struct{ gen uint64 }

// statsModel is the bubbletea model behind `stats --watch`.
type statsModel struct {
	ctx    context.Context
	poller *poll.Poller[api.SystemStats]
	now    func() time.Time

	last    poll.Result[api.SystemStats]
	have    bool
	loading bool
	gen     uint64
}

func newStatsModel(ctx context.Context, p *poll.Poller[api.SystemStats]) statsModel {
	return statsModel{ctx: ctx, poller: p, now: time.Now, loading: true}
}

func (m statsModel) fetch() tea.Cmd {
	gen := m.gen
	return func() tea.Msg {
		return statsMsg{res: m.poller.Poll(m.ctx), gen: gen}
	}
}

func (m statsModel) Init() tea.Cmd {
	return m.fetch()
}

func (m statsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			// Supersedes any fetch still in flight.
			m.gen++
			m.loading = true
			return m, m.fetch()
		}
	case statsMsg:
		if msg.gen != m.gen || stderrors.Is(msg.res.Err, poll.ErrSuperseded) {
			return m, nil
		}
		m.loading = false
		m.last = msg.res
		if msg.res.Err == nil {
			m.have = true
		}
		gen := m.gen
		return m, tea.Tick(m.poller.Interval(), func(time.Time) tea.Msg { return statsTickMsg{gen: gen} })
	case statsTickMsg:
		if msg.gen == m.gen && !m.loading {
			m.loading = true
			return m, m.fetch()
		}
	}
	return m, nil
}

func (m statsModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Flowtower · System Overview"))
	b.WriteString("\n\n")

	switch {
	case m.have:
		b.WriteString(statsPanels(m.last.Value))
	case m.loading:
		b.WriteString(StyleDim.Render("Loading statistics..."))
	}
	b.WriteString("\n\n")

	if m.last.Err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + errors.UserMessage(m.last.Err))
		b.WriteString("\n")
	}

	footer := []string{fmt.Sprintf("refresh %s", m.poller.Interval())}
	if !m.last.FetchedAt.IsZero() {
		footer = append([]string{"updated " + format.FormatTime(m.last.FetchedAt)}, footer...)
	}
	footer = append(footer, "r refresh", "q quit")
	b.WriteString(StyleDim.Render(strings.Join(footer, " · ")))
	return b.String()
}

// =============================================================================
// Panels
// =============================================================================

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorDim).
	Padding(0, 2).
	MarginRight(1)

type statLine struct {
	label  string
	status string
	value  int
}

func panel(title string, lines []statLine) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(title))
	for _, l := range lines {
		label := l.label
		if l.status != "" {
			label = lipgloss.NewStyle().Foreground(lipgloss.Color(style.StatusColor(l.status))).Render(l.label)
		}
		b.WriteString("\n")
		b.WriteString(styleKey.Render(label))
		b.WriteString(StyleNumber.Render(format.Count(l.value)))
	}
	return panelStyle.Render(b.String())
}

// statsPanels lays out the workflow, task and volume panels side by side.
func statsPanels(s api.SystemStats) string {
	workflows := panel("Workflows", []statLine{
		{"Total", "", s.Workflows.Total},
		{"Running", string(api.WorkflowRunning), s.Workflows.Running},
		{"Completed", string(api.WorkflowCompleted), s.Workflows.Completed},
		{"Failed", string(api.WorkflowFailed), s.Workflows.Failed},
		{"Canceled", string(api.WorkflowCanceled), s.Workflows.Canceled},
	})
	tasks := panel("Tasks", []statLine{
		{"Total", "", s.Tasks.Total},
		{"Pending", string(api.TaskPending), s.Tasks.Pending},
		{"Running", string(api.TaskRunning), s.Tasks.Running},
		{"Completed", string(api.TaskCompleted), s.Tasks.Completed},
		{"Failed", string(api.TaskFailed), s.Tasks.Failed},
	})
	volume := panel("History", []statLine{
		{"Events", "", s.Events},
		{"Logs", "", s.Logs},
	})
	return lipgloss.JoinHorizontal(lipgloss.Top, workflows, tasks, volume)
}
