package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/errors"
)

// runAPI fetches one response behind a spinner and prints it as a table or
// JSON.
func runAPI[T any](c *CLI, cmd *cobra.Command, o outputFlags, message string,
	fetch func(context.Context, *api.Client) (T, error), show func(T)) error {
	ctx := cmd.Context()
	cc := c.newCache(ctx)
	defer cc.Close()

	client, err := c.newClient(cc)
	if err != nil {
		return err
	}

	v, err := spin(ctx, message, func(ctx context.Context) (T, error) {
		return fetch(ctx, client)
	})
	if err != nil {
		return err
	}
	if o.raw() {
		return o.emit(ctx, out, v)
	}
	show(v)
	return nil
}

// =============================================================================
// Shared Flags
// =============================================================================

func addPageFlags(cmd *cobra.Command, p *api.Pagination) {
	cmd.Flags().IntVar(&p.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&p.PerPage, "per-page", 20, "results per page")
}

func addSortFlags(cmd *cobra.Command, s *api.Sort, order *string) {
	cmd.Flags().StringVar(&s.SortBy, "sort-by", "", "field to sort by")
	cmd.Flags().StringVar(order, "order", "", "sort order: asc, desc")
}

func parseSortOrder(s string) (api.SortOrder, error) {
	switch api.SortOrder(s) {
	case "":
		return "", nil
	case api.SortAsc, api.SortDesc:
		return api.SortOrder(s), nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid sort order %q (want asc or desc)", s)
	}
}

// parseSince turns a lookback such as "90m" into an absolute time. An empty
// value means no lower bound.
func parseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return time.Time{}, errors.New(errors.ErrCodeInvalidInput, "invalid --since %q (want a duration such as 30m or 24h)", s)
	}
	return now.Add(-d), nil
}

// checkEnum validates an optional enum flag value.
func checkEnum(flag, value string, valid bool) error {
	if value == "" || valid {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid --%s %q", flag, value)
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
