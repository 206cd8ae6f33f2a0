package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/pipeline"
	"github.com/matzehuels/flowtower/pkg/render"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		opts   pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout [diagram.json|diagram.yaml]",
		Short: "Compute a diagram layout and write it as JSON",
		Long: `Compute the layered layout of a workflow diagram.

The output is a layout.json file (same format as 'render -f json') with every
node's position, size and style and every edge's route. Back edges that close
a cycle are listed under "back_edges".

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.File = args[0]
			opts.Formats = []string{string(render.FormatJSON)}
			c.applyLayoutDefaults(cmd, &opts)
			return c.runLayout(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runLayout loads the diagram, computes the layout and writes it.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	res, err := spin(ctx, "Computing layout...", func(ctx context.Context) (*pipeline.Result, error) {
		return runner.Execute(ctx, opts)
	})
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(opts.File, filepath.Ext(opts.File)) + ".layout.json"
	}
	if err := writeArtifact(outputPath, res.Artifacts[string(render.FormatJSON)]); err != nil {
		return err
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.BackEdges, res.CacheInfo.LayoutHit)
	printDetail("%.0f×%.0f · %d crossings · %s", res.Layout.Width, res.Layout.Height, res.Layout.Crossings, res.Layout.Direction)
	printNewline()
	printNextStep("Render", appName+" render "+opts.File)
	return nil
}
