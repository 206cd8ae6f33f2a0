package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/pipeline"
	"github.com/matzehuels/flowtower/pkg/render"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		opts       pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [diagram.json|diagram.yaml]",
		Short: "Draw a workflow diagram as SVG, DOT, PNG or JSON",
		Long: `Draw a workflow definition diagram.

The diagram is read from a JSON or YAML file, or fetched from the API with
--workflow. Formats:

  svg     built-in renderer, matches the dashboard (default)
  gv-svg  SVG drawn by Graphviz
  png     PNG drawn by Graphviz
  dot     Graphviz source
  json    layout with positions and styles

Layouts and renders are cached; use --refresh to recompute.`,
		Example: `  flowtower render order.yaml
  flowtower render --workflow wf-123 -f svg,png --legend
  flowtower render order.json -f dot -o -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.File = args[0]
			}
			if opts.File != "" && opts.WorkflowID != "" {
				return errors.New(errors.ErrCodeInvalidInput, "pass a file or --workflow, not both")
			}
			if opts.File == "" && opts.WorkflowID == "" {
				return errors.New(errors.ErrCodeInvalidInput, "pass a diagram file or --workflow <id>")
			}
			opts.Formats = parseFormats(formatsStr)
			c.applyLayoutDefaults(cmd, &opts)
			return c.runRender(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVar(&opts.WorkflowID, "workflow", "", "fetch the diagram of this workflow from the API")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), gv-svg, png, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.Legend, "legend", false, "draw the node-type legend (svg)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title above the diagram (svg)")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "draw the node/edge summary line (svg)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include node descriptions (dot, gv-svg, png)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached diagrams, layouts and renders")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// addLayoutFlags registers the layout tuning flags shared by layout and
// render.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", "", "layout direction: LR (default), TB")
	cmd.Flags().Float64Var(&opts.RankSep, "rank-sep", 0, "distance between ranks (default 150)")
	cmd.Flags().Float64Var(&opts.NodeSep, "node-sep", 0, "distance between nodes in a rank (default 100)")
	cmd.Flags().IntVar(&opts.Sweeps, "sweeps", 0, "crossing-reduction sweeps (default 24)")
}

// applyLayoutDefaults fills layout flags the user did not set from the
// config file.
func (c *CLI) applyLayoutDefaults(cmd *cobra.Command, opts *pipeline.Options) {
	d := c.layoutDefaults()
	if !cmd.Flags().Changed("direction") && d.Direction != "" {
		opts.Direction = d.Direction
	}
	if !cmd.Flags().Changed("rank-sep") && d.RankSep > 0 {
		opts.RankSep = d.RankSep
	}
	if !cmd.Flags().Changed("node-sep") && d.NodeSep > 0 {
		opts.NodeSep = d.NodeSep
	}
}

// parseFormats splits the --format flag. An empty value selects the default
// format.
func parseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{pipeline.DefaultFormat}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// fileExt returns the file suffix for a format. Graphviz SVG gets its own
// so that it can sit next to the built-in SVG.
func fileExt(format string) string {
	f, err := render.ParseFormat(format)
	if err != nil {
		return format
	}
	if f == render.FormatGraphviz {
		return "gv.svg"
	}
	return f.Ext()
}

// basePath derives the base output path. Without -o it is the input file
// minus its extension, or the workflow id. A known format extension on -o
// is stripped.
func basePath(output string, opts pipeline.Options) string {
	if output == "" {
		if opts.File != "" {
			return strings.TrimSuffix(opts.File, filepath.Ext(opts.File))
		}
		return opts.WorkflowID
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if _, err := render.ParseFormat(ext); err == nil {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}

// outputPaths maps each format to the file it is written to.
func outputPaths(output string, opts pipeline.Options) map[string]string {
	paths := make(map[string]string, len(opts.Formats))
	if len(opts.Formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[opts.Formats[0]] = output
		return paths
	}
	base := basePath(output, opts)
	for _, f := range opts.Formats {
		paths[f] = base + "." + fileExt(f)
	}
	return paths
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string) error {
	if output == "-" && len(opts.Formats) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "-o - needs exactly one format")
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)
	res, err := spin(ctx, "Rendering "+opts.String()+"...", func(ctx context.Context) (*pipeline.Result, error) {
		return runner.Execute(ctx, opts)
	})
	if err != nil {
		return err
	}
	prog.done("rendered", "formats", opts.Formats, "trace", res.TraceID)

	if output == "-" {
		_, err := os.Stdout.Write(res.Artifacts[opts.Formats[0]])
		return err
	}

	paths := outputPaths(output, opts)
	for _, f := range opts.Formats {
		if err := writeArtifact(paths[f], res.Artifacts[f]); err != nil {
			return err
		}
	}

	name := res.Diagram.Name()
	if name == "" {
		name = opts.String()
	}
	printSuccess("Rendered %s", name)
	for _, f := range opts.Formats {
		printFile(paths[f])
	}
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.BackEdges, res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit)
	for _, e := range res.Layout.BackEdges {
		printWarning("cycle closes at %s %s %s (drawn dashed)", e.From, iconArrow, e.To)
	}
	return nil
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
