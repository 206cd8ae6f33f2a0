package render

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/flowtower/pkg/diagram"
	"github.com/matzehuels/flowtower/pkg/render/dot"
	"github.com/matzehuels/flowtower/pkg/render/svg"
)

// Format is an output format.
type Format string

const (
	FormatSVG      Format = "svg"
	FormatDOT      Format = "dot"
	FormatGraphviz Format = "gv-svg"
	FormatPNG      Format = "png"
	FormatJSON     Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatDOT, FormatGraphviz, FormatPNG, FormatJSON}

// ParseFormat validates a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, joinFormats())
}

func joinFormats() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Ext returns the file extension for the format, without a dot.
func (f Format) Ext() string {
	switch f {
	case FormatGraphviz:
		return "svg"
	default:
		return string(f)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG, FormatGraphviz:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "application/octet-stream"
	}
}

// Options controls rendering across formats. Fields irrelevant to a format
// are ignored.
type Options struct {
	Legend   bool   // svg: draw the node-type legend
	Title    string // svg: title above the diagram
	Summary  bool   // svg: draw the summary line
	Detailed bool   // dot: include descriptions in labels
}

// Render produces l in the given format.
func Render(ctx context.Context, l *diagram.Laid, f Format, opts Options) ([]byte, error) {
	switch f {
	case FormatSVG:
		var svgOpts []svg.Option
		if opts.Legend {
			svgOpts = append(svgOpts, svg.WithLegend())
		}
		if opts.Title != "" {
			svgOpts = append(svgOpts, svg.WithTitle(opts.Title))
		}
		if opts.Summary {
			svgOpts = append(svgOpts, svg.WithSummary())
		}
		return svg.Render(l, svgOpts...), nil
	case FormatDOT:
		return []byte(dot.ToDOT(l, dot.Options{Detailed: opts.Detailed})), nil
	case FormatGraphviz:
		return dot.RenderSVG(ctx, l, dot.Options{Detailed: opts.Detailed})
	case FormatPNG:
		return dot.RenderPNG(ctx, l, dot.Options{Detailed: opts.Detailed})
	case FormatJSON:
		data, err := json.MarshalIndent(l, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode layout: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}
