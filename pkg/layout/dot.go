package layout

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/kindredtree/kindred/pkg/core/tree"
)

// DOTOptions configures family-graph export.
type DOTOptions struct {
	// Detailed includes life dates in node labels when present.
	Detailed bool
}

// ToDOT converts a forest to Graphviz DOT format. Spouse links are drawn as
// undirected dashed edges constrained to the same rank; parent→child edges
// are directed downward. The resulting DOT string renders via [RenderSVG]
// or [RenderPNG].
func ToDOT(f *tree.Forest, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph kindred {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	ids := f.IDs()
	slices.Sort(ids)
	for _, id := range ids {
		p, _ := f.Person(id)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", p.ID, dotLabel(p, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, id := range ids {
		p, _ := f.Person(id)
		if p.Spouse != nil && p.ID < p.Spouse.ID {
			fmt.Fprintf(&buf, "  %q -> %q [dir=none, style=dashed, constraint=false];\n", p.ID, p.Spouse.ID)
		}
	}
	for _, id := range ids {
		p, _ := f.Person(id)
		for _, c := range p.Children {
			fmt.Fprintf(&buf, "  %q -> %q;\n", p.ID, c.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotLabel(p *tree.Person, detailed bool) string {
	label := p.DisplayName()
	if !detailed {
		return label
	}
	var spans []string
	if p.BirthDate != "" {
		spans = append(spans, "b. "+p.BirthDate)
	}
	if p.DeathDate != "" {
		spans = append(spans, "d. "+p.DeathDate)
	}
	if len(spans) > 0 {
		label += "\n" + strings.Join(spans, "  ")
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
