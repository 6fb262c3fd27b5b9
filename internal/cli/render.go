package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kindredtree/kindred/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple formats)
	formats  []string // output formats: "dot", "svg", "png"
	detailed bool     // include life dates in card labels
	focus    string   // render only one person's subtree
	refresh  bool     // bypass cache for fresh data
	noCache  bool     // disable caching entirely
}

// renderCommand creates the render command for producing tree images.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [url-or-file]",
		Short: "Render a family forest to DOT, SVG, or PNG",
		Long: `Render a genealogy dataset as a family tree image.

Examples:
  kindred render                                  # Demo dataset to SVG
  kindred render family.csv -f png -o tree.png    # Local file to PNG
  kindred render family.csv -f dot,svg,png        # All formats
  kindred render family.csv --focus p42           # One person's subtree`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), c.datasetURL(args), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include birth and death dates in card labels")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "render only one person's subtree")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the forest cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching entirely")

	return cmd
}

// runRender executes the full pipeline and writes artifacts to disk.
func (c *CLI) runRender(ctx context.Context, url string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{
		URL:      url,
		Local:    isLocalPath(url),
		Refresh:  opts.refresh,
		FocusID:  opts.focus,
		Formats:  opts.formats,
		Detailed: opts.detailed,
		Logger:   logger,
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering family tree...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.StopWithSuccess("Rendered family tree")

	if result.Notice != "" {
		printWarning("%s", result.Notice)
	}
	printStats(result.Stats.PersonCount, result.Stats.RootCount, result.CacheInfo.RenderHit)

	base := renderBasePath(opts.output, url)
	for _, format := range opts.formats {
		data, ok := result.Artifacts[format]
		if !ok {
			return fmt.Errorf("pipeline produced no %s artifact", format)
		}

		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = base + "." + format
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	prog.done(fmt.Sprintf("Wrote %d artifact(s)", len(opts.formats)))

	printNewline()
	printNextStep("Explore the tree interactively", fmt.Sprintf("kindred view %s", url))
	return nil
}

// renderBasePath derives the base output path from the output flag and the
// dataset location. A known format extension on the output is stripped so
// multiple formats produce sibling files.
func renderBasePath(output, url string) string {
	if output == "" {
		name := filepath.Base(strings.TrimSuffix(url, "/"))
		name = strings.TrimSuffix(name, filepath.Ext(name))
		if name == "" || name == "." {
			name = appName
		}
		return name
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
