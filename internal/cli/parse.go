package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kindredtree/kindred/pkg/core/tree"
	kerrors "github.com/kindredtree/kindred/pkg/errors"
	"github.com/kindredtree/kindred/pkg/forest"
	"github.com/kindredtree/kindred/pkg/pipeline"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	refresh bool   // bypass the forest cache
	noCache bool   // disable caching entirely
	output  string // output file path (stdout if empty)
	focus   string // restrict output to one person's subtree
}

// parseCommand creates the parse command. It fetches a genealogy dataset,
// reconstructs the family forest, and writes it as JSON.
func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse [url-or-file]",
		Short: "Reconstruct a family forest from a genealogy dataset",
		Long: `Parse a genealogy record set into a family forest.

The positional argument may be an HTTP(S) URL, a local CSV file, or omitted
to use the bundled demo dataset.

Examples:
  kindred parse                                   # Bundled demo dataset
  kindred parse https://example.com/family.csv    # Remote dataset
  kindred parse records.csv -o forest.json        # Local file to JSON`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), c.datasetURL(args), &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the forest cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching entirely")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "restrict output to one person's subtree")

	return cmd
}

// runParse executes the fetch and build stages and writes the forest.
func (c *CLI) runParse(ctx context.Context, url string, opts *parseOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{
		URL:     url,
		Local:   isLocalPath(url),
		Refresh: opts.refresh,
		Logger:  logger,
	}

	spinner := newSpinnerWithContext(ctx, "Building family forest...")
	spinner.Start()

	result, err := runner.Load(ctx, pipeOpts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	if result.Notice != "" {
		printWarning("%s", result.Notice)
	}
	if result.Stats.DroppedRows > 0 {
		printWarning("Dropped %d invalid rows during normalization", result.Stats.DroppedRows)
	}
	printStats(result.Stats.PersonCount, result.Stats.RootCount, result.CacheInfo.ForestHit)

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if opts.focus != "" {
		if _, ok := result.Forest.Person(opts.focus); !ok {
			return kerrors.New(kerrors.ErrCodePersonNotFound, "person %q not found in dataset", opts.focus)
		}
		view := tree.Focus(result.Forest.Lookup, opts.focus)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(forest.FromFocus(view)); err != nil {
			return err
		}
	} else if err := forest.WriteForest(result.Forest, out); err != nil {
		return err
	}

	if opts.output != "" {
		logger.Infof("Wrote forest to %s", opts.output)
		printNewline()
		printNextStep("View the forest interactively", fmt.Sprintf("kindred view %s", url))
		printNextStep("Render it as an image", fmt.Sprintf("kindred render %s -f svg", url))
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method so os.Stdout can be
// used where an io.WriteCloser is expected.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path, or stdout if empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
