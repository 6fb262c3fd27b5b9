package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kindredtree/kindred/pkg/pipeline"
)

// viewOpts holds the command-line flags for the view command.
type viewOpts struct {
	focus   string // open directly on one person's subtree
	refresh bool   // bypass the forest cache
	noCache bool   // disable caching entirely
}

// viewCommand creates the view command which opens the interactive tree
// explorer in the terminal.
func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view [url-or-file]",
		Short: "Explore a family forest interactively",
		Long: `Open an interactive, pannable and zoomable family tree in the terminal.

Key bindings:
  arrows/hjkl  pan            +/-    zoom
  f            fit to top     o      fit overview
  enter        focus person   esc    leave focus / search
  /            search         n      next match
  m            toggle minimap
  s            skip reveal    r      replay reveal
  q            quit

Examples:
  kindred view                          # Bundled demo dataset
  kindred view family.csv               # Local file
  kindred view family.csv --focus p42   # Open focused on one person`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), c.datasetURL(args), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.focus, "focus", "", "open focused on one person's subtree")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the forest cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching entirely")

	return cmd
}

// runView loads the forest and hands it to the bubbletea explorer.
func (c *CLI) runView(ctx context.Context, url string, opts *viewOpts) error {
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

	model, err := newTreeModel(result.Forest, url, opts.focus)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	_, err = p.Run()
	return err
}
