package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kindredtree/kindred/internal/server"
)

// serveCommand creates the serve command which exposes the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve family forests over HTTP",
		Long: `Start an HTTP server exposing the dataset pipeline.

Endpoints:
  GET  /healthz                          Liveness check
  GET  /api/forest?url=...&focus=...     Stateless forest for deep links
  POST /api/datasets                     Register a dataset, returns a handle
  GET  /api/datasets/{id}                Dataset metadata
  GET  /api/datasets/{id}/forest         Full forest document
  GET  /api/datasets/{id}/focus/{pid}    Focus subtree for one person
  GET  /api/datasets/{id}/reveal         Reveal animation steps
  GET  /api/datasets/{id}/render         Rendered artifact (?format=svg)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, then :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching entirely")

	return cmd
}

// runServe starts the HTTP server and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	logger := loggerFromContext(ctx)

	if addr == "" {
		addr = c.Config.Server.Addr
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(runner, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
