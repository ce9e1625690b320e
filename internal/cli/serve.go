package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridsnap/gridsnap/pkg/board"
)

// serveCommand creates the serve command running a local board server.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local board server",
		Long: `Run a local board server.

The server exposes the board REST API backed by an in-memory store, or by
MongoDB when board.mongo_uri is configured. It is intended for development
and testing: point 'gridsnap align --board' at it, or seed items with POST
/api/items.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8722", "listen address")

	return cmd
}

// runServe starts the HTTP server and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string) error {
	logger := loggerFromContext(ctx)

	var backing board.Board
	if uri := c.Config.Board.MongoURI; uri != "" {
		mb, err := board.NewMongoBoard(ctx, uri, c.Config.Board.MongoDatabase, c.Config.Board.MongoCollection, logger)
		if err != nil {
			return fmt.Errorf("connect to MongoDB: %w", err)
		}
		defer mb.Close(context.Background())
		backing = mb
		logger.Info("serving MongoDB-backed board", "database", c.Config.Board.MongoDatabase)
	} else {
		backing = board.NewMemoryBoard()
		logger.Info("serving in-memory board")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           board.NewHandler(backing, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		printInfo("Board server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		printInfo("Board server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
