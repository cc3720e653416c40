package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/socialdb/internal/api"
	"github.com/mesh-intelligence/socialdb/internal/config"
	"github.com/mesh-intelligence/socialdb/pkg/socialdb"
)

const (
	readHeaderTimeout = 3 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func newServeCmd(opts *RootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store over HTTP",
		Long:  "Open the configured backend and serve the HTTP API until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			if addr != "" {
				s.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, s, cmd)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config http.addr, "+config.DefaultHTTPAddr+")")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down and
// closes the store.
func serve(ctx context.Context, s config.Settings, cmd *cobra.Command) error {
	logger, err := s.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return userError(err)
	}

	db, err := socialdb.Open(s.Store(), socialdb.WithLogger(logger))
	if err != nil {
		return userError(err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing store", "error", err)
		}
	}()

	srv, err := api.New(db, api.WithLogger(logger))
	if err != nil {
		return sysError(err)
	}

	ln, err := net.Listen("tcp", s.HTTP.Addr)
	if err != nil {
		return sysError(fmt.Errorf("listen on %s: %w", s.HTTP.Addr, err))
	}
	server := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()
	logger.Info("server started", "addr", ln.Addr().String(), "backend", s.Backend)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return sysError(fmt.Errorf("serve: %w", err))
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return sysError(fmt.Errorf("shutdown: %w", err))
	}
	return nil
}
