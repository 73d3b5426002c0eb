package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 5 * time.Second

// Serve runs the proxy HTTP server until ctx is cancelled, then shuts it
// down gracefully. In-flight runs keep blocking until their child process
// exits, there is no timeout below the shutdown grace period.
func Serve(ctx context.Context, port int, handler http.Handler) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.InfoContext(ctx, "action proxy listening", "addr", srv.Addr)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
