package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// serve runs server on ln until ctx is done, then shuts it down and returns
// only once in-flight requests have finished or grace has run out.
// onShutdown, if set, runs before the listeners close.
func serve(ctx context.Context, server *http.Server, ln net.Listener, grace time.Duration, onShutdown func()) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if onShutdown != nil {
		onShutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
