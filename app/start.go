package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Run starts every component and blocks until ctx is cancelled, then shuts down.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger
	app.Observability.StartMetricsServer()

	var wg sync.WaitGroup
	wg.Add(2)
	go app.RoundModule.Run(ctx, &wg)
	go app.LeaderboardModule.Run(ctx, &wg)

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(ctx)
	}()

	select {
	case <-app.Router.Running():
		logger.InfoContext(ctx, "Message router running")
	case err := <-routerErr:
		return fmt.Errorf("message router stopped before starting: %w", err)
	}

	httpErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "Starting HTTP server", "address", app.HTTPServer.Addr)
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-httpErr:
		runErr = fmt.Errorf("HTTP server failed: %w", err)
	case err := <-routerErr:
		if err != nil {
			runErr = fmt.Errorf("message router failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.Close(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	wg.Wait()
	return runErr
}
