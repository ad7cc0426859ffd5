package app

import (
	"context"
	"errors"
)

// Close stops the HTTP server and the modules, then releases the shared infrastructure.
func (app *App) Close(ctx context.Context) error {
	logger := app.Observability.Logger
	logger.Info("Shutting down application")

	var errs []error
	if app.HTTPServer != nil {
		if err := app.HTTPServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if app.LeaderboardModule != nil {
		if err := app.LeaderboardModule.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.RoundModule != nil {
		if err := app.RoundModule.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := app.Observability.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	app.closeInfra()

	logger.Info("Application shut down")
	return errors.Join(errs...)
}

func (app *App) closeInfra() {
	logger := app.Observability.Logger
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			logger.Error("Error closing message router", "error", err)
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			logger.Error("Error closing event bus", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			logger.Error("Error closing redis client", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			logger.Error("Error closing database", "error", err)
		}
	}
}
