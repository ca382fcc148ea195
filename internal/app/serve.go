package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"countryfx/internal/api"
	"countryfx/internal/config"
	"countryfx/internal/country"
	"countryfx/internal/country/handler"
	httpserver "countryfx/internal/platform/http"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and scheduler
func Run(appCfg *config.AppConfig) error {
	SetupLogging(appCfg.Logging.Level)
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, migrations)
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	storage, err := OpenStorage(startupCtx, appCfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return err
	}
	defer storage.Close()
	logrus.Infof("✅ %s connection successful", appCfg.DbServer.Driver)

	if err = PrepareStorage(startupCtx, appCfg.DbServer, storage); err != nil {
		logrus.WithError(err).Error("Failed to prepare storage")
		return err
	}

	pipeline, err := NewPipeline(appCfg, storage.Store, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	// pending summaries finish before the storage closes
	defer pipeline.Close()

	if appCfg.Refresh.SchedulerEnabled {
		scheduler := country.NewScheduler(pipeline.Orchestrator, appCfg.Refresh.Interval(), appCfg.Refresh.BatchSize)
		// Ensure scheduler stops before DB pool closes
		defer func() {
			if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
				logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
			}
		}()
		if startErr := scheduler.Start(ctx); startErr != nil {
			logrus.WithError(startErr).Error("Failed to start scheduler")
			return startErr
		}
		logrus.Info("✅ Scheduler activation successful")
	}

	countryHandler := handler.NewCountryHandler(pipeline.Orchestrator, storage.Store, appCfg.Refresh.BatchSize)
	router := api.NewRouter(countryHandler)

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}
