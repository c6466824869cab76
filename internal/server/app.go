// Package server initializes and runs the application: it opens the store,
// runs migrations, hydrates the one-time legacy export, seeds the bootstrap
// admin and serves the HTTP API until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jbtolen/wastesort/internal/logging"
	"github.com/jbtolen/wastesort/internal/server/auth"
	"github.com/jbtolen/wastesort/internal/server/classify"
	"github.com/jbtolen/wastesort/internal/server/config"
	"github.com/jbtolen/wastesort/internal/server/httpapi"
	"github.com/jbtolen/wastesort/internal/server/store"
	"github.com/jbtolen/wastesort/internal/server/uploads"
)

type App struct {
	config *config.Config
	logger logging.Logger
}

func NewApp(c *config.Config) (*App, error) {
	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	return &App{config: c, logger: logger}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// bootstrap opens the store and brings it to a servable state. Hydration and
// admin seeding both run before the listener starts so requests never see a
// half-initialized database.
func (app *App) bootstrap(ctx context.Context) (*store.Store, *auth.Service, error) {
	st, err := store.Open(ctx, app.config.DatabaseDSN, app.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	if _, err := st.HydrateLegacy(ctx, app.config.LegacyJSONPath, app.config.DefaultQuotaLimit); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("legacy hydration error: %w", err)
	}

	authService := auth.NewService(st, app.config, app.logger)
	if _, err := authService.SeedAdmin(ctx); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("admin seed error: %w", err)
	}

	return st, authService, nil
}

func (app *App) newStorage() uploads.Storage {
	if app.config.S3BaseEndpoint != "" {
		return uploads.NewS3Storage(app.config)
	}
	if app.config.UploadDir != "" {
		return uploads.NewDirStorage(app.config.UploadDir)
	}
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc, st *store.Store, authService *auth.Service) {
	classifier := classify.NewRemoteClassifier(app.config.ClassifierEndpoint)
	recorder := classify.NewRecorder(st, app.logger)

	s := httpapi.New(app.config, st, authService, classifier, recorder, app.newStorage(), app.logger)

	app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddrHTTP)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	st, authService, err := app.bootstrap(ctx)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		return
	}
	defer st.Close()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc, st, authService)
	}()

	wg.Wait()

}
