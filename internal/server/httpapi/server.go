// Package httpapi exposes the HTTP surface of the server: auth, admin
// aggregates and the classification routes, mounted under both /api and
// /api/v1.
package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jbtolen/wastesort/internal/common"
	"github.com/jbtolen/wastesort/internal/logging"
	"github.com/jbtolen/wastesort/internal/server/auth"
	"github.com/jbtolen/wastesort/internal/server/classify"
	sc "github.com/jbtolen/wastesort/internal/server/config"
	"github.com/jbtolen/wastesort/internal/server/store"
	"github.com/jbtolen/wastesort/internal/server/uploads"
)

type Server struct {
	app        *fiber.App
	config     *sc.Config
	store      *store.Store
	auth       *auth.Service
	classifier classify.Classifier
	recorder   *classify.Recorder
	storage    uploads.Storage
	logger     logging.Logger
}

func New(config *sc.Config, st *store.Store, authService *auth.Service,
	classifier classify.Classifier, recorder *classify.Recorder,
	storage uploads.Storage, logger logging.Logger) *Server {

	s := &Server{
		config:     config,
		store:      st,
		auth:       authService,
		classifier: classifier,
		recorder:   recorder,
		storage:    storage,
		logger:     logger,
	}

	s.app = fiber.New(fiber.Config{
		ErrorHandler: s.errorHandler,
	})

	s.registerRoutes(s.app.Group("/api"))
	s.registerRoutes(s.app.Group("/api/v1"))

	s.app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("Not Found")
	})

	return s
}

// App exposes the underlying fiber application for tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) registerRoutes(r fiber.Router) {
	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.Get("/auth/me", s.RequireAuth, s.TrackUsage(""), s.handleMe)
	r.Post("/auth/logout", s.handleLogout)

	r.Get("/admin/stats", s.RequireAuth, s.RequireAdmin, s.handleAdminStats)
	r.Get("/admin/users", s.RequireAuth, s.RequireAdmin, s.handleAdminUsers)

	r.Post("/ml/classify", s.RequireAuth, s.TrackUsage("/ml/classify"), s.handleClassify)
	r.Get("/ml/mine", s.RequireAuth, s.handleMyClassifications)

	r.Get("/classifications", s.RequireAuth, s.TrackUsage(""), s.handleListClassifications)
	r.Get("/classifications/:id", s.RequireAuth, s.TrackUsage(""), s.handleGetClassification)
	r.Put("/classifications/:id", s.RequireAuth, s.TrackUsage(""), s.handleUpdateClassification)
	r.Delete("/classifications/:id", s.RequireAuth, s.TrackUsage(""), s.handleDeleteClassification)
}

// errorHandler renders every error as a JSON body. Sentinel errors from the
// lower layers map onto their HTTP statuses here so handlers can return them
// directly.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	case errors.Is(err, common.ErrorValidation):
		code = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, common.ErrorAlreadyExists):
		code = fiber.StatusBadRequest
		message = "Email already registered"
	case errors.Is(err, common.ErrorInvalidCredentials):
		code = fiber.StatusUnauthorized
		message = "Invalid credentials"
	case errors.Is(err, common.ErrorUnauthenticated):
		code = fiber.StatusUnauthorized
		message = "Not authenticated"
	case errors.Is(err, common.ErrorForbidden):
		code = fiber.StatusForbidden
		message = "Forbidden"
	case errors.Is(err, common.ErrorNotFound):
		code = fiber.StatusNotFound
		message = "Not found"
	}

	if code == fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.app.Listen(s.config.EndpointAddrHTTP)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "shutting down http server")
		return s.app.Shutdown()
	}
}
