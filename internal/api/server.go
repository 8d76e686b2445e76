// =============================================================================
// Expense Intake - HTTP API
// =============================================================================
//
// This module exposes the pipeline and the report service over HTTP.
//
// ROUTES:
//   POST /auth/login            credential format check, returns a token
//   GET  /meta/categories       allowed categories
//   GET  /meta/departments      allowed departments
//   POST /expenses/validate     multipart upload (field "file")
//   GET  /reports               report summaries
//   POST /reports/submit        {"expenses": [...]}
//   GET  /reports/analytics     totals by category and department
//   GET  /reports/ping          liveness of the reports router
//   GET  /reports/:id           one report
//   GET  /health                service health
//
// ERRORS:
//   Every error body has the shape {"detail": ...}. Detail is a string,
//   except for rejected submissions where it is the structured rejection.
//
// =============================================================================

package api

import (
	"context"
	"errors"
	"time"

	"github.com/ginjaninja78/expense-intake/internal/config"
	"github.com/ginjaninja78/expense-intake/internal/logger"
	"github.com/ginjaninja78/expense-intake/internal/pipeline"
	"github.com/ginjaninja78/expense-intake/internal/refdata"
	"github.com/ginjaninja78/expense-intake/internal/reports"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Server wires the HTTP routes to the domain services.
type Server struct {
	app          *fiber.App
	orchestrator *pipeline.Orchestrator
	reports      *reports.Service
	ref          *refdata.Provider
	log          zerolog.Logger
	tokens       func() string
}

// Deps are the services the server exposes.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Reports      *reports.Service
	RefData      *refdata.Provider

	// Tokens generates login tokens. Defaults to random UUIDs.
	Tokens func() string
}

// New builds the server and registers its routes.
func New(cfg config.ServerConfig, deps Deps, log zerolog.Logger) *Server {
	s := &Server{
		orchestrator: deps.Orchestrator,
		reports:      deps.Reports,
		ref:          deps.RefData,
		log:          log,
		tokens:       deps.Tokens,
	}
	if s.tokens == nil {
		s.tokens = newToken
	}

	limit := cfg.MaxUploadBytes
	if limit <= 0 {
		limit = config.DefaultMaxUploadBytes
	}
	origins := cfg.CORSOrigins
	if origins == "" {
		origins = config.DefaultCORSOrigins
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "expense-intake",
		BodyLimit:             limit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{AllowOrigins: origins}))
	s.app.Use(s.requestLogger)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.handleHealth)

	auth := s.app.Group("/auth")
	auth.Post("/login", s.handleLogin)

	meta := s.app.Group("/meta")
	meta.Get("/categories", s.handleCategories)
	meta.Get("/departments", s.handleDepartments)

	expenses := s.app.Group("/expenses")
	expenses.Post("/validate", s.handleValidate)

	r := s.app.Group("/reports")
	r.Get("", s.handleListReports)
	r.Get("/ping", s.handlePing)
	r.Get("/analytics", s.handleAnalytics)
	r.Post("/submit", s.handleSubmit)
	r.Get("/:id", s.handleGetReport)
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("http server listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

// requestLogger stores the logger in the request context and logs each
// request once it completes.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	c.SetUserContext(logger.WithContext(c.UserContext(), s.log))

	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	event := s.log.Info()
	if status >= fiber.StatusInternalServerError {
		event = s.log.Error().Err(err)
	}
	event.
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	return err
}

// handleError renders errors as {"detail": message}.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	return c.Status(code).JSON(fiber.Map{"detail": message})
}
