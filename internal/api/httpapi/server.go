package httpapi

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/alhaneef/text-weaver-pro/internal/api/app"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

type Deps struct {
	Projects      *app.ProjectAPI
	Orchestration *app.OrchestrationAPI
	Batch         *app.BatchAPI
	Providers     *app.ProviderAPI
	Export        *app.ExportAPI
	Settings      *app.SettingsAPI
	Log           *slog.Logger
}

type Server struct {
	app *fiber.App
	d   Deps
}

func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	s := &Server{d: d}
	s.app = fiber.New(fiber.Config{
		ErrorHandler: s.errorHandler,
		BodyLimit:    32 * 1024 * 1024,
	})
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(s.requestLogger)
	s.app.Use(cors.New())
	s.routes()
	return s
}

func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

func (s *Server) Shutdown() error { return s.app.ShutdownWithTimeout(10 * time.Second) }

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	api := s.app.Group("/api")

	api.Get("/projects", s.listProjects)
	api.Post("/projects", s.createProject)
	api.Get("/projects/:id", s.getProject)
	api.Delete("/projects/:id", s.deleteProject)
	api.Get("/projects/:id/files", s.listProjectFiles)
	api.Post("/projects/:id/languages", s.addTargetLang)
	api.Get("/projects/:id/chunks", s.listChunks)
	api.Get("/projects/:id/progress", s.getProgress)
	api.Get("/projects/:id/events", s.subscribeEvents)
	api.Get("/projects/:id/export", s.exportProject)

	api.Post("/projects/:id/start", s.startProject)
	api.Post("/projects/:id/pause", s.pauseProject)
	api.Post("/projects/:id/cancel", s.cancelProject)
	api.Post("/projects/:id/retry", s.retryProject)

	api.Post("/batch", s.applyBatch)

	api.Get("/providers/health", s.providerHealth)
	api.Get("/providers", s.listProviders)
	api.Post("/providers", s.createProvider)
	api.Put("/providers/:id", s.updateProvider)
	api.Delete("/providers/:id", s.deleteProvider)
	api.Get("/providers/:id/models", s.listProviderModels)
	api.Post("/providers/:id/test", s.testProvider)
	api.Post("/providers/:id/activate", s.activateProvider)
	api.Post("/providers/preview-models", s.previewProviderModels)

	api.Get("/settings/:key", s.getSetting)
	api.Put("/settings/:key", s.setSetting)

	api.Get("/templates/:type/:role", s.getTemplate)
	api.Put("/templates/:type/:role", s.setTemplate)
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.d.Log.Info("http request",
		"request_id", c.Locals(requestid.ConfigDefault.ContextKey),
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return err
}

type errorPayload struct {
	Error errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{Error: errorEnvelope{Code: code, Message: message}})
}

// apiError maps domain errors onto status codes; transition conflicts keep
// their message since the client is expected to show it.
func apiError(c *fiber.Ctx, err error) error {
	var tErr *ports.InvalidTransitionError
	var cErr *ports.ChunkingError
	switch {
	case errors.Is(err, ports.ErrProjectNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "project not found")
	case errors.As(err, &tErr):
		return writeError(c, fiber.StatusConflict, "INVALID_TRANSITION", tErr.Error())
	case errors.As(err, &cErr):
		return writeError(c, fiber.StatusUnprocessableEntity, "CHUNKING_FAILED", cErr.Error())
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	if status >= fiber.StatusInternalServerError {
		s.d.Log.Error("request failed", "path", c.Path(), "err", err)
		return writeError(c, status, "INTERNAL_ERROR", "internal server error")
	}
	return writeError(c, status, "BAD_REQUEST", err.Error())
}
