// Package api hosts the HTTP surface: the MCP endpoint, a health route,
// and optionally the Prometheus scrape endpoint.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"

	"github.com/querysculptor/querysculptor/internal/config"
	"github.com/querysculptor/querysculptor/internal/mcp"
	"github.com/querysculptor/querysculptor/internal/observability"
)

// Server represents the HTTP server
type Server struct {
	app        *fiber.App
	config     *config.Config
	mcpHandler *mcp.Handler
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(cfg *config.Config, mcpHandler *mcp.Handler) *Server {
	app := fiber.New(fiber.Config{
		ServerHeader:          "QuerySculptor",
		AppName:               "QuerySculptor",
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		DisableStartupMessage: !cfg.Debug,
	})

	app.Use(recover.New())
	app.Use(requestid.New())

	s := &Server{
		app:        app,
		config:     cfg,
		mcpHandler: mcpHandler,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	mcpGroup := s.app.Group(s.config.MCP.BasePath)
	s.mcpHandler.RegisterRoutes(mcpGroup)

	if s.config.Metrics.Enabled {
		s.app.Get(s.config.Metrics.Path, adaptor.HTTPHandler(observability.Handler()))
	}
}

// Listen starts serving on the configured address.
func (s *Server) Listen() error {
	log.Info().Str("address", s.config.Server.Address).Msg("HTTP server listening")
	return s.app.Listen(s.config.Server.Address)
}

// Shutdown drains connections and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return s.app.Shutdown()
	}
	return s.app.ShutdownWithTimeout(time.Until(deadline))
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
