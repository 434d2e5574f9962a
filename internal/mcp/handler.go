package mcp

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/querysculptor/querysculptor/internal/config"
)

// rateLimiter tracks request counts per client key using a sliding window
type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int // requests per minute
}

// newRateLimiter creates a new rate limiter
func newRateLimiter(limitPerMin int) *rateLimiter {
	rl := &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limitPerMin,
	}
	go rl.cleanup()
	return rl
}

// allow checks if a request from the given client key should be allowed
func (rl *rateLimiter) allow(clientKey string) bool {
	if rl.limit <= 0 {
		return true // Rate limiting disabled
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-time.Minute)

	existing := rl.requests[clientKey]
	var valid []time.Time
	for _, t := range existing {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[clientKey] = valid
		return false
	}

	rl.requests[clientKey] = append(valid, now)
	return true
}

// cleanup periodically removes old entries to prevent memory growth
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		windowStart := now.Add(-time.Minute)

		for key, times := range rl.requests {
			var valid []time.Time
			for _, t := range times {
				if t.After(windowStart) {
					valid = append(valid, t)
				}
			}
			if len(valid) == 0 {
				delete(rl.requests, key)
			} else {
				rl.requests[key] = valid
			}
		}
		rl.mu.Unlock()
	}
}

// Handler handles HTTP requests for the MCP server
type Handler struct {
	server      *Server
	config      *config.MCPConfig
	rateLimiter *rateLimiter
}

// NewHandler creates a new MCP HTTP handler
func NewHandler(cfg *config.MCPConfig) *Handler {
	return &Handler{
		server:      NewServer(),
		config:      cfg,
		rateLimiter: newRateLimiter(cfg.RateLimitPerMin),
	}
}

// Server returns the underlying MCP server for tool/resource registration
func (h *Handler) Server() *Server {
	return h.server
}

// RegisterRoutes registers the MCP routes
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.handleHealth)
	app.Post("/", h.handlePost)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "healthy",
		"protocolVersion": MCPVersion,
		"serverVersion":   ServerVersion,
	})
}

// handlePost handles JSON-RPC POST requests
func (h *Handler) handlePost(c *fiber.Ctx) error {
	contentType := c.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
			"error": "Content-Type must be application/json",
		})
	}

	if h.config.MaxMessageSize > 0 && len(c.Body()) > h.config.MaxMessageSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "Request body too large",
		})
	}

	if !h.rateLimiter.allow(c.IP()) {
		log.Warn().
			Str("client", c.IP()).
			Int("limit", h.config.RateLimitPerMin).
			Msg("MCP: Rate limit exceeded")
		return c.Status(fiber.StatusTooManyRequests).JSON(NewRateLimited(nil))
	}

	resp := h.server.HandleRequest(c.UserContext(), c.Body())
	if resp == nil {
		// Notification: no response body.
		return c.SendStatus(fiber.StatusAccepted)
	}
	return c.JSON(resp)
}
