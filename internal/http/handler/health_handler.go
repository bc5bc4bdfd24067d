package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler reports service liveness and store reachability.
type HealthHandler struct {
	pool *pgxpool.Pool
}

// NewHealthHandler creates a health handler. The pool may be nil in tests.
func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Register wires health routes onto the provided router.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
}

// Health is a simple endpoint so we know the service is running.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := "ok"
	if h.pool != nil {
		if err := h.pool.Ping(c.UserContext()); err != nil {
			status = "degraded"
		}
	}

	return c.JSON(fiber.Map{
		"service": "SnipURL",
		"status":  status,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
