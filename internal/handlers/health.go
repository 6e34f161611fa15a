package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	body := map[string]string{
		"status":   "healthy",
		"service":  "foodgram-api",
		"database": "up",
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			logging.Warn().Err(err).Msg("health check: database unreachable")
			body["status"] = "degraded"
			body["database"] = "down"
			return c.JSON(http.StatusServiceUnavailable, body)
		}
	}
	return c.JSON(http.StatusOK, body)
}
