package handlers

import (
	"net/http"
	"time"

	"gudangmitra/internal/common"
	"gudangmitra/internal/repositories"

	"github.com/labstack/echo/v4"
)

// HealthHandlers exposes liveness and readiness probes
type HealthHandlers struct {
	db repositories.Database
}

func NewHealthHandlers(db repositories.Database) *HealthHandlers {
	return &HealthHandlers{db: db}
}

// Live handles GET /health
func (h *HealthHandlers) Live(c echo.Context) error {
	return common.RespondOK(c, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready and checks the database connection
func (h *HealthHandlers) Ready(c echo.Context) error {
	ctx := c.Request().Context()

	start := time.Now()
	var one int
	if err := h.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return common.RespondFail(c, http.StatusServiceUnavailable, "database unreachable")
	}

	return common.RespondOK(c, map[string]interface{}{
		"status":     "ready",
		"db_latency": time.Since(start).String(),
	})
}
