package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dwqueries/warehouse"
)

const healthPingTimeout = 5 * time.Second

// HealthHandler checks the health status of the service
// @Summary      Health check
// @Description  Ping the warehouse and report its connection state, the active driver and the current session
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string  "Service health status"
// @Router       /health [get]
func (h *Handlers) HealthHandler(c *gin.Context) {
	exec := h.runner.Executor()
	status := gin.H{
		"status":    "healthy",
		"db":        "not_configured",
		"warehouse": string(exec.State()),
		"driver":    exec.Driver(),
		"session":   h.runner.SessionID(),
	}

	if h.db != nil {
		status["db"] = "connected"
	}

	// A running statement holds the connection; its state already proves liveness.
	if exec.State() != warehouse.StateExecuting {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := exec.Ping(ctx); err != nil {
			h.logger.Warn("warehouse ping failed", "error", err)
			status["status"] = "degraded"
			status["warehouse"] = "unreachable"
			status["warehouse_error"] = err.Error()
		}
	}

	c.JSON(http.StatusOK, status)
}
