package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-movie-catalog/internal/http/middleware"
)

// Health godoc
// @ID          health
// @Summary     Readiness of the database and sentiment model
// @Description 200 only when the database answers and the model is loaded. When the database is down the model state is reported as unknown.
// @Tags        Meta
// @Produce     json
// @Success     200  {object}  handlers.HealthResponse
// @Failure     503  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	if !h.dbConnected(c) {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "error", Model: "unknown", DB: "disconnected"})
		return
	}
	if h.model == nil || !h.model.Ready() {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "error", Model: "not ready", DB: "connected"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Model: "ready", DB: "connected"})
}

func (h *Handlers) dbConnected(c *gin.Context) bool {
	if h.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.pingTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("health check failed")
		return false
	}
	return true
}
