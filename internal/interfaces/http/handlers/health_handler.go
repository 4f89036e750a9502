package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tokengate/tokengate/internal/domain/repository"
)

const dependencyCheckTimeout = 2 * time.Second

// HealthHandler serves liveness and readiness probes. Liveness never touches
// dependencies; readiness pings the session store.
type HealthHandler struct {
	store   repository.SessionStore
	version string
}

// NewHealthHandler wires the probe endpoints.
func NewHealthHandler(store repository.SessionStore, version string) *HealthHandler {
	return &HealthHandler{store: store, version: version}
}

// Health answers liveness.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().UTC(),
	})
}

// Ready answers readiness: 503 until the session store responds.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dependencyCheckTimeout)
	defer cancel()

	checks := gin.H{"session_store": "ok"}
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		checks["session_store"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":    statusWord(status),
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ready"
	}
	return "not_ready"
}
