package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"legal-companion/internal/db"
)

const healthPingTimeout = 3 * time.Second

// HealthHandler reporta el estado del proceso y de la base.
type HealthHandler struct {
	logger      *zap.Logger
	pinger      db.Pinger
	corsOrigins []string
	now         func() time.Time
}

func NewHealthHandler(logger *zap.Logger, pinger db.Pinger, corsOrigins []string) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		logger:      logger,
		pinger:      pinger,
		corsOrigins: corsOrigins,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Root maneja GET /.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "AI Legal Companion backend is running!"})
}

// Health maneja GET /health. Un ping fallido responde 200 con status unhealthy.
// cors_origins se publica sin autenticacion igual que en el backend previo;
// los origenes ya son visibles en los headers CORS de cualquier respuesta.
func (h *HealthHandler) Health(c *gin.Context) {
	timestamp := h.now().Format(time.RFC3339Nano)
	if h.pinger == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"timestamp":    timestamp,
			"database":     "not configured",
			"cors_origins": h.corsOrigins,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"status":    "unhealthy",
			"timestamp": timestamp,
			"error":     err.Error(),
			"database":  "error",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"timestamp":    timestamp,
		"database":     "connected",
		"cors_origins": h.corsOrigins,
	})
}
