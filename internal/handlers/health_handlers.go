package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthTimeout = 3 * time.Second

// SMSHealth reports on the active SMS provider. *sms.Dispatcher satisfies it.
type SMSHealth interface {
	HealthCheck(ctx context.Context) models.ProviderHealth
}

// Check pings one backing service.
type Check func(ctx context.Context) error

// HealthHandlers reports on backing services.
type HealthHandlers struct {
	logger *logging.SafeLogger
	sms    SMSHealth
	checks map[string]Check
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(logger *logging.SafeLogger, sms SMSHealth, checks map[string]Check) *HealthHandlers {
	return &HealthHandlers{logger: logger, sms: sms, checks: checks}
}

// HealthCheck godoc
// @Summary Health check
// @Description Storage failures make the service unhealthy; an unreachable or fallback SMS provider only degrades it
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]string, len(h.checks)),
	}

	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Error("health check failed", zap.String("service", name), zap.Error(err))
			resp.Services[name] = "unhealthy"
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Services[name] = "healthy"
	}

	if h.sms != nil {
		resp.SMS = h.sms.HealthCheck(ctx)
		if (!resp.SMS.Reachable || resp.SMS.Fallback) && resp.Status == "healthy" {
			resp.Status = "degraded"
		}
	}

	c.JSON(code, resp)
}
