package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/bizlab-kr/leadbot/internal/flow"
	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgBadRequest    = "요청 형식이 올바르지 않습니다."
	msgNotFound      = "요청한 항목을 찾을 수 없습니다."
	msgInvalidCode   = "인증번호가 올바르지 않거나 만료되었습니다."
	msgSendFailed    = "문자 발송에 실패했습니다. 잠시 후 다시 시도해주세요."
	msgInternalError = "서버 오류가 발생했습니다."
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string                `json:"status"`
	Timestamp time.Time             `json:"timestamp"`
	Services  map[string]string     `json:"services"`
	SMS       models.ProviderHealth `json:"sms"`
}

// FlowResponse is the compiled flow as seen by clients.
type FlowResponse struct {
	Start    string                 `json:"start"`
	Steps    []flow.StepDescription `json:"steps"`
	Warnings []string               `json:"warnings,omitempty"`
}

// respondError maps a domain error onto an HTTP status. Unknown errors are logged and hidden.
func respondError(c *gin.Context, logger *logging.SafeLogger, op string, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgNotFound})
	case errors.Is(err, models.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidCode})
	case errors.Is(err, models.ErrSMSProvider):
		logger.Warn(op+" failed at sms provider", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: msgSendFailed})
	default:
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternalError})
	}
}
