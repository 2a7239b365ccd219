package handlers

import (
	"net/http"
	"strings"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	msgCodeSent     = "인증번호가 발송되었습니다."
	msgVerified     = "휴대폰 인증이 완료되었습니다."
	msgCodeRequired = "인증번호를 입력해주세요."
)

// VerificationHandlers exposes the send/verify protocol.
type VerificationHandlers struct {
	logger   *logging.SafeLogger
	verifier services.PhoneVerifier
}

// NewVerificationHandlers creates a new verification handlers instance
func NewVerificationHandlers(logger *logging.SafeLogger, verifier services.PhoneVerifier) *VerificationHandlers {
	return &VerificationHandlers{logger: logger, verifier: verifier}
}

// Verify godoc
// @Summary Send or check a verification code
// @Description action=send dispatches a 6 digit code by SMS; action=verify consumes it
// @Tags verification
// @Accept json
// @Produce json
// @Param data body models.VerifyRequest true "Action, phone and code"
// @Success 200 {object} models.VerifySendResponse
// @Success 200 {object} models.VerifyCheckResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /verify [post]
func (h *VerificationHandlers) Verify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgBadRequest})
		return
	}

	ctx := c.Request.Context()
	switch req.Action {
	case models.VerifyActionSend:
		rec, result, err := h.verifier.Send(ctx, req.Phone)
		if err != nil {
			respondError(c, h.logger, "verification send", err)
			return
		}
		c.JSON(http.StatusOK, models.VerifySendResponse{
			Success:   true,
			Message:   msgCodeSent,
			Provider:  result.Provider,
			MessageID: result.MessageID,
			ExpiresAt: rec.ExpiresAt,
		})

	case models.VerifyActionVerify:
		if strings.TrimSpace(req.Code) == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgCodeRequired})
			return
		}
		if err := h.verifier.Verify(ctx, req.Phone, req.Code); err != nil {
			respondError(c, h.logger, "verification check", err)
			return
		}
		c.JSON(http.StatusOK, models.VerifyCheckResponse{Verified: true, Message: msgVerified})
	}
}
