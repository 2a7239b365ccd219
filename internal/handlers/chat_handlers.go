package handlers

import (
	"net/http"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/services"
	"github.com/gin-gonic/gin"
)

// ChatHandlers drives chat sessions over HTTP.
type ChatHandlers struct {
	logger *logging.SafeLogger
	chat   *services.ChatService
}

// NewChatHandlers creates a new chat handlers instance
func NewChatHandlers(logger *logging.SafeLogger, chat *services.ChatService) *ChatHandlers {
	return &ChatHandlers{logger: logger, chat: chat}
}

// StartSession godoc
// @Summary Start a chat session
// @Tags chat
// @Produce json
// @Success 201 {object} models.ChatReply
// @Router /chat/sessions [post]
func (h *ChatHandlers) StartSession(c *gin.Context) {
	reply, err := h.chat.Start(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "start session", err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

// GetSession godoc
// @Summary Current state of a chat session
// @Tags chat
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} models.ChatReply
// @Failure 404 {object} ErrorResponse
// @Router /chat/sessions/{id} [get]
func (h *ChatHandlers) GetSession(c *gin.Context) {
	reply, err := h.chat.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get session", err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// SubmitAnswer godoc
// @Summary Answer the current step
// @Description Invalid answers return 200 with the same step and an error message
// @Tags chat
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param data body models.ChatMessageRequest true "Answer"
// @Success 200 {object} models.ChatReply
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /chat/sessions/{id}/messages [post]
func (h *ChatHandlers) SubmitAnswer(c *gin.Context) {
	var req models.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgBadRequest})
		return
	}
	reply, err := h.chat.Submit(c.Request.Context(), c.Param("id"), req.Value)
	if err != nil {
		respondError(c, h.logger, "submit answer", err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// ResendCode godoc
// @Summary Send a new verification code
// @Tags chat
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} models.ChatReply
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /chat/sessions/{id}/resend [post]
func (h *ChatHandlers) ResendCode(c *gin.Context) {
	reply, err := h.chat.Resend(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "resend code", err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
