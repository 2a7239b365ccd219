package handlers

import (
	"github.com/bizlab-kr/leadbot/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every route handler of the API.
type Handlers struct {
	Verification *VerificationHandlers
	Questions    *QuestionHandlers
	Chat         *ChatHandlers
	Health       *HealthHandlers
}

// Register mounts the API under /v1. Question mutations require the admin secret.
func (h *Handlers) Register(router *gin.Engine, adminSecret string) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.GET("/health", h.Health.HealthCheck)

		v1.POST("/verify", h.Verification.Verify)

		v1.GET("/questions", h.Questions.ListQuestions)
		v1.GET("/flow", h.Questions.GetFlow)

		v1.POST("/chat/sessions", h.Chat.StartSession)
		v1.GET("/chat/sessions/:id", h.Chat.GetSession)
		v1.POST("/chat/sessions/:id/messages", h.Chat.SubmitAnswer)
		v1.POST("/chat/sessions/:id/resend", h.Chat.ResendCode)
	}

	admin := v1.Group("/admin", middleware.RequireAdmin(adminSecret), middleware.AuditMiddleware())
	{
		admin.GET("/questions", h.Questions.ListAllQuestions)
		admin.POST("/questions", h.Questions.CreateQuestion)
		admin.POST("/questions/reorder", h.Questions.ReorderQuestions)
		admin.GET("/questions/:step", h.Questions.GetQuestion)
		admin.PUT("/questions/:step", h.Questions.UpdateQuestion)
		admin.DELETE("/questions/:step", h.Questions.DeleteQuestion)
	}
}
