package handlers

import (
	"net/http"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/services"
	"github.com/gin-gonic/gin"
)

// QuestionHandlers serves the question collection and the compiled flow.
type QuestionHandlers struct {
	logger *logging.SafeLogger
	repo   *services.QuestionRepository
}

// NewQuestionHandlers creates a new question handlers instance
func NewQuestionHandlers(logger *logging.SafeLogger, repo *services.QuestionRepository) *QuestionHandlers {
	return &QuestionHandlers{logger: logger, repo: repo}
}

// ListQuestions godoc
// @Summary List active questions
// @Tags questions
// @Produce json
// @Success 200 {object} models.QuestionListResponse
// @Failure 500 {object} ErrorResponse
// @Router /questions [get]
func (h *QuestionHandlers) ListQuestions(c *gin.Context) {
	questions, err := h.repo.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list questions", err)
		return
	}
	c.JSON(http.StatusOK, models.QuestionListResponse{Questions: questions, Total: len(questions)})
}

// ListAllQuestions godoc
// @Summary List every question, inactive ones included
// @Tags admin
// @Produce json
// @Security AdminToken
// @Success 200 {object} models.QuestionListResponse
// @Failure 401 {object} ErrorResponse
// @Router /admin/questions [get]
func (h *QuestionHandlers) ListAllQuestions(c *gin.Context) {
	questions, err := h.repo.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list all questions", err)
		return
	}
	c.JSON(http.StatusOK, models.QuestionListResponse{Questions: questions, Total: len(questions)})
}

// GetQuestion godoc
// @Summary Get a question
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param step path string true "Step id"
// @Success 200 {object} models.Question
// @Failure 404 {object} ErrorResponse
// @Router /admin/questions/{step} [get]
func (h *QuestionHandlers) GetQuestion(c *gin.Context) {
	q, err := h.repo.Get(c.Request.Context(), c.Param("step"))
	if err != nil {
		respondError(c, h.logger, "get question", err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// CreateQuestion godoc
// @Summary Create a question
// @Description order_index is the 1-based position to insert at; 0 appends
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param data body models.CreateQuestionRequest true "Question"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /admin/questions [post]
func (h *QuestionHandlers) CreateQuestion(c *gin.Context) {
	var req models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgBadRequest})
		return
	}
	q, err := h.repo.Create(c.Request.Context(), req.ToQuestion())
	if err != nil {
		respondError(c, h.logger, "create question", err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param step path string true "Step id"
// @Param data body models.QuestionUpdate true "Fields to change"
// @Success 200 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/questions/{step} [put]
func (h *QuestionHandlers) UpdateQuestion(c *gin.Context) {
	var req models.QuestionUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgBadRequest})
		return
	}
	q, err := h.repo.Update(c.Request.Context(), c.Param("step"), req)
	if err != nil {
		respondError(c, h.logger, "update question", err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param step path string true "Step id"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/questions/{step} [delete]
func (h *QuestionHandlers) DeleteQuestion(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("step")); err != nil {
		respondError(c, h.logger, "delete question", err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "질문이 삭제되었습니다."})
}

// ReorderQuestions godoc
// @Summary Reorder active questions
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param data body models.ReorderRequest true "Every active step id in order"
// @Success 200 {object} models.QuestionListResponse
// @Failure 400 {object} ErrorResponse
// @Router /admin/questions/reorder [post]
func (h *QuestionHandlers) ReorderQuestions(c *gin.Context) {
	var req models.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgBadRequest})
		return
	}
	questions, err := h.repo.Reorder(c.Request.Context(), req.Steps)
	if err != nil {
		respondError(c, h.logger, "reorder questions", err)
		return
	}
	c.JSON(http.StatusOK, models.QuestionListResponse{Questions: questions, Total: len(questions)})
}

// GetFlow godoc
// @Summary Compiled conversation flow
// @Tags questions
// @Produce json
// @Success 200 {object} FlowResponse
// @Router /flow [get]
func (h *QuestionHandlers) GetFlow(c *gin.Context) {
	graph, err := h.repo.Flow(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "compile flow", err)
		return
	}
	c.JSON(http.StatusOK, FlowResponse{
		Start:    graph.Start().ID,
		Steps:    graph.Describe(),
		Warnings: graph.Warnings,
	})
}
