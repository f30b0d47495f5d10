package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"predictably/internal/repository"
	"predictably/internal/service"
)

type QuestionHandler struct {
	Service *service.GameService
	Logger  *zap.Logger
}

func (h *QuestionHandler) Register(r *gin.Engine) {
	group := r.Group("/api/questions")
	group.GET("", h.listQuestions)
	group.GET("/current", h.currentQuestion)
	group.GET("/yesterday", h.yesterdayResults)
	group.GET("/:id", h.getQuestion)
	group.GET("/:id/histogram", h.getHistogram)
	group.POST("", RequireIdentity(), h.submitQuestion)

	admin := r.Group("/api/admin/questions")
	admin.POST("/:id/close", h.closeQuestion)
	admin.DELETE("/:id", h.purgeQuestion)
	admin.PUT("/today", h.setToday)
	admin.PUT("/yesterday", h.setYesterday)
	admin.POST("/rotate", h.rotate)
}

type submitQuestionRequest struct {
	Text     string `json:"text"`
	TTLHours int    `json:"ttlHours"`
}

// @Summary Submit a question
// @Tags questions
// @Accept json
// @Param body body submitQuestionRequest true "question text and voting window"
// @Success 200 {object} apiResponse
// @Router /api/questions [post]
func (h *QuestionHandler) submitQuestion(c *gin.Context) {
	var req submitQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	q, err := h.Service.SubmitQuestion(c.Request.Context(), userID(c), req.Text, req.TTLHours)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	Ok(c, q, nil)
}

// @Summary List all questions, newest first
// @Tags questions
// @Success 200 {object} apiResponse
// @Router /api/questions [get]
func (h *QuestionHandler) listQuestions(c *gin.Context) {
	questions, err := h.Service.ListQuestions(c.Request.Context())
	if err != nil {
		h.serviceError(c, err)
		return
	}
	Ok(c, questions, map[string]any{"count": len(questions)})
}

// @Summary Today's question
// @Tags questions
// @Success 200 {object} apiResponse
// @Router /api/questions/current [get]
func (h *QuestionHandler) currentQuestion(c *gin.Context) {
	q, vote, err := h.Service.CurrentQuestion(c.Request.Context(), userID(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if q == nil {
		Error(c, http.StatusNotFound, "no current question", nil)
		return
	}
	Ok(c, gin.H{"question": q, "myVote": vote}, nil)
}

// @Summary Yesterday's question with results
// @Tags questions
// @Success 200 {object} apiResponse
// @Router /api/questions/yesterday [get]
func (h *QuestionHandler) yesterdayResults(c *gin.Context) {
	q, vote, prediction, err := h.Service.YesterdayResults(c.Request.Context(), userID(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if q == nil {
		Error(c, http.StatusNotFound, "no question for yesterday", nil)
		return
	}
	Ok(c, gin.H{"question": q, "myVote": vote, "myPrediction": prediction}, nil)
}

// @Summary Question details
// @Tags questions
// @Param id path string true "question id"
// @Success 200 {object} apiResponse
// @Router /api/questions/{id} [get]
func (h *QuestionHandler) getQuestion(c *gin.Context) {
	details, err := h.Service.QuestionDetails(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	Ok(c, details, nil)
}

// @Summary Vote histogram for a question
// @Tags questions
// @Param id path string true "question id"
// @Success 200 {object} apiResponse
// @Router /api/questions/{id}/histogram [get]
func (h *QuestionHandler) getHistogram(c *gin.Context) {
	hist, err := h.Service.Stats.BuildHistogram(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if hist == nil {
		Error(c, http.StatusNotFound, "question not found", nil)
		return
	}
	Ok(c, hist, nil)
}

// @Summary Close voting on a question
// @Tags admin
// @Param id path string true "question id"
// @Success 200 {object} apiResponse
// @Router /api/admin/questions/{id}/close [post]
func (h *QuestionHandler) closeQuestion(c *gin.Context) {
	q, err := h.Service.CloseQuestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	Ok(c, q, nil)
}

// @Summary Purge a question and all data keyed under it
// @Tags admin
// @Param id path string true "question id"
// @Success 200 {object} apiResponse
// @Router /api/admin/questions/{id} [delete]
func (h *QuestionHandler) purgeQuestion(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.PurgeQuestion(c.Request.Context(), id); err != nil {
		h.serviceError(c, err)
		return
	}
	if h.Logger != nil {
		h.Logger.Info("question purged", zap.String("question_id", id))
	}
	Ok(c, gin.H{"deleted": id}, nil)
}

type markerRequest struct {
	QuestionID string `json:"questionId"`
}

// @Summary Set the daily question marker
// @Tags admin
// @Param body body markerRequest true "question id, empty clears the slot"
// @Success 200 {object} apiResponse
// @Router /api/admin/questions/today [put]
func (h *QuestionHandler) setToday(c *gin.Context) {
	var req markerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.Service.SetTodayQuestion(c.Request.Context(), strings.TrimSpace(req.QuestionID)); err != nil {
		h.serviceError(c, err)
		return
	}
	Ok(c, nil, nil)
}

// @Summary Set the yesterday question marker
// @Tags admin
// @Param body body markerRequest true "question id, empty clears the slot"
// @Success 200 {object} apiResponse
// @Router /api/admin/questions/yesterday [put]
func (h *QuestionHandler) setYesterday(c *gin.Context) {
	var req markerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.Service.SetYesterdayQuestion(c.Request.Context(), strings.TrimSpace(req.QuestionID)); err != nil {
		h.serviceError(c, err)
		return
	}
	Ok(c, nil, nil)
}

// @Summary Rotate today's question into the yesterday slot
// @Tags admin
// @Param body body markerRequest true "question id taking the today slot"
// @Success 200 {object} apiResponse
// @Router /api/admin/questions/rotate [post]
func (h *QuestionHandler) rotate(c *gin.Context) {
	var req markerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.Service.RotateQuestions(c.Request.Context(), strings.TrimSpace(req.QuestionID)); err != nil {
		h.serviceError(c, err)
		return
	}
	Ok(c, nil, nil)
}

func (h *QuestionHandler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrOutOfRange),
		errors.Is(err, service.ErrTextTooShort),
		errors.Is(err, service.ErrBadTTL):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrVotingClosed):
		Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, repository.ErrVoteConflict):
		Error(c, http.StatusConflict, err.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.Warn("question request failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}
