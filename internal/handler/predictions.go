package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"predictably/internal/service"
)

type PredictionHandler struct {
	Service *service.GameService
	Logger  *zap.Logger
}

func (h *PredictionHandler) Register(r *gin.Engine) {
	group := r.Group("/api/predictions", RequireIdentity())
	group.POST("", h.submitPrediction)
	group.GET("/my/:questionID", h.myPrediction)
}

type submitPredictionRequest struct {
	QuestionID string          `json:"questionId"`
	Predicted  decimal.Decimal `json:"predicted"`
}

// @Summary Predict the crowd average
// @Tags predictions
// @Accept json
// @Param body body submitPredictionRequest true "question id and predicted average"
// @Success 200 {object} apiResponse
// @Router /api/predictions [post]
func (h *PredictionHandler) submitPrediction(c *gin.Context) {
	var req submitPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	prediction, hist, err := h.Service.SubmitPrediction(c.Request.Context(), userID(c), req.QuestionID, req.Predicted)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	Ok(c, gin.H{"prediction": prediction, "voteHistogram": hist}, nil)
}

// @Summary The caller's prediction on a question, scored against the current average
// @Tags predictions
// @Param questionID path string true "question id"
// @Success 200 {object} apiResponse
// @Router /api/predictions/my/{questionID} [get]
func (h *PredictionHandler) myPrediction(c *gin.Context) {
	prediction, err := h.Service.Repo.GetUserPrediction(c.Request.Context(), userID(c), c.Param("questionID"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if prediction == nil {
		Error(c, http.StatusNotFound, "no prediction recorded", nil)
		return
	}
	Ok(c, prediction, nil)
}

func (h *PredictionHandler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrOutOfRange):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrVotingClosed):
		Error(c, http.StatusConflict, err.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.Warn("prediction request failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}
