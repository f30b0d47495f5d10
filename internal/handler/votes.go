package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"predictably/internal/repository"
	"predictably/internal/service"
)

type VoteHandler struct {
	Service *service.GameService
	Logger  *zap.Logger
}

func (h *VoteHandler) Register(r *gin.Engine) {
	group := r.Group("/api/votes", RequireIdentity())
	group.POST("", h.submitVote)
	group.GET("/my/:questionID", h.myVote)
}

type submitVoteRequest struct {
	QuestionID string `json:"questionId"`
	Value      int    `json:"value"`
}

// @Summary Cast or change a vote
// @Tags votes
// @Accept json
// @Param body body submitVoteRequest true "question id and vote value on the -10..10 scale"
// @Success 200 {object} apiResponse
// @Router /api/votes [post]
func (h *VoteHandler) submitVote(c *gin.Context) {
	var req submitVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	vote, hist, err := h.Service.SubmitVote(c.Request.Context(), userID(c), req.QuestionID, req.Value)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	Ok(c, gin.H{"vote": vote, "voteHistogram": hist}, nil)
}

// @Summary The caller's vote on a question
// @Tags votes
// @Param questionID path string true "question id"
// @Success 200 {object} apiResponse
// @Router /api/votes/my/{questionID} [get]
func (h *VoteHandler) myVote(c *gin.Context) {
	vote, err := h.Service.Repo.GetUserVote(c.Request.Context(), userID(c), c.Param("questionID"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if vote == nil {
		Error(c, http.StatusNotFound, "no vote recorded", nil)
		return
	}
	Ok(c, vote, nil)
}

func (h *VoteHandler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrOutOfRange):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrVotingClosed), errors.Is(err, repository.ErrVoteConflict):
		Error(c, http.StatusConflict, err.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.Warn("vote request failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}
