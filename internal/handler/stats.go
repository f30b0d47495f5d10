package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"predictably/internal/service"
	"predictably/internal/stats"
)

type StatsHandler struct {
	Service *service.GameService
	Engine  *stats.Engine
	Logger  *zap.Logger
}

func (h *StatsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/me", RequireIdentity())
	group.GET("/stats", h.myStats)
	group.GET("/history", h.myHistory)
}

// @Summary Aggregate statistics for the caller
// @Tags stats
// @Success 200 {object} apiResponse
// @Router /api/me/stats [get]
func (h *StatsHandler) myStats(c *gin.Context) {
	res, err := h.Engine.ComputeUserStats(c.Request.Context(), userID(c))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("user stats failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	Ok(c, res, nil)
}

// @Summary The caller's question history, newest first
// @Tags stats
// @Param limit query int false "page size (default 20)"
// @Param offset query int false "page offset"
// @Success 200 {object} apiResponse
// @Router /api/me/history [get]
func (h *StatsHandler) myHistory(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)
	entries, err := h.Service.UserHistory(c.Request.Context(), userID(c), limit, offset)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("user history failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	Ok(c, entries, map[string]any{"limit": limit, "offset": offset})
}
