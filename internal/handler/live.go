package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"predictably/internal/config"
	"predictably/internal/stats"
)

// LiveHandler streams the vote histogram of a question over a websocket,
// re-reading the aggregates on a fixed interval. Clients see vote totals
// move while voting is open without polling the REST endpoint.
type LiveHandler struct {
	Engine *stats.Engine
	Config config.LiveConfig
	Logger *zap.Logger
}

func (h *LiveHandler) Register(r *gin.Engine) {
	r.GET("/api/questions/:id/live", h.stream)
}

// @Summary Live histogram stream (websocket)
// @Tags questions
// @Param id path string true "question id"
// @Success 101
// @Router /api/questions/{id}/live [get]
func (h *LiveHandler) stream(c *gin.Context) {
	questionID := c.Param("id")
	ctx := c.Request.Context()

	hist, err := h.Engine.BuildHistogram(ctx, questionID)
	if err != nil {
		Error(c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	if hist == nil {
		Error(c, http.StatusNotFound, "question not found", nil)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("websocket accept failed", zap.Error(err))
		}
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream ended")

	interval := h.Config.PushInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	if err := wsjson.Write(ctx, conn, hist); err != nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "done")
			return
		case <-ticker.C:
			hist, err := h.Engine.BuildHistogram(ctx, questionID)
			if err != nil || hist == nil {
				conn.Close(websocket.StatusNormalClosure, "question gone")
				return
			}
			if err := wsjson.Write(ctx, conn, hist); err != nil {
				return
			}
		}
	}
}
