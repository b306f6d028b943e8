package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type projectRequest struct {
	Prompt string `json:"prompt"`
	// RunID lets clients open the progress socket before starting the run.
	RunID string `json:"runId"`
}

// GenerateProject runs the full architect/frontend/backend pipeline and
// returns the generated project. Progress is published to any WebSocket
// watchers of the run while it executes.
func (h *Handler) GenerateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidRequestMessage})
		return
	}

	runID := strings.TrimSpace(req.RunID)
	if runID == "" {
		runID = uuid.NewString()
	}

	result, err := h.projects.Execute(c.Request.Context(), runID, strings.TrimSpace(req.Prompt), h.hub.Publish)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "عذراً، فشل إنشاء المشروع. يرجى المحاولة مرة أخرى.",
			"runId":   runID,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// WatchProject upgrades to a WebSocket streaming a run's progress updates.
func (h *Handler) WatchProject(c *gin.Context) {
	runID := c.Query("runId")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidRequestMessage})
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, runID); err != nil {
		h.log.Warn("websocket upgrade failed",
			zap.String("run_id", runID),
			zap.Error(err))
	}
}
