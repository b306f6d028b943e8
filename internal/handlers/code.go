package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rafiq-chat/internal/ai"
)

type codeRequest struct {
	Messages  []ai.Message `json:"messages"`
	Model     string       `json:"model"`
	AgentMode bool         `json:"agentMode"`
}

// Code serves single-shot code generation, used directly and by pipeline
// agents calling back with agentMode set.
func (h *Handler) Code(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidRequestMessage})
		return
	}

	messages, err := sanitize(req.Messages)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidImageMessage})
		return
	}

	turn := &ai.TurnRequest{Messages: messages, Model: req.Model}
	result, runErr := h.engine.Run(c.Request.Context(), turn, nil)
	if runErr != nil {
		h.renderTurnFailure(c, runErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content": result.Content,
		"model":   result.Model,
	})
}
