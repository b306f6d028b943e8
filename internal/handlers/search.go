package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rafiq-chat/internal/ai"
)

type searchRequest struct {
	Query string `json:"query"`
}

// Search returns ranked web results for a free-text query.
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidRequestMessage})
		return
	}

	query := strings.TrimSpace(req.Query)
	results := h.gatherer.Search(c.Request.Context(), query, ai.DetectLanguage(query))
	c.JSON(http.StatusOK, gin.H{"results": results})
}
