package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rafiq-chat/internal/weather"
)

type weatherRequest struct {
	Location string `json:"location"`
}

func weatherDetailed(report *weather.Report, voice bool) string {
	if voice {
		return weather.VoiceSummary(report)
	}
	return weather.Detailed(report)
}

// Weather resolves a location name to its current conditions and forecast.
func (h *Handler) Weather(c *gin.Context) {
	var req weatherRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Location) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidRequestMessage})
		return
	}

	report, err := h.weather.Lookup(c.Request.Context(), strings.TrimSpace(req.Location))
	if err != nil {
		var notFound *weather.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "لم أجد موقع \"" + notFound.Location + "\""})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "عذراً، حدث خطأ في الحصول على بيانات الطقس"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"weatherInfo": report})
}
