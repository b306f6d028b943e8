package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rafiq-chat/internal/ai"
	"rafiq-chat/internal/security"
	"rafiq-chat/internal/websearch"
)

const (
	invalidRequestMessage = "طلب غير صالح"
	invalidImageMessage   = "صورة غير صالحة. الرجاء إرسال صورة بصيغة مدعومة وبحجم أقل من 5 ميغابايت."
)

type chatRequest struct {
	Messages     []ai.Message `json:"messages"`
	Model        string       `json:"model"`
	DeepThinking bool         `json:"deepThinking"`
	DeepSearch   bool         `json:"deepSearch"`
	IsVoiceMode  bool         `json:"isVoiceMode"`
	Streaming    bool         `json:"streaming"`
	FocusMode    string       `json:"focusMode"`
}

// sanitize cleans every message in place and validates attached images.
func sanitize(messages []ai.Message) ([]ai.Message, error) {
	out := make([]ai.Message, len(messages))
	for i, msg := range messages {
		msg.Content = security.SanitizeInput(msg.Content)
		if msg.Image != "" && !security.ValidateImageData(msg.Image) {
			return nil, fmt.Errorf("message %d: invalid image payload", i)
		}
		out[i] = msg
	}
	return out, nil
}

// Chat serves one conversation turn: plain or deep-search, streamed or not.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidRequestMessage})
		return
	}

	last := req.Messages[len(req.Messages)-1]
	if strings.TrimSpace(last.Content) == "" && last.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidRequestMessage})
		return
	}

	messages, err := sanitize(req.Messages)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidImageMessage})
		return
	}

	turn := &ai.TurnRequest{
		Messages:     messages,
		Model:        req.Model,
		DeepThinking: req.DeepThinking,
		VoiceMode:    req.IsVoiceMode,
		FocusMode:    req.FocusMode,
	}

	if req.DeepSearch {
		h.deepSearchChat(c, &req, turn)
		return
	}
	if req.Streaming {
		h.streamChat(c, turn)
		return
	}
	h.completeChat(c, turn)
}

func (h *Handler) completeChat(c *gin.Context, turn *ai.TurnRequest) {
	result, err := h.engine.Run(c.Request.Context(), turn, nil)
	if err != nil {
		h.renderTurnFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": result.Content})
}

func (h *Handler) renderTurnFailure(c *gin.Context, err error) {
	var failure *ai.TurnFailure
	if errors.As(err, &failure) {
		if failure.Config {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": failure.Message,
				"error":   "API_KEY_MISSING",
			})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": failure.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"message": "حدث خطأ غير متوقع",
		"error":   "UNKNOWN_ERROR",
	})
}

// sse writes one event frame and flushes it.
func sse(c *gin.Context, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()
}

func sseDone(c *gin.Context) {
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}

func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
}

func (h *Handler) streamChat(c *gin.Context, turn *ai.TurnRequest) {
	setSSEHeaders(c)

	_, err := h.engine.Run(c.Request.Context(), turn, func(chunk string) {
		sse(c, gin.H{"chunk": chunk})
	})
	if err != nil {
		// Failures terminate the stream as a renderable final chunk.
		var failure *ai.TurnFailure
		if errors.As(err, &failure) {
			sse(c, gin.H{"chunk": failure.Message})
		}
	}
	sseDone(c)
}

// deepSearchChat gathers web context (or a weather report) before the model
// call and attaches the sources to the response.
func (h *Handler) deepSearchChat(c *gin.Context, req *chatRequest, turn *ai.TurnRequest) {
	query := strings.TrimSpace(turn.Messages[len(turn.Messages)-1].Content)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidRequestMessage})
		return
	}
	lang := ai.DetectLanguage(query)

	// Weather questions bypass general search entirely.
	if location, ok := websearch.WeatherIntent(query); ok {
		if h.weatherChat(c, req, location) {
			return
		}
		// Lookup failed; degrade to general search.
	}

	results := h.gatherer.Search(c.Request.Context(), query, lang)
	sources := websearch.ForContext(results)

	var context strings.Builder
	for _, r := range sources {
		fmt.Fprintf(&context, "- %s: %s\n", r.Title, r.Snippet)
	}

	langName := "English"
	if lang == "ar" {
		langName = "Arabic"
	}
	prompt := fmt.Sprintf("Provide a helpful and accurate answer in %s.\n\nQuestion: %s\n\nSearch Results:\n%s\nAnswer based on the search results and your general knowledge with relevant details.",
		langName, query, context.String())
	if req.IsVoiceMode {
		prompt = fmt.Sprintf("أجب باللغة العربية فقط بشكل مختصر ومحادثاتي (3-4 جمل). السؤال: %s", query)
	}

	searchTurn := &ai.TurnRequest{
		Messages:     []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		Model:        turn.Model,
		DeepThinking: turn.DeepThinking,
		VoiceMode:    turn.VoiceMode,
		FocusMode:    turn.FocusMode,
	}

	if req.Streaming {
		setSSEHeaders(c)
		sse(c, gin.H{"type": "sources", "sources": sources})

		_, err := h.engine.Run(c.Request.Context(), searchTurn, func(chunk string) {
			sse(c, gin.H{"type": "text", "content": chunk})
		})
		if err != nil {
			var failure *ai.TurnFailure
			if errors.As(err, &failure) {
				sse(c, gin.H{"type": "error", "message": failure.Message})
			}
		}
		sseDone(c)
		return
	}

	result, err := h.engine.Run(c.Request.Context(), searchTurn, nil)
	if err != nil {
		h.renderTurnFailure(c, err)
		return
	}
	if req.IsVoiceMode {
		c.JSON(http.StatusOK, gin.H{"message": result.Content})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        result.Content,
		"sources":        sources,
		"isSearchResult": true,
	})
}

// weatherChat answers a weather-intent query from the forecast API. Returns
// false when the lookup fails so the caller can fall back to web search.
func (h *Handler) weatherChat(c *gin.Context, req *chatRequest, location string) bool {
	report, err := h.weather.Lookup(c.Request.Context(), location)
	if err != nil {
		h.log.Warn("weather lookup failed, falling back to search",
			zap.String("location", location),
			zap.Error(err))
		return false
	}

	message := weatherDetailed(report, req.IsVoiceMode)
	if req.Streaming {
		setSSEHeaders(c)
		sse(c, gin.H{"type": "text", "content": message})
		sseDone(c)
		return true
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        message,
		"weatherInfo":    report,
		"isSearchResult": true,
	})
	return true
}
