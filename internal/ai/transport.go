package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"rafiq-chat/internal/logging"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

	streamTimeout   = 60 * time.Second
	completeTimeout = 30 * time.Second

	maxTokens = 4000
)

// Transport issues chat-completion calls against an OpenRouter-compatible
// endpoint and classifies failures into AttemptError kinds.
type Transport struct {
	apiKey     string
	baseURL    string
	referer    string
	title      string
	httpClient *http.Client
	log        *zap.Logger
}

// TransportOption customizes a Transport.
type TransportOption func(*Transport)

// WithBaseURL overrides the upstream endpoint (tests point this at httptest).
func WithBaseURL(u string) TransportOption {
	return func(t *Transport) { t.baseURL = u }
}

// WithHTTPClient overrides the underlying client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *Transport) { t.httpClient = c }
}

// NewTransport creates a transport with the given bearer credential.
func NewTransport(apiKey, referer string, opts ...TransportOption) *Transport {
	t := &Transport{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		referer: referer,
		title:   "Rafiq Chat",
		// Per-call deadlines come from context; the client timeout is a
		// backstop above the longest streaming deadline.
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		log:        logging.L(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// wire structures for the chat-completions API

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream,omitempty"`
}

// wireMessage carries either plain string content or multi-part content when
// the message has an attached image.
type wireMessage struct {
	Role    Role `json:"role"`
	Content any  `json:"content"`
}

type wirePart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *wireImageURL `json:"image_url,omitempty"`
}

type wireImageURL struct {
	URL string `json:"url"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type wireChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// buildWireMessages prepends the system prompt and converts image-bearing
// messages to multi-part content. Blank messages are dropped.
func buildWireMessages(messages []Message, systemPrompt string) ([]wireMessage, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = "أنت مساعد ذكي ومفيد."
	}
	out := []wireMessage{{Role: RoleSystem, Content: systemPrompt}}

	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		if msg.Image != "" {
			out = append(out, wireMessage{
				Role: msg.Role,
				Content: []wirePart{
					{Type: "image_url", ImageURL: &wireImageURL{URL: msg.Image}},
					{Type: "text", Text: content},
				},
			})
			continue
		}
		out = append(out, wireMessage{Role: msg.Role, Content: content})
	}

	if len(out) == 1 {
		return nil, errors.New("no valid messages")
	}
	return out, nil
}

// Complete issues a non-streaming call and returns the full completion.
// The call is bounded by a 30s wall-clock timeout.
func (t *Transport) Complete(ctx context.Context, messages []Message, model, systemPrompt string, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, completeTimeout)
	defer cancel()

	wireMsgs, err := buildWireMessages(messages, systemPrompt)
	if err != nil {
		return "", err
	}

	resp, err := t.send(ctx, &wireRequest{
		Model:       model,
		Messages:    wireMsgs,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", t.classify(err, model)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", t.classifyStatus(resp, model)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", t.classify(err, model)
	}

	var parsed wireResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &AttemptError{Kind: FailUnknown, Model: model, Message: "malformed completion body"}
	}
	if parsed.Error != nil {
		return "", &AttemptError{Kind: FailUnknown, Model: model, Message: parsed.Error.Message}
	}

	content := ""
	if len(parsed.Choices) > 0 {
		content = parsed.Choices[0].Message.Content
	}
	content = strings.TrimSpace(StripCJK(content))
	if content == "" {
		return "", &AttemptError{Kind: FailEmptyResponse, Model: model}
	}
	return content, nil
}

// Stream issues a streaming call, forwarding each filtered fragment to sink in
// arrival order, and returns the accumulated response. The call is bounded by
// a 60s wall-clock timeout; on expiry the connection is aborted and a Timeout
// failure is returned. Malformed stream lines are dropped, never fatal.
func (t *Transport) Stream(ctx context.Context, messages []Message, model, systemPrompt string, temperature float64, sink Sink) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, streamTimeout)
	defer cancel()

	wireMsgs, err := buildWireMessages(messages, systemPrompt)
	if err != nil {
		return "", err
	}

	resp, err := t.send(ctx, &wireRequest{
		Model:       model,
		Messages:    wireMsgs,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      true,
	})
	if err != nil {
		return "", t.classify(err, model)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", t.classifyStatus(resp, model)
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk wireChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Partial or malformed frame; skip it.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		fragment := StripCJK(chunk.Choices[0].Delta.Content)
		if fragment == "" {
			continue
		}
		full.WriteString(fragment)
		if sink != nil {
			sink(fragment)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", t.classify(err, model)
	}

	content := strings.TrimSpace(full.String())
	if content == "" {
		// A 2xx stream that accumulated nothing is a failed attempt.
		return "", &AttemptError{Kind: FailEmptyResponse, Model: model}
	}
	return content, nil
}

func (t *Transport) send(ctx context.Context, req *wireRequest) (*http.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	if t.referer != "" {
		httpReq.Header.Set("HTTP-Referer", t.referer)
	}
	httpReq.Header.Set("X-Title", t.title)

	return t.httpClient.Do(httpReq)
}

// classifyStatus maps a non-2xx response to an AttemptError, preserving the
// provider error message for the Unknown case.
func (t *Transport) classifyStatus(resp *http.Response, model string) *AttemptError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))

	providerMsg := ""
	var parsed struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
		providerMsg = parsed.Error.Message
	}

	t.log.Warn("upstream error",
		zap.String("model", model),
		zap.Int("status", resp.StatusCode),
		zap.String("provider_message", providerMsg))

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &AttemptError{Kind: FailRateLimited, Model: model, Status: resp.StatusCode}
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return &AttemptError{Kind: FailServiceBusy, Model: model, Status: resp.StatusCode}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AttemptError{Kind: FailAuthInvalid, Model: model, Status: resp.StatusCode, Message: providerMsg}
	default:
		return &AttemptError{Kind: FailUnknown, Model: model, Status: resp.StatusCode, Message: providerMsg}
	}
}

// classify maps connection-level errors to AttemptError kinds.
func (t *Transport) classify(err error, model string) error {
	var attempt *AttemptError
	if errors.As(err, &attempt) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AttemptError{Kind: FailTimeout, Model: model}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	t.log.Warn("network error", zap.String("model", model), zap.Error(err))
	return &AttemptError{Kind: FailNetwork, Model: model, Message: err.Error()}
}
