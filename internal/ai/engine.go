package ai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"rafiq-chat/internal/logging"
	"rafiq-chat/internal/metrics"
)

// Pauses between model switches during failover. ServiceBusy gets the longer
// fixed pause; other recoverable failures the shorter one. RateLimited
// advances with no pause at all.
const (
	busySwitchPause  = time.Second
	otherSwitchPause = 500 * time.Millisecond
)

// Caller is the transport surface the engine drives. *Transport implements
// it; tests substitute fakes.
type Caller interface {
	Complete(ctx context.Context, messages []Message, model, systemPrompt string, temperature float64) (string, error)
	Stream(ctx context.Context, messages []Message, model, systemPrompt string, temperature float64, sink Sink) (string, error)
}

// TurnFailure is the terminal failure of a whole turn. Message is always
// renderable; raw provider internals never appear in it.
type TurnFailure struct {
	Message     string
	Config      bool // missing/placeholder credential
	RateLimited bool
	ServiceBusy bool
}

func (f *TurnFailure) Error() string { return f.Message }

// Engine owns the state machine for a single chat turn: model selection,
// failover across the candidate queue, and terminal success/failure.
type Engine struct {
	registry  *Registry
	caller    Caller
	backoff   BackoffPolicy
	configErr *ConfigError
	log       *zap.Logger

	// sleep is swapped out in tests to avoid real pauses.
	sleep func(ctx context.Context, d time.Duration) error
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithConfigError makes every turn short-circuit with a configuration
// failure before any outbound call. Set when the credential is missing or a
// placeholder.
func WithConfigError(err *ConfigError) EngineOption {
	return func(e *Engine) { e.configErr = err }
}

// WithBackoff overrides the retry policy.
func WithBackoff(p BackoffPolicy) EngineOption {
	return func(e *Engine) { e.backoff = p }
}

func withSleep(fn func(ctx context.Context, d time.Duration) error) EngineOption {
	return func(e *Engine) { e.sleep = fn }
}

// NewEngine creates a failover engine over the given registry and transport.
func NewEngine(registry *Registry, caller Caller, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: registry,
		caller:   caller,
		backoff:  DefaultBackoff(),
		log:      logging.L(),
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// selection holds the resolved candidate queue for one turn.
type selection struct {
	queue    []string
	pinned   bool
	messages []Message
}

// selectModels resolves "auto" and pinned requests into an ordered candidate
// queue. Image handling follows the production rules: an image on the
// current message selects the vision model; failing that, the most recent
// image earlier in the context selects the vision model and is carried onto
// the final user message so the model can see it.
func (e *Engine) selectModels(req *TurnRequest) selection {
	messages := req.Messages
	last := messages[len(messages)-1]

	pinned := req.Model != "" && req.Model != ModelAuto

	var contextImage string
	if last.Image == "" {
		for i := len(messages) - 2; i >= 0; i-- {
			if messages[i].Image != "" {
				contextImage = messages[i].Image
				break
			}
		}
	}

	// An image overrides the model choice but not pinning: a pinned turn
	// with an image is tried on the vision model alone, with the pinned
	// failure rules intact.
	chosen := req.Model
	switch {
	case last.Image != "":
		chosen = e.registry.VisionModel()
	case contextImage != "":
		chosen = e.registry.VisionModel()
		carried := make([]Message, len(messages))
		copy(carried, messages)
		final := carried[len(carried)-1]
		if final.Role == RoleUser {
			final.Image = contextImage
			carried[len(carried)-1] = final
		}
		messages = carried
	case !pinned:
		chosen = e.registry.TextModel()
	}

	var queue []string
	if pinned {
		queue = []string{chosen}
	} else {
		queue = append(queue, chosen)
		for _, id := range e.registry.ChatPool() {
			if id != chosen {
				queue = append(queue, id)
			}
		}
	}

	return selection{queue: queue, pinned: pinned, messages: messages}
}

// Run executes one chat turn. When sink is non-nil the turn streams and each
// fragment is forwarded as it arrives; otherwise a single completion is
// made. Run always terminates with either a TurnResult or a *TurnFailure
// carrying a renderable message.
func (e *Engine) Run(ctx context.Context, req *TurnRequest, sink Sink) (*TurnResult, error) {
	start := time.Now()
	m := metrics.Get()

	lastContent := ""
	if len(req.Messages) > 0 {
		lastContent = req.Messages[len(req.Messages)-1].Content
	}
	lang := DetectLanguage(lastContent)

	if e.configErr != nil {
		m.TurnsTotal.WithLabelValues("failed").Inc()
		return nil, &TurnFailure{Message: e.configErr.Message, Config: true}
	}
	if len(req.Messages) == 0 {
		return nil, &TurnFailure{Message: unreachableMessage(lang)}
	}

	sel := e.selectModels(req)
	systemPrompt := SystemPrompt(req.VoiceMode, req.DeepThinking, lang)
	temperature := Temperature(req)

	queue := sel.queue
	grown := false

	var lastErr *AttemptError
	rateLimitHit := false

failover:
	for i := 0; i < len(queue); i++ {
		model := queue[i]
		e.log.Info("attempting model",
			zap.String("model", model),
			zap.Int("position", i+1),
			zap.Int("candidates", len(queue)))

		content, err := e.attempt(ctx, sel.messages, model, systemPrompt, temperature, sink)
		if err == nil {
			m.ModelAttemptsTotal.WithLabelValues(model, "success").Inc()
			m.TurnsTotal.WithLabelValues("success").Inc()
			e.log.Info("turn succeeded", zap.String("model", model), zap.Duration("took", time.Since(start)))
			return &TurnResult{Content: content, Model: model, Duration: time.Since(start)}, nil
		}

		if ctx.Err() != nil {
			m.TurnsTotal.WithLabelValues("failed").Inc()
			return nil, &TurnFailure{Message: unreachableMessage(lang)}
		}

		var attempt *AttemptError
		if !errors.As(err, &attempt) {
			attempt = &AttemptError{Kind: FailUnknown, Model: model, Message: err.Error()}
		}
		lastErr = attempt
		m.ModelAttemptsTotal.WithLabelValues(model, string(attempt.Kind)).Inc()
		e.log.Warn("model attempt failed",
			zap.String("model", model),
			zap.String("kind", string(attempt.Kind)))

		switch attempt.Kind {
		case FailAuthInvalid:
			// Failing over cannot help with a bad credential.
			m.TurnsTotal.WithLabelValues("failed").Inc()
			msg := attempt.Message
			if msg == "" {
				msg = ConfigErrorMessage
			}
			return nil, &TurnFailure{Message: msg, Config: true}

		case FailRateLimited:
			rateLimitHit = true
			if sel.pinned {
				// A user who pinned a model must not silently get another
				// model's answer.
				m.TurnsTotal.WithLabelValues("failed").Inc()
				return nil, &TurnFailure{Message: rateLimitMessage(lang), RateLimited: true}
			}
			// Auto mode: advance with no pause.
			m.FailoversTotal.WithLabelValues(model).Inc()

		case FailServiceBusy:
			if sel.pinned && i == 0 && !grown {
				// One-time growth: at most two fallbacks from the pool,
				// excluding the failed model. Later busy failures never grow
				// the queue again.
				added := 0
				for _, id := range e.registry.ChatPool() {
					if id != model && added < 2 {
						queue = append(queue, id)
						added++
					}
				}
				grown = true
			}
			m.FailoversTotal.WithLabelValues(model).Inc()
			if i < len(queue)-1 {
				if e.sleep(ctx, busySwitchPause) != nil {
					break failover
				}
			}

		default:
			m.FailoversTotal.WithLabelValues(model).Inc()
			if i < len(queue)-1 {
				if e.sleep(ctx, otherSwitchPause) != nil {
					break failover
				}
			}
		}
	}

	m.TurnsTotal.WithLabelValues("failed").Inc()

	// The service-busy verdict keys off the final failure alone; an earlier
	// busy model that later candidates got past differently is not busy.
	switch {
	case rateLimitHit:
		return nil, &TurnFailure{Message: rateLimitMessage(lang), RateLimited: true}
	case lastErr != nil && lastErr.Kind == FailServiceBusy:
		return nil, &TurnFailure{Message: serviceBusyMessage(lang), ServiceBusy: true}
	default:
		return nil, &TurnFailure{Message: unreachableMessage(lang)}
	}
}

// attempt makes one model attempt, with same-model retries for eligible
// failures within the backoff budget. Each retry is a fresh attempt.
func (e *Engine) attempt(ctx context.Context, messages []Message, model, systemPrompt string, temperature float64, sink Sink) (string, error) {
	m := metrics.Get()

	for try := 0; ; try++ {
		var content string
		var err error

		start := time.Now()
		if sink != nil {
			content, err = e.caller.Stream(ctx, messages, model, systemPrompt, temperature, sink)
			m.StreamDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
		} else {
			content, err = e.caller.Complete(ctx, messages, model, systemPrompt, temperature)
		}
		if err == nil {
			return content, nil
		}

		var attempt *AttemptError
		if !errors.As(err, &attempt) {
			return "", err
		}
		if !e.backoff.RetrySameModel(attempt.Kind, try) {
			return "", err
		}

		delay := e.backoff.Delay(try)
		e.log.Info("retrying model",
			zap.String("model", model),
			zap.Int("retry", try+1),
			zap.Duration("delay", delay))
		if serr := e.sleep(ctx, delay); serr != nil {
			return "", err
		}
	}
}
