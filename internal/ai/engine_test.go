package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCaller scripts one response per attempt, in order. A nil error means
// the content is returned as the completion.
type fakeCaller struct {
	responses []fakeResponse
	calls     []fakeCall
}

type fakeResponse struct {
	content string
	err     error
}

type fakeCall struct {
	model    string
	streamed bool
	messages []Message
}

func (f *fakeCaller) next(model string, streamed bool, messages []Message) (string, error) {
	f.calls = append(f.calls, fakeCall{model: model, streamed: streamed, messages: messages})
	if len(f.responses) == 0 {
		return "", &AttemptError{Kind: FailUnknown, Model: model, Message: "unscripted call"}
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r.content, r.err
}

func (f *fakeCaller) Complete(_ context.Context, messages []Message, model, _ string, _ float64) (string, error) {
	return f.next(model, false, messages)
}

func (f *fakeCaller) Stream(_ context.Context, messages []Message, model, _ string, _ float64, sink Sink) (string, error) {
	content, err := f.next(model, true, messages)
	if err == nil && sink != nil {
		sink(content)
	}
	return content, err
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func newTestEngine(caller Caller, opts ...EngineOption) *Engine {
	opts = append(opts, withSleep(noSleep))
	return NewEngine(DefaultRegistry(), caller, opts...)
}

func userTurn(content string) *TurnRequest {
	return &TurnRequest{Messages: []Message{{Role: RoleUser, Content: content}}}
}

func TestRunAutoSelectsTextModel(t *testing.T) {
	caller := &fakeCaller{responses: []fakeResponse{{content: "hello"}}}
	engine := newTestEngine(caller)

	result, err := engine.Run(context.Background(), userTurn("hi"), nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Content)
	assert.Equal(t, ModelGeneralText, result.Model)
	require.Len(t, caller.calls, 1)
	assert.False(t, caller.calls[0].streamed)
}

func TestRunImageSelectsVisionModel(t *testing.T) {
	caller := &fakeCaller{responses: []fakeResponse{{content: "a cat"}}}
	engine := newTestEngine(caller)

	req := &TurnRequest{Messages: []Message{
		{Role: RoleUser, Content: "what is this?", Image: "data:image/png;base64,AAAA"},
	}}
	result, err := engine.Run(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, ModelVision, result.Model)
}

func TestRunContextImageCarriedToLastMessage(t *testing.T) {
	caller := &fakeCaller{responses: []fakeResponse{{content: "still a cat"}}}
	engine := newTestEngine(caller)

	req := &TurnRequest{Messages: []Message{
		{Role: RoleUser, Content: "look", Image: "data:image/png;base64,AAAA"},
		{Role: RoleAssistant, Content: "a cat"},
		{Role: RoleUser, Content: "what breed?"},
	}}
	result, err := engine.Run(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, ModelVision, result.Model)

	require.Len(t, caller.calls, 1)
	sent := caller.calls[0].messages
	assert.Equal(t, "data:image/png;base64,AAAA", sent[len(sent)-1].Image,
		"image from earlier context should ride on the final user message")
	// The original request must not be mutated.
	assert.Empty(t, req.Messages[len(req.Messages)-1].Image)
}

func TestRunPinnedImageKeepsPinnedRules(t *testing.T) {
	caller := &fakeCaller{responses: []fakeResponse{
		{err: &AttemptError{Kind: FailRateLimited, Model: ModelVision, Status: 429}},
	}}
	engine := newTestEngine(caller)

	req := &TurnRequest{
		Model: ModelCoderPro,
		Messages: []Message{
			{Role: RoleUser, Content: "what is this?", Image: "data:image/png;base64,AAAA"},
		},
	}
	_, err := engine.Run(context.Background(), req, nil)

	var failure *TurnFailure
	require.ErrorAs(t, err, &failure)
	assert.True(t, failure.RateLimited)
	require.Len(t, caller.calls, 1, "an image turn on a pinned request must not fail over on rate limit")
	assert.Equal(t, ModelVision, caller.calls[0].model, "the image overrides the pinned model choice")
}

func TestRunPinnedRateLimitedFailsImmediately(t *testing.T) {
	caller := &fakeCaller{responses: []fakeResponse{
		{err: &AttemptError{Kind: FailRateLimited, Model: ModelCoderPro, Status: 429}},
	}}
	engine := newTestEngine(caller)

	req := userTurn("hi")
	req.Model = ModelCoderPro
	_, err := engine.Run(context.Background(), req, nil)

	var failure *TurnFailure
	require.ErrorAs(t, err, &failure)
	assert.True(t, failure.RateLimited)
	assert.Len(t, caller.calls, 1, "rate-limited pinned model must not be retried or failed over")
}

func TestRunPinnedBusyGrowsFallbacksOnce(t *testing.T) {
	caller := &fakeCaller{responses: []fakeResponse{
		{err: &AttemptError{Kind: FailServiceBusy, Model: ModelCoderPro, Status: 503}},
		{content: "rescued"},
	}}
	engine := newTestEngine(caller)

	req := userTurn("hi")
	req.Model = ModelCoderPro
	result, err := engine.Run(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, "rescued", result.Content)

	require.Len(t, caller.calls, 2)
	assert.Equal(t, ModelCoderPro, caller.calls[0].model)
	assert.NotEqual(t, ModelCoderPro, caller.calls[1].model)
}

func TestRunPinnedBusyExhaustsGrownQueue(t *testing.T) {
	busy := func(model string) fakeResponse {
		return fakeResponse{err: &AttemptError{Kind: FailServiceBusy, Model: model, Status: 502}}
	}
	caller := &fakeCaller{responses: []fakeResponse{
		busy(ModelCoderPro), busy(""), busy(""),
	}}
	engine := newTestEngine(caller)

	req := userTurn("hi")
	req.Model = ModelCoderPro
	_, err := engine.Run(context.Background(), req, nil)

	var failure *TurnFailure
	require.ErrorAs(t, err, &failure)
	assert.True(t, failure.ServiceBusy)
	assert.Len(t, caller.calls, 3, "pinned + busy grows by at most two fallbacks, once")
}

func TestRunAutoFailsOverOnBusy(t *testing.T) {
	caller := &fakeCaller{responses: []fakeResponse{
		{err: &AttemptError{Kind: FailServiceBusy, Model: ModelGeneralText, Status: 503}},
		{content: "second model answer"},
	}}
	engine := newTestEngine(caller)

	result, err := engine.Run(context.Background(), userTurn("hi"), nil)
	require.NoError(t, err)
	assert.Equal(t, "second model answer", result.Content)
	assert.Equal(t, ModelVision, result.Model)
}

func TestRunFailoverPausesByFailureClass(t *testing.T) {
	cases := []struct {
		name   string
		kind   FailureKind
		pauses []time.Duration
	}{
		{name: "rate limited advances without pause", kind: FailRateLimited, pauses: nil},
		{name: "service busy pauses one second", kind: FailServiceBusy, pauses: []time.Duration{busySwitchPause}},
		{name: "network pauses half a second", kind: FailNetwork, pauses: []time.Duration{otherSwitchPause}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			caller := &fakeCaller{responses: []fakeResponse{
				{err: &AttemptError{Kind: tc.kind, Model: ModelGeneralText}},
				{content: "rescued"},
			}}
			var slept []time.Duration
			engine := NewEngine(DefaultRegistry(), caller, withSleep(func(_ context.Context, d time.Duration) error {
				slept = append(slept, d)
				return nil
			}))

			result, err := engine.Run(context.Background(), userTurn("hi"), nil)
			require.NoError(t, err)
			assert.Equal(t, "rescued", result.Content)
			assert.Equal(t, tc.pauses, slept)
		})
	}
}

func TestRunBusyThenUnknownReportsUnreachable(t *testing.T) {
	caller := &fakeCaller{responses: []fakeResponse{
		{err: &AttemptError{Kind: FailServiceBusy, Model: ModelGeneralText, Status: 503}},
		{err: &AttemptError{Kind: FailUnknown, Model: ModelVision, Message: "provider exploded"}},
	}}
	engine := newTestEngine(caller)

	_, err := engine.Run(context.Background(), userTurn("hello there"), nil)

	var failure *TurnFailure
	require.ErrorAs(t, err, &failure)
	assert.False(t, failure.ServiceBusy, "only a final busy failure reports the busy message")
	assert.False(t, failure.RateLimited)
}

func TestRunAuthInvalidStopsFailover(t *testing.T) {
	caller := &fakeCaller{responses: []fakeResponse{
		{err: &AttemptError{Kind: FailAuthInvalid, Model: ModelGeneralText, Status: 401, Message: "Invalid API key provided"}},
	}}
	engine := newTestEngine(caller)

	_, err := engine.Run(context.Background(), userTurn("hi"), nil)

	var failure *TurnFailure
	require.ErrorAs(t, err, &failure)
	assert.True(t, failure.Config)
	assert.Equal(t, "Invalid API key provided", failure.Message)
	assert.Len(t, caller.calls, 1)
}

func TestRunConfigErrorShortCircuits(t *testing.T) {
	caller := &fakeCaller{}
	engine := newTestEngine(caller, WithConfigError(&ConfigError{Message: ConfigErrorMessage}))

	_, err := engine.Run(context.Background(), userTurn("hi"), nil)

	var failure *TurnFailure
	require.ErrorAs(t, err, &failure)
	assert.True(t, failure.Config)
	assert.Empty(t, caller.calls, "no outbound call may happen with a bad configuration")
}

func TestRunArabicFailureMessage(t *testing.T) {
	caller := &fakeCaller{responses: []fakeResponse{
		{err: &AttemptError{Kind: FailNetwork, Model: ModelGeneralText}},
		{err: &AttemptError{Kind: FailNetwork, Model: ModelVision}},
	}}
	engine := newTestEngine(caller)

	_, err := engine.Run(context.Background(), userTurn("مرحبا كيف حالك"), nil)

	var failure *TurnFailure
	require.ErrorAs(t, err, &failure)
	assert.True(t, strings.ContainsRune(failure.Message, 'ع') || IsArabic(failure.Message),
		"failure message should be in the user's language")
}

func TestRunSameModelRetryWithinBudget(t *testing.T) {
	caller := &fakeCaller{responses: []fakeResponse{
		{err: &AttemptError{Kind: FailNetwork, Model: ModelGeneralText}},
		{content: "second try"},
	}}
	engine := newTestEngine(caller, WithBackoff(BackoffPolicy{
		Base:       time.Millisecond,
		Cap:        time.Millisecond,
		MaxRetries: 1,
	}))

	result, err := engine.Run(context.Background(), userTurn("hi"), nil)
	require.NoError(t, err)
	assert.Equal(t, "second try", result.Content)
	require.Len(t, caller.calls, 2)
	assert.Equal(t, caller.calls[0].model, caller.calls[1].model, "retry must stay on the same model")
}

func TestRunStreamingForwardsChunks(t *testing.T) {
	caller := &fakeCaller{responses: []fakeResponse{{content: "streamed text"}}}
	engine := newTestEngine(caller)

	var got []string
	result, err := engine.Run(context.Background(), userTurn("hi"), func(chunk string) {
		got = append(got, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "streamed text", result.Content)
	assert.Equal(t, []string{"streamed text"}, got)
	require.Len(t, caller.calls, 1)
	assert.True(t, caller.calls[0].streamed)
}
