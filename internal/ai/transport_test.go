package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userMessages(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func TestCompleteReturnsContent(t *testing.T) {
	var gotAuth, gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")

		var req wireRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ModelGeneralText, req.Model)
		assert.Equal(t, 4000, req.MaxTokens)
		assert.False(t, req.Stream)

		fmt.Fprint(w, completionBody("the answer"))
	}))
	defer server.Close()

	tr := NewTransport("sk-or-test", "https://rafiq.example", WithBaseURL(server.URL))
	content, err := tr.Complete(context.Background(), userMessages("hi"), ModelGeneralText, "", 0.7)
	require.NoError(t, err)
	assert.Equal(t, "the answer", content)
	assert.Equal(t, "Bearer sk-or-test", gotAuth)
	assert.Equal(t, "https://rafiq.example", gotReferer)
}

func TestCompleteStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   FailureKind
	}{
		{http.StatusTooManyRequests, FailRateLimited},
		{http.StatusBadGateway, FailServiceBusy},
		{http.StatusServiceUnavailable, FailServiceBusy},
		{http.StatusUnauthorized, FailAuthInvalid},
		{http.StatusForbidden, FailAuthInvalid},
		{http.StatusInternalServerError, FailUnknown},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("status_%d", tc.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, `{"error":{"message":"upstream says no"}}`)
			}))
			defer server.Close()

			tr := NewTransport("sk-or-test", "", WithBaseURL(server.URL))
			_, err := tr.Complete(context.Background(), userMessages("hi"), ModelGeneralText, "", 0.7)

			var attempt *AttemptError
			require.ErrorAs(t, err, &attempt)
			assert.Equal(t, tc.kind, attempt.Kind)
			assert.Equal(t, tc.status, attempt.Status)
		})
	}
}

func TestCompleteEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, completionBody("   "))
	}))
	defer server.Close()

	tr := NewTransport("sk-or-test", "", WithBaseURL(server.URL))
	_, err := tr.Complete(context.Background(), userMessages("hi"), ModelGeneralText, "", 0.7)

	var attempt *AttemptError
	require.ErrorAs(t, err, &attempt)
	assert.Equal(t, FailEmptyResponse, attempt.Kind)
}

func TestCompleteStripsCJK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, completionBody("hello 世界 world"))
	}))
	defer server.Close()

	tr := NewTransport("sk-or-test", "", WithBaseURL(server.URL))
	content, err := tr.Complete(context.Background(), userMessages("hi"), ModelGeneralText, "", 0.7)
	require.NoError(t, err)
	assert.Equal(t, "hello  world", content)
}

func TestCompleteDeadlineExpiryIsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		// Drain the body so the server's background read can observe the
		// client disconnect and cancel the request context.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	tr := NewTransport("sk-or-test", "", WithBaseURL(server.URL))
	_, err := tr.Complete(ctx, userMessages("hi"), ModelGeneralText, "", 0.7)

	var attempt *AttemptError
	require.ErrorAs(t, err, &attempt)
	assert.Equal(t, FailTimeout, attempt.Kind)
}

func TestCompleteConnectionFailureIsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	tr := NewTransport("sk-or-test", "", WithBaseURL(server.URL))
	_, err := tr.Complete(context.Background(), userMessages("hi"), ModelGeneralText, "", 0.7)

	var attempt *AttemptError
	require.ErrorAs(t, err, &attempt)
	assert.Equal(t, FailNetwork, attempt.Kind)
}

func TestStreamDeadlineExpiryIsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		// Drain the body so the server's background read can observe the
		// client disconnect and cancel the request context.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	tr := NewTransport("sk-or-test", "", WithBaseURL(server.URL))
	_, err := tr.Stream(ctx, userMessages("hi"), ModelGeneralText, "", 0.7, nil)

	var attempt *AttemptError
	require.ErrorAs(t, err, &attempt)
	assert.Equal(t, FailTimeout, attempt.Kind)
}

func TestStreamForwardsFragmentsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req wireRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo \"}}]}\n\n")
		fmt.Fprint(w, "this line is not an event\n")
		fmt.Fprint(w, "data: {malformed json\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"world\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	tr := NewTransport("sk-or-test", "", WithBaseURL(server.URL))
	var got []string
	content, err := tr.Stream(context.Background(), userMessages("hi"), ModelGeneralText, "", 0.7, func(chunk string) {
		got = append(got, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", content)
	assert.Equal(t, []string{"Hel", "lo ", "world"}, got)
}

func TestStreamEmptyAccumulationFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	tr := NewTransport("sk-or-test", "", WithBaseURL(server.URL))
	_, err := tr.Stream(context.Background(), userMessages("hi"), ModelGeneralText, "", 0.7, nil)

	var attempt *AttemptError
	require.ErrorAs(t, err, &attempt)
	assert.Equal(t, FailEmptyResponse, attempt.Kind)
}

func TestStreamFiltersCJKFragments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ok \"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"日本語\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"done\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	tr := NewTransport("sk-or-test", "", WithBaseURL(server.URL))
	var got []string
	content, err := tr.Stream(context.Background(), userMessages("hi"), ModelGeneralText, "", 0.7, func(chunk string) {
		got = append(got, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "ok done", content)
	assert.Equal(t, []string{"ok ", "done"}, got, "an all-CJK fragment disappears entirely")
}

func TestBuildWireMessagesImagePart(t *testing.T) {
	msgs, err := buildWireMessages([]Message{
		{Role: RoleUser, Content: "what is this", Image: "data:image/png;base64,AAAA"},
	}, "system prompt")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	parts, ok := msgs[1].Content.([]wirePart)
	require.True(t, ok)
	require.Len(t, parts, 2)
	assert.Equal(t, "image_url", parts[0].Type)
	assert.Equal(t, "data:image/png;base64,AAAA", parts[0].ImageURL.URL)
	assert.Equal(t, "text", parts[1].Type)
	assert.Equal(t, "what is this", parts[1].Text)
}

func TestBuildWireMessagesRejectsAllBlank(t *testing.T) {
	_, err := buildWireMessages([]Message{
		{Role: RoleUser, Content: "   "},
		{Role: RoleAssistant, Content: ""},
	}, "")
	require.Error(t, err)
}
