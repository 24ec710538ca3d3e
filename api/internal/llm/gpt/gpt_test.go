package gpt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbh6357/VOYZ/api/internal/llm"
)

func newTestEngine(t *testing.T, h http.HandlerFunc) *Engine {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()

	return New("test-key", "gpt-4o-mini", srv.URL+"/v1", 100, &logger)
}

func TestComplete(t *testing.T) {
	var got map[string]any
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  한식, 치킨 "}}]}`))
	})

	out, err := e.Complete(context.Background(), llm.Request{
		System:      "sys",
		Prompt:      "hello",
		Temperature: 0.3,
		MaxTokens:   100,
		JSON:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, "한식, 치킨", out)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 100, got["max_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
	assert.NotNil(t, got["response_format"])
}

func TestComplete_CircuitBreaker(t *testing.T) {
	var calls atomic.Int32
	e := newTestEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad","type":"invalid_request_error"}}`))
	})

	for i := 0; i < circuitBreakerThreshold; i++ {
		_, err := e.Complete(context.Background(), llm.Request{Prompt: "x"})
		require.Error(t, err)
	}

	_, err := e.Complete(context.Background(), llm.Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.Equal(t, int32(circuitBreakerThreshold), calls.Load())
}

func TestComplete_EmptyChoices(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	})

	_, err := e.Complete(context.Background(), llm.Request{Prompt: "x"})
	assert.Error(t, err)
}
