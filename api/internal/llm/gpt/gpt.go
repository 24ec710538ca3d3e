package gpt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/jbh6357/VOYZ/api/internal/llm"
	"github.com/jbh6357/VOYZ/api/internal/observability"
)

// ErrCircuitBreakerOpen is returned while the engine refuses calls after repeated failures.
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute
	rateLimiterBurst        = 5
)

type Engine struct {
	Model string

	client      *openai.Client
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger

	mu                  sync.Mutex
	consecutiveFailures int
	circuitOpenUntil    time.Time
}

// New builds an engine. baseURL overrides the API endpoint (proxies, tests).
func New(key, model, baseURL string, rps float64, logger *zerolog.Logger) *Engine {
	cfg := openai.DefaultConfig(strings.TrimSpace(key))
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if rps <= 0 {
		rps = 1
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Engine{
		Model:       model,
		client:      openai.NewClientWithConfig(cfg),
		rateLimiter: rate.NewLimiter(rate.Limit(rps), rateLimiterBurst),
		logger:      logger,
	}
}

func (e *Engine) Name() string { return "gpt" }

func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) checkCircuit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if time.Now().Before(e.circuitOpenUntil) {
		return fmt.Errorf("%w until %v", ErrCircuitBreakerOpen, e.circuitOpenUntil)
	}

	return nil
}

func (e *Engine) recordSuccess() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.consecutiveFailures = 0
}

func (e *Engine) recordFailure() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.consecutiveFailures++
	if e.consecutiveFailures >= circuitBreakerThreshold {
		e.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		e.logger.Warn().
			Int("consecutive_failures", e.consecutiveFailures).
			Time("open_until", e.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}

func (e *Engine) Complete(ctx context.Context, in llm.Request) (string, error) {
	if err := e.checkCircuit(); err != nil {
		return "", err
	}

	if err := e.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if s := strings.TrimSpace(in.System); s != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: s})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: in.Prompt})

	req := openai.ChatCompletionRequest{
		Model:       e.Model,
		Messages:    msgs,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	}
	if in.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, req)
	observability.ObserveUpstream("openai", start, err)
	if err != nil {
		e.recordFailure()

		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	e.recordSuccess()

	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	e.logger.Debug().Str("model", e.Model).Int("chars", len(content)).Msg("LLM response")

	return content, nil
}
