package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jbh6357/VOYZ/api/internal/llm"
	"github.com/jbh6357/VOYZ/api/internal/observability"
)

const maxAttempts = 3

// first pause between attempts; doubles after each retry
var retryDelay = 300 * time.Millisecond

type Engine struct {
	APIKey string
	Model  string

	// extra client options, used to point the client at a test server
	opts []option.ClientOption
}

func New(apiKey, model string, opts ...option.ClientOption) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		opts:   opts,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Complete(ctx context.Context, in llm.Request) (string, error) {
	if e.APIKey == "" {
		return "", llm.ErrNotConfigured
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)...)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", errors.New("gemini: model is nil")
	}
	m.SetTemperature(in.Temperature)
	if in.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(in.MaxTokens))
	}
	if in.JSON {
		m.ResponseMIMEType = "application/json"
	}
	if s := strings.TrimSpace(in.System); s != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(s)}}
	}

	var lastErr error
	delay := retryDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("gemini generate: %w", ctx.Err())
			case <-time.After(delay):
				delay *= 2
			}
		}
		start := time.Now()
		resp, err := m.GenerateContent(ctx, genai.Text(in.Prompt))
		observability.ObserveUpstream("gemini", start, err)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil || !isRetryable(err) {
				break
			}
			continue
		}
		txt := strings.TrimSpace(firstText(resp))
		if txt == "" {
			return "", errors.New("gemini: empty response")
		}
		return txt, nil
	}
	return "", fmt.Errorf("gemini generate: %w", lastErr)
}

// isRetryable reports whether err is a rate limit or a server side failure.
func isRetryable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted:
		return true
	}
	return false
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
