package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotConfigured = errors.New("llm engine is not configured")

// Request is one single-turn completion.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	// JSON asks the vendor for a JSON object response.
	JSON bool
}

type Engine interface {
	Name() string
	GetModel() string
	Complete(ctx context.Context, req Request) (string, error)
}

type Engines struct {
	OpenAI  Engine
	Gemini  Engine
	Default string
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = e.Default
	}
	var eng Engine
	switch name {
	case "gpt", "openai":
		eng = e.OpenAI
	case "gemini":
		eng = e.Gemini
	default:
		return nil, fmt.Errorf("unknown llm_name %q; use 'gpt' or 'gemini'", llmName)
	}
	if eng == nil {
		return nil, ErrNotConfigured
	}
	return eng, nil
}

// Completer is what feature packages need from an engine.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
