package handle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jbh6357/VOYZ/api/internal/llm"
)

type chatReq struct {
	LLMName     string   `json:"llm_name"`
	System      string   `json:"system"`
	Prompt      string   `json:"prompt"`
	Temperature *float32 `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
}

type chatResp struct {
	LLMName string `json:"llm_name"`
	Model   string `json:"model"`
	Content string `json:"content"`
}

// Chat passes one prompt through to the chosen engine.
func (h *Handle) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		h.fail(w, r, invalid("prompt is required"))
		return
	}

	engine, err := h.LLMs.GetEngine(req.LLMName)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			err = invalid("%v", err)
		}
		h.fail(w, r, err)
		return
	}

	temp := float32(0.7)
	if req.Temperature != nil {
		temp = *req.Temperature
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	out, err := engine.Complete(ctx, llm.Request{
		System:      req.System,
		Prompt:      req.Prompt,
		Temperature: temp,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResp{LLMName: engine.Name(), Model: engine.GetModel(), Content: out})
}
