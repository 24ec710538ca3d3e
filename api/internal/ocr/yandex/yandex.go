package yandex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jbh6357/VOYZ/api/internal/observability"
	"github.com/jbh6357/VOYZ/api/internal/ocr"
	"github.com/jbh6357/VOYZ/api/internal/util"
)

const defaultOCRURL = "https://ocr.api.cloud.yandex.net/ocr/v1/recognizeText"

type Engine struct {
	iamc     *IamClient
	folderID string
	langs    []string
	url      string
	httpc    *http.Client
	logger   *zerolog.Logger
}

func New(oauthToken, folderID string, langs []string, logger *zerolog.Logger) *Engine {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Engine{
		iamc:     NewIamClient(oauthToken),
		folderID: folderID,
		langs:    langs,
		url:      defaultOCRURL,
		httpc:    &http.Client{Timeout: 60 * time.Second},
		logger:   logger,
	}
}

func (e *Engine) Name() string { return "yandex" }

type request struct {
	Content       string   `json:"content"`
	MimeType      string   `json:"mimeType,omitempty"`      // "JPEG" | "PNG" | "PDF"
	LanguageCodes []string `json:"languageCodes,omitempty"` // ["ko","en"]
	Model         string   `json:"model,omitempty"`
}

type textAnnotation struct {
	FullText string `json:"fullText,omitempty"`
	Blocks   []struct {
		Lines []struct {
			Text string `json:"text,omitempty"`
		} `json:"lines,omitempty"`
	} `json:"blocks,omitempty"`
}

type response struct {
	Result *struct {
		TextAnnotation *textAnnotation `json:"textAnnotation,omitempty"`
	} `json:"result,omitempty"`
}

func (r *response) textAnnotation() *textAnnotation {
	if r == nil || r.Result == nil {
		return nil
	}
	return r.Result.TextAnnotation
}

func (e *Engine) Recognize(ctx context.Context, image []byte) (res ocr.Result, err error) {
	if len(image) == 0 {
		return ocr.Result{}, util.ErrEmptyImage
	}
	start := time.Now()
	defer func() { observability.ObserveUpstream("yandex_ocr", start, err) }()

	payload, err := json.Marshal(request{
		Content:       base64.StdEncoding.EncodeToString(image),
		MimeType:      util.SniffMimeForOCR(image),
		LanguageCodes: e.langs,
		Model:         "page",
	})
	if err != nil {
		return ocr.Result{}, err
	}

	resp, err := e.do(ctx, payload)
	if err != nil {
		return ocr.Result{}, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		e.logger.Warn().Msg("yandex ocr: iam token rejected, refreshing")
		e.iamc.Invalidate()
		if resp, err = e.do(ctx, payload); err != nil {
			return ocr.Result{}, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ocr.Result{}, fmt.Errorf("yandex ocr %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ocr.Result{}, fmt.Errorf("decode yandex ocr: %w", err)
	}
	ta := out.textAnnotation()
	if ta == nil {
		return ocr.NewResult(""), nil
	}
	if t := strings.TrimSpace(ta.FullText); t != "" {
		return ocr.NewResult(t), nil
	}
	// fallback: lines
	var lines []string
	for _, b := range ta.Blocks {
		for _, l := range b.Lines {
			if s := strings.TrimSpace(l.Text); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return ocr.NewResult(strings.Join(lines, "\n")), nil
}

// do sends one recognize call; the request is rebuilt each time so a retry has a fresh body.
func (e *Engine) do(ctx context.Context, payload []byte) (*http.Response, error) {
	iamToken, err := e.iamc.Token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+iamToken)
	req.Header.Set("x-folder-id", e.folderID)
	req.Header.Set("x-data-logging-enabled", "true")

	resp, err := e.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yandex ocr request: %w", err)
	}
	return resp, nil
}
