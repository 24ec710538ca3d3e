// Package translate wraps Cloud Translation v2 for menu names and reviews.
package translate

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
	translatev2 "google.golang.org/api/translate/v2"

	"github.com/jbh6357/VOYZ/api/internal/observability"
)

var (
	ErrNotConfigured  = errors.New("translation is not configured")
	ErrInvalidTarget  = errors.New("invalid target language")
	ErrResultMismatch = errors.New("translation result count mismatch")
)

// maxBatch is the v2 API's limit on q values per call.
const maxBatch = 128

// Backend translates a non-empty batch. Implemented by Client and by fakes in tests.
type Backend interface {
	TranslateBatch(ctx context.Context, texts []string, target string) ([]string, error)
}

// Cache remembers earlier translations. Lookup misses are simply absent from the map.
type Cache interface {
	Lookup(ctx context.Context, target string, texts []string) (map[string]string, error)
	Save(ctx context.Context, target string, pairs map[string]string) error
}

type Client struct {
	svc *translatev2.Service
}

func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := translatev2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create translate service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func (c *Client) TranslateBatch(ctx context.Context, texts []string, target string) (out []string, err error) {
	start := time.Now()
	defer func() { observability.ObserveUpstream("google_translate", start, err) }()

	resp, err := c.svc.Translations.List(texts, target).Format("text").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}
	if len(resp.Translations) != len(texts) {
		return nil, ErrResultMismatch
	}
	out = make([]string, len(texts))
	for i, t := range resp.Translations {
		out[i] = html.UnescapeString(t.TranslatedText)
	}
	return out, nil
}

// Translator adds target normalisation, source short-circuit and blank passthrough
// over a Backend.
type Translator struct {
	backend Backend
	source  language.Base
	cache   Cache
	logger  *zerolog.Logger
}

// New returns a translator; a nil backend makes every real translation fail with
// ErrNotConfigured.
func New(backend Backend, sourceLang string) *Translator {
	src, _ := language.Make(sourceLang).Base()
	nop := zerolog.Nop()
	return &Translator{backend: backend, source: src, logger: &nop}
}

// WithCache makes the translator consult c before the backend. Cache errors are
// logged and treated as misses.
func (t *Translator) WithCache(c Cache, logger *zerolog.Logger) *Translator {
	t.cache = c
	if logger != nil {
		t.logger = logger
	}
	return t
}

// NormalizeTarget turns a user supplied tag ("zh_CN", "EN") into the BCP-47 form the
// API accepts.
func NormalizeTarget(target string) (string, error) {
	t := strings.ReplaceAll(strings.TrimSpace(target), "_", "-")
	if t == "" {
		return "", ErrInvalidTarget
	}
	tag, err := language.Parse(t)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	// the API distinguishes Chinese scripts by region
	if base.String() == "zh" {
		if r, _ := tag.Region(); r.String() == "TW" || r.String() == "HK" {
			return "zh-TW", nil
		}
		if s, _ := tag.Script(); s.String() == "Hant" {
			return "zh-TW", nil
		}
		return "zh-CN", nil
	}
	return base.String(), nil
}

// Translate treats texts as written in the source language: a target with the same
// base language returns them unchanged. Order and length are kept and blank entries
// are returned untouched.
func (t *Translator) Translate(ctx context.Context, texts []string, target string) ([]string, error) {
	return t.translate(ctx, texts, target, true)
}

// TranslateDetect lets the API detect each text's language, for mixed-language input
// such as reviews.
func (t *Translator) TranslateDetect(ctx context.Context, texts []string, target string) ([]string, error) {
	return t.translate(ctx, texts, target, false)
}

func (t *Translator) translate(ctx context.Context, texts []string, target string, knownSource bool) ([]string, error) {
	tgt, err := NormalizeTarget(target)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(texts))
	copy(out, texts)

	if base, _ := language.Make(tgt).Base(); knownSource && base == t.source {
		return out, nil
	}

	var idx []int
	var batch []string
	for i, s := range texts {
		if strings.TrimSpace(s) != "" {
			idx = append(idx, i)
			batch = append(batch, s)
		}
	}
	if len(batch) == 0 {
		return out, nil
	}

	cached := t.lookup(ctx, tgt, batch)
	var missIdx []int
	var miss []string
	for j, s := range batch {
		if v, ok := cached[s]; ok {
			out[idx[j]] = v
			continue
		}
		missIdx = append(missIdx, idx[j])
		miss = append(miss, s)
	}
	if len(miss) == 0 {
		return out, nil
	}
	if t.backend == nil {
		return nil, ErrNotConfigured
	}

	fresh := make(map[string]string, len(miss))
	for lo := 0; lo < len(miss); lo += maxBatch {
		hi := min(lo+maxBatch, len(miss))
		res, err := t.backend.TranslateBatch(ctx, miss[lo:hi], tgt)
		if err != nil {
			return nil, err
		}
		if len(res) != hi-lo {
			return nil, ErrResultMismatch
		}
		for j, s := range res {
			out[missIdx[lo+j]] = s
			fresh[miss[lo+j]] = s
		}
	}

	if t.cache != nil {
		if err := t.cache.Save(ctx, tgt, fresh); err != nil {
			t.logger.Warn().Err(err).Msg("translation cache save failed")
		}
	}
	return out, nil
}

func (t *Translator) lookup(ctx context.Context, target string, texts []string) map[string]string {
	if t.cache == nil {
		return nil
	}
	m, err := t.cache.Lookup(ctx, target, texts)
	if err != nil {
		t.logger.Warn().Err(err).Msg("translation cache lookup failed")
		return nil
	}
	return m
}
