package reviews

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jbh6357/VOYZ/api/internal/llm"
	"github.com/jbh6357/VOYZ/api/internal/util"
)

const (
	ModeOpenAI = "openai"
	ModeLocal  = "local"

	// reviews longer than this are cut before they go into a prompt
	promptReviewRunes = 300
	promptMaxReviews  = 60
)

type Summary struct {
	PositiveKeywords []string `json:"positiveKeywords"`
	NegativeKeywords []string `json:"negativeKeywords"`
	PositiveCount    int      `json:"positiveCount"`
	NegativeCount    int      `json:"negativeCount"`
	NeutralCount     int      `json:"neutralCount"`
}

type Result struct {
	Mode    string             `json:"mode"`
	Overall Summary            `json:"overall"`
	ByMenu  map[string]Summary `json:"byMenu"`
}

type Analyzer struct {
	llm    llm.Completer
	logger *zerolog.Logger
}

// NewAnalyzer returns an analyzer; completer may be nil, which forces local mode.
func NewAnalyzer(completer llm.Completer, logger *zerolog.Logger) *Analyzer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Analyzer{llm: completer, logger: logger}
}

func (a *Analyzer) Extract(ctx context.Context, comments []Comment, opt Options, mode string) (*Result, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	b := split(comments, opt)
	res := &Result{
		Mode:    ModeLocal,
		Overall: localSummary(b, opt.TopK),
		ByMenu:  map[string]Summary{},
	}

	if strings.EqualFold(strings.TrimSpace(mode), ModeOpenAI) && a.llm != nil &&
		(len(b.positive) > 0 || len(b.negative) > 0) {
		pos, neg, err := a.llmKeywords(ctx, b, opt.TopK)
		if err != nil {
			a.logger.Warn().Err(err).Msg("llm keyword extraction failed, using local")
		} else {
			res.Mode = ModeOpenAI
			res.Overall.PositiveKeywords = pos
			res.Overall.NegativeKeywords = neg
		}
	}

	groups := map[int][]Comment{}
	for _, c := range comments {
		if c.MenuIdx != nil {
			groups[*c.MenuIdx] = append(groups[*c.MenuIdx], c)
		}
	}
	for idx, cs := range groups {
		res.ByMenu[strconv.Itoa(idx)] = localSummary(split(cs, opt), opt.TopK)
	}

	return res, nil
}

func localSummary(b buckets, k int) Summary {
	return Summary{
		PositiveKeywords: topKeywords(b.positive, k),
		NegativeKeywords: topKeywords(b.negative, k),
		PositiveCount:    len(b.positive),
		NegativeCount:    len(b.negative),
		NeutralCount:     b.neutral,
	}
}

const keywordSystemPrompt = "You extract short keywords from restaurant reviews. Answer with JSON only."

func keywordPrompt(b buckets, k int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Extract up to %d keywords for each group of reviews below. ", k)
	sb.WriteString("Keywords are short nouns or noun phrases about food, service, price or atmosphere, ")
	sb.WriteString("written in the language of the reviews. Respond as ")
	sb.WriteString(`{"positiveKeywords": [...], "negativeKeywords": [...]}` + "\n\n")

	writeGroup := func(title string, texts []string) {
		sb.WriteString(title + ":\n")
		for i, t := range texts {
			if i == promptMaxReviews {
				break
			}
			sb.WriteString("- " + util.Truncate(strings.TrimSpace(t), promptReviewRunes) + "\n")
		}
		sb.WriteString("\n")
	}
	writeGroup("Positive reviews", b.positive)
	writeGroup("Negative reviews", b.negative)
	return sb.String()
}

type llmKeywordsResponse struct {
	PositiveKeywords []string `json:"positiveKeywords"`
	NegativeKeywords []string `json:"negativeKeywords"`
}

func (a *Analyzer) llmKeywords(ctx context.Context, b buckets, k int) (pos, neg []string, err error) {
	out, err := a.llm.Complete(ctx, llm.Request{
		System:      keywordSystemPrompt,
		Prompt:      keywordPrompt(b, k),
		Temperature: 0.2,
		MaxTokens:   300,
		JSON:        true,
	})
	if err != nil {
		return nil, nil, err
	}

	var r llmKeywordsResponse
	if err := json.Unmarshal([]byte(util.StripCodeFences(out)), &r); err != nil {
		return nil, nil, fmt.Errorf("decode keywords: %w", err)
	}
	return cleanKeywords(r.PositiveKeywords, k), cleanKeywords(r.NegativeKeywords, k), nil
}

func cleanKeywords(in []string, k int) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, w := range in {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == k {
			break
		}
	}
	return out
}
