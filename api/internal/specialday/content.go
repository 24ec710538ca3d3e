package specialday

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jbh6357/VOYZ/api/internal/llm"
	"github.com/jbh6357/VOYZ/api/internal/util"
)

// FoodCategories is the closed set a day can be classified into.
var FoodCategories = []string{"한식", "중식", "일식", "양식", "카페", "치킨", "피자", "버거", "분식"}

const (
	categorySystemPrompt = "당신은 음식점 마케팅 전문가입니다. 특일과 음식 카테고리의 연관성을 정확하게 분석합니다."
	contentSystemPrompt  = "당신은 음식점 마케팅 전문가입니다. 특일에 대한 실용적이고 간결한 설명을 제공합니다."
	suggestSystemPrompt  = "당신은 음식점 마케팅 전문가입니다. 특일에 맞춘 매장 프로모션 문구를 JSON으로만 작성합니다."
)

// Info identifies a special day in prompts.
type Info struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
}

type Suggestion struct {
	Success bool   `json:"success"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Writer struct {
	llm    llm.Completer
	logger *zerolog.Logger
}

// NewWriter returns a writer; with a nil completer every call returns its fallback.
func NewWriter(completer llm.Completer, logger *zerolog.Logger) *Writer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Writer{llm: completer, logger: logger}
}

func FallbackContent(name string) string {
	return fmt.Sprintf("%s에 대한 마케팅 기회들을 확인해보세요.", name)
}

func header(d Info) string {
	s := fmt.Sprintf("특일명: %s\n유형: %s\n", d.Name, d.Type)
	if d.Category != "" {
		s += fmt.Sprintf("카테고리: %s\n", d.Category)
	}
	return s
}

func categoryPrompt(d Info) string {
	return "다음 특일에 적합한 음식 카테고리들을 선택해주세요.\n\n" + header(d) + `
선택 가능한 카테고리: ` + strings.Join(FoodCategories, ", ") + `

분류 기준:
1. 해당 특일에 사람들이 실제로 찾는 음식 종류
2. 특일과 자연스러운 연결고리가 있는 음식 (유연하게 해석)
3. 실제 소비 패턴과 마케팅 관점에서 매출 증가가 예상되는 업종
4. 관련성이 전혀 없으면 빈 배열로 응답
5. 억지로 분류하지 말고 확실한 연관성이 있을 때만 선택

예시:
- 초복/중복/말복 → 한식, 치킨 (삼계탕 등 보양식 + 닭 관련 음식)
- 크리스마스 → 양식, 치킨, 피자, 카페 (파티, 데이트, 따뜻한 음료)
- 추석 → 한식 (전통 명절 음식)
- 어린이날 → 치킨, 피자, 버거 (아이들 선호 음식)
- 발렌타인데이 → 카페, 양식 (데이트, 디저트)
- 무역의 날 → (관련성 없음)
- 국제 우표의 날 → (관련성 없음)

응답 형식: 관련 카테고리명만 쉼표로 구분 (예: 한식, 치킨) 또는 관련성이 없으면 아무것도 쓰지 마세요.
`
}

func contentPrompt(d Info) string {
	return "다음 특일에 대한 간단한 설명을 작성해주세요.\n\n" + header(d) + `
조건:
1. 음식점 마케팅 전문가 관점으로 작성
2. 한 줄로 간결하게 (최대 30자)
3. 모달창에 표시될 설명문
4. 자연스럽고 실용적인 톤
5. 모든 날을 중요하게 포장하지 말고 객관적으로 서술
6. GPT스러운 어투 피하기
7. 음식점 사장이 이해하기 쉽게

예시 스타일:
- "가족단위 고객이 많이 찾는 날로, 세트메뉴나 단체 할인이 효과적입니다"
- "직장인들의 회식 수요가 증가하는 시기입니다"
- "일반적인 영업일과 큰 차이가 없지만, 테마 메뉴로 차별화 가능합니다"

설명:`
}

func suggestPrompt(d Info, storeCategory string) string {
	h := header(d)
	if storeCategory != "" {
		h += fmt.Sprintf("매장 업종: %s\n", storeCategory)
	}
	return "다음 특일에 우리 매장에서 진행할 프로모션을 제안해주세요.\n\n" + h + `
조건:
1. title은 20자 이내의 이벤트 이름
2. content는 고객에게 보여줄 2~3문장의 안내문
3. 매장 업종에 맞는 메뉴나 혜택을 구체적으로 언급

응답 형식: {"title": "...", "content": "..."}`
}

// ParseCategories keeps the known categories named in s, deduplicated in order.
func ParseCategories(s string) []string {
	out := []string{}
	for _, part := range strings.Split(strings.ReplaceAll(s, "、", ","), ",") {
		c := strings.NewReplacer(`"`, "", "'", "").Replace(strings.TrimSpace(part))
		c = strings.TrimSpace(c)
		if !known(c) || contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func known(c string) bool { return contains(FoodCategories, c) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Categories never fails; an unavailable engine yields no categories.
func (w *Writer) Categories(ctx context.Context, d Info) []string {
	if w.llm == nil {
		return []string{}
	}
	out, err := w.llm.Complete(ctx, llm.Request{
		System:      categorySystemPrompt,
		Prompt:      categoryPrompt(d),
		Temperature: 0.3,
		MaxTokens:   100,
	})
	if err != nil {
		w.logger.Warn().Err(err).Str("day", d.Name).Msg("category classification failed")
		return []string{}
	}
	return ParseCategories(out)
}

func (w *Writer) Content(ctx context.Context, d Info) string {
	if w.llm == nil {
		return FallbackContent(d.Name)
	}
	out, err := w.llm.Complete(ctx, llm.Request{
		System:      contentSystemPrompt,
		Prompt:      contentPrompt(d),
		Temperature: 0.7,
		MaxTokens:   100,
	})
	out = strings.Trim(strings.TrimSpace(out), `"`)
	if err != nil || out == "" {
		w.logger.Warn().Err(err).Str("day", d.Name).Msg("content generation failed")
		return FallbackContent(d.Name)
	}
	return out
}

// Suggest drafts a promotion for a store; Success is false when the fallback was used.
func (w *Writer) Suggest(ctx context.Context, d Info, storeCategory string) Suggestion {
	fallback := Suggestion{Title: d.Name + " 이벤트", Content: FallbackContent(d.Name)}
	if w.llm == nil {
		return fallback
	}
	out, err := w.llm.Complete(ctx, llm.Request{
		System:      suggestSystemPrompt,
		Prompt:      suggestPrompt(d, storeCategory),
		Temperature: 0.7,
		MaxTokens:   300,
		JSON:        true,
	})
	if err != nil {
		w.logger.Warn().Err(err).Str("day", d.Name).Msg("suggestion failed")
		return fallback
	}

	var s Suggestion
	if err := json.Unmarshal([]byte(util.StripCodeFences(out)), &s); err != nil || s.Title == "" || s.Content == "" {
		w.logger.Warn().Err(err).Str("day", d.Name).Msg("suggestion response unusable")
		return fallback
	}
	s.Success = true
	return s
}
