package reviews

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var stopwords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`
		너무 정말 진짜 아주 완전 그리고 그냥 그래서 하지만 근데 좀 더 또 다시 이 그 저 것 거 수 등 및
		제가 저는 저희 우리 여기 거기 이거 그거 있어요 있습니다 있는 없는 했어요 했는데 합니다 입니다
		이에요 예요 같아요 같은 먹었어요 먹었는데 먹고 먹을 있고 하고 해서 많이 조금 약간 다음 오늘 때
		the a an and or but is are was were be been being it its this that these those to of in on
		for with at as by from very so too really just i we you they he she my our your me us them
		had has have do did does not no yes also all some any here there food place`) {
		stopwords[w] = true
	}
}

// particles dropped from the end of Korean tokens, longest first
var particles = []string{
	"에서는", "으로는", "이랑", "하고", "에서", "으로", "까지", "부터", "보다", "처럼", "한테", "에게",
	"은", "는", "이", "가", "을", "를", "에", "의", "도", "만", "로", "와", "과", "랑",
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana)
}

// tokens lower-cases and splits text into keyword candidates. Runs of Han/kana have no
// spaces between words and are cut into overlapping bigrams.
func tokens(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var out []string
	for _, f := range fields {
		if r, _ := utf8.DecodeRuneInString(f); isCJK(r) {
			rs := []rune(f)
			if len(rs) < 2 {
				continue
			}
			for i := 0; i+1 < len(rs); i++ {
				out = append(out, string(rs[i:i+2]))
			}
			continue
		}
		f = stripParticle(f)
		if utf8.RuneCountInString(f) < 2 || stopwords[f] || isNumber(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func stripParticle(w string) string {
	for _, p := range particles {
		if strings.HasSuffix(w, p) {
			rest := strings.TrimSuffix(w, p)
			if utf8.RuneCountInString(rest) >= 2 {
				return rest
			}
			return w
		}
	}
	return w
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// topKeywords ranks tokens by frequency, ties broken alphabetically. Each text
// counts a token once.
func topKeywords(texts []string, k int) []string {
	counts := map[string]int{}
	for _, t := range texts {
		seen := map[string]bool{}
		for _, tok := range tokens(t) {
			if !seen[tok] {
				seen[tok] = true
				counts[tok]++
			}
		}
	}
	keys := make([]string, 0, len(counts))
	for w := range counts {
		keys = append(keys, w)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > k {
		keys = keys[:k]
	}
	return keys
}
