package menuparse

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces = regexp.MustCompile(`\s+`)
	rePhone  = regexp.MustCompile(`\d{2,4}\s*[-.)]\s*\d{3,4}\s*[-.]\s*\d{4}`)
	reClock  = regexp.MustCompile(`\d{1,2}\s*:\s*\d{2}`)
	reURL    = regexp.MustCompile(`(?i)https?://|www\.|\.(?:com|co\.kr|kr|net)\b|@`)

	reBracketHeader = regexp.MustCompile(`^[\[<【〈《]\s*(.+?)\s*[\]>】〉》]$`)
	reBulletHeader  = regexp.MustCompile(`^[■□●◆◇▶▷★☆※#]+\s*(.+)$`)

	reLeadBullet = regexp.MustCompile(`^(?:[-•·*■□●○◆◇▶▷★☆※>]+|\d{1,2}\s*[.)]\s|[①-⑳])\s*`)
	reLeadTag    = regexp.MustCompile(`(?i)^[\[(【<]\s*(?:new|best|hot|신메뉴|인기|추천)\s*[\])】>]\s*`)
	reTrailer    = regexp.MustCompile(`[\s.·…_\-~=:|/,]+$`)
	reParenLabel = regexp.MustCompile(`^(.*?)\s*\(([^()]+)\)$`)
	rePersons    = regexp.MustCompile(`^\d인(?:분)?$`)
)

// normalizeLine folds compatibility forms (full-width digits, ￦) and collapses whitespace.
func normalizeLine(s string) string {
	s = norm.NFKC.String(s)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var (
	noiseKeywords = []string{
		"영업시간", "영업 시간", "전화", "주소", "휴무", "정기휴일", "주차", "배달", "원산지",
		"부가세", "단위", "라스트오더", "와이파이", "사업자", "계좌",
	}
	reNoiseLatin = regexp.MustCompile(`(?i)\b(?:tel|open|close|closed|vat|wifi|last order|break time)\b`)
)

var headerWords = map[string]bool{"menu": true, "메뉴": true, "메뉴판": true, "차림표": true, "price": true, "가격": true}

// isNoise drops lines that never describe a menu item.
func isNoise(line string) bool {
	if line == "" {
		return true
	}
	if rePhone.MatchString(line) || reClock.MatchString(line) || reURL.MatchString(line) || reNoiseLatin.MatchString(line) {
		return true
	}
	lower := strings.ToLower(line)
	for _, k := range noiseKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	if headerWords[strings.Trim(lower, " .:-=*~[]<>()")] {
		return true
	}
	letters := countLetters(line)
	if letters == 0 || (letters == 1 && utf8.RuneCountInString(line) == 1) {
		// a bare price still carries information for the name above it
		return len(findPrices(line)) == 0
	}
	return false
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func hasHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// section words as they appear on menu boards, by category
var sectionWords = []struct {
	category string
	words    []string
}{
	{CategorySet, []string{"세트메뉴", "세트", "set menu", "set", "combo", "콤보"}},
	{CategorySignature, []string{"시그니처", "signature", "대표메뉴", "추천메뉴", "best menu", "best"}},
	{CategoryAlcohol, []string{"주류", "술", "alcohol", "liquor", "beer", "wine"}},
	{CategoryDrink, []string{"음료", "음료수", "커피", "드링크", "beverage", "drink", "coffee", "tea"}},
	{CategoryDessert, []string{"디저트", "후식", "dessert"}},
	{CategorySide, []string{"사이드", "추가메뉴", "추가", "토핑", "side"}},
	{CategoryMain, []string{"식사", "메인", "요리", "안주", "면류", "밥류", "탕류", "찌개", "main", "meal", "food"}},
}

func exactSection(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "류")
	s = strings.TrimSuffix(s, "s")
	for _, sw := range sectionWords {
		for _, w := range sw.words {
			if s == w {
				return sw.category, true
			}
		}
	}
	return "", false
}

func containedSection(s string) string {
	for _, sw := range sectionWords {
		if containsAny(s, sw.words) {
			return sw.category
		}
	}
	return ""
}

// containsAny matches Hangul words as substrings and Latin words as whole words,
// so "steak" does not read as "tea".
func containsAny(s string, words []string) bool {
	s = strings.ToLower(s)
	var fields []string
	for _, w := range words {
		if !isASCII(w) {
			if strings.Contains(s, w) {
				return true
			}
			continue
		}
		if fields == nil {
			fields = strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		}
		if strings.Contains(w, " ") {
			if strings.Contains(s, w) {
				return true
			}
			continue
		}
		for _, f := range fields {
			if f == w || f == w+"s" || f == w+"es" {
				return true
			}
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// sectionHeader reports whether a price-less line opens a new group of items. An
// unrecognized bracketed header still resets the group and yields an empty category.
func sectionHeader(line string) (string, bool) {
	if m := reBracketHeader.FindStringSubmatch(line); m != nil {
		return containedSection(m[1]), true
	}
	if m := reBulletHeader.FindStringSubmatch(line); m != nil {
		return containedSection(m[1]), true
	}
	return exactSection(line)
}

// keyword hints for item names outside any recognized section
var nameHints = []struct {
	category string
	words    []string
}{
	{CategorySet, []string{"세트", "set", "콤보", "combo"}},
	{CategoryAlcohol, []string{"소주", "맥주", "생맥", "막걸리", "와인", "하이볼", "사케", "위스키", "칵테일", "청하", "복분자", "beer", "wine", "soju", "highball"}},
	{CategoryDrink, []string{"콜라", "사이다", "음료", "커피", "아메리카노", "라떼", "에이드", "주스", "쥬스", "스무디", "아이스티", "녹차", "홍차", "유자차", "생수", "환타", "coffee", "latte", "americano", "ade", "lemonade", "juice", "tea"}},
	{CategoryDessert, []string{"아이스크림", "케이크", "케익", "빙수", "디저트", "와플", "마카롱", "쿠키", "푸딩", "티라미수", "dessert", "cake"}},
	{CategorySide, []string{"공기밥", "사리", "추가", "토핑", "감자튀김", "프렌치프라이", "치즈볼", "계란찜", "계란후라이", "콘치즈", "fries"}},
	{CategorySignature, []string{"시그니처", "signature", "대표", "스페셜", "special"}},
}

func inferCategory(name string) string {
	for _, h := range nameHints {
		if containsAny(name, h.words) {
			return h.category
		}
	}
	return CategoryMain
}

// cleanName strips bullets, promo tags and leader dots around a name candidate.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	s = reLeadBullet.ReplaceAllString(s, "")
	s = reLeadTag.ReplaceAllString(s, "")
	s = reTrailer.ReplaceAllString(s, "")
	s = strings.TrimLeft(s, " .·…_-~=:|/,")
	s = strings.TrimSpace(s)
	if countLetters(s) == 0 {
		return ""
	}
	return s
}

var sizeWords = map[string]bool{
	"소": true, "중": true, "대": true, "특": true, "특대": true, "보통": true, "곱빼기": true,
	"s": true, "m": true, "l": true, "r": true, "small": true, "medium": true, "large": true, "regular": true,
	"hot": true, "ice": true, "iced": true, "반마리": true, "한마리": true, "잔": true, "병": true,
}

func isSizeLabel(s string) bool {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), "()"))
	return sizeWords[s] || rePersons.MatchString(s)
}

// splitSizeLabel separates a trailing size label: "짜장면 소" -> ("짜장면", "소").
func splitSizeLabel(name string) (string, string) {
	if m := reParenLabel.FindStringSubmatch(name); m != nil && m[1] != "" && isSizeLabel(m[2]) {
		return m[1], m[2]
	}
	i := strings.LastIndexByte(name, ' ')
	if i <= 0 {
		return name, ""
	}
	base, last := strings.TrimSpace(name[:i]), name[i+1:]
	if base != "" && countLetters(base) > 0 && isSizeLabel(last) {
		return base, strings.Trim(last, "()")
	}
	return name, ""
}

func withLabel(base, label string) string {
	if label == "" {
		return base
	}
	return base + " (" + label + ")"
}

// isProse reports whether a price-less line reads like a description sentence.
func isProse(line string) bool {
	return strings.Contains(line, " ") && utf8.RuneCountInString(line) >= 8 && countLetters(line) >= 4
}
