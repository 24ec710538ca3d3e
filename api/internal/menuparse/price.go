package menuparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Accepted price range in won.
const (
	MinPrice = 500
	MaxPrice = 1_000_000
)

type priceToken struct {
	start, end int // byte offsets in the line
	value      int
	marked     bool // currency sign, unit or thousands separator present
}

// Submatch groups: 1 currency, 2 만, 3 천 after 만, 4 원 after 만, 5 bare 천, 6 원 after bare 천,
// 7 plain number, 8 unit, 9 short thousands form, 10 unit after short form.
var rePrice = regexp.MustCompile(`(?i)([₩\\]\s*)?(?:` +
	`(\d{1,3})\s*만\s*(?:(\d)\s*천)?\s*(원)?` +
	`|(\d)\s*천\s*(원)` +
	`|(\d{1,3}(?:[,.]\d{3})+|\d{3,7})(?:\s*(원|won|krw))?` +
	`|(\d{1,2}\.\d)(?:\s*(원))?` +
	`)`)

func group(line string, m []int, g int) string {
	if m[2*g] < 0 {
		return ""
	}
	return line[m[2*g]:m[2*g+1]]
}

// findPrices returns every price token in line, left to right.
func findPrices(line string) []priceToken {
	var out []priceToken
	for _, m := range rePrice.FindAllStringSubmatchIndex(line, -1) {
		if !bounded(line, m[0], m[1]) {
			continue
		}
		tok := priceToken{start: m[0], end: m[1], marked: group(line, m, 1) != ""}
		switch {
		case group(line, m, 2) != "":
			man, _ := strconv.Atoi(group(line, m, 2))
			chun, _ := strconv.Atoi(group(line, m, 3))
			tok.value = man*10000 + chun*1000
			tok.marked = true
		case group(line, m, 5) != "":
			chun, _ := strconv.Atoi(group(line, m, 5))
			tok.value = chun * 1000
			tok.marked = true
		case group(line, m, 7) != "":
			num := group(line, m, 7)
			if strings.ContainsAny(num, ",.") {
				tok.marked = true
				num = strings.NewReplacer(",", "", ".", "").Replace(num)
			}
			tok.value, _ = strconv.Atoi(num)
			tok.marked = tok.marked || group(line, m, 8) != ""
		case group(line, m, 9) != "":
			// "9.5" on a menu board means 9,500 won
			f, err := strconv.ParseFloat(group(line, m, 9), 64)
			if err != nil {
				continue
			}
			tok.value = int(math.Round(f * 1000))
			tok.marked = tok.marked || group(line, m, 10) != ""
		}
		if tok.value < MinPrice || tok.value > MaxPrice {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// bounded rejects matches glued to other digits ("2024.08") or followed by a unit
// word ("300g", "1988치킨").
func bounded(line string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(line[:start])
		if unicode.IsDigit(r) || r == ',' || r == '.' {
			return false
		}
	}
	if end < len(line) {
		r, size := utf8.DecodeRuneInString(line[end:])
		if unicode.IsDigit(r) || unicode.IsLetter(r) {
			return false
		}
		if r == ',' || r == '.' {
			next, _ := utf8.DecodeRuneInString(line[end+size:])
			if unicode.IsDigit(next) {
				return false
			}
		}
	}
	return true
}
