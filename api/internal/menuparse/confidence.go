package menuparse

import (
	"hash/fnv"
	"math"
	"unicode/utf8"
)

const (
	baseScore    = 0.5
	markedBonus  = 0.2
	lengthBonus  = 0.1
	hangulBonus  = 0.1
	descBonus    = 0.05
	digitPenalty = 0.15
	jitterSpan   = 50 // thousandths

	minConfidence = 0.30
	maxConfidence = 0.99
)

// confidence scores an item from its features plus a small deterministic jitter taken
// from the name and price hash, so equal inputs always score the same.
func confidence(it Item, marked bool) float64 {
	score := baseScore
	if marked {
		score += markedBonus
	}
	if n := utf8.RuneCountInString(it.Name); n >= 2 && n <= 20 {
		score += lengthBonus
	}
	if hasHangul(it.Name) {
		score += hangulBonus
	}
	if it.Description != "" {
		score += descBonus
	}
	if hasDigit(it.Name) {
		score -= digitPenalty
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(it.Name))
	score += float64(h.Sum32()%jitterSpan) / 1000

	score = math.Max(minConfidence, math.Min(maxConfidence, score))
	return math.Round(score*100) / 100
}
