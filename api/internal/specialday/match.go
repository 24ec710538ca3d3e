// Package specialday matches stores to special days and writes marketing copy for them.
package specialday

import "strings"

type MatchRequest struct {
	UserID        string `json:"userId"`
	StoreCategory string `json:"storeCategory"`
	StoreAddress  string `json:"storeAddress"`
}

type Day struct {
	SdIdx    int    `json:"sd_idx"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type Match struct {
	SdIdx  int    `json:"sd_idx"`
	UserID string `json:"userId"`
}

var bokDays = []string{"초복", "중복", "말복"}

// Relevant reports whether a store of storeCategory benefits from the day.
func Relevant(dayName, storeCategory string) bool {
	if !strings.Contains(storeCategory, "치킨") {
		return false
	}
	for _, b := range bokDays {
		if strings.Contains(dayName, b) {
			return true
		}
	}
	return false
}

// MatchDays keeps the days relevant to the store, in input order. Never nil.
func MatchDays(req MatchRequest, days []Day) []Match {
	out := []Match{}
	for _, d := range days {
		if Relevant(d.Name, req.StoreCategory) {
			out = append(out, Match{SdIdx: d.SdIdx, UserID: req.UserID})
		}
	}
	return out
}
