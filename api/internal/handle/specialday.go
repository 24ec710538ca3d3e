package handle

import (
	"net/http"
	"strings"

	"github.com/jbh6357/VOYZ/api/internal/specialday"
)

type matchReq struct {
	MatchRequest specialday.MatchRequest `json:"matchRequest"`
	SpecialDays  []specialday.Day        `json:"specialDays"`
}

func (h *Handle) MatchSpecialDay(w http.ResponseWriter, r *http.Request) {
	var req matchReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, specialday.MatchDays(req.MatchRequest, req.SpecialDays))
}

func (h *Handle) decodeDay(w http.ResponseWriter, r *http.Request, v *specialday.Info) bool {
	if err := decodeJSON(w, r, v); err != nil {
		h.fail(w, r, err)
		return false
	}
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		h.fail(w, r, invalid("name is required"))
		return false
	}
	return true
}

func (h *Handle) SpecialDayCategories(w http.ResponseWriter, r *http.Request) {
	var d specialday.Info
	if !h.decodeDay(w, r, &d) {
		return
	}
	ctx, cancel := h.requestContext(r)
	defer cancel()

	writeJSON(w, http.StatusOK, map[string][]string{"categories": h.SpecialDays.Categories(ctx, d)})
}

func (h *Handle) SpecialDayContent(w http.ResponseWriter, r *http.Request) {
	var d specialday.Info
	if !h.decodeDay(w, r, &d) {
		return
	}
	ctx, cancel := h.requestContext(r)
	defer cancel()

	writeJSON(w, http.StatusOK, map[string]string{"content": h.SpecialDays.Content(ctx, d)})
}

type suggestReq struct {
	specialday.Info
	StoreCategory string `json:"storeCategory"`
}

func (h *Handle) SpecialDaySuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.fail(w, r, invalid("name is required"))
		return
	}
	ctx, cancel := h.requestContext(r)
	defer cancel()

	writeJSON(w, http.StatusOK, h.SpecialDays.Suggest(ctx, req.Info, req.StoreCategory))
}
