package handle

import (
	"net/http"

	"github.com/jbh6357/VOYZ/api/internal/reviews"
)

type reviewKeywordsReq struct {
	Comments          []reviews.Comment `json:"comments"`
	PositiveThreshold *float64          `json:"positiveThreshold"`
	NegativeThreshold *float64          `json:"negativeThreshold"`
	TopK              *int              `json:"topK"`
	Mode              string            `json:"mode"`
}

func (h *Handle) ReviewKeywords(w http.ResponseWriter, r *http.Request) {
	var req reviewKeywordsReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	opt := reviews.DefaultOptions()
	if req.PositiveThreshold != nil {
		opt.PositiveThreshold = *req.PositiveThreshold
	}
	if req.NegativeThreshold != nil {
		opt.NegativeThreshold = *req.NegativeThreshold
	}
	if req.TopK != nil {
		opt.TopK = *req.TopK
	}
	if err := opt.Validate(); err != nil {
		h.fail(w, r, invalid("%v", err))
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = reviews.ModeOpenAI
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	res, err := h.Keywords.Extract(ctx, req.Comments, opt, mode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
