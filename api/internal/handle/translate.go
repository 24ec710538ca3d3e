package handle

import (
	"mime"
	"net/http"
	"strings"

	"github.com/jbh6357/VOYZ/api/internal/translate"
)

type translateTextsReq struct {
	Texts          []string `json:"texts"`
	TargetLanguage string   `json:"targetLanguage"`
}

func (h *Handle) translator() (Translator, error) {
	if h.Translator == nil {
		return nil, translate.ErrNotConfigured
	}
	return h.Translator, nil
}

func (h *Handle) TranslateTexts(w http.ResponseWriter, r *http.Request) {
	var req translateTextsReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if len(req.Texts) == 0 {
		writeJSON(w, http.StatusOK, map[string][]string{"translated_texts": {}})
		return
	}
	tr, err := h.translator()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	out, err := tr.Translate(ctx, req.Texts, req.TargetLanguage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"translated_texts": out})
}

type translateReviewsReq struct {
	Reviews        []string `json:"reviews"`
	TargetLanguage string   `json:"targetLanguage"`
}

// TranslateReviews lets the API detect each review's language; reviews arrive in any
// language and usually go to Korean.
func (h *Handle) TranslateReviews(w http.ResponseWriter, r *http.Request) {
	var req translateReviewsReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.TargetLanguage == "" {
		req.TargetLanguage = "ko"
	}
	if len(req.Reviews) == 0 {
		writeJSON(w, http.StatusOK, map[string][]string{"translated_reviews": {}})
		return
	}
	tr, err := h.translator()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	out, err := tr.TranslateDetect(ctx, req.Reviews, req.TargetLanguage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"translated_reviews": out})
}

type translateMenuReq struct {
	MenuName       string `json:"menuName"`
	TargetLanguage string `json:"targetLanguage"`
}

type translateMenuResp struct {
	MenuName       string `json:"menuName"`
	TargetLanguage string `json:"targetLanguage"`
	TranslatedText string `json:"translated_text"`
}

// TranslateMenu accepts JSON or query/form parameters, matching both client styles.
func (h *Handle) TranslateMenu(w http.ResponseWriter, r *http.Request) {
	var req translateMenuReq
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "application/json" {
		if err := decodeJSON(w, r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	} else {
		req.MenuName = r.FormValue("menuName")
		req.TargetLanguage = r.FormValue("targetLanguage")
	}
	req.MenuName = strings.TrimSpace(req.MenuName)
	if req.MenuName == "" {
		h.fail(w, r, invalid("menuName is required"))
		return
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		h.fail(w, r, invalid("targetLanguage is required"))
		return
	}
	tr, err := h.translator()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	out, err := tr.Translate(ctx, []string{req.MenuName}, req.TargetLanguage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, translateMenuResp{
		MenuName:       req.MenuName,
		TargetLanguage: req.TargetLanguage,
		TranslatedText: out[0],
	})
}
