package handle

import (
	"errors"
	"io"
	"net/http"

	"github.com/jbh6357/VOYZ/api/internal/ocr"
	"github.com/jbh6357/VOYZ/api/internal/util"
)

// multipart overhead allowed on top of the file itself
const multipartSlack = 1 << 20

// MenuOCR reads a menu photo from the "file" form field and returns the parsed items.
func (h *Handle) MenuOCR(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+multipartSlack)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.fail(w, r, err)
			return
		}
		h.fail(w, r, invalid("multipart form with a file field is required"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f, _, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, invalid("file is required"))
		return
	}
	defer f.Close()

	img, err := io.ReadAll(io.LimitReader(f, h.MaxUploadBytes+1))
	if err != nil {
		h.fail(w, r, invalid("read file: %v", err))
		return
	}
	if int64(len(img)) > h.MaxUploadBytes {
		h.fail(w, r, &http.MaxBytesError{Limit: h.MaxUploadBytes})
		return
	}
	if len(img) == 0 {
		h.fail(w, r, util.ErrEmptyImage)
		return
	}
	if !util.IsImage(img) {
		h.fail(w, r, invalid("uploaded file is not an image"))
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	res, err := h.Menus.Scan(ctx, img)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.Logger.Debug().Str("engine", res.Engine).Bool("cached", res.Cached).Int("items", len(res.Items)).Msg("menu scanned")
	writeJSON(w, http.StatusOK, res.Items)
}

type ocrTextReq struct {
	ImageB64 string `json:"image_b64"`
}

type ocrTextResp struct {
	ocr.Result
	Engine string `json:"engine"`
}

func (h *Handle) OCRText(w http.ResponseWriter, r *http.Request) {
	var req ocrTextReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	img, _, err := util.DecodeBase64MaybeDataURL(req.ImageB64)
	if err != nil {
		h.fail(w, r, invalid("bad image_b64: %v", err))
		return
	}

	rec := h.Menus.Recognizer()
	if rec == nil {
		h.fail(w, r, ocr.ErrNotConfigured)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	res, err := rec.Recognize(ctx, img)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ocrTextResp{Result: res, Engine: rec.Name()})
}
