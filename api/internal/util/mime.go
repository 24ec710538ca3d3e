package util

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

var ErrEmptyImage = errors.New("empty image")

// SniffMimeForOCR returns the short format name OCR vendors expect ("JPEG", "PNG", "PDF").
func SniffMimeForOCR(b []byte) string {
	switch {
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8:
		return "JPEG"
	case isPNG(b):
		return "PNG"
	case len(b) >= 5 && string(b[:5]) == "%PDF-":
		return "PDF"
	}
	return ""
}

func SniffMimeHTTP(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	if isPNG(b) {
		return "image/png"
	}
	return http.DetectContentType(b)
}

func isPNG(b []byte) bool {
	return len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A
}

// IsImage reports whether the payload looks like something an OCR engine can read.
func IsImage(b []byte) bool {
	m := SniffMimeHTTP(b)
	return strings.HasPrefix(m, "image/") || m == "application/pdf"
}

// DecodeBase64MaybeDataURL decodes plain base64 or a data: URI. For data URIs the MIME
// from the prefix is returned as well.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var hintMIME string
	if strings.HasPrefix(strings.ToLower(s), "data:") {
		// data:<mime>;base64,<payload>
		if idx := strings.IndexByte(s, ','); idx > 0 {
			meta := s[len("data:"):idx]
			if semi := strings.IndexByte(meta, ';'); semi >= 0 {
				hintMIME = meta[:semi]
			} else {
				hintMIME = meta
			}
			s = s[idx+1:]
		}
	}
	if s == "" {
		return nil, "", ErrEmptyImage
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var err2 error
		if b, err2 = base64.URLEncoding.DecodeString(s); err2 != nil {
			return nil, "", err
		}
	}
	if len(b) == 0 {
		return nil, "", ErrEmptyImage
	}
	return b, hintMIME, nil
}
