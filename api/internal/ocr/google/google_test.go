package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

var png = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}

func newTestRecognizer(t *testing.T, h http.HandlerFunc) *Recognizer {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	r, err := New(context.Background(), []string{"ko", "en"}, 100, nil,
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)
	return r
}

func TestRecognize(t *testing.T) {
	r := newTestRecognizer(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/v1/images:annotate", req.URL.Path)

		var body vision.BatchAnnotateImagesRequest
		if !assert.NoError(t, json.NewDecoder(req.Body).Decode(&body)) {
			return
		}
		if assert.Len(t, body.Requests, 1) {
			ar := body.Requests[0]
			assert.Equal(t, featureDocumentText, ar.Features[0].Type)
			assert.Equal(t, []string{"ko", "en"}, ar.ImageContext.LanguageHints)
			assert.NotEmpty(t, ar.Image.Content)
		}

		_ = json.NewEncoder(w).Encode(vision.BatchAnnotateImagesResponse{
			Responses: []*vision.AnnotateImageResponse{{
				FullTextAnnotation: &vision.TextAnnotation{Text: "메뉴\n불고기 12,000원\n"},
			}},
		})
	})

	res, err := r.Recognize(context.Background(), png)
	require.NoError(t, err)
	assert.Equal(t, "메뉴\n불고기 12,000원", res.Text)
	assert.Equal(t, []string{"메뉴", "불고기 12,000원"}, res.Lines)
}

func TestRecognize_TextAnnotationFallback(t *testing.T) {
	r := newTestRecognizer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(vision.BatchAnnotateImagesResponse{
			Responses: []*vision.AnnotateImageResponse{{
				TextAnnotations: []*vision.EntityAnnotation{{Description: "coffee 4.5"}, {Description: "coffee"}},
			}},
		})
	})

	res, err := r.Recognize(context.Background(), png)
	require.NoError(t, err)
	assert.Equal(t, []string{"coffee 4.5"}, res.Lines)
}

func TestRecognize_Errors(t *testing.T) {
	r := newTestRecognizer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(vision.BatchAnnotateImagesResponse{
			Responses: []*vision.AnnotateImageResponse{{
				Error: &vision.Status{Code: 3, Message: "Bad image data."},
			}},
		})
	})

	_, err := r.Recognize(context.Background(), png)
	assert.ErrorContains(t, err, "Bad image data.")

	_, err = r.Recognize(context.Background(), nil)
	assert.Error(t, err)

	down := newTestRecognizer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})
	_, err = down.Recognize(context.Background(), png)
	assert.ErrorContains(t, err, "vision annotate")
}
