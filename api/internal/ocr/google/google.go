// Package google reads menu photos with Cloud Vision document text detection.
package google

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/jbh6357/VOYZ/api/internal/observability"
	"github.com/jbh6357/VOYZ/api/internal/ocr"
	"github.com/jbh6357/VOYZ/api/internal/util"
)

const featureDocumentText = "DOCUMENT_TEXT_DETECTION"

type Recognizer struct {
	svc         *vision.Service
	hints       []string
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// New dials the Vision API. Credentials come from opts (an API key) or the environment.
func New(ctx context.Context, hints []string, rps float64, logger *zerolog.Logger, opts ...option.ClientOption) (*Recognizer, error) {
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}
	if rps <= 0 {
		rps = 1
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Recognizer{
		svc:         svc,
		hints:       hints,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		logger:      logger,
	}, nil
}

func (r *Recognizer) Name() string { return "google" }

func (r *Recognizer) Recognize(ctx context.Context, image []byte) (res ocr.Result, err error) {
	if len(image) == 0 {
		return ocr.Result{}, util.ErrEmptyImage
	}
	if err := r.rateLimiter.Wait(ctx); err != nil {
		return ocr.Result{}, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	defer func() { observability.ObserveUpstream("google_vision", start, err) }()

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{{Type: featureDocumentText}},
			ImageContext: &vision.ImageContext{
				LanguageHints: r.hints,
			},
		}},
	}

	resp, err := r.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		r.logger.Warn().Err(err).Str("vendor", "google_vision").Msg("annotate failed")
		return ocr.Result{}, fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return ocr.NewResult(""), nil
	}

	ar := resp.Responses[0]
	if ar.Error != nil && ar.Error.Message != "" {
		return ocr.Result{}, errors.New("vision: " + ar.Error.Message)
	}
	return ocr.NewResult(text(ar)), nil
}

// text prefers the document annotation; the first text annotation holds the same
// content for plain TEXT_DETECTION responses.
func text(ar *vision.AnnotateImageResponse) string {
	if ar.FullTextAnnotation != nil && strings.TrimSpace(ar.FullTextAnnotation.Text) != "" {
		return ar.FullTextAnnotation.Text
	}
	if len(ar.TextAnnotations) > 0 {
		return ar.TextAnnotations[0].Description
	}
	return ""
}
