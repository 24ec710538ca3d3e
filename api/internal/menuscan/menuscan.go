// Package menuscan turns a menu photo into menu items: OCR, line parsing and an
// optional result cache keyed by image hash.
package menuscan

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jbh6357/VOYZ/api/internal/menuparse"
	"github.com/jbh6357/VOYZ/api/internal/observability"
	"github.com/jbh6357/VOYZ/api/internal/ocr"
	"github.com/jbh6357/VOYZ/api/internal/store"
	"github.com/jbh6357/VOYZ/api/internal/util"
)

type Cache interface {
	Find(ctx context.Context, imageHash, engine string, maxAge time.Duration) (*store.MenuRow, error)
	Upsert(ctx context.Context, imageHash, engine, rawText string, items []menuparse.Item) error
}

type Result struct {
	Engine string
	Text   string
	Items  []menuparse.Item
	Cached bool
}

type Scanner struct {
	ocr    ocr.Recognizer
	cache  Cache
	ttl    time.Duration
	logger *zerolog.Logger
}

// New builds a scanner. rec and cache may be nil: without rec every scan fails with
// ocr.ErrNotConfigured, without cache nothing is remembered.
func New(rec ocr.Recognizer, cache Cache, ttl time.Duration, logger *zerolog.Logger) *Scanner {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Scanner{ocr: rec, cache: cache, ttl: ttl, logger: logger}
}

// Recognizer is the default engine, nil when none is configured.
func (s *Scanner) Recognizer() ocr.Recognizer { return s.ocr }

func (s *Scanner) Scan(ctx context.Context, image []byte) (Result, error) {
	return s.ScanWith(ctx, s.ocr, image)
}

// ScanWith runs the pipeline with a specific engine, used for per-chat engine choice.
func (s *Scanner) ScanWith(ctx context.Context, rec ocr.Recognizer, image []byte) (Result, error) {
	if rec == nil {
		return Result{}, ocr.ErrNotConfigured
	}
	if len(image) == 0 {
		return Result{}, util.ErrEmptyImage
	}

	engine := rec.Name()
	hash := util.SHA256Hex(image)

	if row := s.lookup(ctx, hash, engine); row != nil {
		return Result{Engine: engine, Text: row.RawText, Items: row.Items, Cached: true}, nil
	}

	res, err := rec.Recognize(ctx, image)
	if err != nil {
		return Result{}, err
	}
	items := menuparse.ParseLines(res.Lines)
	observability.MenuItemsParsed.Observe(float64(len(items)))

	if s.cache != nil {
		if err := s.cache.Upsert(ctx, hash, engine, res.Text, items); err != nil {
			s.logger.Warn().Err(err).Str("engine", engine).Msg("menu cache save failed")
		}
	}
	return Result{Engine: engine, Text: res.Text, Items: items}, nil
}

func (s *Scanner) lookup(ctx context.Context, hash, engine string) *store.MenuRow {
	if s.cache == nil {
		return nil
	}
	row, err := s.cache.Find(ctx, hash, engine, s.ttl)
	switch {
	case err == nil:
		observability.OCRCacheLookups.WithLabelValues("hit").Inc()
		return row
	case errors.Is(err, store.ErrNotFound):
		observability.OCRCacheLookups.WithLabelValues("miss").Inc()
	default:
		observability.OCRCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Msg("menu cache lookup failed")
	}
	return nil
}
