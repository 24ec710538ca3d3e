// Package app builds the vendor clients shared by the HTTP service and the bot.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/jbh6357/VOYZ/api/internal/config"
	"github.com/jbh6357/VOYZ/api/internal/llm"
	"github.com/jbh6357/VOYZ/api/internal/llm/gemini"
	"github.com/jbh6357/VOYZ/api/internal/llm/gpt"
	"github.com/jbh6357/VOYZ/api/internal/menuscan"
	"github.com/jbh6357/VOYZ/api/internal/ocr"
	"github.com/jbh6357/VOYZ/api/internal/ocr/google"
	"github.com/jbh6357/VOYZ/api/internal/ocr/yandex"
	"github.com/jbh6357/VOYZ/api/internal/store"
	"github.com/jbh6357/VOYZ/api/internal/translate"
)

func googleOptions(cfg *config.Config) []option.ClientOption {
	if cfg.GoogleAPIKey != "" {
		return []option.ClientOption{option.WithAPIKey(cfg.GoogleAPIKey)}
	}
	// service account file is picked up from GOOGLE_APPLICATION_CREDENTIALS
	return nil
}

// Engines returns the configured LLM engines; unconfigured vendors stay nil.
func Engines(cfg *config.Config, logger *zerolog.Logger) *llm.Engines {
	engs := &llm.Engines{Default: cfg.DefaultLLM}
	if cfg.OpenAIAPIKey != "" {
		engs.OpenAI = gpt.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.OpenAIRPS, logger)
	}
	if cfg.GeminiAPIKey != "" {
		engs.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	return engs
}

// DefaultCompleter is the engine named by DEFAULT_LLM, or nil.
func DefaultCompleter(engs *llm.Engines) llm.Completer {
	e, err := engs.GetEngine("")
	if err != nil {
		return nil
	}
	return e
}

// Recognizers builds every configured OCR engine. The first one returned is the
// OCR_ENGINE choice; it is nil when that engine lacks credentials.
func Recognizers(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (ocr.Recognizer, []ocr.Recognizer, error) {
	byName := map[string]ocr.Recognizer{}

	if cfg.GoogleConfigured() {
		g, err := google.New(ctx, cfg.OCRLanguageHints, cfg.OCRRPS, logger, googleOptions(cfg)...)
		if err != nil {
			return nil, nil, err
		}
		byName["google"] = g
	}
	if cfg.YCOAuthToken != "" && cfg.YCFolderID != "" {
		byName["yandex"] = yandex.New(cfg.YCOAuthToken, cfg.YCFolderID, cfg.OCRLanguageHints, logger)
	}

	def := byName[cfg.OCREngine]
	var others []ocr.Recognizer
	for name, r := range byName {
		if name != cfg.OCREngine {
			others = append(others, r)
		}
	}
	if def == nil {
		logger.Warn().Str("engine", cfg.OCREngine).Msg("ocr engine has no credentials; menu OCR is disabled")
	}
	return def, others, nil
}

// Translator is always usable for same-language requests. Without Google credentials
// it has no backend and real translations fail with translate.ErrNotConfigured.
func Translator(ctx context.Context, cfg *config.Config, db *sql.DB, logger *zerolog.Logger) (*translate.Translator, error) {
	var backend translate.Backend
	if cfg.GoogleConfigured() {
		c, err := translate.NewClient(ctx, googleOptions(cfg)...)
		if err != nil {
			return nil, err
		}
		backend = c
	} else {
		logger.Warn().Msg("google credentials missing; only same-language translation requests succeed")
	}
	tr := translate.New(backend, cfg.TranslateSourceLang)
	if db != nil {
		tr.WithCache(store.NewTranslationRepo(db), logger)
	}
	return tr, nil
}

// Database opens and migrates DATABASE_URL. Without one it returns nil and caching
// is off.
func Database(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		logger.Info().Msg("DATABASE_URL not set; caches disabled")
		return nil, nil
	}
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if cfg.OCRCacheTTL > 0 {
		if n, err := store.NewMenuCacheRepo(db).PurgeOlderThan(ctx, cfg.OCRCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("purge menu cache")
		} else if n > 0 {
			logger.Info().Int64("rows", n).Msg("purged stale menu cache rows")
		}
	}
	logger.Info().Str("db", store.DSNSummary(cfg.DatabaseURL)).Msg("db connected")
	return db, nil
}

// Scanner wires OCR, parser and cache together.
func Scanner(def ocr.Recognizer, db *sql.DB, cfg *config.Config, logger *zerolog.Logger) *menuscan.Scanner {
	var cache menuscan.Cache
	if db != nil {
		cache = store.NewMenuCacheRepo(db)
	}
	return menuscan.New(def, cache, cfg.OCRCacheTTL, logger)
}
