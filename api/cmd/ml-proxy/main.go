package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/jbh6357/VOYZ/api/internal/app"
	"github.com/jbh6357/VOYZ/api/internal/config"
	"github.com/jbh6357/VOYZ/api/internal/dashboard"
	"github.com/jbh6357/VOYZ/api/internal/handle"
	"github.com/jbh6357/VOYZ/api/internal/httpserver"
	"github.com/jbh6357/VOYZ/api/internal/observability"
	"github.com/jbh6357/VOYZ/api/internal/reviews"
	"github.com/jbh6357/VOYZ/api/internal/specialday"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("config")
	}
	logger := observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, &logger); err != nil {
		logger.Fatal().Err(err).Msg("ml-proxy stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	db, err := app.Database(ctx, cfg, logger)
	if err != nil {
		return err
	}
	var pinger httpserver.Pinger
	if db != nil {
		defer db.Close()
		pinger = db
	}

	engines := app.Engines(cfg, logger)
	completer := app.DefaultCompleter(engines)
	if completer == nil {
		logger.Warn().Str("default_llm", cfg.DefaultLLM).Msg("default llm has no api key; using local fallbacks")
	}

	rec, _, err := app.Recognizers(ctx, cfg, logger)
	if err != nil {
		return err
	}

	tr, err := app.Translator(ctx, cfg, db, logger)
	if err != nil {
		return err
	}

	deps := handle.Deps{
		LLMs:           engines,
		Menus:          app.Scanner(rec, db, cfg, logger),
		Translator:     tr,
		Keywords:       reviews.NewAnalyzer(completer, logger),
		SpecialDays:    specialday.NewWriter(completer, logger),
		Dashboard:      dashboard.NewGenerator(nil, nil),
		ServiceTitle:   cfg.ServiceTitle,
		ServiceVersion: cfg.ServiceVersion,
		Timeout:        cfg.RequestTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	}

	srv := httpserver.New(":"+cfg.Port, handle.New(deps).Routes(), pinger, logger)
	logger.Info().
		Str("port", cfg.Port).
		Str("ocr_engine", cfg.OCREngine).
		Str("default_llm", cfg.DefaultLLM).
		Bool("cache", db != nil).
		Msg("ml-proxy listening")
	return srv.Start(ctx)
}
