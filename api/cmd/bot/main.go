package main

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/jbh6357/VOYZ/api/internal/app"
	"github.com/jbh6357/VOYZ/api/internal/config"
	"github.com/jbh6357/VOYZ/api/internal/httpserver"
	"github.com/jbh6357/VOYZ/api/internal/observability"
	"github.com/jbh6357/VOYZ/api/internal/ocr"
	"github.com/jbh6357/VOYZ/api/internal/telegram"
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
		logger.Fatal().Err(err).Msg("bot stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is empty")
	}

	db, err := app.Database(ctx, cfg, logger)
	if err != nil {
		return err
	}
	var pinger httpserver.Pinger
	if db != nil {
		defer db.Close()
		pinger = db
	}

	def, others, err := app.Recognizers(ctx, cfg, logger)
	if err != nil {
		return err
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = false
	logger.Info().Str("username", bot.Self.UserName).Msg("telegram bot authorised")

	r := &telegram.Router{
		Bot:        bot,
		Menus:      app.Scanner(def, db, cfg, logger),
		EngManager: ocr.NewManager(def, others...),
		Logger:     logger,
	}
	if cfg.GoogleConfigured() {
		// /lang is offered only with a working backend
		tr, err := app.Translator(ctx, cfg, db, logger)
		if err != nil {
			return err
		}
		r.Translator = tr
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	webhookURL := strings.TrimSpace(cfg.TelegramWebhookURL)
	if webhookURL != "" {
		path := "/webhook/" + shortHash(cfg.TelegramBotToken)
		wh, err := tgbotapi.NewWebhook(strings.TrimRight(webhookURL, "/") + path)
		if err != nil {
			return fmt.Errorf("webhook url: %w", err)
		}
		wh.DropPendingUpdates = true
		if _, err := bot.Request(wh); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		mux.Handle("POST "+path, r.WebhookHandler(bot))
		logger.Info().Msg("webhook mode")
	} else {
		// a webhook left over from an earlier deploy blocks getUpdates
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			logger.Warn().Err(err).Msg("delete webhook")
		}
		go r.RunPolling(ctx, bot)
		logger.Info().Msg("polling mode")
	}

	return httpserver.New(":"+cfg.Port, mux, pinger, logger).Start(ctx)
}

// shortHash keeps the bot token out of the webhook path.
func shortHash(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}
