// Package telegram answers menu photos sent to the bot with the parsed menu.
package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/jbh6357/VOYZ/api/internal/menuscan"
	"github.com/jbh6357/VOYZ/api/internal/ocr"
	"github.com/jbh6357/VOYZ/api/internal/translate"
)

// Bot is the subset of *tgbotapi.BotAPI the router calls.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Scanner interface {
	ScanWith(ctx context.Context, rec ocr.Recognizer, image []byte) (menuscan.Result, error)
}

type Translator interface {
	Translate(ctx context.Context, texts []string, target string) ([]string, error)
}

type Router struct {
	Bot        Bot
	Menus      Scanner
	EngManager *ocr.Manager
	// Translator is optional; without it /lang is unavailable.
	Translator Translator
	Logger     *zerolog.Logger
	HTTP       *http.Client
	Debounce   time.Duration

	batches sync.Map // key -> *photoBatch
	langs   chatLangs
}

func (r *Router) logger() *zerolog.Logger {
	if r.Logger == nil {
		nop := zerolog.Nop()
		r.Logger = &nop
	}
	return r.Logger
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	switch {
	case msg.IsCommand():
		r.HandleCommand(msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(ctx, msg, msg.Photo[len(msg.Photo)-1].FileID)
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		r.acceptPhoto(ctx, msg, msg.Document.FileID)
	case msg.Text != "":
		r.send(msg.Chat.ID, "메뉴판 사진을 보내주세요. 도움말은 /start")
	}
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		r.send(cid, "메뉴판 사진을 보내주시면 메뉴 이름과 가격을 정리해 드립니다.\n"+
			"여러 장은 앨범으로 보내면 한 번에 처리합니다.\n"+
			"명령어: /health, /engine, /lang")
	case "health":
		r.send(cid, "✅ OK")
	case "engine":
		r.handleEngineCommand(cid, args)
	case "lang":
		r.handleLangCommand(cid, args)
	default:
		r.send(cid, "알 수 없는 명령어입니다.")
	}
}

// handleEngineCommand switches the OCR engine for the chat.
//
//	/engine           shows the current engine and a picker
//	/engine yandex    switches directly
func (r *Router) handleEngineCommand(chatID int64, args []string) {
	names := r.EngManager.Names()
	if len(names) == 0 {
		r.send(chatID, "설정된 OCR 엔진이 없습니다.")
		return
	}
	if len(args) == 0 {
		cur := ""
		if rec := r.EngManager.Get(chatID); rec != nil {
			cur = rec.Name()
		}
		msg := tgbotapi.NewMessage(chatID, "현재 OCR 엔진: "+orDash(cur)+"\n사용법: /engine "+strings.Join(names, "|"))
		msg.ReplyMarkup = makeEngineKeyboard(names, cur)
		r.sendMsg(msg)
		return
	}
	r.switchEngine(chatID, args[0])
}

func (r *Router) switchEngine(chatID int64, name string) {
	if err := r.EngManager.Set(chatID, name); err != nil {
		r.send(chatID, "알 수 없는 엔진입니다. 사용 가능: "+strings.Join(r.EngManager.Names(), " | "))
		return
	}
	r.send(chatID, "✅ OCR 엔진: "+strings.ToLower(strings.TrimSpace(name)))
}

// handleLangCommand sets the language menu names are translated into; "off" clears it.
func (r *Router) handleLangCommand(chatID int64, args []string) {
	if r.Translator == nil {
		r.send(chatID, "번역 기능이 설정되지 않았습니다.")
		return
	}
	if len(args) == 0 {
		r.send(chatID, "현재 번역 언어: "+orDash(r.langs.get(chatID))+"\n사용법: /lang en | /lang off")
		return
	}
	if strings.EqualFold(args[0], "off") {
		r.langs.set(chatID, "")
		r.send(chatID, "번역을 끕니다.")
		return
	}
	lang, err := translate.NormalizeTarget(args[0])
	if err != nil {
		r.send(chatID, "지원하지 않는 언어 코드입니다: "+args[0])
		return
	}
	r.langs.set(chatID, lang)
	r.send(chatID, "✅ 메뉴 이름을 "+lang+"(으)로 번역합니다.")
}

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, ""))
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	cid := cb.Message.Chat.ID

	if name, ok := strings.CutPrefix(cb.Data, enginePrefix); ok {
		edit := tgbotapi.NewEditMessageReplyMarkup(cid, cb.Message.MessageID, tgbotapi.InlineKeyboardMarkup{
			InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
		})
		_, _ = r.Bot.Send(edit)
		r.switchEngine(cid, name)
	}
}

// reply sends the scan result, translating names when the chat asked for it.
func (r *Router) reply(ctx context.Context, chatID int64, res menuscan.Result) {
	var translated []string
	if lang := r.langs.get(chatID); lang != "" && r.Translator != nil && len(res.Items) > 0 {
		names := make([]string, len(res.Items))
		for i, it := range res.Items {
			names[i] = it.Name
		}
		out, err := r.Translator.Translate(ctx, names, lang)
		if err != nil {
			r.logger().Warn().Err(err).Int64("chat_id", chatID).Str("lang", lang).Msg("menu name translation failed")
		} else {
			translated = out
		}
	}
	r.send(chatID, FormatItems(res.Items, translated))
}

func (r *Router) send(chatID int64, text string) {
	r.sendMsg(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) sendMsg(msg tgbotapi.MessageConfig) {
	if _, err := r.Bot.Send(msg); err != nil {
		r.logger().Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("telegram send failed")
	}
}

func (r *Router) SendError(chatID int64, err error) {
	switch {
	case errors.Is(err, ocr.ErrNotConfigured):
		r.send(chatID, "OCR 엔진이 설정되지 않았습니다. /engine 으로 다른 엔진을 선택해 주세요.")
	case errors.Is(err, context.DeadlineExceeded):
		r.send(chatID, "인식 시간이 초과되었습니다. 잠시 후 다시 시도해 주세요.")
	case errors.Is(err, errDownload):
		r.send(chatID, "사진을 내려받지 못했습니다. 다시 보내주세요.")
	default:
		r.send(chatID, "메뉴 인식에 실패했습니다. 잠시 후 다시 시도해 주세요.")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
