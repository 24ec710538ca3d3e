package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jbh6357/VOYZ/api/internal/menuparse"
	"github.com/jbh6357/VOYZ/api/internal/util"
)

const (
	maxReplyRunes  = 3900
	enginePrefix   = "engine:"
	noItemsMessage = "메뉴를 찾지 못했습니다. 메뉴판이 잘 보이도록 다시 찍어 보내주세요."
)

func makeEngineKeyboard(names []string, current string) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(names))
	for _, n := range names {
		label := n
		if n == current {
			label = "✅ " + n
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, enginePrefix+n))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// formatWon renders 12000 as "12,000원".
func formatWon(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		s = s[1:]
	}
	var b strings.Builder
	if n < 0 {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString("원")
	return b.String()
}

// FormatItems builds the reply for a scanned menu. translated, when given, holds
// one name per item in the chat's /lang language.
func FormatItems(items []menuparse.Item, translated []string) string {
	if len(items) == 0 {
		return noItemsMessage
	}
	var b strings.Builder
	b.WriteString("📋 메뉴 ")
	b.WriteString(strconv.Itoa(len(items)))
	b.WriteString("개를 찾았습니다:\n\n")
	for i, it := range items {
		b.WriteString("• ")
		b.WriteString(it.Name)
		if i < len(translated) && translated[i] != "" && translated[i] != it.Name {
			b.WriteString(" (")
			b.WriteString(translated[i])
			b.WriteString(")")
		}
		b.WriteString(" — ")
		b.WriteString(formatWon(it.Price))
		if it.Category != "" {
			b.WriteString(" [")
			b.WriteString(it.Category)
			b.WriteString("]")
		}
		b.WriteString("\n")
	}
	return util.Truncate(strings.TrimRight(b.String(), "\n"), maxReplyRunes)
}
