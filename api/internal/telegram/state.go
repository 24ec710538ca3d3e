package telegram

import (
	"sync"
	"time"
)

const (
	debounce    = 1200 * time.Millisecond
	maxPixels   = 18_000_000
	maxDownload = 20 << 20
	scanTimeout = 90 * time.Second
)

// photoBatch collects the pages of one album before they are scanned together.
type photoBatch struct {
	ChatID       int64
	Key          string // "grp:<mediaGroupID>" | "chat:<chatID>"
	MediaGroupID string

	mu     sync.Mutex
	images [][]byte
	timer  *time.Timer
	done   bool // set once the batch has been handed to the scanner
}

// chatLangs remembers the /lang target per chat.
type chatLangs struct{ m sync.Map }

func (c *chatLangs) get(chatID int64) string {
	if v, ok := c.m.Load(chatID); ok {
		s, _ := v.(string)
		return s
	}
	return ""
}

func (c *chatLangs) set(chatID int64, lang string) {
	if lang == "" {
		c.m.Delete(chatID)
		return
	}
	c.m.Store(chatID, lang)
}
