package ocr

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

var ErrNotConfigured = errors.New("ocr engine is not configured")

type Result struct {
	Text  string   `json:"text"`
	Lines []string `json:"lines"`
}

type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (Result, error)
}

// SplitLines breaks OCR text into trimmed non-empty lines. Never nil.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	out := []string{}
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// NewResult fills Lines from text.
func NewResult(text string) Result {
	text = strings.TrimSpace(text)
	return Result{Text: text, Lines: SplitLines(text)}
}

// Manager keeps a per-chat recognizer choice over a default.
type Manager struct {
	def       Recognizer
	available map[string]Recognizer
	m         sync.Map // chatID -> Recognizer
}

func NewManager(defaultRecognizer Recognizer, others ...Recognizer) *Manager {
	mgr := &Manager{def: defaultRecognizer, available: map[string]Recognizer{}}
	for _, r := range append([]Recognizer{defaultRecognizer}, others...) {
		if r != nil {
			mgr.available[r.Name()] = r
		}
	}
	return mgr
}

// Get returns the chat's recognizer, or nil when none is configured.
func (m *Manager) Get(chatID int64) Recognizer {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Recognizer)
	}
	return m.def
}

// Set switches a chat to the named recognizer.
func (m *Manager) Set(chatID int64, name string) error {
	r, ok := m.available[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ErrNotConfigured
	}
	m.m.Store(chatID, r)
	return nil
}

func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.available))
	for n := range m.available {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
