package telegram

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbh6357/VOYZ/api/internal/menuparse"
	"github.com/jbh6357/VOYZ/api/internal/menuscan"
	"github.com/jbh6357/VOYZ/api/internal/ocr"
)

type fakeBot struct {
	mu       sync.Mutex
	texts    []string
	requests int
	fileURL  string
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		b.texts = append(b.texts, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	b.requests++
	b.mu.Unlock()
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetFileDirectURL(fileID string) (string, error) {
	return b.fileURL + "/" + fileID, nil
}

func (b *fakeBot) sent() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.texts...)
}

func (b *fakeBot) last() string {
	s := b.sent()
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}

type fakeRecognizer struct{ name string }

func (f fakeRecognizer) Name() string { return f.name }
func (f fakeRecognizer) Recognize(context.Context, []byte) (ocr.Result, error) {
	return ocr.Result{}, nil
}

type fakeScanner struct {
	mu     sync.Mutex
	images [][]byte
	engine string
	res    menuscan.Result
	err    error
}

func (f *fakeScanner) ScanWith(_ context.Context, rec ocr.Recognizer, image []byte) (menuscan.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, image)
	if rec != nil {
		f.engine = rec.Name()
	}
	return f.res, f.err
}

func (f *fakeScanner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.images)
}

type fakeTranslator struct{ target string }

func (f *fakeTranslator) Translate(_ context.Context, texts []string, target string) ([]string, error) {
	f.target = target
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = "T:" + t
	}
	return out, nil
}

func command(chatID int64, text string) tgbotapi.Update {
	cmd := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func newRouter(bot *fakeBot, sc *fakeScanner) *Router {
	return &Router{
		Bot:        bot,
		Menus:      sc,
		EngManager: ocr.NewManager(fakeRecognizer{"google"}, fakeRecognizer{"yandex"}),
		Debounce:   10 * time.Millisecond,
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFormatWon(t *testing.T) {
	assert.Equal(t, "500원", formatWon(500))
	assert.Equal(t, "9,000원", formatWon(9000))
	assert.Equal(t, "12,000원", formatWon(12000))
	assert.Equal(t, "1,000,000원", formatWon(1000000))
}

func TestFormatItems(t *testing.T) {
	items := []menuparse.Item{
		{Name: "김치찌개", Price: 9000, Category: "한식"},
		{Name: "아메리카노", Price: 4500},
	}

	out := FormatItems(items, nil)
	assert.Equal(t, "📋 메뉴 2개를 찾았습니다:\n\n• 김치찌개 — 9,000원 [한식]\n• 아메리카노 — 4,500원", out)

	out = FormatItems(items, []string{"Kimchi stew", "아메리카노"})
	assert.Contains(t, out, "• 김치찌개 (Kimchi stew) — 9,000원 [한식]")
	assert.Contains(t, out, "• 아메리카노 — 4,500원")

	assert.Equal(t, noItemsMessage, FormatItems(nil, nil))
}

func TestFormatItems_Truncates(t *testing.T) {
	items := make([]menuparse.Item, 400)
	for i := range items {
		items[i] = menuparse.Item{Name: "아주 긴 메뉴 이름입니다", Price: 10000}
	}
	out := FormatItems(items, nil)
	assert.LessOrEqual(t, len([]rune(out)), maxReplyRunes+3)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestHandleCommand_StartAndHealth(t *testing.T) {
	bot := &fakeBot{}
	r := newRouter(bot, &fakeScanner{})

	r.HandleUpdate(context.Background(), command(1, "/start"))
	assert.Contains(t, bot.last(), "/engine")

	r.HandleUpdate(context.Background(), command(1, "/health"))
	assert.Equal(t, "✅ OK", bot.last())

	r.HandleUpdate(context.Background(), command(1, "/nope"))
	assert.Equal(t, "알 수 없는 명령어입니다.", bot.last())
}

func TestHandleCommand_Engine(t *testing.T) {
	bot := &fakeBot{}
	r := newRouter(bot, &fakeScanner{})

	r.HandleUpdate(context.Background(), command(7, "/engine"))
	assert.Contains(t, bot.last(), "현재 OCR 엔진: google")

	r.HandleUpdate(context.Background(), command(7, "/engine Yandex"))
	assert.Equal(t, "✅ OCR 엔진: yandex", bot.last())
	assert.Equal(t, "yandex", r.EngManager.Get(7).Name())
	assert.Equal(t, "google", r.EngManager.Get(8).Name())

	r.HandleUpdate(context.Background(), command(7, "/engine tesseract"))
	assert.Contains(t, bot.last(), "google | yandex")
	assert.Equal(t, "yandex", r.EngManager.Get(7).Name())
}

func TestHandleCommand_EngineNoneConfigured(t *testing.T) {
	bot := &fakeBot{}
	r := &Router{Bot: bot, Menus: &fakeScanner{}, EngManager: ocr.NewManager(nil)}

	r.HandleUpdate(context.Background(), command(1, "/engine"))
	assert.Equal(t, "설정된 OCR 엔진이 없습니다.", bot.last())
}

func TestHandleCallback_SwitchesEngine(t *testing.T) {
	bot := &fakeBot{}
	r := newRouter(bot, &fakeScanner{})

	r.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    enginePrefix + "yandex",
		Message: &tgbotapi.Message{MessageID: 3, Chat: &tgbotapi.Chat{ID: 5}},
	}})

	assert.Equal(t, 1, bot.requests)
	assert.Equal(t, "yandex", r.EngManager.Get(5).Name())
}

func TestHandleCommand_Lang(t *testing.T) {
	bot := &fakeBot{}
	r := newRouter(bot, &fakeScanner{})

	r.HandleUpdate(context.Background(), command(1, "/lang en"))
	assert.Equal(t, "번역 기능이 설정되지 않았습니다.", bot.last())

	r.Translator = &fakeTranslator{}
	r.HandleUpdate(context.Background(), command(1, "/lang zh_TW"))
	assert.Equal(t, "zh-TW", r.langs.get(1))

	r.HandleUpdate(context.Background(), command(1, "/lang !!"))
	assert.Contains(t, bot.last(), "지원하지 않는 언어 코드")
	assert.Equal(t, "zh-TW", r.langs.get(1))

	r.HandleUpdate(context.Background(), command(1, "/lang off"))
	assert.Equal(t, "", r.langs.get(1))
}

func TestPhoto_ScannedAndReplied(t *testing.T) {
	img := pngBytes(t, 4, 4)
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(img)
	}))
	defer files.Close()

	bot := &fakeBot{fileURL: files.URL}
	sc := &fakeScanner{res: menuscan.Result{Engine: "yandex", Items: []menuparse.Item{{Name: "비빔밥", Price: 8000}}}}
	r := newRouter(bot, sc)
	tr := &fakeTranslator{}
	r.Translator = tr
	r.langs.set(2, "en")
	require.NoError(t, r.EngManager.Set(2, "yandex"))

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 2},
		Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
	}})

	require.Eventually(t, func() bool { return sc.calls() == 1 && len(bot.sent()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, img, sc.images[0])
	assert.Equal(t, "yandex", sc.engine)
	assert.Equal(t, "en", tr.target)
	assert.Contains(t, bot.last(), "비빔밥 (T:비빔밥) — 8,000원")
}

func TestPhoto_AlbumIsMerged(t *testing.T) {
	page := pngBytes(t, 10, 20)
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(page)
	}))
	defer files.Close()

	bot := &fakeBot{fileURL: files.URL}
	sc := &fakeScanner{}
	r := newRouter(bot, sc)
	r.Debounce = 50 * time.Millisecond

	for _, id := range []string{"p1", "p2"} {
		r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
			Chat:         &tgbotapi.Chat{ID: 3},
			MediaGroupID: "album",
			Photo:        []tgbotapi.PhotoSize{{FileID: id}},
		}})
	}

	require.Eventually(t, func() bool { return sc.calls() == 1 }, time.Second, 5*time.Millisecond)
	merged, _, err := image.Decode(bytes.NewReader(sc.images[0]))
	require.NoError(t, err)
	assert.Equal(t, 10, merged.Bounds().Dx())
	assert.Equal(t, 40, merged.Bounds().Dy())
	require.Eventually(t, func() bool { return bot.last() == noItemsMessage }, time.Second, 5*time.Millisecond)
}

func TestPhoto_ScanErrors(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("img"))
	}))
	defer files.Close()

	bot := &fakeBot{fileURL: files.URL}
	sc := &fakeScanner{err: ocr.ErrNotConfigured}
	r := newRouter(bot, sc)

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 4},
		Document: &tgbotapi.Document{FileID: "doc", MimeType: "image/jpeg"},
	}})

	require.Eventually(t, func() bool {
		return strings.Contains(bot.last(), "OCR 엔진이 설정되지 않았습니다")
	}, time.Second, 5*time.Millisecond)
}

func TestPhoto_DownloadFailure(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer files.Close()

	bot := &fakeBot{fileURL: files.URL}
	sc := &fakeScanner{}
	r := newRouter(bot, sc)

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 4},
		Photo: []tgbotapi.PhotoSize{{FileID: "x"}},
	}})

	assert.Equal(t, "사진을 내려받지 못했습니다. 다시 보내주세요.", bot.last())
	assert.Equal(t, 0, sc.calls())
}

func TestPhoto_DownloadErrorHidesToken(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	bot := &fakeBot{fileURL: "http://127.0.0.1:1/file/bot123456:SECRET-TOKEN"}
	sc := &fakeScanner{}
	r := newRouter(bot, sc)
	r.Logger = &logger

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 4},
		Photo: []tgbotapi.PhotoSize{{FileID: "x"}},
	}})

	require.NotEmpty(t, bot.sent())
	for _, text := range bot.sent() {
		assert.NotContains(t, text, "SECRET-TOKEN")
		assert.NotContains(t, text, "127.0.0.1")
	}
	assert.Contains(t, logs.String(), "photo download failed")
	assert.NotContains(t, logs.String(), "SECRET-TOKEN")
}

func TestSendError_HidesUpstreamDetail(t *testing.T) {
	bot := &fakeBot{}
	r := newRouter(bot, &fakeScanner{})

	r.SendError(1, errors.New(`Post "https://api.example.com/v1?key=abc": dial tcp: refused`))

	assert.Equal(t, "메뉴 인식에 실패했습니다. 잠시 후 다시 시도해 주세요.", bot.last())
}

func TestRedactToken(t *testing.T) {
	url := "https://api.telegram.org/file/bot123:ABC/photos/file_1.jpg"
	assert.Equal(t, `Get "https://api.telegram.org/file/bot<token>/photos/file_1.jpg": EOF`,
		redactToken(`Get "`+url+`": EOF`, url))
	assert.Equal(t, "boom", redactToken("boom", ""))
}

func TestPhoto_LateAlbumPageStartsNewBatch(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("img"))
	}))
	defer files.Close()

	bot := &fakeBot{fileURL: files.URL}
	sc := &fakeScanner{}
	r := newRouter(bot, sc)
	r.Debounce = time.Hour

	photo := func(id string) tgbotapi.Update {
		return tgbotapi.Update{Message: &tgbotapi.Message{
			Chat:         &tgbotapi.Chat{ID: 6},
			MediaGroupID: "g",
			Photo:        []tgbotapi.PhotoSize{{FileID: id}},
		}}
	}
	r.HandleUpdate(context.Background(), photo("p1"))
	bi, ok := r.batches.Load("grp:g")
	require.True(t, ok)
	first := bi.(*photoBatch)

	// flushed while still registered under the key
	first.mu.Lock()
	first.done = true
	first.timer.Stop()
	first.mu.Unlock()

	r.HandleUpdate(context.Background(), photo("p2"))

	bi, ok = r.batches.Load("grp:g")
	require.True(t, ok)
	second := bi.(*photoBatch)
	assert.NotSame(t, first, second)
	assert.Len(t, first.images, 1)
	assert.Len(t, second.images, 1)

	// a stale flush of an already handled batch does nothing
	r.processBatch(context.Background(), first)
	assert.Equal(t, 0, sc.calls())

	r.processBatch(context.Background(), second)
	assert.Equal(t, 1, sc.calls())
	_, ok = r.batches.Load("grp:g")
	assert.False(t, ok)
	second.timer.Stop()
}

func TestCombineAsOne(t *testing.T) {
	single := []byte("not decoded")
	out, err := combineAsOne([][]byte{single})
	require.NoError(t, err)
	assert.Equal(t, single, out)

	out, err = combineAsOne([][]byte{pngBytes(t, 8, 5), pngBytes(t, 4, 5)})
	require.NoError(t, err)
	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, 8, 10), img.Bounds())

	_, err = combineAsOne([][]byte{[]byte("a"), []byte("b")})
	assert.Error(t, err)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestRetryDelayFromError(t *testing.T) {
	assert.Equal(t, time.Duration(0), retryDelayFromError(nil))
	assert.Equal(t, 7*time.Second, retryDelayFromError(errors.New("Too Many Requests: retry after 7")))
	assert.Equal(t, 3*time.Second, retryDelayFromError(errors.New("Too Many Requests")))
	assert.Equal(t, 2*time.Second, retryDelayFromError(timeoutErr{}))
	assert.Equal(t, time.Second, retryDelayFromError(errors.New("boom")))
}

type fakePoller struct {
	mu      sync.Mutex
	offsets []int
	batches [][]tgbotapi.Update
	cancel  context.CancelFunc
}

func (p *fakePoller) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offsets = append(p.offsets, cfg.Offset)
	if len(p.batches) == 0 {
		p.cancel()
		return nil, nil
	}
	b := p.batches[0]
	p.batches = p.batches[1:]
	return b, nil
}

func TestRunPolling_AdvancesOffset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot := &fakeBot{}
	r := newRouter(bot, &fakeScanner{})
	p := &fakePoller{cancel: cancel, batches: [][]tgbotapi.Update{
		{withID(command(1, "/health"), 10), withID(command(1, "/health"), 11)},
		{withID(command(1, "/health"), 12)},
	}}

	done := make(chan struct{})
	go func() {
		r.RunPolling(ctx, p)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("polling did not stop")
	}
	assert.Equal(t, []int{0, 12, 13}, p.offsets)
	assert.Len(t, bot.sent(), 3)
}

func withID(u tgbotapi.Update, id int) tgbotapi.Update {
	u.UpdateID = id
	return u
}

type fakeDecoder struct {
	upd *tgbotapi.Update
	err error
}

func (d fakeDecoder) HandleUpdate(*http.Request) (*tgbotapi.Update, error) { return d.upd, d.err }

func TestWebhookHandler(t *testing.T) {
	bot := &fakeBot{}
	r := newRouter(bot, &fakeScanner{})

	upd := command(1, "/health")
	rec := httptest.NewRecorder()
	r.WebhookHandler(fakeDecoder{upd: &upd})(rec, httptest.NewRequest(http.MethodPost, "/webhook/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "✅ OK", bot.last())

	rec = httptest.NewRecorder()
	r.WebhookHandler(fakeDecoder{err: errors.New("bad json")})(rec, httptest.NewRequest(http.MethodPost, "/webhook/x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
