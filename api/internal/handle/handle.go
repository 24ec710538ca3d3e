package handle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jbh6357/VOYZ/api/internal/dashboard"
	"github.com/jbh6357/VOYZ/api/internal/llm"
	"github.com/jbh6357/VOYZ/api/internal/menuscan"
	"github.com/jbh6357/VOYZ/api/internal/ocr"
	"github.com/jbh6357/VOYZ/api/internal/reviews"
	"github.com/jbh6357/VOYZ/api/internal/specialday"
	"github.com/jbh6357/VOYZ/api/internal/stats"
	"github.com/jbh6357/VOYZ/api/internal/translate"
	"github.com/jbh6357/VOYZ/api/internal/util"
)

const (
	maxJSONBody = 4 << 20
	// caller supplied deadlines are capped here
	maxRequestTimeout = 10 * time.Minute
)

type MenuScanner interface {
	Scan(ctx context.Context, image []byte) (menuscan.Result, error)
	Recognizer() ocr.Recognizer
}

type Translator interface {
	Translate(ctx context.Context, texts []string, target string) ([]string, error)
	TranslateDetect(ctx context.Context, texts []string, target string) ([]string, error)
}

type KeywordExtractor interface {
	Extract(ctx context.Context, comments []reviews.Comment, opt reviews.Options, mode string) (*reviews.Result, error)
}

type DayWriter interface {
	Categories(ctx context.Context, d specialday.Info) []string
	Content(ctx context.Context, d specialday.Info) string
	Suggest(ctx context.Context, d specialday.Info, storeCategory string) specialday.Suggestion
}

type Snapshotter interface {
	Snapshot() dashboard.Snapshot
}

// Deps wires the handler. A nil Menus or Translator makes its endpoints answer 503; the
// LLM backed features fall back to local results.
type Deps struct {
	LLMs        *llm.Engines
	Menus       MenuScanner
	Translator  Translator
	Keywords    KeywordExtractor
	SpecialDays DayWriter
	Dashboard   Snapshotter

	ServiceTitle   string
	ServiceVersion string
	Timeout        time.Duration
	MaxUploadBytes int64
	Logger         *zerolog.Logger
}

type Handle struct {
	Deps
	now func() time.Time
}

func New(d Deps) *Handle {
	if d.LLMs == nil {
		d.LLMs = &llm.Engines{}
	}
	if d.Logger == nil {
		nop := zerolog.Nop()
		d.Logger = &nop
	}
	if d.Menus == nil {
		d.Menus = menuscan.New(nil, nil, 0, d.Logger)
	}
	if d.SpecialDays == nil {
		d.SpecialDays = specialday.NewWriter(nil, d.Logger)
	}
	if d.Keywords == nil {
		d.Keywords = reviews.NewAnalyzer(nil, d.Logger)
	}
	if d.Dashboard == nil {
		d.Dashboard = dashboard.NewGenerator(nil, nil)
	}
	if d.Timeout <= 0 {
		d.Timeout = 60 * time.Second
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	return &Handle{Deps: d, now: time.Now}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers in the {"detail": ...} shape existing clients parse.
func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"detail": msg})
}

// badRequest marks an error as the caller's fault.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

// errEmptyBody lets optional-body endpoints tell a missing body from a bad one.
var errEmptyBody error = &badRequest{msg: "request body is empty"}

func invalid(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

func statusFor(err error) int {
	var br *badRequest
	var unknown *stats.UnknownModelError
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &br), errors.As(err, &unknown),
		errors.Is(err, stats.ErrNotEnoughData), errors.Is(err, stats.ErrLengthMismatch),
		errors.Is(err, stats.ErrZeroVariance), errors.Is(err, stats.ErrZeroBase),
		errors.Is(err, stats.ErrEmptyInput), errors.Is(err, reviews.ErrBadThresholds),
		errors.Is(err, translate.ErrInvalidTarget), errors.Is(err, util.ErrEmptyImage):
		return http.StatusBadRequest
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, llm.ErrNotConfigured), errors.Is(err, ocr.ErrNotConfigured),
		errors.Is(err, translate.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// fail logs and writes err with its mapped status.
func (h *Handle) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.Logger.Warn().Err(err).Str("path", r.URL.Path).Int("status", code).Msg("request failed")
	}
	writeError(w, code, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return invalid("bad json: %v", err)
	}
	return nil
}

// requestContext applies the caller's deadline: X-Request-Timeout header, then the
// timeoutSec query parameter, then the configured default.
func (h *Handle) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := h.Timeout
	for _, v := range []string{r.Header.Get("X-Request-Timeout"), r.URL.Query().Get("timeoutSec")} {
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		if sec, err := strconv.ParseFloat(v, 64); err == nil && sec > 0 {
			timeout = time.Duration(min(sec, maxRequestTimeout.Seconds()) * float64(time.Second))
			break
		}
	}
	return context.WithTimeout(r.Context(), timeout)
}
