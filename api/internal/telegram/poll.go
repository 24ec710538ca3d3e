package telegram

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Poller interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

// retryDelayFromError honours Telegram's 429 "retry after N" and backs off a little
// longer on network timeouts.
func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// RunPolling long-polls until ctx is cancelled. Errors never stop the loop.
func (r *Router) RunPolling(ctx context.Context, bot Poller) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for ctx.Err() == nil {
		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelayFromError(err), baseDelay), maxDelay)
			r.logger().Warn().Err(err).Dur("retry_in", d).Msg("polling error")
			if !sleep(ctx, d) {
				break
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			r.HandleUpdate(ctx, upd)
		}

		if len(updates) == 0 && !sleep(ctx, 200*time.Millisecond) {
			break
		}
	}
	r.logger().Info().Msg("polling stopped")
}

type UpdateDecoder interface {
	HandleUpdate(req *http.Request) (*tgbotapi.Update, error)
}

// WebhookHandler accepts updates pushed by Telegram. Scans run after the response;
// only the photo download happens inside the request.
func (r *Router) WebhookHandler(dec UpdateDecoder) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		upd, err := dec.HandleUpdate(req)
		if err != nil {
			r.logger().Warn().Err(err).Msg("bad webhook update")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		r.HandleUpdate(req.Context(), *upd)
		w.WriteHeader(http.StatusOK)
	}
}
