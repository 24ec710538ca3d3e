package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var errDownload = errors.New("download photo failed")

func (r *Router) acceptPhoto(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	cid := msg.Chat.ID
	imgBytes, err := r.fetchFile(ctx, fileID)
	if err != nil {
		r.SendError(cid, err)
		return
	}

	key := "chat:" + strconv.FormatInt(cid, 10)
	if msg.MediaGroupID != "" {
		key = "grp:" + msg.MediaGroupID
	}

	// the timer outlives a webhook request, so it keeps values but not cancellation
	base := context.WithoutCancel(ctx)
	wait := r.Debounce
	if wait <= 0 {
		wait = debounce
	}

	var b *photoBatch
	for {
		bi, _ := r.batches.LoadOrStore(key, &photoBatch{
			ChatID: cid, Key: key, MediaGroupID: msg.MediaGroupID, images: make([][]byte, 0, 4),
		})
		b = bi.(*photoBatch)
		b.mu.Lock()
		if !b.done {
			break
		}
		// already flushed; start a fresh batch
		b.mu.Unlock()
		r.batches.CompareAndDelete(key, b)
	}
	b.images = append(b.images, imgBytes)
	first := len(b.images) == 1
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(wait, func() { r.processBatch(base, b) })
	b.mu.Unlock()

	if first {
		r.send(cid, "사진을 받았습니다. 메뉴를 읽는 중입니다…")
	}
}

func (r *Router) processBatch(ctx context.Context, b *photoBatch) {
	b.mu.Lock()
	if b.done {
		b.mu.Unlock()
		return
	}
	b.done = true
	images := append([][]byte(nil), b.images...)
	chatID := b.ChatID
	b.mu.Unlock()
	r.batches.CompareAndDelete(b.Key, b)

	if len(images) == 0 {
		return
	}

	merged, err := combineAsOne(images)
	if err != nil {
		r.logger().Warn().Err(err).Int64("chat_id", chatID).Int("pages", len(images)).Msg("combine pages failed")
		r.SendError(chatID, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	res, err := r.Menus.ScanWith(ctx, r.EngManager.Get(chatID), merged)
	if err != nil {
		r.logger().Warn().Err(err).Int64("chat_id", chatID).Int("pages", len(images)).Msg("menu scan failed")
		r.SendError(chatID, err)
		return
	}
	r.logger().Info().
		Int64("chat_id", chatID).
		Str("engine", res.Engine).
		Int("items", len(res.Items)).
		Bool("cached", res.Cached).
		Msg("menu scanned")
	r.reply(ctx, chatID, res)
}

// combineAsOne stacks album pages vertically into one JPEG. A single page is
// returned untouched.
func combineAsOne(images [][]byte) ([]byte, error) {
	if len(images) == 1 {
		return images[0], nil
	}

	decoded := make([]image.Image, 0, len(images))
	maxW, sumH := 0, 0
	for _, b := range images {
		img, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			if try, err2 := tryDecodeStrict(b); err2 == nil {
				img = try
			} else {
				return nil, err
			}
		}
		decoded = append(decoded, img)
		bounds := img.Bounds()
		maxW = max(maxW, bounds.Dx())
		sumH += bounds.Dy()
	}
	if maxW == 0 || sumH == 0 {
		return nil, fmt.Errorf("empty images")
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, sumH))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	y := 0
	for _, img := range decoded {
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		x := (maxW - w) / 2
		draw.Draw(dst, image.Rect(x, y, x+w, y+h), img, img.Bounds().Min, draw.Over)
		y += h
	}

	final := image.Image(dst)
	if totalPx := maxW * sumH; totalPx > maxPixels {
		scale := math.Sqrt(float64(maxPixels) / float64(totalPx))
		newW := max(1, int(float64(maxW)*scale+0.5))
		newH := max(1, int(float64(sumH)*scale+0.5))
		final = scaleDownNN(dst, newW, newH)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, final, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func tryDecodeStrict(b []byte) (image.Image, error) {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return jpeg.Decode(bytes.NewReader(b))
	}
	if len(b) >= 8 && bytes.Equal(b[:8], []byte("\x89PNG\r\n\x1a\n")) {
		return png.Decode(bytes.NewReader(b))
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	return img, err
}

func scaleDownNN(src image.Image, newW, newH int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()
	for y := 0; y < newH; y++ {
		sy := sb.Min.Y + (y*srcH)/newH
		for x := 0; x < newW; x++ {
			sx := sb.Min.X + (x*srcW)/newW
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}

// fetchFile downloads a Telegram file. File URLs embed the bot token, so the
// returned error never carries the underlying one; it is logged instead.
func (r *Router) fetchFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err == nil {
		var b []byte
		if b, err = r.download(ctx, url); err == nil {
			return b, nil
		}
	}
	r.logger().Warn().Str("error", redactToken(err.Error(), url)).Str("file_id", fileID).Msg("photo download failed")
	return nil, errDownload
}

func (r *Router) download(ctx context.Context, url string) ([]byte, error) {
	client := r.HTTP
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownload))
}

// redactToken strips the "bot<token>" path segment of a Telegram file URL from s.
func redactToken(s, fileURL string) string {
	const marker = "/bot"
	i := strings.Index(fileURL, marker)
	if i < 0 {
		return s
	}
	seg := fileURL[i+len(marker):]
	if j := strings.IndexByte(seg, '/'); j >= 0 {
		seg = seg[:j]
	}
	if seg == "" {
		return s
	}
	return strings.ReplaceAll(s, seg, "<token>")
}
