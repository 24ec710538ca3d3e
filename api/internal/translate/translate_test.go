package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type fakeBackend struct {
	calls [][]string
	err   error
}

func (f *fakeBackend) TranslateBatch(_ context.Context, texts []string, target string) ([]string, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, len(texts))
	for i, s := range texts {
		out[i] = target + ":" + s
	}
	return out, nil
}

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"en", "en", false},
		{"EN-us", "en", false},
		{"ja", "ja", false},
		{"zh-CN", "zh-CN", false},
		{"zh_TW", "zh-TW", false},
		{"zh-Hant", "zh-TW", false},
		{"zh", "zh-CN", false},
		{"", "", true},
		{"not a language", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeTarget(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTarget)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate(t *testing.T) {
	fb := &fakeBackend{}
	tr := New(fb, "ko")

	got, err := tr.Translate(context.Background(), []string{"김치", " ", "", "불고기"}, "en")
	require.NoError(t, err)

	assert.Equal(t, []string{"en:김치", " ", "", "en:불고기"}, got)
	assert.Equal(t, [][]string{{"김치", "불고기"}}, fb.calls)
}

func TestTranslate_SourceLanguageShortCircuit(t *testing.T) {
	fb := &fakeBackend{}
	got, err := New(fb, "ko").Translate(context.Background(), []string{"맛있어요"}, "ko-KR")
	require.NoError(t, err)

	assert.Equal(t, []string{"맛있어요"}, got)
	assert.Empty(t, fb.calls)
}

func TestTranslate_EdgeCases(t *testing.T) {
	got, err := New(nil, "ko").Translate(context.Background(), []string{}, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)

	_, err = New(nil, "ko").Translate(context.Background(), []string{"김치"}, "en")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(&fakeBackend{}, "ko").Translate(context.Background(), []string{"김치"}, "??")
	assert.ErrorIs(t, err, ErrInvalidTarget)

	boom := errors.New("quota")
	_, err = New(&fakeBackend{err: boom}, "ko").Translate(context.Background(), []string{"김치"}, "ja")
	assert.ErrorIs(t, err, boom)
}

func TestTranslate_Batches(t *testing.T) {
	texts := make([]string, maxBatch+3)
	for i := range texts {
		texts[i] = "메뉴"
	}
	fb := &fakeBackend{}

	got, err := New(fb, "ko").Translate(context.Background(), texts, "en")
	require.NoError(t, err)

	assert.Len(t, got, maxBatch+3)
	require.Len(t, fb.calls, 2)
	assert.Len(t, fb.calls[0], maxBatch)
	assert.Len(t, fb.calls[1], 3)
}

func TestClient_TranslateBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		assert.Equal(t, []string{"김치", "라면"}, r.Form["q"])
		assert.Equal(t, "en", r.Form.Get("target"))
		assert.Equal(t, "text", r.Form.Get("format"))
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v2"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"translations":[{"translatedText":"Kimchi"},{"translatedText":"Ramen &amp; egg"}]}}`))
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), option.WithEndpoint(srv.URL+"/language/translate/"), option.WithoutAuthentication())
	require.NoError(t, err)

	got, err := c.TranslateBatch(context.Background(), []string{"김치", "라면"}, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kimchi", "Ramen & egg"}, got)
}

type memCache struct {
	m         map[string]string
	lookupErr error
	saved     map[string]string
}

func (c *memCache) Lookup(_ context.Context, target string, texts []string) (map[string]string, error) {
	if c.lookupErr != nil {
		return nil, c.lookupErr
	}
	out := map[string]string{}
	for _, s := range texts {
		if v, ok := c.m[target+"|"+s]; ok {
			out[s] = v
		}
	}
	return out, nil
}

func (c *memCache) Save(_ context.Context, _ string, pairs map[string]string) error {
	c.saved = pairs
	return nil
}

func TestTranslate_Cache(t *testing.T) {
	fb := &fakeBackend{}
	c := &memCache{m: map[string]string{"en|김치": "Kimchi"}}
	tr := New(fb, "ko").WithCache(c, nil)

	got, err := tr.Translate(context.Background(), []string{"김치", "라면", "김치"}, "en")
	require.NoError(t, err)

	assert.Equal(t, []string{"Kimchi", "en:라면", "Kimchi"}, got)
	assert.Equal(t, [][]string{{"라면"}}, fb.calls)
	assert.Equal(t, map[string]string{"라면": "en:라면"}, c.saved)
}

func TestTranslate_CacheHitWithoutBackend(t *testing.T) {
	c := &memCache{m: map[string]string{"ja|김치": "キムチ"}}
	got, err := New(nil, "ko").WithCache(c, nil).Translate(context.Background(), []string{"김치"}, "ja")
	require.NoError(t, err)
	assert.Equal(t, []string{"キムチ"}, got)
}

func TestTranslate_CacheErrorIsMiss(t *testing.T) {
	fb := &fakeBackend{}
	c := &memCache{lookupErr: errors.New("db down")}
	got, err := New(fb, "ko").WithCache(c, nil).Translate(context.Background(), []string{"김치"}, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"en:김치"}, got)
}

func TestTranslateDetect_NoShortCircuit(t *testing.T) {
	fb := &fakeBackend{}
	got, err := New(fb, "ko").TranslateDetect(context.Background(), []string{"Great soup", ""}, "ko")
	require.NoError(t, err)

	assert.Equal(t, []string{"ko:Great soup", ""}, got)
	assert.Len(t, fb.calls, 1)
}
