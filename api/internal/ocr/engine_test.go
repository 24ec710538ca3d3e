package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type named string

func (n named) Name() string { return string(n) }
func (n named) Recognize(context.Context, []byte) (Result, error) {
	return NewResult(string(n)), nil
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, SplitLines(" a \r\n\n  b c\n"))
	assert.Equal(t, []string{}, SplitLines(""))
}

func TestNewResult(t *testing.T) {
	r := NewResult("\n김밥\n라면 4,000\n")
	assert.Equal(t, "김밥\n라면 4,000", r.Text)
	assert.Equal(t, []string{"김밥", "라면 4,000"}, r.Lines)
}

func TestManager(t *testing.T) {
	m := NewManager(named("google"), named("yandex"))

	assert.Equal(t, "google", m.Get(1).Name())
	assert.Equal(t, []string{"google", "yandex"}, m.Names())

	assert.NoError(t, m.Set(1, " Yandex"))
	assert.Equal(t, "yandex", m.Get(1).Name())
	assert.Equal(t, "google", m.Get(2).Name())

	assert.ErrorIs(t, m.Set(1, "tesseract"), ErrNotConfigured)
}

func TestManager_NoDefault(t *testing.T) {
	m := NewManager(nil)
	assert.Nil(t, m.Get(1))
	assert.Empty(t, m.Names())
}
