package menuscan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbh6357/VOYZ/api/internal/menuparse"
	"github.com/jbh6357/VOYZ/api/internal/ocr"
	"github.com/jbh6357/VOYZ/api/internal/store"
)

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) Name() string { return "fake" }

func (f *fakeOCR) Recognize(context.Context, []byte) (ocr.Result, error) {
	f.calls++
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	return ocr.NewResult(f.text), nil
}

type memCache struct {
	rows    map[string]*store.MenuRow
	findErr error
}

func (c *memCache) Find(_ context.Context, hash, engine string, _ time.Duration) (*store.MenuRow, error) {
	if c.findErr != nil {
		return nil, c.findErr
	}
	if row, ok := c.rows[hash+engine]; ok {
		return row, nil
	}
	return nil, store.ErrNotFound
}

func (c *memCache) Upsert(_ context.Context, hash, engine, raw string, items []menuparse.Item) error {
	c.rows[hash+engine] = &store.MenuRow{ImageHash: hash, Engine: engine, RawText: raw, Items: items}
	return nil
}

var image = []byte{0xFF, 0xD8, 0xFF}

func TestScan_ParsesAndCaches(t *testing.T) {
	rec := &fakeOCR{text: "김치찌개 8,000원\n된장찌개 7,500원"}
	cache := &memCache{rows: map[string]*store.MenuRow{}}
	s := New(rec, cache, time.Hour, nil)

	res, err := s.Scan(context.Background(), image)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, "fake", res.Engine)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "김치찌개", res.Items[0].Name)
	assert.Equal(t, 8000, res.Items[0].Price)

	again, err := s.Scan(context.Background(), image)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, res.Items, again.Items)
	assert.Equal(t, 1, rec.calls)
}

func TestScan_CacheErrorFallsThrough(t *testing.T) {
	rec := &fakeOCR{text: "라면 4,000"}
	s := New(rec, &memCache{rows: map[string]*store.MenuRow{}, findErr: errors.New("db down")}, time.Hour, nil)

	res, err := s.Scan(context.Background(), image)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 1, rec.calls)
}

func TestScan_Errors(t *testing.T) {
	_, err := New(nil, nil, 0, nil).Scan(context.Background(), image)
	assert.ErrorIs(t, err, ocr.ErrNotConfigured)

	boom := errors.New("vision down")
	_, err = New(&fakeOCR{err: boom}, nil, 0, nil).Scan(context.Background(), image)
	assert.ErrorIs(t, err, boom)

	_, err = New(&fakeOCR{}, nil, 0, nil).Scan(context.Background(), nil)
	assert.Error(t, err)
}

func TestScan_EmptyText(t *testing.T) {
	res, err := New(&fakeOCR{text: ""}, nil, 0, nil).Scan(context.Background(), image)
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}
