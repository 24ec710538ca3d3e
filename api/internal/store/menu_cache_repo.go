package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jbh6357/VOYZ/api/internal/menuparse"
)

type MenuCacheRepo struct{ DB *sql.DB }

func NewMenuCacheRepo(db *sql.DB) *MenuCacheRepo { return &MenuCacheRepo{DB: db} }

type MenuRow struct {
	CreatedAt time.Time
	ImageHash string
	Engine    string
	RawText   string
	Items     []menuparse.Item
}

// Find returns the cached parse for (imageHash, engine). When maxAge > 0 an older
// row counts as missing.
func (r *MenuCacheRepo) Find(ctx context.Context, imageHash, engine string, maxAge time.Duration) (*MenuRow, error) {
	const q = `
select created_at, raw_text, items_json
from menu_ocr_cache
where image_hash = $1 and engine = $2`

	var (
		ts  time.Time
		raw string
		js  []byte
	)
	if err := r.DB.QueryRowContext(ctx, q, imageHash, engine).Scan(&ts, &raw, &js); err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return nil, ErrNotFound
	}

	items := []menuparse.Item{}
	if err := json.Unmarshal(js, &items); err != nil {
		// a broken row is treated as a miss and gets overwritten
		return nil, ErrNotFound
	}
	return &MenuRow{CreatedAt: ts, ImageHash: imageHash, Engine: engine, RawText: raw, Items: items}, nil
}

// Upsert stores a parse, replacing any previous row for (imageHash, engine).
func (r *MenuCacheRepo) Upsert(ctx context.Context, imageHash, engine, rawText string, items []menuparse.Item) error {
	if items == nil {
		items = []menuparse.Item{}
	}
	js, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	const q = `
insert into menu_ocr_cache (image_hash, engine, raw_text, items_json, item_count)
values ($1, $2, $3, $4, $5)
on conflict (image_hash, engine) do update
set created_at = now(),
    raw_text   = excluded.raw_text,
    items_json = excluded.items_json,
    item_count = excluded.item_count`
	_, err = r.DB.ExecContext(ctx, q, imageHash, engine, rawText, string(js), len(items))
	return err
}

// PurgeOlderThan deletes cache rows past their useful age.
func (r *MenuCacheRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	const q = `delete from menu_ocr_cache where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
