package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jbh6357/VOYZ/api/internal/util"
)

type TranslationRepo struct{ DB *sql.DB }

func NewTranslationRepo(db *sql.DB) *TranslationRepo { return &TranslationRepo{DB: db} }

// Lookup returns the cached translations of texts into target, keyed by source text.
// Texts with no cached row are absent from the map.
func (r *TranslationRepo) Lookup(ctx context.Context, target string, texts []string) (map[string]string, error) {
	out := map[string]string{}
	if len(texts) == 0 {
		return out, nil
	}

	hashes := make([]string, len(texts))
	for i, t := range texts {
		hashes[i] = util.SHA256Hex([]byte(t))
	}
	const q = `
select source_text, translated_text
from translation_cache
where target_lang = $1 and source_hash = any($2)`

	rows, err := r.DB.QueryContext(ctx, q, target, hashes)
	if err != nil {
		return nil, fmt.Errorf("query translation cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var src, dst string
		if err := rows.Scan(&src, &dst); err != nil {
			return nil, err
		}
		out[src] = dst
	}
	return out, rows.Err()
}

// Save upserts translated pairs in one statement.
func (r *TranslationRepo) Save(ctx context.Context, target string, pairs map[string]string) error {
	if len(pairs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`insert into translation_cache (source_hash, target_lang, source_text, translated_text) values `)
	args := make([]any, 0, len(pairs)*4)
	i := 0
	for src, dst := range pairs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", i*4+1, i*4+2, i*4+3, i*4+4)
		args = append(args, util.SHA256Hex([]byte(src)), target, src, dst)
		i++
	}
	sb.WriteString(` on conflict (source_hash, target_lang) do update
set translated_text = excluded.translated_text, created_at = now()`)

	_, err := r.DB.ExecContext(ctx, sb.String(), args...)
	return err
}
