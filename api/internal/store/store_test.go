package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbh6357/VOYZ/api/internal/menuparse"
	"github.com/jbh6357/VOYZ/api/internal/util"
)

// openTestDB connects to TEST_DATABASE_URL and migrates it; the test is skipped when
// no database is available.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := zerolog.Nop()
	require.NoError(t, Migrate(ctx, db, &logger))
	return db
}

func TestMenuCacheRepo(t *testing.T) {
	db := openTestDB(t)
	repo := NewMenuCacheRepo(db)
	ctx := context.Background()
	hash := util.SHA256Hex([]byte(t.Name() + time.Now().String()))

	_, err := repo.Find(ctx, hash, "google", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	items := []menuparse.Item{{Name: "김치찌개", Price: 8000, Category: menuparse.CategoryMain, Confidence: 0.8}}
	require.NoError(t, repo.Upsert(ctx, hash, "google", "김치찌개 8,000", items))

	row, err := repo.Find(ctx, hash, "google", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, items, row.Items)
	assert.Equal(t, "김치찌개 8,000", row.RawText)

	_, err = repo.Find(ctx, hash, "yandex", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Upsert(ctx, hash, "google", "", nil))
	row, err = repo.Find(ctx, hash, "google", 0)
	require.NoError(t, err)
	assert.Empty(t, row.Items)

	_, err = repo.PurgeOlderThan(ctx, 0)
	assert.Error(t, err)
}

func TestTranslationRepo(t *testing.T) {
	db := openTestDB(t)
	repo := NewTranslationRepo(db)
	ctx := context.Background()
	src := "불고기 " + time.Now().String()

	got, err := repo.Lookup(ctx, "en", []string{src})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repo.Save(ctx, "en", map[string]string{src: "bulgogi"}))
	require.NoError(t, repo.Save(ctx, "en", map[string]string{src: "Bulgogi"}))

	got, err = repo.Lookup(ctx, "en", []string{src, "없는 문장"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{src: "Bulgogi"}, got)

	got, err = repo.Lookup(ctx, "ja", []string{src})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDSNSummary(t *testing.T) {
	assert.Equal(t, "host=db port=5432 db=voyz user=app", DSNSummary("postgres://app:secret@db:5432/voyz?sslmode=disable"))
	assert.Equal(t, "host=db db=voyz user=app", DSNSummary("postgres://app:secret@db/voyz"))
	assert.NotContains(t, DSNSummary("postgres://app:secret@db/voyz"), "secret")
}
