package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/campaign-engine/pkg/campaign"
	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

func setupTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "saves.db"), logger)
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_PutGetDelete(t *testing.T) {
	store := setupTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	rec := NewSaveRecord(campaign.DifficultyEasy, "lv01-anchorage")
	rec.LevelTimes = map[levels.ID]float64{"lv01-anchorage": 312.5}
	require.NoError(t, store.PutSave(ctx, rec))

	got, err := store.GetSave(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, campaign.DifficultyEasy, got.Difficulty)
	assert.Equal(t, 312.5, got.LevelTimes["lv01-anchorage"])

	// Upsert: a second put replaces the row.
	rec.TotalKills = 50
	require.NoError(t, store.PutSave(ctx, rec))
	got, err = store.GetSave(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.TotalKills)

	require.NoError(t, store.DeleteSave(ctx, rec.ID))
	got, err = store.GetSave(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_LatestSave(t *testing.T) {
	store := setupTestSQLite(t)
	ctx := context.Background()

	got, err := store.LatestSave(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	older := NewSaveRecord(campaign.DifficultyNormal, "lv01-anchorage")
	require.NoError(t, store.PutSave(ctx, older))

	time.Sleep(2 * time.Millisecond)
	newer := NewSaveRecord(campaign.DifficultyNormal, "lv05-nest")
	require.NoError(t, store.PutSave(ctx, newer))

	got, err = store.LatestSave(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newer.ID, got.ID)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saves.db")
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	store, err := NewSQLiteStore(path, logger)
	require.NoError(t, err)

	rec := NewSaveRecord(campaign.DifficultyHard, "lv03-colony")
	require.NoError(t, store.PutSave(context.Background(), rec))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path, logger)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetSave(context.Background(), rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, campaign.DifficultyHard, got.Difficulty)
}
