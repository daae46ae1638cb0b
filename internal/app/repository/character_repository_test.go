package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sifan077/CharacterVault/config"
	"github.com/sifan077/CharacterVault/internal/app/apperr"
	"github.com/sifan077/CharacterVault/internal/app/model"
	"github.com/sifan077/CharacterVault/internal/infra/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:3001/"

func newTestRepo(t *testing.T) (*characterRepository, *database.DB) {
	t.Helper()
	db, err := database.Open(context.Background(), config.StorageConfig{Path: database.MemoryPath}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.AutoMigrate(context.Background(), db.Gorm, &model.CharacterRecord{}))

	repo := NewCharacterRepository(db.Gorm, testBaseURL).(*characterRepository)
	return repo, db
}

func newRecord(name string) *model.CharacterRecord {
	return &model.CharacterRecord{
		Name:         name,
		Status:       model.StatusAlive,
		Species:      "Human",
		Gender:       model.GenderMale,
		OriginName:   "Earth",
		LocationName: "Earth",
		Image:        "https://example.com/" + name + ".png",
	}
}

func TestCharacterRepository_CreateAssignsIDAndURL(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	first := newRecord("rick")
	require.NoError(t, repo.Create(ctx, first))
	second := newRecord("morty")
	require.NoError(t, repo.Create(ctx, second))

	assert.Equal(t, uint(1), first.ID)
	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, "http://localhost:3001/collection/1", first.URL)
	assert.Equal(t, time.UTC, first.Created.Location())

	stored, err := repo.GetByID(ctx, int64(second.ID))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("http://localhost:3001/collection/%d", second.ID), stored.URL)
	assert.Equal(t, "morty", stored.Name)
	assert.NotNil(t, stored.EpisodeURLs)
}

func TestCharacterRepository_ListNewestFirst(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, newRecord(name)))
	}
	// Same timestamp as "c": the higher id sorts first.
	repo.now = func() time.Time { return base.Add(3 * time.Second) }
	require.NoError(t, repo.Create(ctx, newRecord("d")))

	page, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "d", page[0].Name)
	assert.Equal(t, "c", page[1].Name)

	page, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].Name)
	assert.Equal(t, "a", page[1].Name)

	page, err = repo.List(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = repo.List(ctx, -1, -5)
	require.NoError(t, err)
	assert.Len(t, page, 4)
}

func TestCharacterRepository_CountAndIDs(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newRecord(fmt.Sprintf("c%d", i))))
	}

	total, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	ids, err := repo.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestCharacterRepository_GetByIDMissing(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrCharacterNotFound)

	_, err = repo.GetByID(context.Background(), 0)
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestCharacterRepository_StoreFailure(t *testing.T) {
	repo, db := newTestRepo(t)
	require.NoError(t, db.Close())

	rec := newRecord("rick")
	err := repo.Create(context.Background(), rec)
	var storeErr *apperr.StoreError
	require.True(t, errors.As(err, &storeErr), "got %v", err)
	assert.Equal(t, "create", storeErr.Op)
	assert.Zero(t, rec.ID)

	_, err = repo.List(context.Background(), 10, 0)
	assert.True(t, errors.As(err, &storeErr))
}

func TestRecordURL(t *testing.T) {
	assert.Equal(t, "https://api.example.com/collection/7", RecordURL("https://api.example.com/", 7))
}
