package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/testing/testdb"
)

func TestBandRepository_CreateGetUpdate(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	repo := NewBandRepository(tdb.Store)
	ctx := tdb.Ctx()

	band := &model.Band{Name: "Low", Genre: "slowcore", Members: float64(3)}
	require.NoError(t, repo.Create(ctx, band))
	require.NotZero(t, band.ID)

	got, err := repo.GetByID(ctx, band.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Low", got.Name)
	assert.Equal(t, float64(3), got.Members)
	assert.Empty(t, got.Concerts)

	got.Concerts = []model.Ref{{ID: 7, Self: "http://example.com/concerts/7"}}
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, band.ID)
	require.NoError(t, err)
	require.Len(t, again.Concerts, 1)
	assert.Equal(t, model.ID(7), again.Concerts[0].ID)
	assert.Empty(t, again.Concerts[0].Self, "self links are not stored")
}

func TestBandRepository_GetMissing_ReturnsNil(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	repo := NewBandRepository(tdb.Store)

	got, err := repo.GetByID(tdb.Ctx(), 404)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBandRepository_DeleteMissing_ReturnsNotFound(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	repo := NewBandRepository(tdb.Store)

	assert.ErrorIs(t, repo.Delete(tdb.Ctx(), 404), database.ErrNotFound)
}

func TestConcertRepository_ListAndCount(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	repo := NewConcertRepository(tdb.Store)
	ctx := tdb.Ctx()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &model.Concert{Venue: "v", Address: "a", Date: "01-01-2025", Band: model.Ref{ID: 1}}))
	}

	list, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.True(t, list.HasMore)
	assert.Equal(t, 2, list.NextOffset)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUserRepository_GetByAuthID(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	repo := NewUserRepository(tdb.Store)
	ctx := tdb.Ctx()

	require.NoError(t, repo.Create(ctx, &model.User{FirstName: "A", AuthID: "sub-a"}))
	require.NoError(t, repo.Create(ctx, &model.User{FirstName: "B", AuthID: "sub-b"}))

	got, err := repo.GetByAuthID(ctx, "sub-b")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "B", got.FirstName)
	assert.NotNil(t, got.Concerts)

	missing, err := repo.GetByAuthID(ctx, "sub-z")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOAuthStateRepository_ConsumeOnce(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	repo := NewOAuthStateRepository(tdb.Store)
	ctx := tdb.Ctx()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &model.OAuthState{Digest: "abc", CreatedAt: now}))

	got, err := repo.Consume(ctx, "abc", now.Add(-time.Minute))
	require.NoError(t, err)
	require.NotNil(t, got)

	again, err := repo.Consume(ctx, "abc", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Nil(t, again, "a state can be consumed once")
}

func TestOAuthStateRepository_ExpiredStatesArePurged(t *testing.T) {
	t.Parallel()
	tdb := testdb.New(t)
	repo := NewOAuthStateRepository(tdb.Store)
	ctx := tdb.Ctx()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &model.OAuthState{Digest: "old", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &model.OAuthState{Digest: "new", CreatedAt: now}))

	got, err := repo.Consume(ctx, "old", now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, tdb.Count(database.KindOAuthState))
}
