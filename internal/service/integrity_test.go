package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/repository"
	"github.com/forgo/setlist/api/internal/testing/fixtures"
	"github.com/forgo/setlist/api/internal/testing/testdb"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockBandRepo struct {
	getByIDFunc func(ctx context.Context, id model.ID) (*model.Band, error)
	updateFunc  func(ctx context.Context, band *model.Band) error
}

func (m *mockBandRepo) Create(ctx context.Context, band *model.Band) error { return nil }

func (m *mockBandRepo) GetByID(ctx context.Context, id model.ID) (*model.Band, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBandRepo) Update(ctx context.Context, band *model.Band) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, band)
	}
	return nil
}

func (m *mockBandRepo) Delete(ctx context.Context, id model.ID) error { return nil }

func (m *mockBandRepo) List(ctx context.Context, limit, offset int) (*repository.List[model.Band], error) {
	return &repository.List[model.Band]{}, nil
}

// failingUserRepo fails Update for one user and delegates everything else.
type failingUserRepo struct {
	UserRepository
	failFor model.ID
}

func (r *failingUserRepo) Update(ctx context.Context, user *model.User) error {
	if user.ID == r.failFor {
		return errors.New("write rejected")
	}
	return r.UserRepository.Update(ctx, user)
}

// ============================================================================
// Helpers
// ============================================================================

type integrityEnv struct {
	tdb    *testdb.TestDB
	f      *fixtures.Factory
	engine *IntegrityEngine
}

func newIntegrityEnv(t *testing.T) *integrityEnv {
	t.Helper()

	tdb := testdb.New(t)
	f := fixtures.New(tdb.Store)
	engine := NewIntegrityEngine(IntegrityEngineConfig{
		BandRepo:    f.Bands,
		ConcertRepo: f.Concerts,
		UserRepo:    f.Users,
	})
	return &integrityEnv{tdb: tdb, f: f, engine: engine}
}

// ============================================================================
// Link / Unlink
// ============================================================================

func TestLink_AppendsOnce(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	band := env.f.CreateBand(t)

	require.NoError(t, env.engine.Link(ctx, 10, band.ID))
	require.NoError(t, env.engine.Link(ctx, 10, band.ID))

	got := env.f.MustBand(t, band.ID)
	assert.Equal(t, []model.ID{10}, fixtures.ConcertIDs(got.Concerts))
}

func TestLink_PreservesInsertionOrder(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	band := env.f.CreateBand(t)

	for _, id := range []model.ID{3, 1, 2} {
		require.NoError(t, env.engine.Link(ctx, id, band.ID))
	}

	got := env.f.MustBand(t, band.ID)
	assert.Equal(t, []model.ID{3, 1, 2}, fixtures.ConcertIDs(got.Concerts))
}

func TestLink_MissingBand(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)

	err := env.engine.Link(env.tdb.Ctx(), 1, 999)
	assert.ErrorIs(t, err, ErrBandNotFound)
}

func TestLink_UpdateFailure_IsReturned(t *testing.T) {
	t.Parallel()

	repo := &mockBandRepo{
		getByIDFunc: func(ctx context.Context, id model.ID) (*model.Band, error) {
			return &model.Band{ID: id}, nil
		},
		updateFunc: func(ctx context.Context, band *model.Band) error {
			return errors.New("store down")
		},
	}
	engine := NewIntegrityEngine(IntegrityEngineConfig{BandRepo: repo})

	if err := engine.Link(context.Background(), 1, 2); err == nil {
		t.Error("expected error from failed band write")
	}
}

func TestUnlink_RemovesEveryOccurrence(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	band := env.f.CreateBand(t)
	band.Concerts = []model.Ref{{ID: 5}, {ID: 6}, {ID: 5}}
	require.NoError(t, env.f.Bands.Update(ctx, band))

	require.NoError(t, env.engine.Unlink(ctx, 5, band.ID))

	got := env.f.MustBand(t, band.ID)
	assert.Equal(t, []model.ID{6}, fixtures.ConcertIDs(got.Concerts))
}

func TestUnlink_NonMemberAndMissingBand_AreNoops(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	band := env.f.CreateBand(t)

	calls := 0
	repo := &mockBandRepo{
		getByIDFunc: func(ctx context.Context, id model.ID) (*model.Band, error) {
			return env.f.Bands.GetByID(ctx, id)
		},
		updateFunc: func(ctx context.Context, b *model.Band) error {
			calls++
			return nil
		},
	}
	engine := NewIntegrityEngine(IntegrityEngineConfig{BandRepo: repo})

	assert.NoError(t, engine.Unlink(ctx, 77, band.ID))
	assert.NoError(t, engine.Unlink(ctx, 77, 999))
	assert.Zero(t, calls, "no-op unlink must not write")
}

// ============================================================================
// Relink
// ============================================================================

func TestRelink_MovesConcert(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	oldBand := env.f.CreateBand(t)
	newBand := env.f.CreateBand(t)
	concert := env.f.CreateConcert(t, oldBand)

	committed := false
	err := env.engine.Relink(ctx, concert.ID, oldBand.ID, newBand.ID, func(ctx context.Context) error {
		// the new band already lists the concert when commit runs
		nb := env.f.MustBand(t, newBand.ID)
		assert.True(t, model.ContainsRef(nb.Concerts, concert.ID))
		committed = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, committed)

	assert.False(t, model.ContainsRef(env.f.MustBand(t, oldBand.ID).Concerts, concert.ID))
	assert.True(t, model.ContainsRef(env.f.MustBand(t, newBand.ID).Concerts, concert.ID))
}

func TestRelink_CommitFailure_LeavesOverLinked(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	oldBand := env.f.CreateBand(t)
	newBand := env.f.CreateBand(t)
	concert := env.f.CreateConcert(t, oldBand)

	err := env.engine.Relink(ctx, concert.ID, oldBand.ID, newBand.ID, func(ctx context.Context) error {
		return errors.New("interrupted")
	})
	require.Error(t, err)

	// Both bands list it; never neither.
	assert.True(t, model.ContainsRef(env.f.MustBand(t, oldBand.ID).Concerts, concert.ID))
	assert.True(t, model.ContainsRef(env.f.MustBand(t, newBand.ID).Concerts, concert.ID))
}

func TestRelink_SameBand_IsNoop(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	band := env.f.CreateBand(t)

	called := false
	err := env.engine.Relink(env.tdb.Ctx(), 1, band.ID, band.ID, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, called)
}

// ============================================================================
// Cascade delete
// ============================================================================

func TestCascadeDeleteConcert_CleansBandAndUsers(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	band := env.f.CreateBand(t)
	keep := env.f.CreateConcert(t, band)
	doomed := env.f.CreateConcert(t, band)
	fan := env.f.CreateUser(t, fixtures.WithConcerts(keep.ID, doomed.ID))
	other := env.f.CreateUser(t, fixtures.WithConcerts(keep.ID))

	require.NoError(t, env.engine.CascadeDeleteConcert(ctx, doomed.ID, band.ID))

	assert.Equal(t, []model.ID{keep.ID}, fixtures.ConcertIDs(env.f.MustBand(t, band.ID).Concerts))
	assert.Equal(t, []model.ID{keep.ID}, fixtures.ConcertIDs(env.f.MustUser(t, fan.ID).Concerts))
	assert.Equal(t, []model.ID{keep.ID}, fixtures.ConcertIDs(env.f.MustUser(t, other.ID).Concerts))
}

func TestCascadeDeleteConcert_PartialFailure_ReportsAndContinues(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	band := env.f.CreateBand(t)
	concert := env.f.CreateConcert(t, band)
	stuck := env.f.CreateUser(t, fixtures.WithConcerts(concert.ID))
	cleaned := env.f.CreateUser(t, fixtures.WithConcerts(concert.ID))

	engine := NewIntegrityEngine(IntegrityEngineConfig{
		BandRepo:    env.f.Bands,
		ConcertRepo: env.f.Concerts,
		UserRepo:    &failingUserRepo{UserRepository: env.f.Users, failFor: stuck.ID},
	})

	err := engine.CascadeDeleteConcert(ctx, concert.ID, band.ID)
	require.ErrorIs(t, err, ErrPartialCascade)

	assert.Contains(t, fixtures.ConcertIDs(env.f.MustUser(t, stuck.ID).Concerts), concert.ID)
	assert.Empty(t, env.f.MustUser(t, cleaned.ID).Concerts, "scan continues past a failed user")
	assert.Empty(t, env.f.MustBand(t, band.ID).Concerts, "band unlink still runs")

	// A retry with a healthy store converges.
	require.NoError(t, env.engine.CascadeDeleteConcert(ctx, concert.ID, band.ID))
	assert.Empty(t, env.f.MustUser(t, stuck.ID).Concerts)
}

func TestCascadeDeleteBand_DeletesOwnedConcerts(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	band := env.f.CreateBand(t)
	other := env.f.CreateBand(t)
	c1 := env.f.CreateConcert(t, band)
	c2 := env.f.CreateConcert(t, other)
	user := env.f.CreateUser(t, fixtures.WithConcerts(c1.ID, c2.ID))

	// A stale entry for a concert owned by another band must survive.
	band.Concerts = append(band.Concerts, model.Ref{ID: c2.ID})
	require.NoError(t, env.f.Bands.Update(ctx, band))

	require.NoError(t, env.engine.CascadeDeleteBand(ctx, band))

	gone, err := env.f.Concerts.GetByID(ctx, c1.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := env.f.Concerts.GetByID(ctx, c2.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)

	assert.Equal(t, []model.ID{c2.ID}, fixtures.ConcertIDs(env.f.MustUser(t, user.ID).Concerts))
}

func TestCascadeDeleteBand_PartialFailure_ReportsAndContinues(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	band := env.f.CreateBand(t)
	blocked := env.f.CreateConcert(t, band)
	free := env.f.CreateConcert(t, band)
	stuck := env.f.CreateUser(t, fixtures.WithConcerts(blocked.ID))
	fan := env.f.CreateUser(t, fixtures.WithConcerts(free.ID))
	band = env.f.MustBand(t, band.ID)

	engine := NewIntegrityEngine(IntegrityEngineConfig{
		BandRepo:    env.f.Bands,
		ConcertRepo: env.f.Concerts,
		UserRepo:    &failingUserRepo{UserRepository: env.f.Users, failFor: stuck.ID},
	})

	err := engine.CascadeDeleteBand(ctx, band)
	require.ErrorIs(t, err, ErrPartialCascade)

	kept, err := env.f.Concerts.GetByID(ctx, blocked.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept, "concert with an uncleaned user is kept")
	assert.Contains(t, fixtures.ConcertIDs(env.f.MustUser(t, stuck.ID).Concerts), blocked.ID)

	gone, err := env.f.Concerts.GetByID(ctx, free.ID)
	require.NoError(t, err)
	assert.Nil(t, gone, "remaining concerts are still deleted")
	assert.Empty(t, env.f.MustUser(t, fan.ID).Concerts)

	require.NoError(t, env.engine.CascadeDeleteBand(ctx, band))
	gone, err = env.f.Concerts.GetByID(ctx, blocked.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

// ============================================================================
// User membership
// ============================================================================

func TestAddConcertsToUser_SetSemantics(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	band := env.f.CreateBand(t)
	c := env.f.CreateConcert(t, band)
	user := env.f.CreateUser(t)

	require.NoError(t, env.engine.AddConcertsToUser(ctx, user, []model.ID{c.ID, c.ID}))
	require.NoError(t, env.engine.AddConcertsToUser(ctx, user, []model.ID{c.ID}))

	assert.Equal(t, []model.ID{c.ID}, fixtures.ConcertIDs(env.f.MustUser(t, user.ID).Concerts))
}

func TestAddConcertsToUser_UnknownID_ChangesNothing(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	band := env.f.CreateBand(t)
	c := env.f.CreateConcert(t, band)
	user := env.f.CreateUser(t)

	err := env.engine.AddConcertsToUser(ctx, user, []model.ID{c.ID, 4040})
	require.ErrorIs(t, err, ErrUnknownConcerts)

	assert.Empty(t, env.f.MustUser(t, user.ID).Concerts)
}

func TestRemoveConcertFromUser_AbsentIsNoop(t *testing.T) {
	t.Parallel()
	env := newIntegrityEnv(t)
	ctx := env.tdb.Ctx()
	band := env.f.CreateBand(t)
	c := env.f.CreateConcert(t, band)
	user := env.f.CreateUser(t, fixtures.WithConcerts(c.ID))

	require.NoError(t, env.engine.RemoveConcertFromUser(ctx, user, 999))
	assert.Len(t, env.f.MustUser(t, user.ID).Concerts, 1)

	require.NoError(t, env.engine.RemoveConcertFromUser(ctx, user, c.ID))
	assert.Empty(t, env.f.MustUser(t, user.ID).Concerts)
}
