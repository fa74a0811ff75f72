package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/metrics"
	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/repository"
)

// BandRepository defines the interface for band storage
type BandRepository interface {
	Create(ctx context.Context, band *model.Band) error
	GetByID(ctx context.Context, id model.ID) (*model.Band, error)
	Update(ctx context.Context, band *model.Band) error
	Delete(ctx context.Context, id model.ID) error
	List(ctx context.Context, limit, offset int) (*repository.List[model.Band], error)
}

// ConcertRepository defines the interface for concert storage
type ConcertRepository interface {
	Create(ctx context.Context, concert *model.Concert) error
	GetByID(ctx context.Context, id model.ID) (*model.Concert, error)
	Update(ctx context.Context, concert *model.Concert) error
	Delete(ctx context.Context, id model.ID) error
	List(ctx context.Context, limit, offset int) (*repository.List[model.Concert], error)
	Count(ctx context.Context) (int, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id model.ID) (*model.User, error)
	GetByAuthID(ctx context.Context, authID string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	ListAll(ctx context.Context) ([]*model.User, error)
}

// IntegrityEngine maintains the back-references between bands, concerts
// and users. The store has no multi-document transactions, so every
// operation is a read-modify-write on the owning document (the band owns
// its concert list, the user owns its concert set) that converges when
// re-run after a partial failure.
type IntegrityEngine struct {
	bands    BandRepository
	concerts ConcertRepository
	users    UserRepository
	logger   *slog.Logger
}

// IntegrityEngineConfig holds dependencies for the integrity engine
type IntegrityEngineConfig struct {
	BandRepo    BandRepository
	ConcertRepo ConcertRepository
	UserRepo    UserRepository
	Logger      *slog.Logger
}

// NewIntegrityEngine creates a new integrity engine
func NewIntegrityEngine(cfg IntegrityEngineConfig) *IntegrityEngine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrityEngine{
		bands:    cfg.BandRepo,
		concerts: cfg.ConcertRepo,
		users:    cfg.UserRepo,
		logger:   logger,
	}
}

// Link appends concertID to the band's concert list unless it is already
// there.
func (e *IntegrityEngine) Link(ctx context.Context, concertID, bandID model.ID) error {
	changed, err := e.link(ctx, concertID, bandID)
	metrics.RecordIntegrity("link", changed, err)
	return err
}

func (e *IntegrityEngine) link(ctx context.Context, concertID, bandID model.ID) (bool, error) {
	band, err := e.bands.GetByID(ctx, bandID)
	if err != nil {
		return false, err
	}
	if band == nil {
		return false, ErrBandNotFound
	}
	if model.ContainsRef(band.Concerts, concertID) {
		return false, nil
	}

	band.Concerts = append(band.Concerts, model.Ref{ID: concertID})
	if err := e.bands.Update(ctx, band); err != nil {
		return false, fmt.Errorf("link concert %d to band %d: %w", concertID, bandID, err)
	}
	return true, nil
}

// Unlink removes every entry for concertID from the band's concert list.
// A missing band or a non-member concert is a no-op.
func (e *IntegrityEngine) Unlink(ctx context.Context, concertID, bandID model.ID) error {
	changed, err := e.unlink(ctx, concertID, bandID)
	metrics.RecordIntegrity("unlink", changed, err)
	return err
}

func (e *IntegrityEngine) unlink(ctx context.Context, concertID, bandID model.ID) (bool, error) {
	band, err := e.bands.GetByID(ctx, bandID)
	if err != nil {
		return false, err
	}
	if band == nil {
		return false, nil
	}

	refs, removed := model.RemoveRef(band.Concerts, concertID)
	if !removed {
		return false, nil
	}
	band.Concerts = refs
	if err := e.bands.Update(ctx, band); err != nil {
		return false, fmt.Errorf("unlink concert %d from band %d: %w", concertID, bandID, err)
	}
	return true, nil
}

// Relink moves concertID from oldBandID's list to newBandID's list. The new
// link is written before the old one is removed, so an interruption leaves
// the concert listed twice rather than not at all. If commit is non-nil it
// runs between the two steps; this is where the caller persists the
// concert's new band reference. Equal band ids are a no-op.
func (e *IntegrityEngine) Relink(ctx context.Context, concertID, oldBandID, newBandID model.ID, commit func(context.Context) error) error {
	if oldBandID == newBandID {
		metrics.RecordIntegrity("relink", false, nil)
		return nil
	}

	err := e.relink(ctx, concertID, oldBandID, newBandID, commit)
	metrics.RecordIntegrity("relink", err == nil, err)
	return err
}

func (e *IntegrityEngine) relink(ctx context.Context, concertID, oldBandID, newBandID model.ID, commit func(context.Context) error) error {
	if _, err := e.link(ctx, concertID, newBandID); err != nil {
		return err
	}
	if commit != nil {
		if err := commit(ctx); err != nil {
			return err
		}
	}
	if _, err := e.unlink(ctx, concertID, oldBandID); err != nil {
		return err
	}
	return nil
}

// CascadeDeleteConcert removes concertID from every user's concert set and
// from its band's list. A failed user write does not stop the scan; all
// failures are returned together wrapped in ErrPartialCascade. The concert
// document itself is not touched: callers delete it after a nil return.
func (e *IntegrityEngine) CascadeDeleteConcert(ctx context.Context, concertID, bandID model.ID) error {
	errs := e.removeFromUsers(ctx, concertID)

	if _, err := e.unlink(ctx, concertID, bandID); err != nil {
		e.logger.Warn("cascade: failed to unlink concert from band",
			"concert_id", concertID,
			"band_id", bandID,
			"error", err,
		)
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		err := fmt.Errorf("%w: concert %d: %w", ErrPartialCascade, concertID, errors.Join(errs...))
		metrics.RecordIntegrity("cascade_delete_concert", false, err)
		return err
	}
	metrics.RecordIntegrity("cascade_delete_concert", true, nil)
	return nil
}

// removeFromUsers scans every user. There is no inverse index from concert
// to users, so the cost is linear in the number of users.
func (e *IntegrityEngine) removeFromUsers(ctx context.Context, concertID model.ID) []error {
	users, err := e.users.ListAll(ctx)
	if err != nil {
		return []error{fmt.Errorf("scan users: %w", err)}
	}
	metrics.CascadeUsersScanned.Observe(float64(len(users)))

	var errs []error
	for _, u := range users {
		refs, removed := model.RemoveRef(u.Concerts, concertID)
		if !removed {
			continue
		}
		u.Concerts = refs
		if err := e.users.Update(ctx, u); err != nil {
			metrics.CascadeUserFailures.Inc()
			e.logger.Warn("cascade: failed to remove concert from user",
				"concert_id", concertID,
				"user_id", u.ID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("user %d: %w", u.ID, err))
		}
	}
	return errs
}

// CascadeDeleteBand deletes every concert the band lists, cleaning each
// from user sets first. Entries for concerts that are already gone, or that
// now reference another band, are skipped. The band document itself is not
// touched: callers delete it after a nil return.
func (e *IntegrityEngine) CascadeDeleteBand(ctx context.Context, band *model.Band) error {
	var errs []error
	for _, ref := range band.Concerts {
		concert, err := e.concerts.GetByID(ctx, ref.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("concert %d: %w", ref.ID, err))
			continue
		}
		if concert == nil || concert.Band.ID != band.ID {
			continue
		}

		if userErrs := e.removeFromUsers(ctx, concert.ID); len(userErrs) > 0 {
			errs = append(errs, userErrs...)
			continue
		}
		if err := e.concerts.Delete(ctx, concert.ID); err != nil && !errors.Is(err, database.ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete concert %d: %w", concert.ID, err))
		}
	}

	if len(errs) > 0 {
		err := fmt.Errorf("%w: band %d: %w", ErrPartialCascade, band.ID, errors.Join(errs...))
		metrics.RecordIntegrity("cascade_delete_band", false, err)
		return err
	}
	metrics.RecordIntegrity("cascade_delete_band", len(band.Concerts) > 0, nil)
	return nil
}

// AddConcertsToUser adds concert ids to the user's set. Every id is checked
// first; if any does not exist nothing is changed and ErrUnknownConcerts is
// returned. Ids already in the set are skipped.
func (e *IntegrityEngine) AddConcertsToUser(ctx context.Context, user *model.User, concertIDs []model.ID) error {
	changed, err := e.addConcertsToUser(ctx, user, concertIDs)
	metrics.RecordIntegrity("add_concerts_to_user", changed, err)
	return err
}

func (e *IntegrityEngine) addConcertsToUser(ctx context.Context, user *model.User, concertIDs []model.ID) (bool, error) {
	for _, id := range concertIDs {
		concert, err := e.concerts.GetByID(ctx, id)
		if err != nil {
			return false, err
		}
		if concert == nil {
			return false, fmt.Errorf("%w: %d", ErrUnknownConcerts, id)
		}
	}

	changed := false
	for _, id := range concertIDs {
		if model.ContainsRef(user.Concerts, id) {
			continue
		}
		user.Concerts = append(user.Concerts, model.Ref{ID: id})
		changed = true
	}
	if !changed {
		return false, nil
	}
	if err := e.users.Update(ctx, user); err != nil {
		return false, fmt.Errorf("update user %d: %w", user.ID, err)
	}
	return true, nil
}

// RemoveConcertFromUser removes concertID from the user's set. Removing an
// id that is not in the set is a no-op.
func (e *IntegrityEngine) RemoveConcertFromUser(ctx context.Context, user *model.User, concertID model.ID) error {
	changed, err := e.removeConcertFromUser(ctx, user, concertID)
	metrics.RecordIntegrity("remove_concert_from_user", changed, err)
	return err
}

func (e *IntegrityEngine) removeConcertFromUser(ctx context.Context, user *model.User, concertID model.ID) (bool, error) {
	refs, removed := model.RemoveRef(user.Concerts, concertID)
	if !removed {
		return false, nil
	}
	user.Concerts = refs
	if err := e.users.Update(ctx, user); err != nil {
		return false, fmt.Errorf("update user %d: %w", user.ID, err)
	}
	return true, nil
}
