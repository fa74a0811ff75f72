package repository

import (
	"context"

	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/model"
)

// ConcertRepository handles concert data access
type ConcertRepository struct {
	store database.Store
}

// NewConcertRepository creates a new concert repository
func NewConcertRepository(store database.Store) *ConcertRepository {
	return &ConcertRepository{store: store}
}

func setConcertID(c *model.Concert, id model.ID) { c.ID = id }

// Create stores a new concert and sets its id
func (r *ConcertRepository) Create(ctx context.Context, concert *model.Concert) error {
	id, err := putDocument(ctx, r.store, database.KindConcert, 0, toStoredConcert(concert))
	if err != nil {
		return err
	}
	concert.ID = id
	return nil
}

// GetByID retrieves a concert by id, or nil if it does not exist
func (r *ConcertRepository) GetByID(ctx context.Context, id model.ID) (*model.Concert, error) {
	return getDocument(ctx, r.store, database.KindConcert, id, setConcertID)
}

// Update overwrites an existing concert
func (r *ConcertRepository) Update(ctx context.Context, concert *model.Concert) error {
	_, err := putDocument(ctx, r.store, database.KindConcert, concert.ID, toStoredConcert(concert))
	return err
}

// Delete removes a concert. Returns database.ErrNotFound if it does not exist.
func (r *ConcertRepository) Delete(ctx context.Context, id model.ID) error {
	return r.store.Delete(ctx, database.KindConcert, int64(id))
}

// List returns a page of concerts in id order
func (r *ConcertRepository) List(ctx context.Context, limit, offset int) (*List[model.Concert], error) {
	return scanDocuments(ctx, r.store, database.KindConcert, limit, offset, setConcertID)
}

// Count returns the number of concerts. It scans the whole collection.
func (r *ConcertRepository) Count(ctx context.Context) (int, error) {
	page, err := r.store.Scan(ctx, database.KindConcert, 0, 0)
	if err != nil {
		return 0, err
	}
	return len(page.Records), nil
}

func toStoredConcert(c *model.Concert) *model.Concert {
	return &model.Concert{
		ID:      c.ID,
		Venue:   c.Venue,
		Address: c.Address,
		Date:    c.Date,
		Band:    model.Ref{ID: c.Band.ID},
	}
}
