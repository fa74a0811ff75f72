package repository

import (
	"context"

	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/model"
)

// BandRepository handles band data access
type BandRepository struct {
	store database.Store
}

// NewBandRepository creates a new band repository
func NewBandRepository(store database.Store) *BandRepository {
	return &BandRepository{store: store}
}

func setBandID(b *model.Band, id model.ID) { b.ID = id }

// Create stores a new band and sets its id
func (r *BandRepository) Create(ctx context.Context, band *model.Band) error {
	if band.Concerts == nil {
		band.Concerts = []model.Ref{}
	}
	id, err := putDocument(ctx, r.store, database.KindBand, 0, toStoredBand(band))
	if err != nil {
		return err
	}
	band.ID = id
	return nil
}

// GetByID retrieves a band by id, or nil if it does not exist
func (r *BandRepository) GetByID(ctx context.Context, id model.ID) (*model.Band, error) {
	return getDocument(ctx, r.store, database.KindBand, id, setBandID)
}

// Update overwrites an existing band
func (r *BandRepository) Update(ctx context.Context, band *model.Band) error {
	_, err := putDocument(ctx, r.store, database.KindBand, band.ID, toStoredBand(band))
	return err
}

// Delete removes a band. Returns database.ErrNotFound if it does not exist.
func (r *BandRepository) Delete(ctx context.Context, id model.ID) error {
	return r.store.Delete(ctx, database.KindBand, int64(id))
}

// List returns a page of bands in id order
func (r *BandRepository) List(ctx context.Context, limit, offset int) (*List[model.Band], error) {
	return scanDocuments(ctx, r.store, database.KindBand, limit, offset, setBandID)
}

func toStoredBand(b *model.Band) *model.Band {
	return &model.Band{
		ID:       b.ID,
		Name:     b.Name,
		Genre:    b.Genre,
		Members:  b.Members,
		Concerts: storedRefs(b.Concerts),
	}
}
