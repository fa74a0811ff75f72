package service

import (
	"context"
	"errors"

	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/repository"
)

// BandService handles band business logic
type BandService struct {
	bandRepo BandRepository
	engine   *IntegrityEngine
}

// BandServiceConfig holds configuration for the band service
type BandServiceConfig struct {
	BandRepo BandRepository
	Engine   *IntegrityEngine
}

// NewBandService creates a new band service
func NewBandService(cfg BandServiceConfig) *BandService {
	return &BandService{
		bandRepo: cfg.BandRepo,
		engine:   cfg.Engine,
	}
}

// Create creates a band with an empty concert list. The input must already
// have passed shape and value validation.
func (s *BandService) Create(ctx context.Context, in *model.BandInput) (*model.Band, error) {
	band := &model.Band{Concerts: []model.Ref{}}
	in.Apply(band)

	if err := s.bandRepo.Create(ctx, band); err != nil {
		return nil, err
	}
	return band, nil
}

// Get retrieves a band by id
func (s *BandService) Get(ctx context.Context, id model.ID) (*model.Band, error) {
	band, err := s.bandRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if band == nil {
		return nil, ErrBandNotFound
	}
	return band, nil
}

// List returns a page of bands
func (s *BandService) List(ctx context.Context, limit, offset int) (*repository.List[model.Band], error) {
	return s.bandRepo.List(ctx, limit, offset)
}

// Update applies a partial edit. The concert list cannot be edited.
func (s *BandService) Update(ctx context.Context, id model.ID, in *model.BandInput) (*model.Band, error) {
	band, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Apply(band)
	if err := s.bandRepo.Update(ctx, band); err != nil {
		return nil, err
	}
	return band, nil
}

// Delete removes a band together with its concerts. If any concert cannot
// be fully cleaned up the band is kept and ErrPartialCascade is returned.
func (s *BandService) Delete(ctx context.Context, id model.ID) error {
	band, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.engine.CascadeDeleteBand(ctx, band); err != nil {
		return err
	}

	if err := s.bandRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrBandNotFound
		}
		return err
	}
	return nil
}
