package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/repository"
)

// ConcertService handles concert business logic
type ConcertService struct {
	concertRepo ConcertRepository
	bandRepo    BandRepository
	engine      *IntegrityEngine
}

// ConcertServiceConfig holds configuration for the concert service
type ConcertServiceConfig struct {
	ConcertRepo ConcertRepository
	BandRepo    BandRepository
	Engine      *IntegrityEngine
}

// NewConcertService creates a new concert service
func NewConcertService(cfg ConcertServiceConfig) *ConcertService {
	return &ConcertService{
		concertRepo: cfg.ConcertRepo,
		bandRepo:    cfg.BandRepo,
		engine:      cfg.Engine,
	}
}

// ConcertList is a page of concerts plus the size of the whole collection
type ConcertList struct {
	*repository.List[model.Concert]
	Total int
}

// Create creates a concert and links it to its band. The band must exist.
// If the link fails the new concert is deleted again; a concert left behind
// when that delete also fails is reported by integrity-audit.
func (s *ConcertService) Create(ctx context.Context, in *model.ConcertInput) (*model.Concert, error) {
	if err := s.requireBand(ctx, *in.Band); err != nil {
		return nil, err
	}

	concert := &model.Concert{Band: model.Ref{ID: *in.Band}}
	in.Apply(concert)
	if err := s.concertRepo.Create(ctx, concert); err != nil {
		return nil, err
	}

	if err := s.engine.Link(ctx, concert.ID, concert.Band.ID); err != nil {
		if delErr := s.concertRepo.Delete(ctx, concert.ID); delErr != nil && !errors.Is(delErr, database.ErrNotFound) {
			slog.Warn("concert left unlinked after failed create",
				"concert_id", concert.ID,
				"band_id", concert.Band.ID,
				"error", delErr,
			)
		}
		return nil, err
	}
	return concert, nil
}

// Get retrieves a concert by id
func (s *ConcertService) Get(ctx context.Context, id model.ID) (*model.Concert, error) {
	concert, err := s.concertRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if concert == nil {
		return nil, ErrConcertNotFound
	}
	return concert, nil
}

// List returns a page of concerts with the total count. The count needs a
// full scan on every call.
func (s *ConcertService) List(ctx context.Context, limit, offset int) (*ConcertList, error) {
	list, err := s.concertRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.concertRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &ConcertList{List: list, Total: total}, nil
}

// Update applies a partial edit. A change of band relinks the concert.
func (s *ConcertService) Update(ctx context.Context, id model.ID, in *model.ConcertInput) (*model.Concert, error) {
	concert, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Apply(concert)
	oldBand := concert.Band.ID
	if in.Band == nil || *in.Band == oldBand {
		if err := s.concertRepo.Update(ctx, concert); err != nil {
			return nil, err
		}
		return concert, nil
	}

	newBand := *in.Band
	if err := s.requireBand(ctx, newBand); err != nil {
		return nil, err
	}
	concert.Band = model.Ref{ID: newBand}

	err = s.engine.Relink(ctx, concert.ID, oldBand, newBand, func(ctx context.Context) error {
		return s.concertRepo.Update(ctx, concert)
	})
	if err != nil {
		return nil, err
	}
	return concert, nil
}

// Delete cleans every reference to the concert and then deletes it. If the
// cleanup is incomplete the concert is kept and ErrPartialCascade is
// returned, so a retry can finish the job.
func (s *ConcertService) Delete(ctx context.Context, id model.ID) error {
	concert, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.engine.CascadeDeleteConcert(ctx, concert.ID, concert.Band.ID); err != nil {
		return err
	}

	if err := s.concertRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrConcertNotFound
		}
		return err
	}
	return nil
}

func (s *ConcertService) requireBand(ctx context.Context, id model.ID) error {
	band, err := s.bandRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if band == nil {
		return ErrBandNotFound
	}
	return nil
}
