package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/forgo/setlist/api/internal/metrics"
	"github.com/forgo/setlist/api/internal/model"
)

// Finding kinds reported by the audit
const (
	FindingOrphanConcert     = "orphan_concert"      // concert whose band does not exist
	FindingDanglingBandEntry = "dangling_band_entry" // band lists a missing or foreign concert
	FindingMissingBandEntry  = "missing_band_entry"  // concert absent from its band's list
	FindingDanglingUserEntry = "dangling_user_entry" // user set holds a missing concert
)

// Finding is one broken reference
type Finding struct {
	Kind      string   `json:"kind"`
	BandID    model.ID `json:"band_id,omitempty"`
	ConcertID model.ID `json:"concert_id"`
	UserID    model.ID `json:"user_id,omitempty"`
	Repaired  bool     `json:"repaired"`
	Error     string   `json:"error,omitempty"`
}

// AuditReport summarizes an audit run
type AuditReport struct {
	Bands    int       `json:"bands"`
	Concerts int       `json:"concerts"`
	Users    int       `json:"users"`
	Findings []Finding `json:"findings"`
}

// AuditService finds references left inconsistent by interrupted
// multi-document updates and optionally repairs them with the integrity
// engine's convergent operations.
type AuditService struct {
	bandRepo    BandRepository
	concertRepo ConcertRepository
	userRepo    UserRepository
	engine      *IntegrityEngine
	logger      *slog.Logger
}

// AuditServiceConfig holds configuration for the audit service
type AuditServiceConfig struct {
	BandRepo    BandRepository
	ConcertRepo ConcertRepository
	UserRepo    UserRepository
	Engine      *IntegrityEngine
	Logger      *slog.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(cfg AuditServiceConfig) *AuditService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{
		bandRepo:    cfg.BandRepo,
		concertRepo: cfg.ConcertRepo,
		userRepo:    cfg.UserRepo,
		engine:      cfg.Engine,
		logger:      logger,
	}
}

// Run scans every collection. With repair set, each finding is fixed as it
// is found; a failed repair is recorded on the finding and the scan goes on.
func (s *AuditService) Run(ctx context.Context, repair bool) (*AuditReport, error) {
	bandList, err := s.bandRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("scan bands: %w", err)
	}
	concertList, err := s.concertRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("scan concerts: %w", err)
	}
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	bands := make(map[model.ID]*model.Band, len(bandList.Items))
	for _, b := range bandList.Items {
		bands[b.ID] = b
	}
	concerts := make(map[model.ID]*model.Concert, len(concertList.Items))
	for _, c := range concertList.Items {
		concerts[c.ID] = c
	}

	report := &AuditReport{
		Bands:    len(bands),
		Concerts: len(concerts),
		Users:    len(users),
		Findings: []Finding{},
	}
	record := func(f Finding, fix func() error) {
		if repair {
			if err := fix(); err != nil {
				f.Error = err.Error()
			} else {
				f.Repaired = true
			}
		}
		metrics.AuditFindings.WithLabelValues(f.Kind).Inc()
		s.logger.Info("audit finding",
			"kind", f.Kind,
			"band_id", f.BandID,
			"concert_id", f.ConcertID,
			"user_id", f.UserID,
			"repaired", f.Repaired,
		)
		report.Findings = append(report.Findings, f)
	}

	for _, b := range bandList.Items {
		for _, ref := range b.Concerts {
			c, ok := concerts[ref.ID]
			if ok && c.Band.ID == b.ID {
				continue
			}
			bandID, concertID := b.ID, ref.ID
			record(Finding{Kind: FindingDanglingBandEntry, BandID: bandID, ConcertID: concertID}, func() error {
				return s.engine.Unlink(ctx, concertID, bandID)
			})
		}
	}

	for _, c := range concertList.Items {
		concert := c
		band, ok := bands[concert.Band.ID]
		if !ok {
			record(Finding{Kind: FindingOrphanConcert, BandID: concert.Band.ID, ConcertID: concert.ID}, func() error {
				if err := s.engine.CascadeDeleteConcert(ctx, concert.ID, concert.Band.ID); err != nil {
					return err
				}
				return s.concertRepo.Delete(ctx, concert.ID)
			})
			continue
		}
		if !model.ContainsRef(band.Concerts, concert.ID) {
			record(Finding{Kind: FindingMissingBandEntry, BandID: band.ID, ConcertID: concert.ID}, func() error {
				return s.engine.Link(ctx, concert.ID, band.ID)
			})
		}
	}

	for _, u := range users {
		user := u
		for _, ref := range append([]model.Ref(nil), user.Concerts...) {
			if _, ok := concerts[ref.ID]; ok {
				continue
			}
			concertID := ref.ID
			record(Finding{Kind: FindingDanglingUserEntry, ConcertID: concertID, UserID: user.ID}, func() error {
				// Earlier repairs may have rewritten this user.
				fresh, err := s.userRepo.GetByID(ctx, user.ID)
				if err != nil || fresh == nil {
					return err
				}
				return s.engine.RemoveConcertFromUser(ctx, fresh, concertID)
			})
		}
	}

	return report, nil
}
