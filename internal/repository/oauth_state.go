package repository

import (
	"context"
	"errors"
	"time"

	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/model"
)

// OAuthStateRepository stores pending login states
type OAuthStateRepository struct {
	store database.Store
}

// NewOAuthStateRepository creates a new state repository
func NewOAuthStateRepository(store database.Store) *OAuthStateRepository {
	return &OAuthStateRepository{store: store}
}

func setStateID(s *model.OAuthState, id model.ID) { s.ID = id }

// Create stores a pending state
func (r *OAuthStateRepository) Create(ctx context.Context, state *model.OAuthState) error {
	id, err := putDocument(ctx, r.store, database.KindOAuthState, 0, state)
	if err != nil {
		return err
	}
	state.ID = id
	return nil
}

// Consume finds the state with the given digest and deletes it, so a state
// can be used once. States created before notBefore are treated as absent
// and removed along the way. Returns nil if no usable state matches.
func (r *OAuthStateRepository) Consume(ctx context.Context, digest string, notBefore time.Time) (*model.OAuthState, error) {
	list, err := scanDocuments(ctx, r.store, database.KindOAuthState, 0, 0, setStateID)
	if err != nil {
		return nil, err
	}

	var found *model.OAuthState
	for _, s := range list.Items {
		expired := s.CreatedAt.Before(notBefore)
		if !expired && s.Digest == digest && found == nil {
			found = s
		}
		if expired || s == found {
			if err := r.store.Delete(ctx, database.KindOAuthState, int64(s.ID)); err != nil && !errors.Is(err, database.ErrNotFound) {
				return nil, err
			}
		}
	}
	return found, nil
}
