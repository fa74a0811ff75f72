package repository

import (
	"context"

	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	store database.Store
}

// NewUserRepository creates a new user repository
func NewUserRepository(store database.Store) *UserRepository {
	return &UserRepository{store: store}
}

func setUserID(u *model.User, id model.ID) { u.ID = id }

// Create stores a new user and sets its id
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Concerts == nil {
		user.Concerts = []model.Ref{}
	}
	id, err := putDocument(ctx, r.store, database.KindUser, 0, toStoredUser(user))
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// GetByID retrieves a user by store id, or nil if it does not exist
func (r *UserRepository) GetByID(ctx context.Context, id model.ID) (*model.User, error) {
	return getDocument(ctx, r.store, database.KindUser, id, setUserID)
}

// GetByAuthID retrieves a user by identity provider subject, or nil if none
// matches. There is no index on auth_id, so this scans every user.
func (r *UserRepository) GetByAuthID(ctx context.Context, authID string) (*model.User, error) {
	users, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.AuthID == authID {
			return u, nil
		}
	}
	return nil, nil
}

// Update overwrites an existing user
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	_, err := putDocument(ctx, r.store, database.KindUser, user.ID, toStoredUser(user))
	return err
}

// ListAll returns every user
func (r *UserRepository) ListAll(ctx context.Context) ([]*model.User, error) {
	list, err := scanDocuments(ctx, r.store, database.KindUser, 0, 0, setUserID)
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

func toStoredUser(u *model.User) *model.User {
	return &model.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AuthID:    u.AuthID,
		Concerts:  storedRefs(u.Concerts),
	}
}
