package service

import (
	"context"

	"github.com/forgo/setlist/api/internal/model"
)

// UserService handles user and concert-membership logic
type UserService struct {
	userRepo UserRepository
	engine   *IntegrityEngine
}

// UserServiceConfig holds configuration for the user service
type UserServiceConfig struct {
	UserRepo UserRepository
	Engine   *IntegrityEngine
}

// NewUserService creates a new user service
func NewUserService(cfg UserServiceConfig) *UserService {
	return &UserService{
		userRepo: cfg.UserRepo,
		engine:   cfg.Engine,
	}
}

// CheckOwnership verifies that the caller's identity is the user named by
// userID. A nil identity means no valid credential was supplied.
func CheckOwnership(identity *model.Identity, userID string) error {
	if identity == nil {
		return ErrNoCredential
	}
	if identity.Subject != userID {
		return ErrWrongIdentity
	}
	return nil
}

// List returns every user
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.ListAll(ctx)
}

// Get retrieves a user by identity subject
func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByAuthID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// AddConcerts adds concerts to the user's set
func (s *UserService) AddConcerts(ctx context.Context, user *model.User, concertIDs []model.ID) (*model.User, error) {
	if err := s.engine.AddConcertsToUser(ctx, user, concertIDs); err != nil {
		return nil, err
	}
	return user, nil
}

// RemoveConcert removes a concert from the user's set
func (s *UserService) RemoveConcert(ctx context.Context, userID string, concertID model.ID) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	return s.engine.RemoveConcertFromUser(ctx, user, concertID)
}

// FindOrCreate returns the user for identity, creating it with an empty
// concert set on first login. Names are refreshed from the identity.
func (s *UserService) FindOrCreate(ctx context.Context, identity *model.Identity) (*model.User, bool, error) {
	user, err := s.userRepo.GetByAuthID(ctx, identity.Subject)
	if err != nil {
		return nil, false, err
	}

	if user != nil {
		if user.FirstName == identity.GivenName && user.LastName == identity.LastName {
			return user, false, nil
		}
		user.FirstName = identity.GivenName
		user.LastName = identity.LastName
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, false, err
		}
		return user, false, nil
	}

	user = &model.User{
		FirstName: identity.GivenName,
		LastName:  identity.LastName,
		AuthID:    identity.Subject,
		Concerts:  []model.Ref{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
