package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/forgo/setlist/api/internal/model"
)

// DefaultStateTTL bounds how long a login may take between redirect and callback
const DefaultStateTTL = 10 * time.Minute

// IdentityFlow is the authorization-code flow of an OIDC provider
type IdentityFlow interface {
	// AuthURL returns the provider URL to redirect the browser to
	AuthURL(state string) string
	// Exchange trades an authorization code for a verified identity and
	// the raw ID token
	Exchange(ctx context.Context, code string) (*model.Identity, string, error)
}

// StateRepository defines the interface for pending login state storage
type StateRepository interface {
	Create(ctx context.Context, state *model.OAuthState) error
	Consume(ctx context.Context, digest string, notBefore time.Time) (*model.OAuthState, error)
}

// OAuthService handles OAuth login
type OAuthService struct {
	flow      IdentityFlow
	stateRepo StateRepository
	users     *UserService
	stateTTL  time.Duration
	now       func() time.Time
}

// OAuthServiceConfig holds configuration for the OAuth service
type OAuthServiceConfig struct {
	Flow        IdentityFlow
	StateRepo   StateRepository
	UserService *UserService
	StateTTL    time.Duration
}

// NewOAuthService creates a new OAuth service
func NewOAuthService(cfg OAuthServiceConfig) *OAuthService {
	ttl := cfg.StateTTL
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &OAuthService{
		flow:      cfg.Flow,
		stateRepo: cfg.StateRepo,
		users:     cfg.UserService,
		stateTTL:  ttl,
		now:       time.Now,
	}
}

// Begin starts a login. It stores a fresh state and returns the provider
// URL to redirect to.
func (s *OAuthService) Begin(ctx context.Context) (string, error) {
	state, err := newState()
	if err != nil {
		return "", err
	}

	err = s.stateRepo.Create(ctx, &model.OAuthState{
		Digest:    stateDigest(state),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}
	return s.flow.AuthURL(state), nil
}

// Complete finishes a login from the provider callback. The state must be
// one this service issued and not yet used. The user is created on first
// login.
func (s *OAuthService) Complete(ctx context.Context, state, code string) (*model.LoginResult, error) {
	if state == "" {
		return nil, ErrInvalidState
	}
	if code == "" {
		return nil, ErrInvalidAuthCode
	}

	pending, err := s.stateRepo.Consume(ctx, stateDigest(state), s.now().UTC().Add(-s.stateTTL))
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, ErrInvalidState
	}

	identity, idToken, err := s.flow.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderError, err)
	}
	if identity.Subject == "" {
		return nil, ErrInvalidIDToken
	}

	user, created, err := s.users.FindOrCreate(ctx, identity)
	if err != nil {
		return nil, err
	}
	if created {
		slog.Info("user created on first login", slog.Int64("user_id", int64(user.ID)))
	}

	return &model.LoginResult{
		User:      user.Summary(),
		IDToken:   idToken,
		IsNewUser: created,
	}, nil
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// stateDigest is what gets stored, so a leaked store does not reveal
// usable states
func stateDigest(state string) string {
	sum := blake2b.Sum256([]byte(state))
	return hex.EncodeToString(sum[:])
}
