// Package identity connects the API to an OpenID Connect provider.
//
// A RelyingParty is built once at startup by OIDC discovery against the
// configured issuer. It serves two roles:
//
//   - the authorization-code login flow behind GET /oauth (service.IdentityFlow)
//   - verification of bearer ID tokens on protected requests
//
// Token checks (signature via JWKS, issuer, audience, expiry) are done by
// the zitadel/oidc relying party.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/forgo/setlist/api/internal/model"
)

// ErrInvalidToken is returned when a bearer token fails verification
var ErrInvalidToken = errors.New("invalid identity token")

// DefaultScopes are requested when none are configured
var DefaultScopes = []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail}

// Config holds the OIDC client registration
type Config struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	HTTPClient   *http.Client
}

// Validate checks that the required registration fields are set
func (c *Config) Validate() error {
	var errs []error
	if c.Issuer == "" {
		errs = append(errs, errors.New("issuer is required"))
	}
	if c.ClientID == "" {
		errs = append(errs, errors.New("client_id is required"))
	}
	if c.RedirectURL == "" {
		errs = append(errs, errors.New("redirect_url is required"))
	}
	return errors.Join(errs...)
}

// RelyingParty wraps the zitadel relying party
type RelyingParty struct {
	rp rp.RelyingParty
}

// NewRelyingParty performs discovery against the issuer. ctx bounds the
// discovery request only.
func NewRelyingParty(ctx context.Context, cfg Config) (*RelyingParty, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid identity config: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.Issuer,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.RedirectURL,
		scopes,
		rp.WithHTTPClient(client),
	)
	if err != nil {
		return nil, fmt.Errorf("create relying party: %w", err)
	}
	return &RelyingParty{rp: relyingParty}, nil
}

// AuthURL returns the provider authorization URL carrying state
func (r *RelyingParty) AuthURL(state string) string {
	return rp.AuthURL(state, r.rp)
}

// Exchange trades an authorization code for tokens and returns the
// identity in the verified ID token along with the raw token.
func (r *RelyingParty) Exchange(ctx context.Context, code string) (*model.Identity, string, error) {
	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, r.rp)
	if err != nil {
		return nil, "", fmt.Errorf("code exchange: %w", err)
	}
	if tokens.IDTokenClaims == nil || tokens.IDToken == "" {
		return nil, "", fmt.Errorf("%w: no id_token in token response", ErrInvalidToken)
	}
	return IdentityFromClaims(tokens.IDTokenClaims), tokens.IDToken, nil
}

// Verify checks a bearer ID token and returns its identity
func (r *RelyingParty) Verify(ctx context.Context, token string) (*model.Identity, error) {
	claims, err := rp.VerifyIDToken[*oidc.IDTokenClaims](ctx, token, r.rp.IDTokenVerifier())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return IdentityFromClaims(claims), nil
}

// IdentityFromClaims maps standard ID token claims to an identity
func IdentityFromClaims(claims *oidc.IDTokenClaims) *model.Identity {
	return &model.Identity{
		Subject:   claims.Subject,
		GivenName: claims.GivenName,
		LastName:  claims.FamilyName,
		Email:     claims.Email,
	}
}

// Disabled rejects every bearer token. It stands in for a RelyingParty when
// no provider is configured, so protected routes answer 401.
type Disabled struct{}

// Verify always fails
func (Disabled) Verify(ctx context.Context, token string) (*model.Identity, error) {
	return nil, ErrInvalidToken
}
