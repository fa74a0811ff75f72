package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/repository"
)

// ============================================================================
// Mock Identity Flow
// ============================================================================

type mockFlow struct {
	exchangeFunc func(ctx context.Context, code string) (*model.Identity, string, error)
}

func (m *mockFlow) AuthURL(state string) string {
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state)
}

func (m *mockFlow) Exchange(ctx context.Context, code string) (*model.Identity, string, error) {
	if m.exchangeFunc != nil {
		return m.exchangeFunc(ctx, code)
	}
	return &model.Identity{Subject: "sub-" + code, GivenName: "Neil", LastName: "Halstead"}, "id-token-" + code, nil
}

func newOAuthService(t *testing.T, flow IdentityFlow) (*OAuthService, *services) {
	t.Helper()

	s := newServices(t)
	svc := NewOAuthService(OAuthServiceConfig{
		Flow:        flow,
		StateRepo:   repository.NewOAuthStateRepository(s.tdb.Store),
		UserService: s.users,
	})
	return svc, s
}

// stateFrom pulls the state parameter out of a redirect URL
func stateFrom(t *testing.T, redirect string) string {
	t.Helper()

	u, err := url.Parse(redirect)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

// ============================================================================
// Tests
// ============================================================================

func TestOAuth_FirstLoginCreatesUser(t *testing.T) {
	t.Parallel()
	svc, s := newOAuthService(t, &mockFlow{})
	ctx := s.tdb.Ctx()

	redirect, err := svc.Begin(ctx)
	require.NoError(t, err)

	result, err := svc.Complete(ctx, stateFrom(t, redirect), "abc")
	require.NoError(t, err)
	assert.True(t, result.IsNewUser)
	assert.Equal(t, "id-token-abc", result.IDToken)
	assert.Equal(t, "sub-abc", result.User.AuthID)

	redirect, err = svc.Begin(ctx)
	require.NoError(t, err)
	again, err := svc.Complete(ctx, stateFrom(t, redirect), "abc")
	require.NoError(t, err)
	assert.False(t, again.IsNewUser)
	assert.Equal(t, result.User.ID, again.User.ID)
}

func TestOAuth_StateIsSingleUse(t *testing.T) {
	t.Parallel()
	svc, s := newOAuthService(t, &mockFlow{})
	ctx := s.tdb.Ctx()

	redirect, err := svc.Begin(ctx)
	require.NoError(t, err)
	state := stateFrom(t, redirect)

	_, err = svc.Complete(ctx, state, "abc")
	require.NoError(t, err)

	_, err = svc.Complete(ctx, state, "abc")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestOAuth_RejectsUnknownAndExpiredState(t *testing.T) {
	t.Parallel()
	svc, s := newOAuthService(t, &mockFlow{})
	ctx := s.tdb.Ctx()

	_, err := svc.Complete(ctx, "never-issued", "abc")
	assert.ErrorIs(t, err, ErrInvalidState)

	redirect, err := svc.Begin(ctx)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(DefaultStateTTL + time.Minute) }

	_, err = svc.Complete(ctx, stateFrom(t, redirect), "abc")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestOAuth_MissingParameters(t *testing.T) {
	t.Parallel()
	svc, s := newOAuthService(t, &mockFlow{})
	ctx := s.tdb.Ctx()

	_, err := svc.Complete(ctx, "", "abc")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Complete(ctx, "state", "")
	assert.ErrorIs(t, err, ErrInvalidAuthCode)
}

func TestOAuth_ProviderFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flow    *mockFlow
		wantErr error
	}{
		{
			name: "exchange fails",
			flow: &mockFlow{exchangeFunc: func(ctx context.Context, code string) (*model.Identity, string, error) {
				return nil, "", errors.New("invalid_grant")
			}},
			wantErr: ErrProviderError,
		},
		{
			name: "no subject",
			flow: &mockFlow{exchangeFunc: func(ctx context.Context, code string) (*model.Identity, string, error) {
				return &model.Identity{}, "tok", nil
			}},
			wantErr: ErrInvalidIDToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, s := newOAuthService(t, tt.flow)
			ctx := s.tdb.Ctx()

			redirect, err := svc.Begin(ctx)
			require.NoError(t, err)

			_, err = svc.Complete(ctx, stateFrom(t, redirect), "abc")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStateDigest_DoesNotStorePlainState(t *testing.T) {
	t.Parallel()

	d := stateDigest("plain")
	assert.Len(t, d, 64)
	assert.NotContains(t, d, "plain")
	assert.Equal(t, d, stateDigest("plain"))
}
