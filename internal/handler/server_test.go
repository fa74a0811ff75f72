package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/forgo/setlist/api/internal/middleware"
	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/repository"
	"github.com/forgo/setlist/api/internal/service"
	"github.com/forgo/setlist/api/internal/testing/fixtures"
	"github.com/forgo/setlist/api/internal/testing/helpers"
	"github.com/forgo/setlist/api/internal/testing/testdb"
)

// ============================================================================
// Test Server
// ============================================================================

// stubFlow stands in for the identity provider's code exchange
type stubFlow struct {
	exchangeFunc func(ctx context.Context, code string) (*model.Identity, string, error)
}

func (f *stubFlow) AuthURL(state string) string {
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state)
}

func (f *stubFlow) Exchange(ctx context.Context, code string) (*model.Identity, string, error) {
	if f.exchangeFunc != nil {
		return f.exchangeFunc(ctx, code)
	}
	return &model.Identity{Subject: "sub|" + code, GivenName: "Mary", LastName: "Timony"}, "id-token-" + code, nil
}

type testServer struct {
	http.Handler
	tdb      *testdb.TestDB
	f        *fixtures.Factory
	verifier helpers.StaticVerifier
	flow     *stubFlow
}

// newTestServer wires the full route table over an in-memory store
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tdb := testdb.New(t)
	f := fixtures.New(tdb.Store)

	engine := service.NewIntegrityEngine(service.IntegrityEngineConfig{
		BandRepo:    f.Bands,
		ConcertRepo: f.Concerts,
		UserRepo:    f.Users,
	})
	userSvc := service.NewUserService(service.UserServiceConfig{UserRepo: f.Users, Engine: engine})
	flow := &stubFlow{}

	mux := http.NewServeMux()
	RegisterRoutes(mux, Handlers{
		Bands: NewBandHandler(service.NewBandService(service.BandServiceConfig{
			BandRepo: f.Bands,
			Engine:   engine,
		})),
		Concerts: NewConcertHandler(service.NewConcertService(service.ConcertServiceConfig{
			ConcertRepo: f.Concerts,
			BandRepo:    f.Bands,
			Engine:      engine,
		})),
		Users: NewUserHandler(userSvc),
		OAuth: NewOAuthHandler(service.NewOAuthService(service.OAuthServiceConfig{
			Flow:        flow,
			StateRepo:   repository.NewOAuthStateRepository(tdb.Store),
			UserService: userSvc,
		})),
		Health: NewHealthHandler(tdb.Store),
	})

	verifier := helpers.StaticVerifier{}
	return &testServer{
		Handler:  middleware.Chain(mux, middleware.Identity(verifier)),
		tdb:      tdb,
		f:        f,
		verifier: verifier,
		flow:     flow,
	}
}

func (s *testServer) request(t *testing.T, method, path string) *helpers.RequestBuilder {
	t.Helper()
	return helpers.NewRequest(t, method, path)
}
