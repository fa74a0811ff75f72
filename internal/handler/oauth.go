package handler

import (
	"log/slog"
	"net/http"

	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/service"
)

// OAuthHandler handles the browser login flow
type OAuthHandler struct {
	oauthService *service.OAuthService
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(oauthService *service.OAuthService) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
	}
}

// LoginResponse is returned from the callback. The id_token is what
// clients send as a bearer credential on protected routes.
type LoginResponse struct {
	ID        model.ID `json:"id"`
	FirstName string   `json:"f_name"`
	LastName  string   `json:"l_name"`
	AuthID    string   `json:"auth_id"`
	IDToken   string   `json:"id_token"`
	IsNewUser bool     `json:"is_new_user"`
}

// Start handles GET /oauth by redirecting to the identity provider
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	url, err := h.oauthService.Begin(r.Context())
	if err != nil {
		slog.Error("failed to start login", slog.String("error", err.Error()))
		WriteError(w, model.NewInternalError("Could not start login"))
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// Callback handles GET /oauth/callback
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if !checkAccept(w, r) {
		return
	}
	q := r.URL.Query()

	if providerErr := q.Get("error"); providerErr != "" {
		slog.Warn("identity provider returned error",
			slog.String("error", providerErr),
			slog.String("description", q.Get("error_description")),
		)
		WriteError(w, MapServiceError(service.ErrProviderError))
		return
	}

	result, err := h.oauthService.Complete(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, LoginResponse{
		ID:        result.User.ID,
		FirstName: result.User.FirstName,
		LastName:  result.User.LastName,
		AuthID:    result.User.AuthID,
		IDToken:   result.IDToken,
		IsNewUser: result.IsNewUser,
	})
}
