package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/forgo/setlist/api/internal/model"
)

// TokenVerifier verifies a bearer ID token
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.Identity, error)
}

// Identity resolves the caller's identity from an optional bearer ID token.
// It never rejects a request: a missing, malformed, or unverifiable token
// leaves no identity in the context and handlers that need one answer 401.
func Identity(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				slog.Debug("bearer token rejected",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity returns the verified identity, or nil if the request carried
// no valid credential
func GetIdentity(ctx context.Context) *model.Identity {
	if identity, ok := ctx.Value(IdentityKey).(*model.Identity); ok {
		return identity
	}
	return nil
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
