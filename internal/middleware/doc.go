// Package middleware provides HTTP middleware for the Setlist API.
//
// # Available Middleware
//
//   - RequestID: assigns or propagates X-Request-ID
//   - Logger: structured request logs and request metrics
//   - Recovery: turns panics into a JSON 500
//   - Identity: resolves the caller from an optional bearer ID token
//   - CORS: cross-origin handling (go-chi/cors)
//   - RateLimit: per-IP request limiting (go-chi/httprate)
//
// Middlewares compose with Chain, outermost first:
//
//	handler := middleware.Chain(mux,
//	    middleware.RequestID,
//	    middleware.Recovery,
//	    middleware.CORS(corsCfg),
//	    middleware.RateLimit(rlCfg),
//	    middleware.Identity(verifier),
//	    middleware.Logger,
//	)
//
// # Identity
//
// Identity does not reject requests. Handlers for protected routes call
// GetIdentity and decide between 401 (nil identity) and 403 (wrong subject).
package middleware
