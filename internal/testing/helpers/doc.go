// Package helpers provides test utility functions for the Setlist API.
//
// # Requests
//
// Build requests fluently; they accept application/json by default:
//
//	rr := helpers.NewRequest(t, http.MethodPost, "/bands").
//	    WithBody(map[string]any{"name": "Low", "genre": "slowcore", "members": 3}).
//	    Do(server)
//
// # Identity
//
// StaticVerifier replaces the OIDC relying party:
//
//	verifier := helpers.StaticVerifier{}
//	token := verifier.TokenFor("auth0|42")
//	req := helpers.NewRequest(t, http.MethodGet, "/users/auth0|42/concerts").WithBearer(token)
//
// # Assertions
//
//	helpers.AssertError(t, rr, http.StatusNotFound, model.MsgBandNotFound)
//	helpers.AssertRecordNotExists(t, store, database.KindConcert, id)
package helpers
