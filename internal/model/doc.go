// Package model defines domain entities and data structures for the Setlist API.
//
// The model package contains the struct definitions for domain objects,
// request bodies, validators, and the error response type. Models are used
// across all layers of the application.
//
// # Domain Entities
//
//   - Band: a band and the ordered list of concerts it plays
//   - Concert: a show with exactly one band reference
//   - User: an account keyed by its identity provider subject, with a set
//     of attended concerts
//
// References between entities are stored as Ref values ({id}) on the
// owning side only: the band owns its concert list and the user owns its
// concert set. Self links are filled in at response time.
//
// # Validation
//
// Payload validation happens in two steps. ValidateShape checks which keys
// are present (extra and missing fields are separate error kinds). Each
// input type then checks its values with Validate, using
// go-playground/validator tags plus ValidateDate for concert dates.
//
// # Error Responses
//
// APIError serializes as {"Error": "<message>"}:
//
//	model.NewNotFoundError(model.MsgBandNotFound).WriteJSON(w)
package model
