// Package handler provides HTTP request handlers for the Setlist API.
//
// Each handler struct wraps one service. Every request runs the same
// pipeline:
//
//   - header checks: Accept must allow application/json (406), write
//     bodies must be application/json (415)
//   - body shape: only allowed attributes, required ones on create (400)
//   - value validation (400)
//   - service call, with errors mapped by MapServiceError
//   - response assembly with absolute self links built from the request
//
// Errors are written as {"Error": "<message>"}. Routes are mounted by
// RegisterRoutes, which also answers unsupported methods with 405 and an
// Allow header.
//
// # Pagination
//
// Band and concert lists take limit (default 5) and offset (default 0).
// A next link is present only when more results exist. Offsets are not a
// snapshot: writes between page requests can shift rows across pages.
package handler
