// Package service implements business logic for the Setlist API.
//
// Services sit between handlers and repositories. Repository interfaces are
// declared here so tests can substitute mocks.
//
// # Referential Integrity
//
// The store offers no foreign keys, cascades, or multi-document
// transactions. IntegrityEngine keeps the denormalized references
// consistent with a small set of named, idempotent operations:
//
//   - Link / Unlink: add or remove a concert in its band's list
//   - Relink: move a concert between bands, linking before unlinking
//   - CascadeDeleteConcert / CascadeDeleteBand: clean references before a delete
//   - AddConcertsToUser / RemoveConcertFromUser: maintain a user's concert set
//
// Each operation can be re-run after a partial failure and converges on the
// correct state. Concurrent writers to the same document are last-write-wins.
// AuditService detects and repairs what an interrupted operation left behind.
//
// # Error Handling
//
// Services return sentinel errors from errors.go, which handlers map to
// HTTP responses in handler.MapServiceError.
//
// # Service Configuration
//
// Each service is constructed from a config struct:
//
//	engine := service.NewIntegrityEngine(service.IntegrityEngineConfig{
//	    BandRepo:    bandRepo,
//	    ConcertRepo: concertRepo,
//	    UserRepo:    userRepo,
//	})
package service
