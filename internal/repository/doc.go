// Package repository implements the data access layer for the Setlist API.
//
// Each repository struct handles document operations for one entity kind
// on top of a database.Store.
//
// # Repository Pattern
//
// All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a database.Store
//   - Methods implement specific data operations (Create, GetByID, Update, Delete, List)
//   - Documents are encoded as JSON; the store id is not part of the body
//   - GetByID returns (nil, nil) when the document does not exist
//
// Self links are never stored. They depend on the request origin and are
// added by the handlers.
//
// # Example Usage
//
//	repo := NewBandRepository(store)
//	band, err := repo.GetByID(ctx, 42)
//	if err != nil {
//	    return err
//	}
//	if band == nil {
//	    // Handle not found
//	}
package repository
