// Package database provides the document store abstraction for Setlist.
//
// This package defines the Store interface that every backend implements,
// allowing the integrity engine and repositories to stay ignorant of the
// concrete store (SurrealDB, Badger, or DynamoDB).
//
// # Interface Design
//
// Documents are addressed by a kind (collection) and a store-assigned
// numeric id. The body of a document is opaque JSON:
//   - Get: fetch one document by id
//   - Put: upsert a document; ID 0 allocates a fresh id
//   - Delete: remove a document by id
//   - Scan: page through a kind ordered by id
//
// # Consistency
//
// IMPORTANT: the store offers no multi-document atomicity. Callers that
// update several documents must order their writes so that a partial
// failure can be re-run to convergence.
//
// Scan pages are computed independently. A write between two Scan calls
// can shift which documents appear on the next page; there is no snapshot
// isolation across pages.
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: Record does not exist
//   - ErrConnection: Store connection issues
//   - ErrQuery: Query execution failures
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
//
// # Usage Example
//
//	store, err := database.Open(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	rec, err := store.Get(ctx, database.KindBand, 42)
package database

import (
	"context"
	"errors"
	"fmt"
)

// Standard errors for store operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConnection indicates a failure to connect to or communicate with the store.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure.
	ErrQuery = errors.New("query error")

	// ErrInvalidKind indicates an operation on a kind the store does not know.
	ErrInvalidKind = errors.New("invalid kind")

	// ErrUnknownDriver indicates a configuration naming an unsupported backend.
	ErrUnknownDriver = errors.New("unknown database driver")
)

// Kind names a collection of documents of the same entity type.
type Kind string

const (
	KindBand       Kind = "band"
	KindConcert    Kind = "concert"
	KindUser       Kind = "user"
	KindOAuthState Kind = "oauth_state"
)

// Kinds lists every collection the store manages.
var Kinds = []Kind{KindBand, KindConcert, KindUser, KindOAuthState}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Record is a single stored document.
type Record struct {
	ID   int64
	Data []byte
}

// Page is one window of a Scan.
type Page struct {
	Records    []Record
	HasMore    bool
	NextOffset int
}

// Store defines the interface for document store operations
type Store interface {
	Get(ctx context.Context, kind Kind, id int64) (*Record, error)
	// Put upserts rec and returns its id. A zero rec.ID allocates a new id
	// that is never reused.
	Put(ctx context.Context, kind Kind, rec *Record) (int64, error)
	Delete(ctx context.Context, kind Kind, id int64) error
	// Scan returns up to limit records ordered by id, skipping offset.
	// A limit <= 0 returns every record from offset onward.
	Scan(ctx context.Context, kind Kind, limit, offset int) (*Page, error)

	Ping(ctx context.Context) error
	Close() error
}

// Supported driver names
const (
	DriverSurrealDB = "surrealdb"
	DriverBadger    = "badger"
	DriverDynamoDB  = "dynamodb"
)

// Config holds database connection settings for every backend.
type Config struct {
	Driver string

	// SurrealDB
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string

	// Badger; an empty path runs in memory
	BadgerPath string

	// DynamoDB
	DynamoTable    string
	DynamoRegion   string
	DynamoEndpoint string
}

// Open constructs and connects the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverSurrealDB:
		db := NewSurrealDB(cfg)
		if err := db.Connect(ctx); err != nil {
			return nil, err
		}
		return db, nil
	case DriverBadger:
		return OpenBadger(cfg.BadgerPath)
	case DriverDynamoDB:
		return OpenDynamoDB(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// window applies limit/offset to a sorted slice of records.
func window(records []Record, limit, offset int) *Page {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return &Page{Records: []Record{}, NextOffset: offset}
	}
	end := len(records)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return &Page{
		Records:    records[offset:end],
		HasMore:    end < len(records),
		NextOffset: end,
	}
}
