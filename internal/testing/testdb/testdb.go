// Package testdb provides isolated document stores for tests.
//
// By default each TestDB is an in-memory Badger store, so tests need no
// external services. Setting TEST_DB_DRIVER=surrealdb runs the same tests
// against a real SurrealDB instance in a unique namespace.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//
//	    rec, err := tdb.Store.Get(tdb.Ctx(), database.KindBand, 1)
//	}
package testdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/forgo/setlist/api/internal/database"
)

// TestDB provides an isolated store for testing.
type TestDB struct {
	Store     database.Store
	Namespace string
	t         *testing.T
}

var (
	// counterMu protects the namespace counter
	counterMu sync.Mutex
	counter   int64
)

// getTestConfig returns store config from environment or defaults
func getTestConfig() database.Config {
	cfg := database.Config{
		Driver:   getEnv("TEST_DB_DRIVER", database.DriverBadger),
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnv("TEST_DB_PORT", "8000"),
		User:     getEnv("TEST_DB_USER", "root"),
		Password: getEnv("TEST_DB_PASSWORD", "root"),
		Database: "test",
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// uniqueNamespace generates a unique namespace for test isolation
func uniqueNamespace() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// New creates a new isolated test store. It is closed automatically when
// the test finishes.
func New(t *testing.T) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := getTestConfig()
	cfg.Namespace = uniqueNamespace()

	store, err := database.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("testdb: failed to open %s store: %v", cfg.Driver, err)
	}

	tdb := &TestDB{
		Store:     store,
		Namespace: cfg.Namespace,
		t:         t,
	}
	t.Cleanup(tdb.Close)
	return tdb
}

// Close releases the store.
func (tdb *TestDB) Close() {
	if tdb.Store == nil {
		return
	}
	_ = tdb.Store.Close()
	tdb.Store = nil
}

// Ctx returns a context with a reasonable timeout for test operations.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// Count returns the number of documents of a kind.
func (tdb *TestDB) Count(kind database.Kind) int {
	tdb.t.Helper()

	page, err := tdb.Store.Scan(tdb.Ctx(), kind, 0, 0)
	if err != nil {
		tdb.t.Fatalf("testdb: failed to scan %s: %v", kind, err)
	}
	return len(page.Records)
}
