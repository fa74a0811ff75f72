// Package testdb provides test store utilities for the Setlist API.
//
// # Test Store Setup
//
// Create a test store for each test:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t) // closed on t.Cleanup
//	}
//
// # Isolation
//
// The default Badger backend runs in memory, so every TestDB is empty and
// private to its test. With TEST_DB_DRIVER=surrealdb each TestDB gets its
// own namespace.
//
// # Timeout Context
//
//	ctx := tdb.Ctx() // 10 second timeout
package testdb
