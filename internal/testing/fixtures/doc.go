// Package fixtures provides test data factories for the Setlist API.
//
// # Factory Pattern
//
// Create a factory over a test store:
//
//	f := fixtures.New(tdb.Store)
//
// # Creating Test Data
//
//	band := f.CreateBand(t)
//	concert := f.CreateConcert(t, band) // also appended to band.Concerts
//	user := f.CreateUser(t, fixtures.WithConcerts(concert.ID))
//
// # Customization
//
// Use option functions for customization:
//
//	band := f.CreateBand(t, fixtures.WithBandName("Low"))
//	concert := f.CreateConcert(t, band, fixtures.WithDate("02-29-2024"))
//
// # Cleanup
//
// Test data disappears with the test store.
package fixtures
