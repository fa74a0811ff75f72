// Package fixtures provides test data factories.
//
// Each factory method creates entities with sensible defaults while allowing
// customization via option functions. Factories write consistent
// back-references (a concert is added to its band's list) and return fully
// populated models.
//
// Usage:
//
//	f := fixtures.New(tdb.Store)
//	band := f.CreateBand(t)
//	concert := f.CreateConcert(t, band)
//	user := f.CreateUser(t, fixtures.WithConcerts(concert.ID))
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/repository"
)

// Factory creates test entities in the store
type Factory struct {
	Bands    *repository.BandRepository
	Concerts *repository.ConcertRepository
	Users    *repository.UserRepository
}

// New creates a new fixture factory
func New(store database.Store) *Factory {
	return &Factory{
		Bands:    repository.NewBandRepository(store),
		Concerts: repository.NewConcertRepository(store),
		Users:    repository.NewUserRepository(store),
	}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ctx returns a context with timeout
func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
// Band Fixtures
// ============================================================================

// BandOpts customizes band creation
type BandOpts struct {
	Name    string
	Genre   string
	Members any
}

// WithBandName sets the band name
func WithBandName(name string) func(*BandOpts) {
	return func(o *BandOpts) { o.Name = name }
}

// CreateBand creates a band with no concerts
func (f *Factory) CreateBand(t *testing.T, opts ...func(*BandOpts)) *model.Band {
	t.Helper()

	o := &BandOpts{
		Name:    fmt.Sprintf("band_%s", randomID()),
		Genre:   "shoegaze",
		Members: float64(4),
	}
	for _, fn := range opts {
		fn(o)
	}

	band := &model.Band{Name: o.Name, Genre: o.Genre, Members: o.Members, Concerts: []model.Ref{}}
	if err := f.Bands.Create(ctx(t), band); err != nil {
		t.Fatalf("fixtures: failed to create band: %v", err)
	}
	return band
}

// ============================================================================
// Concert Fixtures
// ============================================================================

// ConcertOpts customizes concert creation
type ConcertOpts struct {
	Venue   string
	Address string
	Date    string
}

// WithDate sets the concert date
func WithDate(date string) func(*ConcertOpts) {
	return func(o *ConcertOpts) { o.Date = date }
}

// CreateConcert creates a concert for band and appends it to the band's list
func (f *Factory) CreateConcert(t *testing.T, band *model.Band, opts ...func(*ConcertOpts)) *model.Concert {
	t.Helper()

	o := &ConcertOpts{
		Venue:   fmt.Sprintf("venue_%s", randomID()),
		Address: "1 Main St, Portland, OR",
		Date:    "06-21-2025",
	}
	for _, fn := range opts {
		fn(o)
	}

	concert := &model.Concert{
		Venue:   o.Venue,
		Address: o.Address,
		Date:    o.Date,
		Band:    model.Ref{ID: band.ID},
	}
	if err := f.Concerts.Create(ctx(t), concert); err != nil {
		t.Fatalf("fixtures: failed to create concert: %v", err)
	}

	band.Concerts = append(band.Concerts, model.Ref{ID: concert.ID})
	if err := f.Bands.Update(ctx(t), band); err != nil {
		t.Fatalf("fixtures: failed to link concert to band: %v", err)
	}
	return concert
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	FirstName string
	LastName  string
	AuthID    string
	Concerts  []model.ID
}

// WithAuthID sets the identity provider subject
func WithAuthID(authID string) func(*UserOpts) {
	return func(o *UserOpts) { o.AuthID = authID }
}

// WithConcerts sets the user's concert membership
func WithConcerts(ids ...model.ID) func(*UserOpts) {
	return func(o *UserOpts) { o.Concerts = ids }
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	o := &UserOpts{
		FirstName: "Test",
		LastName:  "User",
		AuthID:    fmt.Sprintf("sub_%s", randomID()),
	}
	for _, fn := range opts {
		fn(o)
	}

	user := &model.User{
		FirstName: o.FirstName,
		LastName:  o.LastName,
		AuthID:    o.AuthID,
		Concerts:  []model.Ref{},
	}
	for _, id := range o.Concerts {
		user.Concerts = append(user.Concerts, model.Ref{ID: id})
	}
	if err := f.Users.Create(ctx(t), user); err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	return user
}

// ============================================================================
// Readback
// ============================================================================

// MustBand reloads a band, failing the test if it is missing
func (f *Factory) MustBand(t *testing.T, id model.ID) *model.Band {
	t.Helper()

	band, err := f.Bands.GetByID(ctx(t), id)
	if err != nil || band == nil {
		t.Fatalf("fixtures: band %d not loaded: %v", id, err)
	}
	return band
}

// MustUser reloads a user, failing the test if it is missing
func (f *Factory) MustUser(t *testing.T, id model.ID) *model.User {
	t.Helper()

	user, err := f.Users.GetByID(ctx(t), id)
	if err != nil || user == nil {
		t.Fatalf("fixtures: user %d not loaded: %v", id, err)
	}
	return user
}

// ConcertIDs returns the ids in refs, in order
func ConcertIDs(refs []model.Ref) []model.ID {
	ids := make([]model.ID, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}
