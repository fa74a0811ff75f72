package handler

/*
FEATURE: Bands
DOMAIN: Band resources and their concert lists

ACCEPTANCE CRITERIA:
===================

AC-BAND-001: Create Band
  GIVEN a body with name, genre and members
  WHEN POST /bands
  THEN 201 with id, self link and an empty concerts list

AC-BAND-002: Extra vs Missing Attributes
  GIVEN a body with an unknown attribute, or one missing a required attribute
  WHEN POST /bands
  THEN 400, with different messages for the two cases

AC-BAND-003: Header Checks
  GIVEN a non-JSON Content-Type or an Accept that excludes JSON
  WHEN any write
  THEN 415 or 406

AC-BAND-004: Pagination
  GIVEN 5 bands
  WHEN GET /bands?limit=2&offset=0
  THEN 2 bands and a next link with offset=2
  AND offset=4 returns the last band with no next link

AC-BAND-005: Partial Edit
  GIVEN a band
  WHEN PATCH /bands/{id} with genre only
  THEN only genre changes

AC-BAND-006: Delete Cascades
  GIVEN a band with a concert a user attends
  WHEN DELETE /bands/{id}
  THEN the band, its concert and the user's reference are gone
  AND a second delete is 404

AC-BAND-007: Method Not Allowed
  WHEN PUT /bands or POST /bands/{id}
  THEN 405 with the route's Allow header
*/

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/testing/fixtures"
	"github.com/forgo/setlist/api/internal/testing/helpers"
)

func validBandBody() map[string]any {
	return map[string]any{"name": "Low", "genre": "slowcore", "members": 3}
}

func TestBand_Create(t *testing.T) {
	// AC-BAND-001: Create Band
	t.Parallel()
	s := newTestServer(t)

	rr := s.request(t, http.MethodPost, "/bands").WithBody(validBandBody()).Do(s)
	helpers.AssertStatus(t, rr, http.StatusCreated)

	var band model.Band
	helpers.DecodeResponse(t, rr, &band)
	assert.NotZero(t, band.ID)
	assert.Equal(t, "Low", band.Name)
	assert.Equal(t, fmt.Sprintf("http://example.com/bands/%d", band.ID), band.Self)
	assert.NotNil(t, band.Concerts)
	assert.Empty(t, band.Concerts)
}

func TestBand_Create_MembersAsNames(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	body := validBandBody()
	body["members"] = []string{"Alan", "Mimi", "Steve"}
	rr := s.request(t, http.MethodPost, "/bands").WithBody(body).Do(s)
	helpers.AssertStatus(t, rr, http.StatusCreated)
}

func TestBand_Create_ShapeErrors(t *testing.T) {
	// AC-BAND-002: Extra vs Missing Attributes
	t.Parallel()
	s := newTestServer(t)

	extra := validBandBody()
	extra["label"] = "Sub Pop"
	rrExtra := s.request(t, http.MethodPost, "/bands").WithBody(extra).Do(s)
	helpers.AssertError(t, rrExtra, http.StatusBadRequest,
		"The request body may only contain the name, genre, members attributes")

	missing := validBandBody()
	delete(missing, "genre")
	rrMissing := s.request(t, http.MethodPost, "/bands").WithBody(missing).Do(s)
	helpers.AssertError(t, rrMissing, http.StatusBadRequest,
		"The request body is missing the required genre attribute")

	assert.Zero(t, s.tdb.Count(database.KindBand))
}

func TestBand_Create_InvalidValues(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not an object", `["Low"]`},
		{"malformed json", `{"name":`},
		{"name wrong type", `{"name": 7, "genre": "slowcore", "members": 3}`},
		{"empty name", `{"name": "", "genre": "slowcore", "members": 3}`},
		{"zero members", `{"name": "Low", "genre": "slowcore", "members": 0}`},
		{"fractional members", `{"name": "Low", "genre": "slowcore", "members": 2.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.request(t, http.MethodPost, "/bands").WithRawBody(tt.body).Do(s)
			helpers.AssertError(t, rr, http.StatusBadRequest, "")
		})
	}
}

func TestBand_HeaderChecks(t *testing.T) {
	// AC-BAND-003: Header Checks
	t.Parallel()
	s := newTestServer(t)
	band := s.f.CreateBand(t)

	rr := s.request(t, http.MethodPost, "/bands").
		WithBody(validBandBody()).
		WithHeader("Content-Type", "text/plain").
		Do(s)
	helpers.AssertError(t, rr, http.StatusUnsupportedMediaType, model.MsgUnsupportedMediaType)

	rr = s.request(t, http.MethodGet, fmt.Sprintf("/bands/%d", band.ID)).
		WithHeader("Accept", "text/html").
		Do(s)
	helpers.AssertError(t, rr, http.StatusNotAcceptable, model.MsgNotAcceptable)

	rr = s.request(t, http.MethodGet, fmt.Sprintf("/bands/%d", band.ID)).
		WithHeader("Accept", "text/html, */*;q=0.8").
		Do(s)
	helpers.AssertStatus(t, rr, http.StatusOK)

	rr = s.request(t, http.MethodGet, fmt.Sprintf("/bands/%d", band.ID)).
		WithHeader("Accept", "").
		Do(s)
	helpers.AssertStatus(t, rr, http.StatusOK)
}

func TestBand_Pagination(t *testing.T) {
	// AC-BAND-004: Pagination
	t.Parallel()
	s := newTestServer(t)
	for range 5 {
		s.f.CreateBand(t)
	}

	rr := s.request(t, http.MethodGet, "/bands?limit=2&offset=0").Do(s)
	helpers.AssertStatus(t, rr, http.StatusOK)
	var first model.BandPage
	helpers.DecodeResponse(t, rr, &first)
	assert.Len(t, first.Bands, 2)
	assert.Equal(t, "http://example.com/bands?limit=2&offset=0", first.Self)
	assert.Equal(t, "http://example.com/bands?limit=2&offset=2", first.Next)

	rr = s.request(t, http.MethodGet, "/bands?limit=2&offset=4").Do(s)
	var last model.BandPage
	helpers.DecodeResponse(t, rr, &last)
	assert.Len(t, last.Bands, 1)
	assert.Empty(t, last.Next)

	rr = s.request(t, http.MethodGet, "/bands").Do(s)
	var defaults model.BandPage
	helpers.DecodeResponse(t, rr, &defaults)
	assert.Len(t, defaults.Bands, 5)
	assert.Empty(t, defaults.Next)
}

func TestBand_Pagination_HugeLimitIsClamped(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	for range 3 {
		s.f.CreateBand(t)
	}

	rr := s.request(t, http.MethodGet, "/bands?limit=9223372036854775807&offset=1").Do(s)
	helpers.AssertStatus(t, rr, http.StatusOK)
	var page model.BandPage
	helpers.DecodeResponse(t, rr, &page)
	assert.Len(t, page.Bands, 2)
	assert.Empty(t, page.Next)
	assert.Equal(t, fmt.Sprintf("http://example.com/bands?limit=%d&offset=1", MaxPageLimit), page.Self)
}

func TestBand_Pagination_InvalidParams(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	for _, q := range []string{"limit=abc", "limit=-1", "limit=0", "offset=-3", "offset=x"} {
		rr := s.request(t, http.MethodGet, "/bands?"+q).Do(s)
		helpers.AssertError(t, rr, http.StatusBadRequest, "")
	}
}

func TestBand_Get(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	band := s.f.CreateBand(t)
	concert := s.f.CreateConcert(t, band)

	rr := s.request(t, http.MethodGet, fmt.Sprintf("/bands/%d", band.ID)).
		WithHeader("X-Forwarded-Proto", "https").
		Do(s)
	helpers.AssertStatus(t, rr, http.StatusOK)

	var got model.Band
	helpers.DecodeResponse(t, rr, &got)
	require.Len(t, got.Concerts, 1)
	assert.Equal(t, concert.ID, got.Concerts[0].ID)
	assert.Equal(t, fmt.Sprintf("https://example.com/concerts/%d", concert.ID), got.Concerts[0].Self)

	for _, path := range []string{"/bands/9999", "/bands/abc", "/bands/-1"} {
		rr = s.request(t, http.MethodGet, path).Do(s)
		helpers.AssertError(t, rr, http.StatusNotFound, model.MsgBandNotFound)
	}
}

func TestBand_Update_Partial(t *testing.T) {
	// AC-BAND-005: Partial Edit
	t.Parallel()
	s := newTestServer(t)
	band := s.f.CreateBand(t, fixtures.WithBandName("Galaxie 500"))

	rr := s.request(t, http.MethodPatch, fmt.Sprintf("/bands/%d", band.ID)).
		WithBody(map[string]any{"genre": "dream pop"}).
		Do(s)
	helpers.AssertStatus(t, rr, http.StatusOK)

	got := s.f.MustBand(t, band.ID)
	assert.Equal(t, "Galaxie 500", got.Name)
	assert.Equal(t, "dream pop", got.Genre)

	rr = s.request(t, http.MethodPatch, fmt.Sprintf("/bands/%d", band.ID)).
		WithBody(map[string]any{"concerts": []int{1}}).
		Do(s)
	helpers.AssertError(t, rr, http.StatusBadRequest,
		"The request body may only contain the name, genre, members attributes")

	rr = s.request(t, http.MethodPatch, "/bands/9999").
		WithBody(map[string]any{"genre": "x"}).
		Do(s)
	helpers.AssertError(t, rr, http.StatusNotFound, model.MsgBandNotFound)
}

func TestBand_Delete_Cascades(t *testing.T) {
	// AC-BAND-006: Delete Cascades
	t.Parallel()
	s := newTestServer(t)
	band := s.f.CreateBand(t)
	concert := s.f.CreateConcert(t, band)
	user := s.f.CreateUser(t, fixtures.WithConcerts(concert.ID))

	rr := s.request(t, http.MethodDelete, fmt.Sprintf("/bands/%d", band.ID)).Do(s)
	helpers.AssertStatus(t, rr, http.StatusNoContent)

	helpers.AssertRecordNotExists(t, s.tdb.Store, database.KindBand, band.ID)
	helpers.AssertRecordNotExists(t, s.tdb.Store, database.KindConcert, concert.ID)
	assert.Empty(t, s.f.MustUser(t, user.ID).Concerts)

	rr = s.request(t, http.MethodDelete, fmt.Sprintf("/bands/%d", band.ID)).Do(s)
	helpers.AssertError(t, rr, http.StatusNotFound, model.MsgBandNotFound)
}

func TestBand_MethodNotAllowed(t *testing.T) {
	// AC-BAND-007: Method Not Allowed
	t.Parallel()
	s := newTestServer(t)

	tests := []struct {
		method string
		path   string
		allow  string
	}{
		{http.MethodPut, "/bands", "POST, GET"},
		{http.MethodDelete, "/bands", "POST, GET"},
		{http.MethodPost, "/bands/1", "GET, PATCH, DELETE"},
		{http.MethodPut, "/bands/1", "GET, PATCH, DELETE"},
	}

	for _, tt := range tests {
		rr := s.request(t, tt.method, tt.path).Do(s)
		helpers.AssertStatus(t, rr, http.StatusMethodNotAllowed)
		assert.Equal(t, tt.allow, rr.Header().Get("Allow"), "%s %s", tt.method, tt.path)
	}
}
