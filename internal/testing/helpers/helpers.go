// Package helpers provides common test utilities for HTTP-level testing.
//
// This package includes HTTP request builders, response validators,
// a static token verifier, and store assertion helpers.
package helpers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/forgo/setlist/api/internal/database"
	"github.com/forgo/setlist/api/internal/model"
)

// ============================================================================
// Token Helpers
// ============================================================================

// ErrUnknownToken is returned by StaticVerifier for tokens it was not given
var ErrUnknownToken = errors.New("helpers: unknown token")

// StaticVerifier verifies bearer tokens against a fixed token→identity map.
// It stands in for the OIDC relying party in handler tests.
type StaticVerifier map[string]*model.Identity

// Verify implements middleware.TokenVerifier
func (v StaticVerifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	if identity, ok := v[token]; ok {
		return identity, nil
	}
	return nil, ErrUnknownToken
}

// TokenFor returns a token for subject, registering it with the verifier
func (v StaticVerifier) TokenFor(subject string) string {
	token := "token-" + subject
	v[token] = &model.Identity{Subject: subject, GivenName: "Test", LastName: "User"}
	return token
}

// ============================================================================
// HTTP Request Helpers
// ============================================================================

// RequestBuilder helps construct HTTP requests for testing. Requests accept
// application/json unless told otherwise.
type RequestBuilder struct {
	t       *testing.T
	method  string
	path    string
	body    []byte
	hasBody bool
	headers map[string]string
}

// NewRequest creates a new request builder
func NewRequest(t *testing.T, method, path string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{
		t:       t,
		method:  method,
		path:    path,
		headers: map[string]string{"Accept": "application/json"},
	}
}

// WithBody sets the request body (will be JSON encoded) and a JSON
// Content-Type
func (rb *RequestBuilder) WithBody(body any) *RequestBuilder {
	rb.t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		rb.t.Fatalf("helpers: failed to marshal body: %v", err)
	}
	return rb.WithRawBody(string(b))
}

// WithRawBody sets the body verbatim with a JSON Content-Type
func (rb *RequestBuilder) WithRawBody(body string) *RequestBuilder {
	rb.body = []byte(body)
	rb.hasBody = true
	if _, ok := rb.headers["Content-Type"]; !ok {
		rb.headers["Content-Type"] = "application/json"
	}
	return rb
}

// WithHeader sets a header. An empty value removes it.
func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	if value == "" {
		delete(rb.headers, key)
		return rb
	}
	rb.headers[key] = value
	return rb
}

// WithBearer sets an Authorization bearer token
func (rb *RequestBuilder) WithBearer(token string) *RequestBuilder {
	return rb.WithHeader("Authorization", "Bearer "+token)
}

// Build creates the HTTP request
func (rb *RequestBuilder) Build() *http.Request {
	rb.t.Helper()

	var bodyReader io.Reader
	if rb.hasBody {
		bodyReader = bytes.NewReader(rb.body)
	}

	req := httptest.NewRequest(rb.method, rb.path, bodyReader)
	for k, v := range rb.headers {
		req.Header.Set(k, v)
	}
	return req
}

// Do builds the request and serves it through h
func (rb *RequestBuilder) Do(h http.Handler) *httptest.ResponseRecorder {
	rb.t.Helper()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, rb.Build())
	return rr
}

// ============================================================================
// Response Assertion Helpers
// ============================================================================

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, resp *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if resp.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, resp.Code, resp.Body.String())
	}
}

// AssertError validates an {"Error": "..."} response. An empty message
// only checks that the attribute is present.
func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	t.Helper()

	AssertStatus(t, resp, expectedStatus)

	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("expected JSON error, got Content-Type %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v. Body: %s", err, resp.Body.String())
	}
	msg, ok := body["Error"].(string)
	if !ok {
		t.Fatalf("expected Error attribute, got %s", resp.Body.String())
	}
	if expectedMessage != "" && msg != expectedMessage {
		t.Errorf("expected error %q, got %q", expectedMessage, msg)
	}
}

// DecodeResponse decodes the response body into the given struct
func DecodeResponse(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, resp.Body.String())
	}
}

// ============================================================================
// Store Assertion Helpers
// ============================================================================

// AssertRecordExists checks that a document exists in the store
func AssertRecordExists(t *testing.T, store database.Store, kind database.Kind, id model.ID) {
	t.Helper()

	if !recordExists(t, store, kind, id) {
		t.Errorf("expected %s %d to exist, but it doesn't", kind, id)
	}
}

// AssertRecordNotExists checks that a document does not exist
func AssertRecordNotExists(t *testing.T, store database.Store, kind database.Kind, id model.ID) {
	t.Helper()

	if recordExists(t, store, kind, id) {
		t.Errorf("expected %s %d to not exist, but it does", kind, id)
	}
}

func recordExists(t *testing.T, store database.Store, kind database.Kind, id model.ID) bool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := store.Get(ctx, kind, int64(id))
	if errors.Is(err, database.ErrNotFound) {
		return false
	}
	if err != nil {
		t.Fatalf("failed to read %s %d: %v", kind, id, err)
	}
	return true
}
