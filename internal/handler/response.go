package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/forgo/setlist/api/internal/model"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// errMalformedBody is returned when a body is not a JSON object or an
// attribute has the wrong JSON type
var errMalformedBody = errors.New("malformed request body")

const msgMalformedBody = "The request body must be a JSON object with valid attribute values"

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes an {"Error": "..."} response
func WriteError(w http.ResponseWriter, err *model.APIError) {
	err.WriteJSON(w)
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// acceptsJSON reports whether the client can take a JSON response. A
// request without an Accept header accepts anything.
func acceptsJSON(r *http.Request) bool {
	values := r.Header.Values("Accept")
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			mediaType, _, _ := strings.Cut(part, ";")
			switch strings.ToLower(strings.TrimSpace(mediaType)) {
			case "application/json", "*/*":
				return true
			}
		}
	}
	return false
}

// sendsJSON reports whether the request body is declared as JSON
func sendsJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// checkAccept writes a 406 and returns false if the client cannot take JSON
func checkAccept(w http.ResponseWriter, r *http.Request) bool {
	if !acceptsJSON(r) {
		WriteError(w, model.NewNotAcceptableError())
		return false
	}
	return true
}

// checkHeaders is checkAccept plus a 415 for non-JSON request bodies
func checkHeaders(w http.ResponseWriter, r *http.Request) bool {
	if !checkAccept(w, r) {
		return false
	}
	if !sendsJSON(r) {
		WriteError(w, model.NewUnsupportedMediaTypeError())
		return false
	}
	return true
}

// readBody decodes a JSON object body into v after checking that its
// top-level attributes fit the allowed and required sets. A nil required
// list accepts any subset of allowed (partial edits).
func readBody(r *http.Request, required, allowed []string, v any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return errMalformedBody
	}
	if err := model.ValidateShape(payload, required, allowed); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}
