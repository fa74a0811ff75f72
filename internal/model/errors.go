package model

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// Client-facing messages with fixed wording
const (
	MsgNotAcceptable        = "Requests must accept response Content-type of application/json"
	MsgUnsupportedMediaType = "Request Content-type must be application/json"
	MsgNotAuthorized        = "This resource is protected and the user is not authorized"
	MsgUserNotFound         = "No user with this user_id exists"
	MsgConcertIDsNotFound   = "One or more concert_id values does not exist"
	MsgBandNotFound         = "No band with this band_id exists"
	MsgConcertNotFound      = "No concert with this concert_id exists"
	MsgInvalidState         = "Invalid state credential"
)

// APIError is an error response. It serializes as {"Error": "<message>"}.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"Error"`
	// Allow is sent as the Allow header on 405 responses
	Allow string `json:"-"`
	// RetryAfter is sent as the Retry-After header when non-zero
	RetryAfter int `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// WriteJSON writes the error as a JSON response
func (e *APIError) WriteJSON(w http.ResponseWriter) {
	if e.Allow != "" {
		w.Header().Set("Allow", e.Allow)
	}
	if e.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", e.RetryAfter))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}

// Common error constructors

func NewUnauthorizedError(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *APIError {
	return &APIError{Status: http.StatusForbidden, Message: message}
}

func NewNotFoundError(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: message}
}

func NewBadRequestError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

func NewNotAcceptableError() *APIError {
	return &APIError{Status: http.StatusNotAcceptable, Message: MsgNotAcceptable}
}

func NewUnsupportedMediaTypeError() *APIError {
	return &APIError{Status: http.StatusUnsupportedMediaType, Message: MsgUnsupportedMediaType}
}

func NewMethodNotAllowedError(allowed string) *APIError {
	return &APIError{
		Status:  http.StatusMethodNotAllowed,
		Message: fmt.Sprintf("Only %s methods are allowed", allowed),
		Allow:   allowed,
	}
}

func NewInternalError(message string) *APIError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &APIError{Status: http.StatusInternalServerError, Message: message}
}

func NewBadGatewayError(message string) *APIError {
	return &APIError{Status: http.StatusBadGateway, Message: message}
}

func NewServiceUnavailableError(message string) *APIError {
	return &APIError{Status: http.StatusServiceUnavailable, Message: message}
}

func NewRateLimitError(retryAfter int) *APIError {
	return &APIError{
		Status:     http.StatusTooManyRequests,
		Message:    fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter),
		RetryAfter: retryAfter,
	}
}
