package handler

import (
	"errors"
	"log/slog"

	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/service"
)

// MapServiceError converts a service error to an API error response. This
// centralizes status codes and client-facing wording for all handlers.
func MapServiceError(err error) *model.APIError {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authorization Errors → 401/403 =====
	case errors.Is(err, service.ErrNoCredential):
		return model.NewUnauthorizedError(model.MsgNotAuthorized)
	case errors.Is(err, service.ErrWrongIdentity):
		return model.NewForbiddenError(model.MsgNotAuthorized)
	case errors.Is(err, service.ErrInvalidState):
		return model.NewUnauthorizedError(model.MsgInvalidState)

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrBandNotFound):
		return model.NewNotFoundError(model.MsgBandNotFound)
	case errors.Is(err, service.ErrConcertNotFound):
		return model.NewNotFoundError(model.MsgConcertNotFound)
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError(model.MsgUserNotFound)
	case errors.Is(err, service.ErrUnknownConcerts):
		return model.NewNotFoundError(model.MsgConcertIDsNotFound)

	// ===== Validation Errors → 400 =====
	case errors.Is(err, model.ErrExtraField),
		errors.Is(err, model.ErrMissingField),
		errors.Is(err, model.ErrInvalidValue):
		return model.NewBadRequestError(err.Error())
	case errors.Is(err, errMalformedBody):
		return model.NewBadRequestError(msgMalformedBody)
	case errors.Is(err, service.ErrInvalidAuthCode),
		errors.Is(err, service.ErrInvalidIDToken):
		return model.NewBadRequestError(err.Error())

	// ===== Provider/External Errors → 502 =====
	case errors.Is(err, service.ErrProviderError):
		return model.NewBadGatewayError("The identity provider rejected the login")

	// ===== Incomplete Cleanup → 500 =====
	case errors.Is(err, service.ErrPartialCascade):
		slog.Error("cascade delete incomplete", slog.String("error", err.Error()))
		return model.NewInternalError("References to this resource could not all be removed; retry the delete")

	// ===== Default → 500 =====
	default:
		slog.Error("unhandled service error", slog.String("error", err.Error()))
		return model.NewInternalError("")
	}
}
