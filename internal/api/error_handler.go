package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mealbridge/mealbridge-api/internal/core/domain"
)

// errorEnvelope is the canonical failure envelope: success is always false,
// message carries the human-readable cause and errors the per-field details
// on validation failures.
type errorEnvelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the consistent JSON envelope {success:false, message, errors?}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, envelope := resolveError(err, log, c)
		_ = c.JSON(code, envelope)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorEnvelope) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorEnvelope{Message: fmt.Sprintf("%v", he.Message)}
	}

	// Aggregated field validation failures carry their message list.
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorEnvelope{
			Message: "Validation Error",
			Errors:  ve.Messages,
		}
	}

	// Known domain errors → deterministic HTTP codes. Ownership violations
	// use 401, matching the public API contract.
	switch {
	case errors.Is(err, domain.ErrDonationNotFound):
		return http.StatusNotFound, errorEnvelope{Message: "Donation not found"}
	case errors.Is(err, domain.ErrNotAvailable):
		return http.StatusBadRequest, errorEnvelope{Message: "Donation is not available for reservation"}
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusUnauthorized, errorEnvelope{Message: "Not authorized to modify this donation"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorEnvelope{Message: "Invalid credentials"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorEnvelope{Message: "User not found"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorEnvelope{Message: "User already exists"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorEnvelope{Message: "Server error"}
}
