// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/sanctified-studios/studio/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var (
		validation  shared.ValidationError
		persistence shared.PersistenceError
	)
	switch {
	case errors.As(err, &validation):
		Problem(w, http.StatusBadRequest, "Validation Failed", validation.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrAlreadyConverted):
		Problem(w, http.StatusConflict, "Already Converted", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		Problem(w, http.StatusConflict, "Duplicate Request", err.Error())
	case errors.Is(err, shared.ErrBookingCancelled):
		Problem(w, http.StatusConflict, "Booking Cancelled", err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case shared.IsRender(err) || shared.IsUpload(err):
		Problem(w, http.StatusBadGateway, "Document Unavailable", err.Error())
	case errors.As(err, &persistence):
		// The operator retries by hand, so the store message is passed through.
		Problem(w, http.StatusBadGateway, "Store Unavailable", persistence.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
