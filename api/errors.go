package api

import (
	"errors"
	"net/http"

	"github.com/ddj82/roomi/internal/auth"
	"github.com/ddj82/roomi/internal/backend"
	"github.com/ddj82/roomi/internal/repository"
	"github.com/ddj82/roomi/internal/service/contract"
	"github.com/ddj82/roomi/internal/service/listing"
	"github.com/ddj82/roomi/internal/service/search"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, contract.ErrReservationNotFound),
		errors.Is(err, repository.ErrDraftNotFound),
		errors.Is(err, repository.ErrPhotoNotFound):
		return http.StatusNotFound
	case errors.Is(err, contract.ErrMutationInFlight),
		errors.Is(err, contract.ErrActionNotAllowed):
		return http.StatusConflict
	case errors.Is(err, contract.ErrInvalidRefund),
		errors.Is(err, listing.ErrUnknownStep),
		errors.Is(err, listing.ErrUnexpectedField),
		errors.Is(err, listing.ErrInvalidListing),
		errors.Is(err, listing.ErrUnsupportedImage),
		errors.Is(err, search.ErrInvalidBounds):
		return http.StatusBadRequest
	case errors.Is(err, listing.ErrStepOutOfOrder),
		errors.Is(err, listing.ErrDraftIncomplete),
		errors.Is(err, listing.ErrNoPhotos),
		errors.Is(err, listing.ErrTooManyPhotos):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr):
		// backend 4xx are the caller's problem, anything else is ours
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	var notice *contract.Notice
	if errors.As(err, &notice) {
		c.JSON(statusFor(notice.Err), gin.H{"error": notice.Message, "detail": notice.Err.Error()})
		return
	}
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
