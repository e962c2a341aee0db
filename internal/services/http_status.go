package services

import (
	"errors"

	apperrors "teamhub/pkg/errors"
)

// HTTPStatus maps service errors to HTTP status codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return 400
	case errors.Is(err, apperrors.ErrUnauthorized):
		return 401
	case errors.Is(err, apperrors.ErrForbidden), errors.Is(err, apperrors.ErrRoomProtected):
		return 403
	case errors.Is(err, apperrors.ErrNotFound):
		return 404
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		return 409
	case errors.Is(err, apperrors.ErrRateLimited):
		return 429
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		return 503
	default:
		return 500
	}
}
