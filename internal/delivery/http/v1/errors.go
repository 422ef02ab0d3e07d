package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskdesk/internal/services"
	"taskdesk/internal/validate"
)

var (
	errInvalidRequestBody      = errors.New("invalid request body")
	errMandatoryCookieNotFound = errors.New("mandatory cookie not found")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

func newTooManyRequestsError(message string) apiError {
	return newAPIError(http.StatusTooManyRequests, message)
}

// abortServiceError maps service failures onto API responses. Validation
// reasons are surfaced verbatim; remote failures surface only their
// generic category message.
func abortServiceError(c *gin.Context, err error) {
	var validationErr *validate.Error
	var lockedErr *services.AccountLockedError
	var remoteErr *services.RemoteError

	switch {
	case errors.As(err, &validationErr):
		abort(c, newBadRequestError(validationErr.Reason))
	case errors.As(err, &lockedErr):
		abort(c, newTooManyRequestsError(lockedErr.Error()))
	case errors.Is(err, services.ErrAuthRequired):
		abort(c, newUnauthorizedError(services.ErrAuthRequired.Error()))
	case errors.Is(err, services.ErrRateLimited):
		abort(c, newTooManyRequestsError(services.ErrRateLimited.Error()))
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newAPIError(http.StatusNotFound, services.ErrTaskNotFound.Error()))
	case errors.As(err, &remoteErr):
		abort(c, newAPIError(remoteStatusCode(remoteErr.Category), remoteErr.Category.Message()))
	default:
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}

func remoteStatusCode(category services.RemoteCategory) int {
	switch category {
	case services.RemoteAccessDenied:
		return http.StatusForbidden
	case services.RemoteNotFound:
		return http.StatusNotFound
	case services.RemoteNetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
