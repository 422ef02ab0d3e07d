package services

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// RemoteCategory is the generic user-facing classification of a backend
// failure. The original error detail is logged, never shown to the user.
type RemoteCategory string

const (
	RemoteAccessDenied RemoteCategory = "access-denied"
	RemoteNotFound     RemoteCategory = "not-found"
	RemoteNetworkError RemoteCategory = "network-error"
	RemoteServerError  RemoteCategory = "server-error"
	RemoteUnknownError RemoteCategory = "unknown-error"
)

// Message returns the generic text safe to surface for the category.
func (c RemoteCategory) Message() string {
	switch c {
	case RemoteAccessDenied:
		return "you do not have permission to perform this action"
	case RemoteNotFound:
		return "the requested item could not be found"
	case RemoteNetworkError:
		return "a network error occurred, please try again"
	case RemoteServerError:
		return "the server could not complete the request"
	default:
		return "an unexpected error occurred"
	}
}

// RemoteError wraps a backend failure with its user-facing category.
type RemoteError struct {
	Category RemoteCategory
	Err      error
}

func (e *RemoteError) Error() string {
	return e.Category.Message()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func wrapRemote(err error) *RemoteError {
	return &RemoteError{
		Category: categorizeRemoteError(err),
		Err:      err,
	}
}

func categorizeRemoteError(err error) RemoteCategory {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrTaskNotFound) {
		return RemoteNotFound
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return RemoteNetworkError
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.InsufficientPrivilege:
			return RemoteAccessDenied
		case pgerrcode.IsConnectionException(pgErr.Code):
			return RemoteNetworkError
		case pgerrcode.IsSyntaxErrororAccessRuleViolation(pgErr.Code),
			pgerrcode.IsDataException(pgErr.Code),
			pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
			return RemoteServerError
		}
		return RemoteServerError
	}

	return RemoteUnknownError
}
