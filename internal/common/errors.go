package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrValidation         = errors.New("validation failed")
	ErrSyncInProgress     = errors.New("sync already in progress")
	ErrServiceUnavailable = errors.New("service unavailable") // e.g. redis down
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrSyncInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &pgErr) && pgErr.Code == "23505": // unique violation
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Errorf wraps like fmt.Errorf; use %w with one of the sentinels above.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
