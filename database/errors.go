package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/cybercog/ban/errors"
)

// IsConnectionError checks if a database error is a connection error
// that might be resolved by retrying.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	patterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"database is closed",
		"driver: bad connection",
		"unable to open database file",
	}
	for _, p := range patterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

// IsRetryableError determines if a database error should trigger a retry.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if IsConnectionError(err) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, p := range []string{"deadlock", "database is locked", "database table is locked", "busy"} {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

// IsNotFoundError checks if the error is a GORM record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError checks if the error is a duplicate-key violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(fmt.Sprint(err)), "unique constraint failed")
}

// FromDatabase converts a database error to an AppError describing resource.
func FromDatabase(err error, resource string) *apperrors.AppError {
	if err == nil {
		return nil
	}

	switch {
	case IsNotFoundError(err):
		return apperrors.NotFound(resource, "").WithCause(err)
	case IsDuplicateError(err):
		return apperrors.AlreadyExists(resource).WithCause(err)
	case IsConnectionError(err):
		return (&apperrors.AppError{
			Code:      apperrors.ErrCodeConnectionFailed,
			Message:   "Database is temporarily unavailable. Please try again.",
			Retryable: true,
		}).WithCause(err)
	case IsRetryableError(err):
		return (&apperrors.AppError{
			Code:      apperrors.ErrCodeDatabaseError,
			Message:   "Database operation failed. Please try again.",
			Retryable: true,
		}).WithCause(err)
	default:
		e := apperrors.DatabaseError(err)
		e.Retryable = false
		return e
	}
}
