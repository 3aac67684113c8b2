package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Validation and configuration errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotConfigured indicates a required binding or config key is missing.
	ErrCodeNotConfigured ErrorCode = "NOT_CONFIGURED"
)

// Infrastructure errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeDatabaseError indicates a database error.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	// ErrCodeFilesystem indicates a filesystem operation failed.
	ErrCodeFilesystem ErrorCode = "FILESYSTEM_ERROR"
	// ErrCodeMigrationFailed indicates a schema migration could not be applied.
	ErrCodeMigrationFailed ErrorCode = "MIGRATION_FAILED"
	// ErrCodeConnectionFailed indicates a failed connection to a backing service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeDatabaseError:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
