package migration

import (
	"fmt"

	"github.com/cybercog/ban/errors"
)

// Error reports a migration that could not be applied.
type Error struct {
	Set     string
	Version uint
	File    string
	Err     error
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("migration set %s failed at %s (version %d): %v", e.Set, e.File, e.Version, e.Err)
	}
	return fmt.Sprintf("migration set %s failed: %v", e.Set, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(set Set, version uint, file string, cause error) *Error {
	return &Error{
		Set:     set.Name,
		Version: version,
		File:    file,
		Err: errors.New(errors.ErrCodeMigrationFailed, "migration failed").
			WithDetail("set", set.Name).
			WithCause(cause),
	}
}
