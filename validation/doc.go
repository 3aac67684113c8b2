// Package validation validates structs with go-playground/validator tags and
// reports failures as *errors.AppError with per-field details.
//
//	type Attributes struct {
//	    Comment string `validate:"max=255"`
//	}
//	if err := validation.Validate(attrs); err != nil { ... }
package validation
