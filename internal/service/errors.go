package service

import (
	"errors"
	"fmt"

	"go-inventory-api/pkg/validator"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateName   = errors.New("product name already exists")
	ErrMissingFile     = errors.New("CSV file is required")
	ErrInvalidCSV      = errors.New("invalid CSV file")
)

// ValidationError carries field-level failures from request validation.
type ValidationError struct {
	Errors []*validator.ErrorResponse
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	first := e.Errors[0]
	return fmt.Sprintf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
