package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

// ValidationError reports input that never reaches the repository.
type ValidationError struct {
	Errors []*ErrorResponse `json:"errors"`
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "Validation failed"
	}
	first := e.Errors[0]
	return fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", first.FailedField, first.Tag)
}

// NewError builds a ValidationError for a single field check done outside struct tags.
func NewError(field, tag string) *ValidationError {
	return &ValidationError{Errors: []*ErrorResponse{{FailedField: field, Tag: tag}}}
}

var validate = validator.New()

func init() {
	// Register custom validation for strings that must not be blank once trimmed
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Validate is ValidateStruct wrapped as an error, nil when data is valid.
func Validate(data interface{}) error {
	if errs := ValidateStruct(data); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
