package apperror

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldError is one entry of a 422 response's details.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	return cases.Title(language.English).String(s)
}

// MapValidationError turns the first failed rule into a readable AppError.
func MapValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		e := errs[0]
		field := formatFieldName(e.Field())
		if e.Tag() == "required" {
			return RequiredField(field)
		}
		return InvalidField(field)
	}
	return Wrap(err, CodeInvalidInput, "Invalid input", ErrInvalidInput.HTTPStatus)
}

func fieldErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		out = append(out, FieldError{
			Field: fieldPath(e.Namespace()),
			Tag:   e.Tag(),
			Param: e.Param(),
		})
	}
	return out
}

// fieldPath drops the struct name validator puts in front of the namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
