package apperror

import (
	"fmt"
	"net/http"
)

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrTooManyRequests = New(
		CodeTooManyRequests,
		"Too many requests",
		http.StatusTooManyRequests,
	)

	ErrProcessing = New(
		CodeProcessing,
		"A request with this idempotency key is still being processed",
		http.StatusConflict,
	)
)

func RequiredField(field string) *AppError {
	return New(CodeValidation, fmt.Sprintf("%s is required", field), http.StatusUnprocessableEntity)
}

func InvalidField(field string) *AppError {
	return New(CodeValidation, fmt.Sprintf("%s is invalid", field), http.StatusUnprocessableEntity)
}

// InvalidParam reports a malformed path or query parameter.
func InvalidParam(name string, err error) *AppError {
	e := New(CodeInvalidInput, fmt.Sprintf("invalid %s parameter", name), http.StatusBadRequest)
	e.Err = err
	return e
}
