package apperror

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go-hrdata/internal/storage"

	"github.com/go-playground/validator/v10"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP maps any error returned by a handler to the status and error body
// written to the client. Unknown errors become a 500 without leaking details.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{Status: appErr.HTTPStatus, Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}
	}

	var se *storage.Error
	if errors.As(err, &se) {
		return fromStorage(se)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return HTTPError{
			Status:  http.StatusUnprocessableEntity,
			Code:    CodeValidation,
			Message: "Request validation failed",
			Details: fieldErrors(verrs),
		}
	}

	var timeErr *time.ParseError
	if errors.As(err, &timeErr) {
		return HTTPError{
			Status:  http.StatusUnprocessableEntity,
			Code:    CodeValidation,
			Message: "Request validation failed",
			Details: []FieldError{{Field: "datetime", Tag: "datetime", Param: time.RFC3339}},
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return HTTPError{
			Status:  http.StatusBadRequest,
			Code:    CodeInvalidInput,
			Message: "Malformed JSON body",
			Details: err.Error(),
		}
	}

	return HTTPError{
		Status:  ErrInternal.HTTPStatus,
		Code:    ErrInternal.Code,
		Message: ErrInternal.Message,
	}
}

func fromStorage(se *storage.Error) HTTPError {
	switch se.Kind {
	case storage.KindNotFound:
		return HTTPError{
			Status:  http.StatusNotFound,
			Code:    CodeNotFound,
			Message: se.Error(),
			Details: map[string]any{"table": se.Table, "id": se.ID},
		}
	case storage.KindNotActive:
		return HTTPError{
			Status:  http.StatusGone,
			Code:    CodeNotActive,
			Message: se.Error(),
			Details: map[string]any{"table": se.Table, "id": se.ID},
		}
	case storage.KindAlreadyExists:
		return HTTPError{
			Status:  http.StatusConflict,
			Code:    CodeConflict,
			Message: "Record already exists",
			Details: map[string]any{"table": se.Table, "data": se.Detail},
		}
	case storage.KindBadForeignKey:
		return HTTPError{
			Status:  http.StatusBadRequest,
			Code:    CodeBadForeignKey,
			Message: se.Error(),
			Details: map[string]any{"field": se.Field, "id": se.ID},
		}
	case storage.KindIntegrity:
		return HTTPError{
			Status:  http.StatusBadRequest,
			Code:    CodeIntegrity,
			Message: "Data violates a database constraint",
			Details: map[string]any{"table": se.Table, "data": se.Detail},
		}
	default:
		return HTTPError{
			Status:  http.StatusInternalServerError,
			Code:    CodeDatabase,
			Message: "Database error",
		}
	}
}
