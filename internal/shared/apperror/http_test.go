package apperror_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"go-hrdata/internal/shared/apperror"
	"go-hrdata/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTP_StorageKinds(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", storage.NotFound("department", 7), http.StatusNotFound, apperror.CodeNotFound},
		{"not active", storage.NotActive("job", 3), http.StatusGone, apperror.CodeNotActive},
		{"already exists", &storage.Error{Kind: storage.KindAlreadyExists, Table: "job"}, http.StatusConflict, apperror.CodeConflict},
		{"bad foreign key", storage.BadForeignKey("job_id", 99), http.StatusBadRequest, apperror.CodeBadForeignKey},
		{"integrity", &storage.Error{Kind: storage.KindIntegrity, Table: "user"}, http.StatusBadRequest, apperror.CodeIntegrity},
		{"database", &storage.Error{Kind: storage.KindDatabase, Table: "user", Err: errors.New("conn refused")}, http.StatusInternalServerError, apperror.CodeDatabase},
		{"wrapped", fmt.Errorf("read: %w", storage.NotFound("user", 1)), http.StatusNotFound, apperror.CodeNotFound},
		{"uncaught", errors.New("boom"), http.StatusInternalServerError, apperror.CodeInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := apperror.ToHTTP(tc.err)
			assert.Equal(t, tc.status, got.Status)
			assert.Equal(t, tc.code, got.Code)
		})
	}
}

func TestToHTTP_Details(t *testing.T) {
	got := apperror.ToHTTP(storage.BadForeignKey("department_id", 12))
	assert.Equal(t, map[string]any{"field": "department_id", "id": int64(12)}, got.Details)

	got = apperror.ToHTTP(storage.NotFound("department", 4))
	assert.Equal(t, map[string]any{"table": "department", "id": int64(4)}, got.Details)

	got = apperror.ToHTTP(errors.New("secret dsn in message"))
	assert.Nil(t, got.Details)
	assert.NotContains(t, got.Message, "secret")
}

func TestToHTTP_AppError(t *testing.T) {
	err := apperror.ErrProcessing.WithDetails("key-1")

	got := apperror.ToHTTP(err)

	assert.Equal(t, http.StatusConflict, got.Status)
	assert.Equal(t, apperror.CodeProcessing, got.Code)
	assert.Equal(t, "key-1", got.Details)
	assert.Nil(t, apperror.ErrProcessing.Details)
}

type payload struct {
	Name string `json:"name" validate:"required,max=3"`
}

func TestToHTTP_Validation(t *testing.T) {
	v := validator.New()
	err := v.Struct(payload{Name: "toolong"})
	require.Error(t, err)

	got := apperror.ToHTTP(err)

	assert.Equal(t, http.StatusUnprocessableEntity, got.Status)
	assert.Equal(t, apperror.CodeValidation, got.Code)
	details, ok := got.Details.([]apperror.FieldError)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, "max", details[0].Tag)
	assert.Equal(t, "3", details[0].Param)
}

func TestToHTTP_MalformedJSON(t *testing.T) {
	var p payload
	err := json.Unmarshal([]byte(`{"name":`), &p)
	require.Error(t, err)

	got := apperror.ToHTTP(err)

	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Equal(t, apperror.CodeInvalidInput, got.Code)
}

func TestToHTTP_BadTimestamp(t *testing.T) {
	var body struct {
		Datetime *time.Time `json:"datetime"`
	}
	err := json.Unmarshal([]byte(`{"datetime":"2021-13-45"}`), &body)
	require.Error(t, err)

	got := apperror.ToHTTP(err)

	assert.Equal(t, http.StatusUnprocessableEntity, got.Status)
	assert.Equal(t, apperror.CodeValidation, got.Code)
	assert.Equal(t, []apperror.FieldError{{Field: "datetime", Tag: "datetime", Param: time.RFC3339}}, got.Details)
}

func TestMapValidationError(t *testing.T) {
	v := validator.New()
	err := v.Struct(payload{})

	got := apperror.ToHTTP(apperror.MapValidationError(err))

	assert.Equal(t, http.StatusUnprocessableEntity, got.Status)
	assert.Equal(t, "Name is required", got.Message)
}
