package department_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-hrdata/internal/department"
	deptMock "go-hrdata/internal/department/mock"
	"go-hrdata/internal/shared/apperror"
	"go-hrdata/internal/shared/request"
	"go-hrdata/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupRouter(t *testing.T) (*gin.Engine, *deptMock.MockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	apperror.Init()

	svc := deptMock.NewMockService(gomock.NewController(t))
	r := gin.New()
	department.RegisterRoutes(r.Group("/v1"), department.NewHandler(svc, nil))
	return r, svc
}

func perform(r *gin.Engine, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestDepartmentHandler_Upsert(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		r, svc := setupRouter(t)
		svc.EXPECT().
			Upsert(gomock.Any(), department.UpsertDepartmentRequest{Department: "Engineering"}).
			Return(department.DepartmentResponse{ID: 1, Department: "Engineering", IsActive: true}, nil)

		w := perform(r, http.MethodPost, "/v1/department", `{"department":"Engineering"}`, nil)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"department":"Engineering"`)
	})

	t.Run("empty name is 422", func(t *testing.T) {
		r, _ := setupRouter(t)

		w := perform(r, http.MethodPost, "/v1/department", `{"department":""}`, nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decode(t, w)
		assert.Equal(t, apperror.CodeValidation, env.Error.Code)
		assert.Contains(t, w.Body.String(), `"field":"department"`)
	})

	t.Run("malformed json is 400", func(t *testing.T) {
		r, _ := setupRouter(t)

		w := perform(r, http.MethodPost, "/v1/department", `{"department":`, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("conflict is 409", func(t *testing.T) {
		r, svc := setupRouter(t)
		svc.EXPECT().Upsert(gomock.Any(), gomock.Any()).
			Return(department.DepartmentResponse{}, &storage.Error{Kind: storage.KindAlreadyExists, Table: department.Table})

		w := perform(r, http.MethodPost, "/v1/department", `{"department":"Ops"}`, nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDepartmentHandler_GetByID(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"missing", storage.NotFound(department.Table, 7), http.StatusNotFound},
		{"inactive", storage.NotActive(department.Table, 7), http.StatusGone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, svc := setupRouter(t)
			svc.EXPECT().GetByID(gomock.Any(), int64(7)).Return(department.DepartmentResponse{ID: 7}, tc.err)

			w := perform(r, http.MethodGet, "/v1/department/7", "", nil)

			assert.Equal(t, tc.status, w.Code)
		})
	}

	t.Run("bad id", func(t *testing.T) {
		r, _ := setupRouter(t)
		w := perform(r, http.MethodGet, "/v1/department/abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDepartmentHandler_GetAll(t *testing.T) {
	r, svc := setupRouter(t)
	svc.EXPECT().
		GetAll(gomock.Any(), request.ListParams{Offset: 0, Limit: 10, Active: false}).
		Return([]department.DepartmentResponse{{ID: 1}}, int64(1), nil)

	w := perform(r, http.MethodGet, "/v1/department?is_active=false", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestDepartmentHandler_Update(t *testing.T) {
	r, svc := setupRouter(t)
	svc.EXPECT().
		Update(gomock.Any(), int64(3), gomock.Any()).
		DoAndReturn(func(_ any, _ int64, req department.UpdateDepartmentRequest) (department.DepartmentResponse, error) {
			require.NotNil(t, req.Department)
			return department.DepartmentResponse{ID: 3, Department: *req.Department}, nil
		})

	w := perform(r, http.MethodPatch, "/v1/department/3", `{"department":"Finance"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDepartmentHandler_Delete(t *testing.T) {
	t.Run("soft by default", func(t *testing.T) {
		r, svc := setupRouter(t)
		svc.EXPECT().Delete(gomock.Any(), int64(2), true).Return(nil)

		w := perform(r, http.MethodDelete, "/v1/department/2", "", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("hard via header", func(t *testing.T) {
		r, svc := setupRouter(t)
		svc.EXPECT().Delete(gomock.Any(), int64(2), false).Return(nil)

		w := perform(r, http.MethodDelete, "/v1/department/2", "", map[string]string{"X-Soft-Delete": "false"})

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestDepartmentHandler_BulkUpsert(t *testing.T) {
	items := func(n int) string {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = fmt.Sprintf(`{"department":"D%d"}`, i)
		}
		return `{"departments":[` + strings.Join(parts, ",") + `]}`
	}

	t.Run("1000 items accepted", func(t *testing.T) {
		r, svc := setupRouter(t)
		svc.EXPECT().BulkUpsert(gomock.Any(), gomock.Any()).Return(1000, nil)

		w := perform(r, http.MethodPost, "/v1/department/bulk", items(1000), nil)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"inserted":1000`)
	})

	t.Run("1001 items rejected", func(t *testing.T) {
		r, _ := setupRouter(t)

		w := perform(r, http.MethodPost, "/v1/department/bulk", items(1001), nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("empty list rejected", func(t *testing.T) {
		r, _ := setupRouter(t)

		w := perform(r, http.MethodPost, "/v1/department/bulk", `{"departments":[]}`, nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
