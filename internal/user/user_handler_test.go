package user_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-hrdata/internal/shared/apperror"
	"go-hrdata/internal/storage"
	"go-hrdata/internal/user"
	userMock "go-hrdata/internal/user/mock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupRouter(t *testing.T) (*gin.Engine, *userMock.MockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	apperror.Init()

	svc := userMock.NewMockService(gomock.NewController(t))
	r := gin.New()
	user.RegisterRoutes(r.Group("/v1"), user.NewHandler(svc, nil))
	return r, svc
}

func perform(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserHandler_Upsert(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		r, svc := setupRouter(t)
		svc.EXPECT().
			Upsert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req user.UpsertUserRequest) (user.UserResponse, error) {
				assert.Equal(t, "Ada", req.Name)
				assert.Equal(t, 2021, req.Datetime.Year())
				return user.UserResponse{ID: 1, Name: req.Name, JobID: req.JobID, DepartmentID: req.DepartmentID}, nil
			})

		w := perform(r, http.MethodPost, "/v1/user",
			`{"name":"Ada","datetime":"2021-02-03T09:00:00Z","job_id":1,"department_id":2}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"job":null`)
	})

	t.Run("missing datetime is 422", func(t *testing.T) {
		r, _ := setupRouter(t)

		w := perform(r, http.MethodPost, "/v1/user", `{"name":"Ada","job_id":1,"department_id":2}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), `"datetime"`)
	})

	t.Run("malformed datetime is 422", func(t *testing.T) {
		r, _ := setupRouter(t)

		w := perform(r, http.MethodPost, "/v1/user",
			`{"name":"Ann","datetime":"2021-13-45","job_id":1,"department_id":1}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"VALIDATION_ERROR"`)
		assert.Contains(t, w.Body.String(), `"field":"datetime"`)
	})

	t.Run("non string datetime is 400", func(t *testing.T) {
		r, _ := setupRouter(t)

		w := perform(r, http.MethodPost, "/v1/user",
			`{"name":"Ann","datetime":20210101,"job_id":1,"department_id":1}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"INVALID_INPUT"`)
	})

	t.Run("bad foreign key is 400", func(t *testing.T) {
		r, svc := setupRouter(t)
		svc.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(user.UserResponse{}, storage.BadForeignKey(user.FieldDepartmentID, 2))

		w := perform(r, http.MethodPost, "/v1/user",
			`{"name":"Ada","datetime":"2021-02-03T09:00:00Z","job_id":1,"department_id":2}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"department_id"`)
	})
}

func TestUserHandler_Delete(t *testing.T) {
	r, svc := setupRouter(t)
	svc.EXPECT().Delete(gomock.Any(), int64(5), false).Return(nil)

	w := perform(r, http.MethodDelete, "/v1/user/5?soft_delete=false", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUserHandler_GetByIDNotActive(t *testing.T) {
	r, svc := setupRouter(t)
	svc.EXPECT().GetByID(gomock.Any(), int64(5)).Return(user.UserResponse{}, storage.NotActive(user.Table, 5))

	w := perform(r, http.MethodGet, "/v1/user/5", "")

	assert.Equal(t, http.StatusGone, w.Code)
}

func TestUserHandler_MalformedDatetimeOnUpdateAndBulk(t *testing.T) {
	r, _ := setupRouter(t)

	w := perform(r, http.MethodPatch, "/v1/user/3", `{"datetime":"2021-02-30T00:00:00Z"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = perform(r, http.MethodPost, "/v1/user/bulk",
		`{"users":[{"name":"Ann","datetime":"not-a-date","job_id":1,"department_id":1}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
