package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-hrdata/internal/config"
	"go-hrdata/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestNewRouter_RegistersModules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	apperror.Init()

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	router := NewRouter(Deps{DB: db}, config.Config{}, zap.NewNop())

	want := map[string]bool{}
	for _, entity := range []string{"department", "job", "user"} {
		base := "/v1/" + entity
		for _, r := range []string{
			"POST " + base,
			"POST " + base + "/bulk",
			"GET " + base,
			"GET " + base + "/:id",
			"PATCH " + base + "/:id",
			"DELETE " + base + "/:id",
		} {
			want[r] = true
		}
	}
	want["GET /v1/report/quarterly_hires"] = true
	want["GET /v1/report/department_hires"] = true

	got := map[string]bool{}
	for _, r := range router.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for r := range want {
		assert.True(t, got[r], r)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/user/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
