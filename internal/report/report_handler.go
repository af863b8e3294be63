package report

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-hrdata/internal/shared/apperror"
	"go-hrdata/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	now     func() time.Time
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, now: time.Now, logger: logger.Named("report.handler")}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("report request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) QuarterlyHires(c *gin.Context) {
	year, format, err := h.parseQuery(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	rep, err := h.service.QuarterlyHires(c.Request.Context(), year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.attach(c, KindQuarterlyHires, year, format, rep.Table())
}

func (h *Handler) DepartmentHires(c *gin.Context) {
	year, format, err := h.parseQuery(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	rep, err := h.service.DepartmentHires(c.Request.Context(), year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.attach(c, KindDepartmentHires, year, format, rep.Table())
}

// parseQuery reads ?year (default: current year) and ?format (default csv).
func (h *Handler) parseQuery(c *gin.Context) (int, string, error) {
	year := h.now().Year()
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return 0, "", apperror.InvalidParam("year", err)
		}
		year = y
	}

	format := c.DefaultQuery("format", FormatCSV)
	if ContentType(format) == "" {
		return 0, "", apperror.InvalidParam("format", fmt.Errorf("unsupported format %q", format))
	}
	return year, format, nil
}

func (h *Handler) attach(c *gin.Context, kind string, year int, format string, t Table) {
	var buf bytes.Buffer
	if err := Export(&buf, format, kind, t); err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_%d.%s", kind, year, format))
	c.Data(http.StatusOK, ContentType(format), buf.Bytes())
}
