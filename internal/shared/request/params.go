package request

import (
	"errors"
	"strconv"
	"time"

	"go-hrdata/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultLimit = 10
	MaxLimit     = 1000

	SoftDeleteHeader = "X-Soft-Delete"
	SoftDeleteQuery  = "soft_delete"
)

type ListParams struct {
	Offset int
	Limit  int
	Active bool
}

// ParseID reads the :id path parameter.
func ParseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.InvalidParam("id", err)
	}
	return id, nil
}

// ParseListParams reads limit, offset and is_active from the query string.
func ParseListParams(c *gin.Context) (ListParams, error) {
	p := ListParams{Limit: DefaultLimit, Active: true}

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxLimit {
			return p, apperror.InvalidParam("limit", err)
		}
		p.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, apperror.InvalidParam("offset", err)
		}
		p.Offset = n
	}
	if v := c.Query("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, apperror.InvalidParam("is_active", err)
		}
		p.Active = b
	}
	return p, nil
}

// SoftDelete reports whether a DELETE should only deactivate the row. The
// header wins over the query parameter; both default to true.
func SoftDelete(c *gin.Context) (bool, error) {
	v := c.GetHeader(SoftDeleteHeader)
	name := "x-soft-delete"
	if v == "" {
		v = c.Query(SoftDeleteQuery)
		name = SoftDeleteQuery
	}
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperror.InvalidParam(name, err)
	}
	return b, nil
}

// BindJSON decodes and validates the body into obj. Rule violations and bad
// timestamps are returned as they are; any other decode failure becomes a
// 400 INVALID_INPUT.
func BindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	var timeErr *time.ParseError
	if errors.As(err, &verrs) || errors.As(err, &timeErr) {
		return err
	}
	return apperror.Wrap(err, apperror.CodeInvalidInput, "Malformed JSON body", apperror.ErrInvalidInput.HTTPStatus)
}
