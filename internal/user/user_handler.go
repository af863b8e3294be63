package user

import (
	"net/http"

	"go-hrdata/internal/shared/apperror"
	"go-hrdata/internal/shared/request"
	"go-hrdata/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger.Named("user.handler")}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("user request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Upsert(c *gin.Context) {
	var req UpsertUserRequest
	if err := request.BindJSON(c, &req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := request.ParseID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	params, err := request.ParseListParams(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, total, err := h.service.GetAll(c.Request.Context(), params)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	meta := response.NewPaginationMeta(total, params.Offset, params.Limit)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := request.ParseID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	var req UpdateUserRequest
	if err := request.BindJSON(c, &req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := request.ParseID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	soft, err := request.SoftDelete(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, soft); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) BulkUpsert(c *gin.Context) {
	var req BulkUserRequest
	if err := request.BindJSON(c, &req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	n, err := h.service.BulkUpsert(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, BulkResponse{Inserted: n}, nil)
}
