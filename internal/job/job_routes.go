package job

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts /job under r. bulk runs before the bulk
// handler, typically the idempotency middleware.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, bulk ...gin.HandlerFunc) {
	jobs := r.Group("/job")
	{
		jobs.POST("", h.Upsert)
		jobs.POST("/bulk", append(bulk, h.BulkUpsert)...)
		jobs.GET("", h.GetAll)
		jobs.GET("/:id", h.GetByID)
		jobs.PATCH("/:id", h.Update)
		jobs.DELETE("/:id", h.Delete)
	}
}
