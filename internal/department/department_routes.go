package department

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts /department under r. bulk runs before the bulk
// handler, typically the idempotency middleware.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, bulk ...gin.HandlerFunc) {
	departments := r.Group("/department")
	{
		departments.POST("", h.Upsert)
		departments.POST("/bulk", append(bulk, h.BulkUpsert)...)
		departments.GET("", h.GetAll)
		departments.GET("/:id", h.GetByID)
		departments.PATCH("/:id", h.Update)
		departments.DELETE("/:id", h.Delete)
	}
}
