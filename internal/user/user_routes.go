package user

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts /user under r. bulk runs before the bulk handler.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, bulk ...gin.HandlerFunc) {
	users := r.Group("/user")
	{
		users.POST("", h.Upsert)
		users.POST("/bulk", append(bulk, h.BulkUpsert)...)
		users.GET("", h.GetAll)
		users.GET("/:id", h.GetByID)
		users.PATCH("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}
}
