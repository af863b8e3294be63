package report

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	reports := r.Group("/report")
	{
		reports.GET("/quarterly_hires", h.QuarterlyHires)
		reports.GET("/department_hires", h.DepartmentHires)
	}
}
