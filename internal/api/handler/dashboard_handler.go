package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// DashboardHandler 首页统计
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Summary GET /api/v1/dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	result, err := h.dashboardSvc.Summary(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
