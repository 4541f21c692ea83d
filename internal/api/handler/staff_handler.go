package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// StaffHandler 教职工模块 HTTP 处理器
type StaffHandler struct {
	staffSvc service.StaffService
}

// NewStaffHandler 创建 StaffHandler
func NewStaffHandler(staffSvc service.StaffService) *StaffHandler {
	return &StaffHandler{staffSvc: staffSvc}
}

// CreateStaff 新增教职工
// POST /api/v1/staff
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req dto.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.staffSvc.Create(c.Request.Context(), CapabilityFrom(c), &req)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.Created(c, result)
}

// ListStaff 教职工列表
// GET /api/v1/staff?include_inactive=
func (h *StaffHandler) ListStaff(c *gin.Context) {
	var req dto.StaffListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.staffSvc.List(c.Request.Context(), req.IncludeInactive)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.OK(c, list)
}

// UpdateStaff 更新教职工
// PUT /api/v1/staff/:id
func (h *StaffHandler) UpdateStaff(c *gin.Context) {
	var req dto.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.staffSvc.Update(c.Request.Context(), CapabilityFrom(c), c.Param("id"), &req)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteStaff 删除教职工
// DELETE /api/v1/staff/:id
func (h *StaffHandler) DeleteStaff(c *gin.Context) {
	if err := h.staffSvc.Delete(c.Request.Context(), CapabilityFrom(c), c.Param("id")); err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *StaffHandler) handleStaffError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	if errors.Is(err, service.ErrStaffNotFound) {
		response.NotFound(c, 14001, "教职工不存在")
		return
	}
	_ = c.Error(err)
	response.InternalError(c)
}
