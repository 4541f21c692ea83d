package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/model"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// ScheduleHandler 课表与考试安排 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// scheduleKind 解析路径中的 :kind（regular / exam）
func scheduleKind(c *gin.Context) (model.ScheduleKind, bool) {
	kind, ok := model.ParseScheduleKind(c.Param("kind"))
	if !ok {
		response.NotFound(c, 17001, "未知的课表类型")
		return "", false
	}
	return kind, true
}

// GetGrid 课表网格
// GET /api/v1/schedules/:kind?grade=
func (h *ScheduleHandler) GetGrid(c *gin.Context) {
	kind, ok := scheduleKind(c)
	if !ok {
		return
	}
	var req dto.ScheduleGridRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.scheduleSvc.Grid(c.Request.Context(), kind, *req.Grade)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, result)
}

// AssignSlot 安排一个格子（已有安排时覆盖）
// PUT /api/v1/schedules/:kind
func (h *ScheduleHandler) AssignSlot(c *gin.Context) {
	kind, ok := scheduleKind(c)
	if !ok {
		return
	}
	var req dto.AssignSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.scheduleSvc.Assign(c.Request.Context(), CapabilityFrom(c), kind, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, result)
}

// ClearSlot 清空一个格子
// DELETE /api/v1/schedules/:kind?grade=&weekday=&block=
func (h *ScheduleHandler) ClearSlot(c *gin.Context) {
	kind, ok := scheduleKind(c)
	if !ok {
		return
	}
	var req dto.ClearSlotRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.scheduleSvc.Clear(c.Request.Context(), CapabilityFrom(c), kind, &req); err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, nil)
}

// ExportICS 导出 iCalendar 文件
// GET /api/v1/export/schedules/:kind?grade=&start=2006-01-02
//
// start 仅对考试安排有效，表示考试周内任意一天，缺省为本周。
func (h *ScheduleHandler) ExportICS(c *gin.Context) {
	kind, ok := model.ParseScheduleKind(strings.TrimSuffix(c.Param("kind"), ".ics"))
	if !ok {
		response.NotFound(c, 17001, "未知的课表类型")
		return
	}
	var req dto.ScheduleGridRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	weekOf := time.Now()
	if start := c.Query("start"); start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			response.BadRequest(c, 10001, "start 格式应为 YYYY-MM-DD")
			return
		}
		weekOf = t
	}

	data, filename, err := h.scheduleSvc.ExportICS(c.Request.Context(), kind, *req.Grade, weekOf)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.Attachment(c, filename, response.ContentTypeICS, data)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrUnknownScheduleKind):
		response.NotFound(c, 17001, "未知的课表类型")
	case errors.Is(err, service.ErrInvalidWeekday):
		response.BadRequest(c, 17002, "该课表类型不包含此星期")
	case errors.Is(err, service.ErrInvalidBlock):
		response.BadRequest(c, 17003, "时间段编号无效")
	case errors.Is(err, service.ErrSlotSubjectGrade):
		response.Unprocessable(c, 17004, "科目不属于该年级")
	case errors.Is(err, service.ErrStaffInactive):
		response.Unprocessable(c, 17005, "教职工已停用")
	case errors.Is(err, service.ErrStaffDoubleBooked):
		response.Conflict(c, 17006, "该教职工在同一时间段已有安排")
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 17007, "该时间段暂无安排")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 13001, "科目不存在")
	case errors.Is(err, service.ErrStaffNotFound):
		response.NotFound(c, 14001, "教职工不存在")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
