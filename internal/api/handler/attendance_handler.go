package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// AttendanceHandler 考勤与评语模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// ListAttendance 某年级某学期的考勤
// GET /api/v1/attendance?grade=&half=
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	term, ok := bindTerm(c)
	if !ok {
		return
	}

	list, err := h.attendanceSvc.List(c.Request.Context(), term)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, list)
}

// UpdateAttendance 批量写入考勤与评语
// PUT /api/v1/attendance
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	var req dto.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.attendanceSvc.Update(c.Request.Context(), CapabilityFrom(c), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, list)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.Unprocessable(c, 16001, "学生不存在")
		return
	case errors.Is(err, service.ErrAttendanceDuplicate):
		response.Unprocessable(c, 16002, err.Error())
		return
	}
	_ = c.Error(err)
	response.InternalError(c)
}
