package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// StudentHandler 学生与学籍模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// CreateStudent 新增学生
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.studentSvc.Create(c.Request.Context(), CapabilityFrom(c), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.Created(c, result)
}

// ListStudents 学生列表（按姓名排序，分页）
// GET /api/v1/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetStudent 学生详情
// GET /api/v1/students/:nis
func (h *StudentHandler) GetStudent(c *gin.Context) {
	result, err := h.studentSvc.Get(c.Request.Context(), c.Param("nis"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateStudent 更新学生档案
// PUT /api/v1/students/:nis
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.studentSvc.Update(c.Request.Context(), CapabilityFrom(c), c.Param("nis"), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteStudent 删除学生（连同成绩与考勤）
// DELETE /api/v1/students/:nis
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	if err := h.studentSvc.Delete(c.Request.Context(), CapabilityFrom(c), c.Param("nis")); err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, nil)
}

// Progress 批量学籍操作：升级 / 降级 / 调班 / 毕业
// POST /api/v1/students/progression
func (h *StudentHandler) Progress(c *gin.Context) {
	var req dto.ProgressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.studentSvc.Progress(c.Request.Context(), CapabilityFrom(c), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, result)
}

// RevertGraduation 撤销毕业，学生回到六年级
// POST /api/v1/students/:nis/revert-graduation
func (h *StudentHandler) RevertGraduation(c *gin.Context) {
	result, err := h.studentSvc.RevertGraduation(c.Request.Context(), CapabilityFrom(c), c.Param("nis"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, result)
}

// ListAlumni 校友列表
// GET /api/v1/alumni?year=
func (h *StudentHandler) ListAlumni(c *gin.Context) {
	var req dto.AlumniListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.studentSvc.ListAlumni(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, list)
}

// AlumniYears 已有毕业生的年份
// GET /api/v1/alumni/years
func (h *StudentHandler) AlumniYears(c *gin.Context) {
	years, err := h.studentSvc.AlumniYears(c.Request.Context())
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, years)
}

// ImportRoster 从 Excel 导入名册，整份文件校验通过后才写入
// POST /api/v1/students/import
func (h *StudentHandler) ImportRoster(c *gin.Context) {
	if !CapabilityFrom(c).Privileged() {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	file, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	rows, err := h.studentSvc.ParseRosterFile(file)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	result, err := h.studentSvc.ImportRoster(c.Request.Context(), CapabilityFrom(c), rows)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	if handleCommonError(c, err) || handleProgressionError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "学生不存在")
	case errors.Is(err, service.ErrStudentNISExists):
		response.Conflict(c, 12002, "NIS 已存在")
	case errors.Is(err, service.ErrStudentVersionConflict):
		response.Conflict(c, 12003, "数据已被修改，请刷新后重试")
	case errors.Is(err, service.ErrTargetGradeRequired):
		response.BadRequest(c, 12004, "调班操作必须指定目标年级")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
