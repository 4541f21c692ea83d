package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// SubjectHandler 科目模块 HTTP 处理器
type SubjectHandler struct {
	subjectSvc service.SubjectService
}

// NewSubjectHandler 创建 SubjectHandler
func NewSubjectHandler(subjectSvc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc}
}

// CreateSubject 新增科目
// POST /api/v1/subjects
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.subjectSvc.Create(c.Request.Context(), CapabilityFrom(c), &req)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.Created(c, result)
}

// ListSubjects 科目列表
// GET /api/v1/subjects?grade=
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	var req dto.SubjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.subjectSvc.List(c.Request.Context(), req.Grade)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.OK(c, list)
}

// UpdateSubject 更新科目
// PUT /api/v1/subjects/:id
func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.subjectSvc.Update(c.Request.Context(), CapabilityFrom(c), c.Param("id"), &req)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteSubject 删除科目
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	if err := h.subjectSvc.Delete(c.Request.Context(), CapabilityFrom(c), c.Param("id")); err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *SubjectHandler) handleSubjectError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 13001, "科目不存在")
	case errors.Is(err, service.ErrSubjectCodeExists):
		response.Conflict(c, 13002, "该年级已存在相同代码的科目")
	case errors.Is(err, service.ErrSubjectCodeReserved):
		response.BadRequest(c, 13003, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
