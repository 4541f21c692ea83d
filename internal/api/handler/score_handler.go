package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// ScoreHandler 成绩模块 HTTP 处理器
type ScoreHandler struct {
	scoreSvc service.ScoreService
}

// NewScoreHandler 创建 ScoreHandler
func NewScoreHandler(scoreSvc service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreSvc: scoreSvc}
}

// GetSheet 某年级某学期的成绩表（含总分、平均分、名次）
// GET /api/v1/scores?grade=&half=
func (h *ScoreHandler) GetSheet(c *gin.Context) {
	term, ok := bindTerm(c)
	if !ok {
		return
	}

	result, err := h.scoreSvc.GetSheet(c.Request.Context(), term)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateScores 批量写入成绩，任一单元格无效则整批拒绝
// PUT /api/v1/scores
func (h *ScoreHandler) UpdateScores(c *gin.Context) {
	var req dto.UpdateScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.scoreSvc.Update(c.Request.Context(), CapabilityFrom(c), &req)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}
	response.OK(c, result)
}

// ImportScores 从 Excel 导入成绩
// POST /api/v1/scores/import?grade=&half=
func (h *ScoreHandler) ImportScores(c *gin.Context) {
	if !CapabilityFrom(c).Privileged() {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}
	term, ok := bindTerm(c)
	if !ok {
		return
	}

	file, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.scoreSvc.ImportScores(c.Request.Context(), CapabilityFrom(c), term, file)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *ScoreHandler) handleScoreError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrScoreStudentAbsent):
		response.Unprocessable(c, 15001, "学生不在该年级名册中")
	case errors.Is(err, service.ErrScoreSubjectGrade):
		response.Unprocessable(c, 15002, "科目不属于该年级")
	case errors.Is(err, service.ErrScoreDuplicateCell):
		response.Unprocessable(c, 15003, err.Error())
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 13001, "科目不存在")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
