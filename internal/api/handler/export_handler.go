package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// ExportHandler Excel 导出 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

type exportRosterQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=active graduated"`
	Grade  *int   `form:"grade"  binding:"omitempty,min=0,max=6"`
}

// ExportRoster 导出学生名册（可再次导入）
// GET /api/v1/export/students?status=&grade=
func (h *ExportHandler) ExportRoster(c *gin.Context) {
	var q exportRosterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context(), q.Status, q.Grade)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.Attachment(c, filename, response.ContentTypeXLSX, buf.Bytes())
}

// ExportScores 导出成绩表（可再次导入）
// GET /api/v1/export/scores?grade=&half=
func (h *ExportHandler) ExportScores(c *gin.Context) {
	term, ok := bindTerm(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportScores(c.Request.Context(), term)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.Attachment(c, filename, response.ContentTypeXLSX, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	_ = c.Error(err)
	response.InternalError(c)
}
