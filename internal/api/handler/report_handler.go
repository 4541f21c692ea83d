package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// ReportHandler 成绩报告单 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// GetReportCard 学生成绩报告单
// GET /api/v1/reports/:nis?grade=&half=
func (h *ReportHandler) GetReportCard(c *gin.Context) {
	term, ok := bindTerm(c)
	if !ok {
		return
	}

	result, err := h.reportSvc.GetReportCard(c.Request.Context(), c.Param("nis"), term)
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	response.OK(c, result)
}

// DownloadReportCard 下载成绩报告单 PDF
// GET /api/v1/reports/:nis/pdf?grade=&half=
func (h *ReportHandler) DownloadReportCard(c *gin.Context) {
	term, ok := bindTerm(c)
	if !ok {
		return
	}

	buf, filename, err := h.reportSvc.RenderReportCardPDF(c.Request.Context(), c.Param("nis"), term)
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	response.Attachment(c, filename, response.ContentTypePDF, buf.Bytes())
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "学生不存在")
	case errors.Is(err, service.ErrReportNotInGrade):
		response.NotFound(c, 18001, "学生在该学期没有成绩记录")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
