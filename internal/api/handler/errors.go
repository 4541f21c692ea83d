package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// ── 各模块共用的错误映射 ──

// handleCommonError 处理跨模块的错误类型，已写入响应时返回 true
func handleCommonError(c *gin.Context, err error) bool {
	var importErr *service.ImportValidationError
	switch {
	case errors.As(err, &importErr):
		response.Rejected(c, 19001, "导入校验失败，未写入任何数据", gin.H{"errors": importErr.Errors})
	case errors.Is(err, service.ErrForbidden), errors.Is(err, academic.ErrUnauthorized):
		response.Forbidden(c, 10003, "无权限访问")
	case errors.Is(err, service.ErrImportUnreadable),
		errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportTooManyRows),
		errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 19002, err.Error())
	case errors.Is(err, academic.ErrInvalidGrade), errors.Is(err, academic.ErrInvalidHalf):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, academic.ErrScoreOutOfRange), errors.Is(err, academic.ErrNegativeCounter):
		response.Unprocessable(c, 10006, err.Error())
	default:
		return false
	}
	return true
}

// handleProgressionError 学籍迁移被拒绝时按原因返回 422
func handleProgressionError(c *gin.Context, err error) bool {
	codes := []struct {
		target error
		code   int
	}{
		{academic.ErrEmptySelection, 12101},
		{academic.ErrMixedSelection, 12102},
		{academic.ErrNotActive, 12103},
		{academic.ErrAtTopGrade, 12104},
		{academic.ErrAtBottomGrade, 12105},
		{academic.ErrNotTerminalGrade, 12106},
		{academic.ErrInvalidTarget, 12107},
		{academic.ErrInvalidYear, 12108},
		{academic.ErrNotGraduated, 12109},
		{academic.ErrSingleStudentOnly, 12110},
		{academic.ErrUnknownAction, 12111},
	}
	for _, m := range codes {
		if errors.Is(err, m.target) {
			response.Unprocessable(c, m.code, m.target.Error())
			return true
		}
	}
	if errors.Is(err, academic.ErrInconsistentRecord) {
		response.Error(c, http.StatusInternalServerError, 12112, academic.ErrInconsistentRecord.Error())
		return true
	}
	return false
}
