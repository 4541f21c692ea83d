package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/jwt"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// 与 middleware.ContextClaims / ContextCapability 保持一致
const (
	ctxClaims     = "claims"
	ctxCapability = "capability"
)

// CapabilityFrom 从 Gin 上下文中取出调用方权限；未认证时为只读权限。
func CapabilityFrom(c *gin.Context) academic.Capability {
	v, exists := c.Get(ctxCapability)
	if !exists {
		return academic.ViewerCapability()
	}
	capab, ok := v.(academic.Capability)
	if !ok {
		return academic.ViewerCapability()
	}
	return capab
}

// ClaimsFrom 从 Gin 上下文中取出已验证的 Token 声明，未认证时返回 nil。
func ClaimsFrom(c *gin.Context) *jwt.Claims {
	v, exists := c.Get(ctxClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// bindTerm 解析 ?grade=&half= 查询参数
func bindTerm(c *gin.Context) (academic.Term, bool) {
	var req dto.TermRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return academic.Term{}, false
	}
	term, err := academic.NewTerm(*req.Grade, req.Half)
	if err != nil {
		response.BadRequest(c, 10001, err.Error())
		return academic.Term{}, false
	}
	return term, true
}

// openUpload 打开 multipart 表单中的 file 字段
// 调用方负责关闭返回的文件
func openUpload(c *gin.Context) (multipart.File, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "上传文件过大")
			return nil, false
		}
		response.BadRequest(c, 10001, "请上传文件（字段名 file）")
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传文件")
		return nil, false
	}
	return f, true
}
