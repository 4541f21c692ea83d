package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/service"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 管理员口令登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11001, "口令错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout 注销当前 Token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context(), ClaimsFrom(c)); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// Session 当前会话信息（未登录时返回只读身份）
// GET /api/v1/auth/me
func (h *AuthHandler) Session(c *gin.Context) {
	response.OK(c, h.authSvc.Session(ClaimsFrom(c)))
}
