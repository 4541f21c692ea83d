package dto

// ── 认证模块 ──

// LoginRequest 管理员口令登录
type LoginRequest struct {
	Password string `json:"password" binding:"required,max=128"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // 秒
	Role        string `json:"role"`
}

// SessionResponse 当前会话信息
type SessionResponse struct {
	Role      string `json:"role"`
	Admin     bool   `json:"admin"`
	ExpiresAt string `json:"expires_at,omitempty"`
}
