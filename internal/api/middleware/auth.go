package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/academic"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/jwt"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/response"
)

// 上下文键，handler 层通过相同的键读取
const (
	ContextClaims     = "claims"
	ContextCapability = "capability"
)

// Blacklist 已注销 Token 查询
type Blacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth 可选认证中间件
//
// 未携带 Authorization 头的请求以只读身份继续；
// 携带了头但 Token 无效、过期或已注销时返回 401。
// blacklist 为 nil 或查询出错时不做注销检查（Redis 不可用时降级）。
func JWTAuth(jwtMgr *jwt.Manager, blacklist Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(ContextCapability, academic.ViewerCapability())
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		if blacklist != nil {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		capab := academic.ViewerCapability()
		if claims.Role == jwt.RoleAdmin {
			capab = academic.AdminCapability(claims.Subject)
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextCapability, capab)
		c.Next()
	}
}

// RequireAdmin 写操作路由守卫：未登录返回 401，非管理员返回 403
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextClaims); !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		v, _ := c.Get(ContextCapability)
		if capab, ok := v.(academic.Capability); !ok || !capab.Privileged() {
			response.Forbidden(c, 10003, "无权限访问")
			c.Abort()
			return
		}

		c.Next()
	}
}
