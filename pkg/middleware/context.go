package middleware

import (
	"github.com/gin-gonic/gin"
)

// GetClaimsFromContext 从上下文中获取令牌声明
func GetClaimsFromContext(c *gin.Context) *Claims {
	if v, exists := c.Get(ContextKeyClaims); exists {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return nil
}

// GetOperator 当前操作人；未认证时为空
func GetOperator(c *gin.Context) string {
	return c.GetString(ContextKeyOperator)
}
