package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"robotconsole/internal/service"
	"robotconsole/pkg/api"
	"robotconsole/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// BearerSchema Bearer认证方案
	BearerSchema = "Bearer "
	// ContextKeyClaims 上下文中令牌声明的键
	ContextKeyClaims = "claims"
	// ContextKeyOperator 上下文中操作人的键
	ContextKeyOperator = "operator"
	// CookieAccessToken Cookie中访问令牌的键
	CookieAccessToken = "access_token"
)

// Claims 控制台访问令牌声明
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Operator 操作人：优先 name，其次 sub
func (c *Claims) Operator() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Subject
}

// AuthMiddleware 认证中间件
type AuthMiddleware struct {
	secret  []byte
	issuer  string
	enabled bool
}

// NewAuthMiddleware 创建认证中间件实例
func NewAuthMiddleware(secret, issuer string, enabled bool) *AuthMiddleware {
	return &AuthMiddleware{
		secret:  []byte(secret),
		issuer:  issuer,
		enabled: enabled,
	}
}

// IssueToken 签发 HS256 访问令牌
func (m *AuthMiddleware) IssueToken(subject, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseToken 校验令牌签名、有效期与签发者
func (m *AuthMiddleware) ParseToken(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...); err != nil {
		return nil, err
	}
	return claims, nil
}

// HandleAuth 处理认证
func (m *AuthMiddleware) HandleAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 认证被禁用时直接放行
		if !m.enabled {
			c.Next()
			return
		}

		token := m.extractToken(c)
		if token == "" {
			api.Error(c, http.StatusUnauthorized, "未登录", errors.New("missing token"))
			return
		}

		claims, err := m.ParseToken(token)
		if err != nil {
			logger.Warn("token validation failed: %v", err)
			if errors.Is(err, jwt.ErrTokenExpired) {
				api.Error(c, http.StatusUnauthorized, "登录已过期", errors.New("token expired"))
				return
			}
			api.Error(c, http.StatusUnauthorized, "令牌无效", errors.New("invalid token"))
			return
		}

		if exp, _ := claims.GetExpirationTime(); exp != nil {
			if remaining := time.Until(exp.Time); remaining > 0 {
				c.Header("X-Token-Expires-In", remaining.Round(time.Second).String())
			}
		}

		operator := claims.Operator()
		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyOperator, operator)
		c.Request = c.Request.WithContext(service.WithOperator(c.Request.Context(), operator))
		c.Next()
	}
}

// extractToken 依次从 Authorization 头、Cookie、query 参数中取令牌。
// query 参数仅用于浏览器 WebSocket 连接，无法设置请求头。
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, BearerSchema) {
		return strings.TrimSpace(auth[len(BearerSchema):])
	}
	if cookie, err := c.Cookie(CookieAccessToken); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("access_token")
}
