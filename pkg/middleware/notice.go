package middleware

import (
	"time"

	"robotconsole/internal/notify"
	"robotconsole/pkg/api"
	"robotconsole/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Notices 为每个请求挂一个提示记录器，响应时随 envelope 返回
func Notices() gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := &notify.Recorder{}
		c.Set(api.NoticesKey, rec)
		c.Request = c.Request.WithContext(notify.NewContext(c.Request.Context(), rec))
		c.Next()
	}
}

// RequestLogger 请求日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		format := "%s %s %d %s operator=%s"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Millisecond), GetOperator(c)}
		switch {
		case status >= 500:
			logger.Error(format, args...)
		case status >= 400:
			logger.Warn(format, args...)
		default:
			logger.Debug(format, args...)
		}
	}
}

// CORS 允许浏览器控制台跨域调用
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Token-Expires-In")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
