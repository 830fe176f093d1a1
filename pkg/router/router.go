package router

import (
	"net/http"

	v1 "robotconsole/api/v1"
	"robotconsole/pkg/api"
	"robotconsole/pkg/middleware"
	"robotconsole/pkg/version"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器
type Router struct {
	engine           *gin.Engine
	authMiddleware   *middleware.AuthMiddleware
	robotHandler     *v1.RobotHandler
	loginDataHandler *v1.LoginDataHandler
	proxyHandler     *v1.ProxyHandler
	actionHandler    *v1.ActionHandler
	journalHandler   *v1.JournalHandler
}

// NewRouter 创建路由管理器实例
func NewRouter(
	engine *gin.Engine,
	authMiddleware *middleware.AuthMiddleware,
	robotHandler *v1.RobotHandler,
	loginDataHandler *v1.LoginDataHandler,
	proxyHandler *v1.ProxyHandler,
	actionHandler *v1.ActionHandler,
	journalHandler *v1.JournalHandler,
) *Router {
	return &Router{
		engine:           engine,
		authMiddleware:   authMiddleware,
		robotHandler:     robotHandler,
		loginDataHandler: loginDataHandler,
		proxyHandler:     proxyHandler,
		actionHandler:    actionHandler,
		journalHandler:   journalHandler,
	}
}

// RegisterRoutes 注册所有路由
func (r *Router) RegisterRoutes() {
	// 健康检查
	r.engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	group := r.engine.Group("/api/v1")
	{
		group.GET("/health", func(c *gin.Context) {
			api.Success(c, gin.H{"status": "ok"})
		})
		group.GET("/version", func(c *gin.Context) {
			api.Success(c, version.GetVersionInfo())
		})

		r.robotHandler.Register(group, r.authMiddleware)
		r.loginDataHandler.Register(group, r.authMiddleware)
		r.proxyHandler.Register(group, r.authMiddleware)
		r.actionHandler.Register(group, r.authMiddleware)
		r.journalHandler.Register(group, r.authMiddleware)
	}
}
