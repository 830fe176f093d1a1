package boot

import (
	v1 "robotconsole/api/v1"
	"robotconsole/pkg/config"
	"robotconsole/pkg/middleware"
	"robotconsole/pkg/router"

	"github.com/gin-gonic/gin"
)

// Handlers 包含所有HTTP处理器
type Handlers struct {
	RobotHandler     *v1.RobotHandler
	LoginDataHandler *v1.LoginDataHandler
	ProxyHandler     *v1.ProxyHandler
	ActionHandler    *v1.ActionHandler
	JournalHandler   *v1.JournalHandler
}

// InitHandlers 初始化所有HTTP处理器
func InitHandlers(cfg *config.Config, services *Services, repos *Repositories, journal *JournalComponents) *Handlers {
	return &Handlers{
		RobotHandler:     v1.NewRobotHandler(services.Directory, services.Creator, services.Menus),
		LoginDataHandler: v1.NewLoginDataHandler(services.Directory, services.Menus, cfg.Robot.MaxLoginDataSize),
		ProxyHandler:     v1.NewProxyHandler(services.Directory, services.ProxyForms),
		ActionHandler:    v1.NewActionHandler(repos.ActionRepo),
		JournalHandler:   v1.NewJournalHandler(journal.Reader, journal.Hub),
	}
}

// InitRouter 初始化中间件与路由
func InitRouter(engine *gin.Engine, handlers *Handlers, cfg *config.Config) *router.Router {
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.Server.AuthEnabled)

	engine.Use(middleware.CORS())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.Notices())

	r := router.NewRouter(
		engine,
		authMiddleware,
		handlers.RobotHandler,
		handlers.LoginDataHandler,
		handlers.ProxyHandler,
		handlers.ActionHandler,
		handlers.JournalHandler,
	)
	r.RegisterRoutes()
	return r
}
