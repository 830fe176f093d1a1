package v1

import (
	"context"
	"net/http"

	"robotconsole/internal/model"
	"robotconsole/internal/service"
	"robotconsole/pkg/api"
	"robotconsole/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// RobotHandler 机器人列表、创建与生命周期操作
type RobotHandler struct {
	directory *service.RobotDirectory
	creator   *service.RobotCreator
	menus     *service.ActionMenus
}

// NewRobotHandler 创建机器人处理器实例
func NewRobotHandler(directory *service.RobotDirectory, creator *service.RobotCreator, menus *service.ActionMenus) *RobotHandler {
	return &RobotHandler{
		directory: directory,
		creator:   creator,
		menus:     menus,
	}
}

// Register 注册路由
func (h *RobotHandler) Register(r *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	robots := r.Group("/robots", authMiddleware.HandleAuth())
	{
		robots.GET("", h.List)
		robots.POST("", h.Create)
		robots.GET("/create/status", h.CreateStatus)
		robots.GET("/:id", h.View)
		robots.GET("/:id/menu", h.MenuStatus)
		robots.POST("/:id/state", h.Refresh)
		robots.POST("/:id/restart-client", h.RestartClient)
		robots.POST("/:id/restart-server", h.RestartServer)
	}
}

// List 机器人列表
func (h *RobotHandler) List(c *gin.Context) {
	var q model.RobotListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		api.Error(c, http.StatusBadRequest, "查询参数无效", err)
		return
	}

	list, err := h.directory.List(c.Request.Context(), &q)
	if err != nil {
		fail(c, err)
		return
	}
	if list.Items == nil {
		list.Items = []model.Robot{}
	}
	api.Success(c, list)
}

// View 机器人详情
func (h *RobotHandler) View(c *gin.Context) {
	id, ok := robotID(c)
	if !ok {
		return
	}
	robot, err := h.directory.View(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	api.Success(c, robot)
}

// Create 创建机器人。
//
// 后端确认后立即返回 202，等待期在后台继续；进度通过 /robots/create/status 查询，
// 完成提示通过 /journal/ws 推送。
func (h *RobotHandler) Create(c *gin.Context) {
	var req model.RobotCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "请求参数无效", err)
		return
	}

	// 请求结束后等待期仍需继续
	ctx := context.WithoutCancel(c.Request.Context())
	created := make(chan *model.Robot, 1)
	done := make(chan error, 1)
	go func() {
		_, err := h.creator.Create(ctx, &req, service.CreateHooks{
			OnSuccess: func(robot *model.Robot) { created <- robot },
			OnRefresh: h.directory.Refresh,
		})
		done <- err
	}()

	select {
	case robot := <-created:
		h.accepted(c, robot)
	case err := <-done:
		if err != nil {
			fail(c, err)
			return
		}
		h.accepted(c, <-created)
	}
}

func (h *RobotHandler) accepted(c *gin.Context, robot *model.Robot) {
	c.JSON(http.StatusAccepted, api.Response{
		Code:    http.StatusAccepted,
		Message: "已提交创建，正在等待机器人初始化",
		Data:    robot,
	})
}

// CreateStatus 创建流程是否仍在进行
func (h *RobotHandler) CreateStatus(c *gin.Context) {
	api.Success(c, gin.H{"loading": h.creator.Loading()})
}

// MenuStatus 各操作的加载状态
func (h *RobotHandler) MenuStatus(c *gin.Context) {
	menu, ok := resolveMenu(c, h.directory, h.menus)
	if !ok {
		return
	}
	api.Success(c, menu.Status(c.Request.Context()))
}

// Refresh 刷新机器人状态
func (h *RobotHandler) Refresh(c *gin.Context) {
	h.run(c, (*service.ActionMenu).Refresh)
}

// RestartClient 重启客户端容器
func (h *RobotHandler) RestartClient(c *gin.Context) {
	h.run(c, (*service.ActionMenu).RestartClient)
}

// RestartServer 重启服务端容器
func (h *RobotHandler) RestartServer(c *gin.Context) {
	h.run(c, (*service.ActionMenu).RestartServer)
}

func (h *RobotHandler) run(c *gin.Context, action func(*service.ActionMenu, context.Context) error) {
	menu, ok := resolveMenu(c, h.directory, h.menus)
	if !ok {
		return
	}
	if err := action(menu, c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	succeed(c, menu.Status(c.Request.Context()))
}
