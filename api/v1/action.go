package v1

import (
	"robotconsole/internal/model"
	"robotconsole/internal/repository"
	"robotconsole/pkg/api"
	"robotconsole/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// ActionHandler 操作历史
type ActionHandler struct {
	repo repository.RobotActionRepository
}

// NewActionHandler repo 为 nil 时（未启用数据库）始终返回空列表
func NewActionHandler(repo repository.RobotActionRepository) *ActionHandler {
	return &ActionHandler{repo: repo}
}

// Register 注册路由
func (h *ActionHandler) Register(r *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	r.GET("/robots/:id/actions", authMiddleware.HandleAuth(), h.List)
}

// List 按时间倒序分页列出机器人的操作记录
func (h *ActionHandler) List(c *gin.Context) {
	id, ok := robotID(c)
	if !ok {
		return
	}
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", 20)
	if pageSize > 100 {
		pageSize = 100
	}

	if h.repo == nil {
		api.Success(c, gin.H{"total": 0, "items": []model.RobotAction{}, "page": page, "page_size": pageSize})
		return
	}

	actions, total, err := h.repo.ListByRobot(c.Request.Context(), id, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	if actions == nil {
		actions = []model.RobotAction{}
	}
	api.Success(c, gin.H{"total": total, "items": actions, "page": page, "page_size": pageSize})
}
