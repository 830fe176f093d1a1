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

// ProxyHandler 代理设置
type ProxyHandler struct {
	directory *service.RobotDirectory
	forms     *service.ProxyForms
}

// NewProxyHandler 创建代理设置处理器实例
func NewProxyHandler(directory *service.RobotDirectory, forms *service.ProxyForms) *ProxyHandler {
	return &ProxyHandler{directory: directory, forms: forms}
}

// Register 注册路由
func (h *ProxyHandler) Register(r *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	proxy := r.Group("/robots/:id/proxy", authMiddleware.HandleAuth())
	{
		proxy.GET("", h.Get)
		proxy.PUT("", h.Update)
		proxy.POST("/reset", h.Reset)
	}
}

// form 返回已加载的表单；首次访问时从后端取机器人记录。
// 表单只为目录观察到的机器人创建，后端没有该机器人时返回 errRobotNotFound
func (h *ProxyHandler) form(ctx context.Context, id int64) (*service.ProxyForm, error) {
	if form, ok := h.forms.Lookup(id); ok && form.Loaded() != nil {
		return form, nil
	}
	if _, err := h.directory.View(ctx, id); err != nil {
		return nil, err
	}
	form, ok := h.forms.Lookup(id)
	if !ok {
		return nil, errRobotNotFound
	}
	return form, nil
}

// Get 当前表单值
func (h *ProxyHandler) Get(c *gin.Context) {
	id, ok := robotID(c)
	if !ok {
		return
	}
	form, err := h.form(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	api.Success(c, form.Values())
}

// Update 提交代理设置
func (h *ProxyHandler) Update(c *gin.Context) {
	id, ok := robotID(c)
	if !ok {
		return
	}
	var values model.ProxySettings
	if err := c.ShouldBindJSON(&values); err != nil {
		api.Error(c, http.StatusBadRequest, "请求参数无效", err)
		return
	}

	form, err := h.form(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if err := form.SubmitValues(c.Request.Context(), values); err != nil {
		fail(c, err)
		return
	}
	values.ID = id
	succeed(c, values)
}

// Reset 恢复为最近一次加载的值
func (h *ProxyHandler) Reset(c *gin.Context) {
	id, ok := robotID(c)
	if !ok {
		return
	}
	form, err := h.form(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	api.Success(c, form.Reset())
}
