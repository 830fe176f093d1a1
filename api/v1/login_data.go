package v1

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"

	"robotconsole/internal/model"
	"robotconsole/internal/service"
	"robotconsole/pkg/api"
	"robotconsole/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// LoginDataHandler 登录数据导出、导入
type LoginDataHandler struct {
	directory *service.RobotDirectory
	menus     *service.ActionMenus
	maxSize   int64
}

// NewLoginDataHandler 创建登录数据处理器实例
func NewLoginDataHandler(directory *service.RobotDirectory, menus *service.ActionMenus, maxSize int64) *LoginDataHandler {
	if maxSize <= 0 {
		maxSize = service.DefaultMaxLoginDataSize
	}
	return &LoginDataHandler{directory: directory, menus: menus, maxSize: maxSize}
}

// Register 注册路由
func (h *LoginDataHandler) Register(r *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	loginData := r.Group("/robots/:id/login-data", authMiddleware.HandleAuth())
	{
		loginData.GET("", h.Export)
		loginData.POST("", h.Import)
		loginData.PUT("/file", h.SelectFile)
		loginData.GET("/file", h.PendingFile)
		loginData.DELETE("/file", h.ClearFile)
		loginData.GET("/snapshots", h.Snapshots)
	}
}

// attachmentSink 把登录数据直接写成下载附件
type attachmentSink struct {
	c *gin.Context
}

func (s attachmentSink) Deliver(_ context.Context, file *model.LoginDataFile) error {
	s.c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	s.c.Data(http.StatusOK, file.ContentType, file.Data)
	return nil
}

// Export 导出登录数据
func (h *LoginDataHandler) Export(c *gin.Context) {
	menu, ok := resolveMenu(c, h.directory, h.menus)
	if !ok {
		return
	}
	if err := menu.ExportLoginData(c.Request.Context(), attachmentSink{c: c}); err != nil {
		if c.Writer.Written() {
			return
		}
		fail(c, err)
	}
}

// readUpload 读取 multipart 中的 file 字段；没有文件时返回 false
func (h *LoginDataHandler) readUpload(c *gin.Context) (string, []byte, bool, error) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil, false, nil
		}
		return "", nil, false, err
	}
	f, err := header.Open()
	if err != nil {
		return "", nil, false, err
	}
	defer f.Close()

	// 多读一个字节，让服务层判断是否超限
	data, err := io.ReadAll(io.LimitReader(f, h.maxSize+1))
	if err != nil {
		return "", nil, false, err
	}
	return header.Filename, data, true, nil
}

// SelectFile 选择待导入的文件，替换之前的选择
func (h *LoginDataHandler) SelectFile(c *gin.Context) {
	menu, ok := resolveMenu(c, h.directory, h.menus)
	if !ok {
		return
	}
	name, data, found, err := h.readUpload(c)
	if err != nil {
		api.Error(c, http.StatusBadRequest, "读取上传文件失败", err)
		return
	}
	if !found {
		fail(c, service.ErrNoImportFile)
		return
	}

	if err := menu.SelectImportFile(c.Request.Context(), name, data); err != nil {
		fail(c, err)
		return
	}
	api.Success(c, gin.H{"name": name, "size": len(data)})
}

// PendingFile 当前选择的文件
func (h *LoginDataHandler) PendingFile(c *gin.Context) {
	menu, ok := resolveMenu(c, h.directory, h.menus)
	if !ok {
		return
	}
	file, err := menu.PendingImportFile(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if file == nil {
		api.Success(c, nil)
		return
	}
	api.Success(c, gin.H{"name": file.Name, "size": len(file.Data), "selected_at": file.SelectedAt})
}

// ClearFile 取消选择
func (h *LoginDataHandler) ClearFile(c *gin.Context) {
	menu, ok := resolveMenu(c, h.directory, h.menus)
	if !ok {
		return
	}
	if err := menu.ClearImportFile(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	api.Success(c, nil)
}

// Import 确认导入；请求中带 file 时先替换已选择的文件
func (h *LoginDataHandler) Import(c *gin.Context) {
	menu, ok := resolveMenu(c, h.directory, h.menus)
	if !ok {
		return
	}

	name, data, found, err := h.readUpload(c)
	if err != nil {
		api.Error(c, http.StatusBadRequest, "读取上传文件失败", err)
		return
	}
	if found {
		if err := menu.SelectImportFile(c.Request.Context(), name, data); err != nil {
			fail(c, err)
			return
		}
	}

	if err := menu.ImportLoginData(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	succeed(c, nil)
}

// Snapshots 登录数据归档记录
func (h *LoginDataHandler) Snapshots(c *gin.Context) {
	menu, ok := resolveMenu(c, h.directory, h.menus)
	if !ok {
		return
	}
	limit := intQuery(c, "limit", 20)
	if limit > 100 {
		limit = 100
	}
	snapshots, err := menu.Snapshots(c.Request.Context(), int64(limit))
	if err != nil {
		fail(c, err)
		return
	}
	if snapshots == nil {
		snapshots = []*model.LoginDataSnapshot{}
	}
	api.Success(c, gin.H{"items": snapshots})
}
