package v1

import (
	"errors"
	"net/http"
	"strconv"

	"robotconsole/internal/notify"
	"robotconsole/internal/service"
	"robotconsole/pkg/api"
	"robotconsole/pkg/robotapi"

	"github.com/gin-gonic/gin"
)

// errRobotNotFound 后端查询成功但没有返回该 ID 的机器人
var errRobotNotFound = errors.New("机器人不存在")

// statusFor 服务层错误 -> HTTP 状态码
func statusFor(err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNoImportFile),
		errors.Is(err, service.ErrImportExtension),
		errors.Is(err, service.ErrImportInvalidJSON),
		errors.Is(err, service.ErrCancelled):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrImportTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrActionBusy):
		return http.StatusConflict
	case errors.Is(err, service.ErrLoginDataExpired):
		return http.StatusGone
	case errors.Is(err, errRobotNotFound):
		return http.StatusNotFound
	}
	if _, ok := robotapi.AsError(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func lastNotice(c *gin.Context) (notify.Message, bool) {
	if v, ok := c.Get(api.NoticesKey); ok {
		if rec, ok := v.(*notify.Recorder); ok {
			return rec.Last()
		}
	}
	return notify.Message{}, false
}

// succeed 写入成功响应；message 取本次请求的成功提示
func succeed(c *gin.Context, data interface{}) {
	if last, ok := lastNotice(c); ok && last.Level == notify.LevelSuccess {
		api.SuccessWithMessage(c, last.Text, data)
		return
	}
	api.Success(c, data)
}

// fail 写入错误响应；message 优先取本次请求最后一条提示
func fail(c *gin.Context, err error) {
	message := err.Error()
	if last, ok := lastNotice(c); ok && last.Level != notify.LevelSuccess {
		message = last.Text
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		api.ErrorWithData(c, statusFor(err), message, err, verr.Fields)
		return
	}
	api.Error(c, statusFor(err), message, err)
}

// robotID 解析路径中的机器人 ID
func robotID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		api.Error(c, http.StatusBadRequest, "机器人ID无效", err)
		return 0, false
	}
	return id, true
}

// resolveMenu 解析路径中的机器人 ID 并返回其菜单。
// 菜单只在目录观察到机器人记录时创建，未知 ID 先向后端查询一次，不存在时返回 404。
func resolveMenu(c *gin.Context, directory *service.RobotDirectory, menus *service.ActionMenus) (*service.ActionMenu, bool) {
	id, ok := robotID(c)
	if !ok {
		return nil, false
	}
	if m, ok := menus.Lookup(id); ok {
		return m, true
	}
	if _, err := directory.View(c.Request.Context(), id); err != nil {
		fail(c, err)
		return nil, false
	}
	if m, ok := menus.Lookup(id); ok {
		return m, true
	}
	fail(c, errRobotNotFound)
	return nil, false
}

// intQuery 读取整数 query 参数，缺省或非法时返回 def
func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
