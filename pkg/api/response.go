package api

import (
	"net/http"

	"robotconsole/internal/notify"

	"github.com/gin-gonic/gin"
)

// NoticesKey gin 上下文中请求级提示记录器的键
const NoticesKey = "notices"

// Response 通用API响应结构
type Response struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    interface{}      `json:"data,omitempty"`
	Error   interface{}      `json:"error,omitempty"`
	Notices []notify.Message `json:"notices,omitempty"`
}

func notices(c *gin.Context) []notify.Message {
	if v, ok := c.Get(NoticesKey); ok {
		if rec, ok := v.(*notify.Recorder); ok {
			return rec.Messages()
		}
	}
	return nil
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, "操作成功", data)
}

// SuccessWithMessage 返回成功响应；本次请求产生的提示一并返回
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
		Notices: notices(c),
	})
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string, err error) {
	ErrorWithData(c, code, message, err, nil)
}

// ErrorWithData 返回带附加数据的错误响应，例如字段校验结果
func ErrorWithData(c *gin.Context, code int, message string, err error, data interface{}) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	c.AbortWithStatusJSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
		Error:   errMsg,
		Notices: notices(c),
	})
}
