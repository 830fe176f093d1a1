package service

import (
	"errors"
	"strings"
)

var (
	// ErrActionBusy 同一操作仍在进行中，本次调用未发出请求
	ErrActionBusy = errors.New("action already in progress")
	// ErrCancelled 用户取消了确认
	ErrCancelled = errors.New("action cancelled")
	// ErrLoginDataExpired 后端没有返回登录数据
	ErrLoginDataExpired = errors.New("login data expired")
	// ErrExportDelivery 登录数据已取回，但文件交付失败
	ErrExportDelivery = errors.New("export delivery failed")
	// ErrNoImportFile 未选择导入文件
	ErrNoImportFile = errors.New("no file selected")
	// ErrImportExtension 导入文件扩展名不是 .json
	ErrImportExtension = errors.New("invalid extension")
	// ErrImportInvalidJSON 导入文件不是合法 JSON
	ErrImportInvalidJSON = errors.New("invalid json")
	// ErrImportTooLarge 导入文件超过大小上限
	ErrImportTooLarge = errors.New("file too large")
)

// 提示文案
const (
	msgCreated          = "创建成功"
	msgRefreshed        = "刷新成功"
	msgExported         = "导出成功"
	msgExportFailed     = "导出失败: "
	msgLoginExpired     = "登录信息已过期"
	msgImported         = "导入成功"
	msgNoImportFile     = "请先选择要导入的 JSON 文件"
	msgBadExtension     = "文件扩展名不是 .json"
	msgInvalidJSON      = "不是合法的 JSON 文件"
	msgFileTooLarge     = "文件过大"
	msgClientRestarted  = "重启客户端成功"
	msgServerRestarted  = "重启服务端成功"
	msgProxyUpdated     = "代理设置更新成功"
	msgUpdateFailed     = "更新失败"
	msgExportBusy       = "正在导出登录数据，请稍后再试"
	msgImportBusy       = "正在导入登录数据，请稍后再试"
	msgRestartClientBsy = "正在重启客户端容器，请稍后再试"
	msgRestartServerBsy = "正在重启服务端容器，请稍后再试"
	msgRefreshBusy      = "正在刷新状态，请稍后再试"
)

// FieldError 单个字段的校验失败
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 表单校验失败，请求未发出
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Message 返回指定字段的第一条错误
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}
