package service

import (
	"context"
	"sync"
)

// Prompt 确认框内容
type Prompt struct {
	Title  string
	Body   string
	OkText string
}

// Confirmer 在执行破坏性或耗时操作前征求确认
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc 函数适配器
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) { return f(ctx, p) }

// AutoConfirm 直接确认。HTTP 控制台中请求本身就是用户的确认。
var AutoConfirm Confirmer = ConfirmFunc(func(context.Context, Prompt) (bool, error) { return true, nil })

var (
	promptExport = Prompt{
		Title:  "导出机器人登录数据",
		Body:   "确定要导出这个机器人的登录数据吗？",
		OkText: "导出",
	}
	promptImport = Prompt{
		Title:  "导入机器人登录数据",
		Body:   "单击或将 JSON 文件拖到此区域进行上传",
		OkText: "导入",
	}
	promptRestartClient = Prompt{
		Title:  "重启机器人客户端",
		Body:   "确定要重启这个机器人的客户端容器吗？",
		OkText: "重启",
	}
	promptRestartServer = Prompt{
		Title:  "重启机器人服务端容器",
		Body:   "确定要重启这个机器人的服务端容器吗？",
		OkText: "重启",
	}
)

// loadingFlag 操作的加载状态。计数而不是布尔值，并发请求各自结束时不会提前清零。
//
// 调用方先用 Loading() 检查、确认后再 begin()，两步之间不加锁：
// 两次调用都在任一方 begin() 之前通过检查时，都会发出请求。
type loadingFlag struct {
	mu sync.Mutex
	n  int
}

func (f *loadingFlag) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n > 0
}

func (f *loadingFlag) begin() {
	f.mu.Lock()
	f.n++
	f.mu.Unlock()
}

func (f *loadingFlag) end() {
	f.mu.Lock()
	if f.n > 0 {
		f.n--
	}
	f.mu.Unlock()
}
