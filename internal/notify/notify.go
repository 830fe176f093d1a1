// Package notify 提供操作结果提示（成功、警告、错误）。
package notify

import (
	"context"
	"sync"

	"robotconsole/pkg/logger"
)

// Level 提示级别
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message 一条提示
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Notifier 接收操作提示
type Notifier interface {
	Notify(level Level, text string)
}

// Func 函数适配器
type Func func(level Level, text string)

func (f Func) Notify(level Level, text string) { f(level, text) }

// Success 发送成功提示
func Success(n Notifier, text string) { n.Notify(LevelSuccess, text) }

// Warning 发送警告提示
func Warning(n Notifier, text string) { n.Notify(LevelWarning, text) }

// Error 发送错误提示
func Error(n Notifier, text string) { n.Notify(LevelError, text) }

// Log 将提示写入日志
type Log struct{}

func (Log) Notify(level Level, text string) {
	switch level {
	case LevelError:
		logger.Error("[notice] %s", text)
	case LevelWarning:
		logger.Warn("[notice] %s", text)
	default:
		logger.Info("[notice] %s", text)
	}
}

// Fanout 依次转发给多个 Notifier
type Fanout []Notifier

func (f Fanout) Notify(level Level, text string) {
	for _, n := range f {
		if n != nil {
			n.Notify(level, text)
		}
	}
}

// Recorder 记录所有提示，供 HTTP 响应和测试读取
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Notify(level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Level: level, Text: text})
}

// Messages 返回已记录提示的副本
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last 最近一条提示
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

type ctxKey struct{}

// NewContext 在 ctx 上附加一个请求级的 Notifier
func NewContext(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, ctxKey{}, n)
}

// With 返回 base 与 ctx 中请求级 Notifier 的组合
func With(ctx context.Context, base Notifier) Notifier {
	scoped, _ := ctx.Value(ctxKey{}).(Notifier)
	switch {
	case scoped == nil:
		return base
	case base == nil:
		return scoped
	default:
		return Fanout{base, scoped}
	}
}
