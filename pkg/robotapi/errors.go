package robotapi

import "errors"

// Error 后端请求失败。Error() 只返回后端（或传输层）给出的原始消息，便于直接展示给用户。
type Error struct {
	Method     string
	Path       string
	StatusCode int // 0 表示请求未到达后端
	Code       int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsTransport 请求是否在到达后端之前失败
func (e *Error) IsTransport() bool {
	return e.StatusCode == 0
}

// AsError 取出错误链中的 *Error
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
