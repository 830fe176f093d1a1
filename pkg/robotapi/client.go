// Package robotapi 是机器人管理后端的 REST 客户端。
//
// 客户端由调用方显式构造并注入到各个服务中，不提供全局实例。
package robotapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"robotconsole/internal/model"
)

type route struct {
	Method string
	Path   string
}

var (
	routeCreate        = route{http.MethodPost, "/v1/robot/create"}
	routeList          = route{http.MethodGet, "/v1/robot/list"}
	routeView          = route{http.MethodGet, "/v1/robot/view"}
	routeState         = route{http.MethodGet, "/v1/robot/state"}
	routeExportLogin   = route{http.MethodGet, "/v1/robot/export_login_data"}
	routeImportLogin   = route{http.MethodPost, "/v1/robot/import_login_data"}
	routeRestartClient = route{http.MethodPost, "/v1/robot/restart_client"}
	routeRestartServer = route{http.MethodPost, "/v1/robot/restart_server"}
	routeUpdate        = route{http.MethodPut, "/v1/robot/update"}
)

// API 是服务层依赖的后端能力
type API interface {
	CreateRobot(ctx context.Context, req *model.RobotCreateRequest) (*model.Robot, error)
	ListRobots(ctx context.Context, q *model.RobotListQuery) (*model.RobotList, error)
	ViewRobot(ctx context.Context, id int64) (*model.Robot, error)
	RobotState(ctx context.Context, id int64) error
	ExportLoginData(ctx context.Context, id int64) (string, error)
	ImportLoginData(ctx context.Context, id int64, data string) error
	RestartClient(ctx context.Context, id int64) error
	RestartServer(ctx context.Context, id int64) error
	UpdateRobot(ctx context.Context, settings *model.ProxySettings) error
}

// Client 后端 REST 客户端
type Client struct {
	baseURL string
	token   string
	httpCli *http.Client
}

// Option 客户端选项
type Option func(*Client)

// WithToken 设置透传给后端的 Bearer 令牌
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpCli = hc }
}

// NewClient 创建客户端；timeout 为单次请求的整体超时，0 表示不限制
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCli: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ API = (*Client)(nil)

// envelope 后端统一响应结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func idQuery(id int64) url.Values {
	return url.Values{"id": []string{strconv.FormatInt(id, 10)}}
}

// CreateRobot POST /v1/robot/create
func (c *Client) CreateRobot(ctx context.Context, req *model.RobotCreateRequest) (*model.Robot, error) {
	var robot model.Robot
	if err := c.do(ctx, routeCreate, nil, req, &robot); err != nil {
		return nil, err
	}
	return &robot, nil
}

// ListRobots GET /v1/robot/list
func (c *Client) ListRobots(ctx context.Context, q *model.RobotListQuery) (*model.RobotList, error) {
	query := url.Values{}
	if q != nil {
		if q.Keyword != "" {
			query.Set("keyword", q.Keyword)
		}
		if q.Status != "" {
			query.Set("status", q.Status)
		}
		if q.PageIndex > 0 {
			query.Set("page_index", strconv.Itoa(q.PageIndex))
		}
		if q.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(q.PageSize))
		}
	}
	var list model.RobotList
	if err := c.do(ctx, routeList, query, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ViewRobot GET /v1/robot/view?id=
func (c *Client) ViewRobot(ctx context.Context, id int64) (*model.Robot, error) {
	var robot model.Robot
	if err := c.do(ctx, routeView, idQuery(id), nil, &robot); err != nil {
		return nil, err
	}
	return &robot, nil
}

// RobotState GET /v1/robot/state?id=，响应内容只作为成功信号
func (c *Client) RobotState(ctx context.Context, id int64) error {
	return c.do(ctx, routeState, idQuery(id), nil, nil)
}

// ExportLoginData GET /v1/robot/export_login_data?id=，登录数据过期时返回空字符串
func (c *Client) ExportLoginData(ctx context.Context, id int64) (string, error) {
	var raw json.RawMessage
	if err := c.do(ctx, routeExportLogin, idQuery(id), nil, &raw); err != nil {
		return "", err
	}
	return decodeBlob(raw)
}

// ImportLoginData POST /v1/robot/import_login_data?id=，data 原样透传
func (c *Client) ImportLoginData(ctx context.Context, id int64, data string) error {
	body := struct {
		Data string `json:"data"`
	}{Data: data}
	return c.do(ctx, routeImportLogin, idQuery(id), body, nil)
}

// RestartClient POST /v1/robot/restart_client?id=
func (c *Client) RestartClient(ctx context.Context, id int64) error {
	return c.do(ctx, routeRestartClient, idQuery(id), nil, nil)
}

// RestartServer POST /v1/robot/restart_server?id=
func (c *Client) RestartServer(ctx context.Context, id int64) error {
	return c.do(ctx, routeRestartServer, idQuery(id), nil, nil)
}

// UpdateRobot PUT /v1/robot/update
func (c *Client) UpdateRobot(ctx context.Context, settings *model.ProxySettings) error {
	return c.do(ctx, routeUpdate, nil, settings, nil)
}

// decodeBlob 登录数据通常是 JSON 字符串；后端直接返回对象时保留其原始文本
func decodeBlob(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if trimmed[0] != '"' {
		return string(trimmed), nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", fmt.Errorf("decode login data: %w", err)
	}
	return s, nil
}

func (c *Client) do(ctx context.Context, rt route, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + rt.Path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", rt.Path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, rt.Method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return &Error{Method: rt.Method, Path: rt.Path, Message: err.Error(), cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Method: rt.Method, Path: rt.Path, StatusCode: resp.StatusCode, Message: err.Error(), cause: err}
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 300 {
				return &Error{Method: rt.Method, Path: rt.Path, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
			}
			return &Error{Method: rt.Method, Path: rt.Path, StatusCode: resp.StatusCode, Message: "invalid response: " + err.Error(), cause: err}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || (env.Code != 0 && env.Code != http.StatusOK) {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Method: rt.Method, Path: rt.Path, StatusCode: resp.StatusCode, Code: env.Code, Message: msg}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if rawOut, ok := out.(*json.RawMessage); ok {
		*rawOut = append((*rawOut)[:0], env.Data...)
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Method: rt.Method, Path: rt.Path, StatusCode: resp.StatusCode, Message: "invalid response data: " + err.Error(), cause: err}
	}
	return nil
}
