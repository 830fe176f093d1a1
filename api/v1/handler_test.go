package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"robotconsole/internal/journal"
	"robotconsole/internal/notify"
	"robotconsole/internal/service"
	"robotconsole/pkg/middleware"
	"robotconsole/pkg/robotapi"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type backendCall struct {
	Method string
	Path   string
	Body   string
}

// fakeBackend 模拟机器人管理后端；replies 按路径覆盖默认响应
type fakeBackend struct {
	mu      sync.Mutex
	calls   []backendCall
	replies map[string]string
}

const robotJSON = `{"id":7,"robot_code":"robot_7","wechat_id":"wxid_7","proxy_enabled":true,"proxy_ip":"1.1.1.1:80","proxy_user":"u","proxy_password":"p"}`

var defaultReplies = map[string]string{
	"/v1/robot/list":              `{"code":200,"data":{"items":[` + robotJSON + `],"total":1}}`,
	"/v1/robot/view":              `{"code":200,"data":` + robotJSON + `}`,
	"/v1/robot/create":            `{"code":200,"data":{"id":9,"robot_code":"robot_9"}}`,
	"/v1/robot/export_login_data": `{"code":200,"data":"{\"a\":1}"}`,
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.calls = append(b.calls, backendCall{Method: r.Method, Path: r.URL.Path, Body: string(raw)})
	reply, ok := b.replies[r.URL.Path]
	b.mu.Unlock()
	if !ok {
		reply, ok = defaultReplies[r.URL.Path]
	}
	if !ok {
		reply = `{"code":200,"message":"ok"}`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, reply)
}

func (b *fakeBackend) reply(path, body string) {
	b.mu.Lock()
	b.replies[path] = body
	b.mu.Unlock()
}

func (b *fakeBackend) find(path string) []backendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []backendCall
	for _, c := range b.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

type testEnv struct {
	engine  *gin.Engine
	backend *fakeBackend
	writer  *journal.Writer
	menus   *service.ActionMenus
	forms   *service.ProxyForms
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := &fakeBackend{replies: map[string]string{}}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := robotapi.NewClient(srv.URL, time.Second)
	directory := service.NewRobotDirectory(client)
	menus := service.NewActionMenus(service.MenuDeps{API: client, Notifier: notify.Log{}, MaxImportSize: 1024}, directory.Refresh)
	forms := service.NewProxyForms(client, notify.Log{}, nil, directory.Refresh)
	directory.AddObserver(menus)
	directory.AddObserver(forms)
	creator := service.NewRobotCreator(client, notify.Log{}, nil, service.WithSettleDelay(0))

	dir := t.TempDir()
	writer, err := journal.NewWriter(journal.WriterConfig{BaseDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { writer.Close() })

	engine := gin.New()
	engine.Use(middleware.Notices())
	group := engine.Group("/api/v1")
	auth := middleware.NewAuthMiddleware("", "", false)
	NewRobotHandler(directory, creator, menus).Register(group, auth)
	NewLoginDataHandler(directory, menus, 1024).Register(group, auth)
	NewProxyHandler(directory, forms).Register(group, auth)
	NewActionHandler(nil).Register(group, auth)
	NewJournalHandler(journal.NewReader(dir), journal.NewHub(journal.HubConfig{})).Register(group, auth)

	return &testEnv{engine: engine, backend: backend, writer: writer, menus: menus, forms: forms}
}

type envelope struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Notices []notify.Message `json:"notices"`
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json;") && !strings.Contains(w.Header().Get("Content-Disposition"), "attachment") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, method, path, name, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestListRobots(t *testing.T) {
	env := newTestEnv(t)
	w, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/robots?page_index=1&page_size=10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, body.Code)
	assert.Contains(t, string(body.Data), `"wxid_7"`)
}

func TestInvalidRobotID(t *testing.T) {
	env := newTestEnv(t)
	w, body := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/robots/abc/state", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "机器人ID无效", body.Message)
}

func TestExportDownload(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/robots/7/login-data", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=wxid_7.json", w.Header().Get("Content-Disposition"))
	assert.Equal(t, `{"a":1}`, w.Body.String())
}

func TestExportExpired(t *testing.T) {
	env := newTestEnv(t)
	env.backend.reply("/v1/robot/export_login_data", `{"code":200,"data":null}`)

	w, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/robots/7/login-data", nil))

	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "登录信息已过期", body.Message)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestImportUpload(t *testing.T) {
	env := newTestEnv(t)
	const text = `{"k":"v"}`

	w, body := env.do(t, uploadRequest(t, http.MethodPost, "/api/v1/robots/7/login-data", "data.json", text))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "导入成功", body.Message)
	assert.Contains(t, body.Notices, notify.Message{Level: notify.LevelSuccess, Text: "导入成功"})

	imports := env.backend.find("/v1/robot/import_login_data")
	require.Len(t, imports, 1)
	var sent struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(imports[0].Body), &sent))
	assert.Equal(t, text, sent.Data)
	assert.Len(t, env.backend.find("/v1/robot/list"), 1, "parent list refreshed")
}

func TestImportRejected(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		status  int
		message string
	}{
		{"extension", "data.txt", `{}`, http.StatusBadRequest, "文件扩展名不是 .json"},
		{"invalid json", "data.json", `{not json`, http.StatusBadRequest, "不是合法的 JSON 文件"},
		{"too large", "data.json", `"` + strings.Repeat("x", 2048) + `"`, http.StatusRequestEntityTooLarge, "文件过大"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w, body := env.do(t, uploadRequest(t, http.MethodPost, "/api/v1/robots/7/login-data", tt.file, tt.content))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, body.Message)
			assert.Empty(t, env.backend.find("/v1/robot/import_login_data"))
		})
	}
}

func TestImportWithoutFile(t *testing.T) {
	env := newTestEnv(t)
	w, body := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/robots/7/login-data", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "请先选择要导入的 JSON 文件", body.Message)
}

func TestPendingFileLifecycle(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, uploadRequest(t, http.MethodPut, "/api/v1/robots/7/login-data/file", "a.json", `[]`))
	require.Equal(t, http.StatusOK, w.Code)

	_, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/robots/7/login-data/file", nil))
	assert.Contains(t, string(body.Data), `"a.json"`)

	_, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/robots/7/menu", nil))
	assert.Contains(t, string(body.Data), `"has_pending_file":true`)

	w, _ = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/robots/7/login-data/file", nil))
	require.Equal(t, http.StatusOK, w.Code)

	_, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/robots/7/login-data/file", nil))
	assert.Empty(t, body.Data)
}

func TestRestartBackendError(t *testing.T) {
	env := newTestEnv(t)
	env.backend.reply("/v1/robot/restart_client", `{"code":500,"message":"容器不存在"}`)

	w, body := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/robots/7/restart-client", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "容器不存在", body.Message)
	assert.Empty(t, env.backend.find("/v1/robot/list"), "no refresh after failure")
}

func TestRestartServerSuccess(t *testing.T) {
	env := newTestEnv(t)
	w, body := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/robots/7/restart-server", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "重启服务端成功", body.Message)
	assert.Len(t, env.backend.find("/v1/robot/restart_server"), 1)
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	w, body := env.do(t, jsonRequest(http.MethodPost, "/api/v1/robots", `{"robot_code":"1bad"}`))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var fields []service.FieldError
	require.NoError(t, json.Unmarshal(body.Data, &fields))
	require.Len(t, fields, 1)
	assert.Equal(t, "robot_code", fields[0].Field)
	assert.Empty(t, env.backend.find("/v1/robot/create"))
}

func TestCreateAccepted(t *testing.T) {
	env := newTestEnv(t)
	w, body := env.do(t, jsonRequest(http.MethodPost, "/api/v1/robots", `{"robot_code":"robot_9"}`))

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, string(body.Data), `"id":9`)
	assert.Eventually(t, func() bool { return len(env.backend.find("/v1/robot/list")) == 1 }, time.Second, 10*time.Millisecond)
}

func TestProxyUpdate(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/robots/7/proxy", nil))
	assert.Contains(t, string(body.Data), `"proxy_ip":"1.1.1.1:80"`)

	w, body := env.do(t, jsonRequest(http.MethodPut, "/api/v1/robots/7/proxy", `{"id":99,"proxy_enabled":true,"proxy_ip":"2.2.2.2:8080"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "代理设置更新成功", body.Message)

	updates := env.backend.find("/v1/robot/update")
	require.Len(t, updates, 1)
	assert.Equal(t, http.MethodPut, updates[0].Method)
	assert.JSONEq(t, `{"id":7,"proxy_enabled":true,"proxy_ip":"2.2.2.2:8080","proxy_user":"","proxy_password":""}`, updates[0].Body)
}

func TestProxyUpdateInvalid(t *testing.T) {
	env := newTestEnv(t)
	w, body := env.do(t, jsonRequest(http.MethodPut, "/api/v1/robots/7/proxy", `{"proxy_enabled":true,"proxy_ip":"nope"}`))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "代理地址格式错误，应为 IP:端口 格式", body.Message)
	assert.Empty(t, env.backend.find("/v1/robot/update"))
}

func TestProxyReset(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/robots/7/proxy", nil))

	_, body := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/robots/7/proxy/reset", nil))
	assert.Contains(t, string(body.Data), `"proxy_user":"u"`)
}

func TestActionsWithoutDatabase(t *testing.T) {
	env := newTestEnv(t)
	w, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/robots/7/actions", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(body.Data), `"items":[]`)
}

func TestJournalList(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	require.NoError(t, env.writer.Write(&journal.Entry{Kind: journal.KindAction, RobotID: 1, Action: "refresh_state", Timestamp: now}))
	require.NoError(t, env.writer.Write(&journal.Entry{Kind: journal.KindAction, RobotID: 2, Action: "restart_client", Timestamp: now.Add(time.Millisecond)}))

	_, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/journal?robot_id=2", nil))

	var data struct {
		Total int              `json:"total"`
		Valid bool             `json:"valid"`
		Items []*journal.Entry `json:"items"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.True(t, data.Valid)
	require.Equal(t, 1, data.Total)
	assert.Equal(t, "restart_client", data.Items[0].Action)
}

func TestJournalBadDay(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/journal?day=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownRobotCreatesNoEntries(t *testing.T) {
	env := newTestEnv(t)

	// 后端对任意 ID 都返回机器人 7，123 不在目录中
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/robots/123/menu"},
		{http.MethodGet, "/api/v1/robots/123/login-data/file"},
		{http.MethodPost, "/api/v1/robots/123/restart-server"},
		{http.MethodGet, "/api/v1/robots/123/proxy"},
	}
	for _, p := range paths {
		w, body := env.do(t, httptest.NewRequest(p.method, p.path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, p.path)
		assert.Equal(t, "机器人不存在", body.Message, p.path)
	}

	_, ok := env.menus.Lookup(123)
	assert.False(t, ok)
	_, ok = env.forms.Lookup(123)
	assert.False(t, ok)
	assert.Empty(t, env.backend.find("/v1/robot/restart_server"))
	assert.Equal(t, 1, env.menus.Len(), "only robot 7 from the view replies")
	assert.Equal(t, 1, env.forms.Len())
}

func TestKnownRobotMenuViewsOnce(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		w, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/robots/7/menu", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Len(t, env.backend.find("/v1/robot/view"), 1)
}

func TestConcurrentProxyUpdatesSendOwnValues(t *testing.T) {
	env := newTestEnv(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"proxy_enabled":true,"proxy_ip":"10.0.0.%d:80"}`, i)
			w := httptest.NewRecorder()
			env.engine.ServeHTTP(w, jsonRequest(http.MethodPut, "/api/v1/robots/7/proxy", body))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), fmt.Sprintf(`"10.0.0.%d:80"`, i))
		}(i)
	}
	wg.Wait()

	sent := map[string]bool{}
	for _, call := range env.backend.find("/v1/robot/update") {
		var got struct {
			ID      int64  `json:"id"`
			ProxyIP string `json:"proxy_ip"`
		}
		require.NoError(t, json.Unmarshal([]byte(call.Body), &got))
		assert.Equal(t, int64(7), got.ID)
		sent[got.ProxyIP] = true
	}
	for i := 0; i < n; i++ {
		assert.True(t, sent[fmt.Sprintf("10.0.0.%d:80", i)], "payload %d reached backend", i)
	}
}
