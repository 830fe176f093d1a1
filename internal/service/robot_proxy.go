package service

import (
	"context"
	"sync"
	"time"

	"robotconsole/internal/model"
	"robotconsole/internal/notify"
	"robotconsole/pkg/robotapi"
)

// ProxyForm 机器人代理设置表单
type ProxyForm struct {
	robotID   int64
	api       robotapi.API
	notifier  notify.Notifier
	recorder  ActionRecorder
	onRefresh func(ctx context.Context)

	mu         sync.Mutex
	loaded     *model.Robot
	values     model.ProxySettings
	submitting loadingFlag
}

// NewProxyForm 创建表单，字段初始为空，Load 之后才有值
func NewProxyForm(robotID int64, api robotapi.API, notifier notify.Notifier, recorder ActionRecorder, onRefresh func(ctx context.Context)) *ProxyForm {
	if notifier == nil {
		notifier = notify.Log{}
	}
	return &ProxyForm{
		robotID:   robotID,
		api:       api,
		notifier:  notifier,
		recorder:  recorder,
		onRefresh: onRefresh,
		values:    model.ProxySettings{ID: robotID},
	}
}

// Load 机器人记录与上次不是同一个对象时用它初始化表单，返回是否重新初始化
func (f *ProxyForm) Load(robot *model.Robot) bool {
	if robot == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if robot == f.loaded {
		return false
	}
	f.loaded = robot
	f.values = robot.Proxy()
	return true
}

// Loaded 最近一次加载的机器人记录
func (f *ProxyForm) Loaded() *model.Robot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

// Set 修改表单字段；隐藏的 id 不随输入变化
func (f *ProxyForm) Set(values model.ProxySettings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values.ID = f.values.ID
	f.values = values
}

// Values 当前表单值
func (f *ProxyForm) Values() model.ProxySettings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Reset 恢复为最近一次加载的机器人记录，而不是清空
func (f *ProxyForm) Reset() model.ProxySettings {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded != nil {
		f.values = f.loaded.Proxy()
	} else {
		f.values = model.ProxySettings{ID: f.robotID}
	}
	return f.values
}

// Loading 是否正在提交
func (f *ProxyForm) Loading() bool {
	return f.submitting.Loading()
}

// Submit 校验后提交当前表单（包括 id），成功后先刷新上层再提示
func (f *ProxyForm) Submit(ctx context.Context) error {
	return f.submit(ctx, f.Values())
}

// SubmitValues 写入 values 并提交同一份快照。
// 多个请求共用一个表单时，每个请求发出的都是自己的值。
func (f *ProxyForm) SubmitValues(ctx context.Context, values model.ProxySettings) error {
	f.mu.Lock()
	values.ID = f.values.ID
	f.values = values
	f.mu.Unlock()
	return f.submit(ctx, values)
}

func (f *ProxyForm) submit(ctx context.Context, values model.ProxySettings) (err error) {
	start := time.Now()
	defer func() { record(ctx, f.recorder, f.robotID, model.ActionUpdateProxy, start, err) }()

	if err = ValidateProxy(&values); err != nil {
		return err
	}

	n := notify.With(ctx, f.notifier)
	f.submitting.begin()
	err = f.api.UpdateRobot(ctx, &values)
	f.submitting.end()
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = msgUpdateFailed
		}
		notify.Error(n, msg)
		return err
	}

	if f.onRefresh != nil {
		f.onRefresh(ctx)
	}
	notify.Success(n, msgProxyUpdated)
	return nil
}

// ProxyForms 按机器人 ID 持有代理表单
type ProxyForms struct {
	api       robotapi.API
	notifier  notify.Notifier
	recorder  ActionRecorder
	onRefresh func(ctx context.Context)

	mu    sync.Mutex
	forms map[int64]*ProxyForm
}

// NewProxyForms 创建表单集合
func NewProxyForms(api robotapi.API, notifier notify.Notifier, recorder ActionRecorder, onRefresh func(ctx context.Context)) *ProxyForms {
	return &ProxyForms{
		api:       api,
		notifier:  notifier,
		recorder:  recorder,
		onRefresh: onRefresh,
		forms:     make(map[int64]*ProxyForm),
	}
}

// Form 返回机器人的表单，不存在时创建
func (r *ProxyForms) Form(robotID int64) *ProxyForm {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[robotID]
	if !ok {
		f = NewProxyForm(robotID, r.api, r.notifier, r.recorder, r.onRefresh)
		r.forms[robotID] = f
	}
	return f
}

// Lookup 返回已存在的表单，不会创建
func (r *ProxyForms) Lookup(robotID int64) (*ProxyForm, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[robotID]
	return f, ok
}

// Len 当前持有的表单数量
func (r *ProxyForms) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// Observe 新的机器人记录到达时重新初始化对应表单
func (r *ProxyForms) Observe(robots []*model.Robot) {
	for _, robot := range robots {
		if robot == nil {
			continue
		}
		r.Form(robot.ID).Load(robot)
	}
}
