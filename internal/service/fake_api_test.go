package service

import (
	"context"
	"sync"
	"sync/atomic"

	"robotconsole/internal/model"
	"robotconsole/internal/notify"
	"robotconsole/pkg/robotapi"
)

// fakeAPI 记录每次调用；xxxErr 非 nil 时对应调用失败
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	robots      []model.Robot
	created     *model.Robot
	exportData  string
	imported    []string
	updated     []model.ProxySettings
	createErr   error
	stateErr    error
	exportErr   error
	importErr   error
	restartErr  error
	updateErr   error
	viewErr     error
	onRestart   func() // 在重启请求内部调用，用于观察加载状态
	restartGate chan struct{}
}

var _ robotapi.API = (*fakeAPI)(nil)

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) CreateRobot(_ context.Context, req *model.RobotCreateRequest) (*model.Robot, error) {
	f.record("create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.created != nil {
		return f.created, nil
	}
	return &model.Robot{ID: 1, RobotCode: req.RobotCode}, nil
}

func (f *fakeAPI) ListRobots(context.Context, *model.RobotListQuery) (*model.RobotList, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]model.Robot, len(f.robots))
	copy(items, f.robots)
	return &model.RobotList{Items: items, Total: int64(len(items))}, nil
}

func (f *fakeAPI) ViewRobot(_ context.Context, id int64) (*model.Robot, error) {
	f.record("view")
	if f.viewErr != nil {
		return nil, f.viewErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.robots {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return &model.Robot{ID: id}, nil
}

func (f *fakeAPI) RobotState(context.Context, int64) error {
	f.record("state")
	return f.stateErr
}

func (f *fakeAPI) ExportLoginData(context.Context, int64) (string, error) {
	f.record("export")
	return f.exportData, f.exportErr
}

func (f *fakeAPI) ImportLoginData(_ context.Context, _ int64, data string) error {
	f.record("import")
	f.mu.Lock()
	f.imported = append(f.imported, data)
	f.mu.Unlock()
	return f.importErr
}

func (f *fakeAPI) RestartClient(context.Context, int64) error {
	f.record("restart_client")
	if f.onRestart != nil {
		f.onRestart()
	}
	if f.restartGate != nil {
		<-f.restartGate
	}
	return f.restartErr
}

func (f *fakeAPI) RestartServer(context.Context, int64) error {
	f.record("restart_server")
	return f.restartErr
}

func (f *fakeAPI) UpdateRobot(_ context.Context, settings *model.ProxySettings) error {
	f.record("update")
	f.mu.Lock()
	f.updated = append(f.updated, *settings)
	f.mu.Unlock()
	return f.updateErr
}

// memRecorder 收集操作历史
type memRecorder struct {
	mu      sync.Mutex
	actions []*model.RobotAction
}

func (r *memRecorder) Record(_ context.Context, a *model.RobotAction) error {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
	return nil
}

func (r *memRecorder) last() *model.RobotAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.actions) == 0 {
		return nil
	}
	return r.actions[len(r.actions)-1]
}

func confirmWith(ok bool) Confirmer {
	return ConfirmFunc(func(context.Context, Prompt) (bool, error) { return ok, nil })
}

type menuFixture struct {
	api       *fakeAPI
	notes     *notify.Recorder
	recorder  *memRecorder
	refreshes atomic.Int32
	menu      *ActionMenu
}

func newMenuFixture(api *fakeAPI, confirmer Confirmer) *menuFixture {
	fx := &menuFixture{api: api, notes: &notify.Recorder{}, recorder: &memRecorder{}}
	fx.menu = NewActionMenu(7, MenuDeps{
		API:       api,
		Confirmer: confirmer,
		Notifier:  fx.notes,
		Recorder:  fx.recorder,
	}, func(context.Context) { fx.refreshes.Add(1) })
	return fx
}

func (fx *menuFixture) lastNotice() notify.Message {
	m, _ := fx.notes.Last()
	return m
}
