package service

import (
	"context"
	"sync"
	"time"

	"robotconsole/internal/model"
	"robotconsole/internal/notify"
	"robotconsole/internal/repository"
	"robotconsole/pkg/robotapi"
)

// DefaultMaxLoginDataSize 导入文件大小上限
const DefaultMaxLoginDataSize = 4 << 20

// MenuDeps 操作菜单的依赖
type MenuDeps struct {
	API       robotapi.API
	Confirmer Confirmer
	Notifier  notify.Notifier
	Recorder  ActionRecorder
	Pending   repository.PendingFileRepository
	// Snapshots 可为 nil，此时不归档登录数据
	Snapshots     repository.LoginDataSnapshotRepository
	MaxImportSize int64
}

// MenuStatus 各操作的加载状态
type MenuStatus struct {
	RobotID              int64 `json:"robot_id"`
	RefreshLoading       bool  `json:"refresh_loading"`
	ExportLoading        bool  `json:"export_loading"`
	ImportLoading        bool  `json:"import_loading"`
	RestartClientLoading bool  `json:"restart_client_loading"`
	RestartServerLoading bool  `json:"restart_server_loading"`
	HasPendingFile       bool  `json:"has_pending_file"`
}

// ActionMenu 单个机器人的生命周期操作：刷新状态、导出/导入登录数据、重启容器。
//
// 每个操作有独立的加载状态。调用时先检查状态，正在进行则提示并返回 ErrActionBusy，
// 否则征求确认后执行。
type ActionMenu struct {
	robotID   int64
	api       robotapi.API
	confirmer Confirmer
	notifier  notify.Notifier
	recorder  ActionRecorder
	pending   repository.PendingFileRepository
	snapshots repository.LoginDataSnapshotRepository
	maxImport int64
	onRefresh func(ctx context.Context)

	mu    sync.RWMutex
	robot *model.Robot

	refreshing       loadingFlag
	exporting        loadingFlag
	importing        loadingFlag
	restartingClient loadingFlag
	restartingServer loadingFlag
}

// NewActionMenu 创建操作菜单；onRefresh 在操作成功后通知上层刷新，可为 nil
func NewActionMenu(robotID int64, deps MenuDeps, onRefresh func(ctx context.Context)) *ActionMenu {
	m := &ActionMenu{
		robotID:   robotID,
		api:       deps.API,
		confirmer: deps.Confirmer,
		notifier:  deps.Notifier,
		recorder:  deps.Recorder,
		pending:   deps.Pending,
		snapshots: deps.Snapshots,
		maxImport: deps.MaxImportSize,
		onRefresh: onRefresh,
	}
	if m.confirmer == nil {
		m.confirmer = AutoConfirm
	}
	if m.notifier == nil {
		m.notifier = notify.Log{}
	}
	if m.pending == nil {
		m.pending = repository.NewMemoryPendingFileRepository()
	}
	if m.maxImport <= 0 {
		m.maxImport = DefaultMaxLoginDataSize
	}
	return m
}

// RobotID 菜单所属机器人
func (m *ActionMenu) RobotID() int64 { return m.robotID }

// SetRobot 更新菜单持有的机器人记录（导出文件名取自 wechat_id）
func (m *ActionMenu) SetRobot(robot *model.Robot) {
	m.mu.Lock()
	m.robot = robot
	m.mu.Unlock()
}

// Robot 最近一次设置的机器人记录
func (m *ActionMenu) Robot() *model.Robot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.robot
}

// Status 当前加载状态快照
func (m *ActionMenu) Status(ctx context.Context) MenuStatus {
	st := MenuStatus{
		RobotID:              m.robotID,
		RefreshLoading:       m.refreshing.Loading(),
		ExportLoading:        m.exporting.Loading(),
		ImportLoading:        m.importing.Loading(),
		RestartClientLoading: m.restartingClient.Loading(),
		RestartServerLoading: m.restartingServer.Loading(),
	}
	if f, err := m.pending.Get(ctx, m.robotID); err == nil && f != nil {
		st.HasPendingFile = true
	}
	return st
}

// RestartClientLoading 重启客户端是否进行中
func (m *ActionMenu) RestartClientLoading() bool { return m.restartingClient.Loading() }

// RestartServerLoading 重启服务端是否进行中
func (m *ActionMenu) RestartServerLoading() bool { return m.restartingServer.Loading() }

func (m *ActionMenu) refresh(ctx context.Context) {
	if m.onRefresh != nil {
		m.onRefresh(ctx)
	}
}

// gate 检查加载状态并征求确认。通过时调用方负责 begin/end。
func (m *ActionMenu) gate(ctx context.Context, n notify.Notifier, flag *loadingFlag, busyMsg string, p Prompt) error {
	if flag.Loading() {
		notify.Warning(n, busyMsg)
		return ErrActionBusy
	}
	ok, err := m.confirmer.Confirm(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}

// Refresh 刷新机器人状态
func (m *ActionMenu) Refresh(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { record(ctx, m.recorder, m.robotID, model.ActionRefreshState, start, err) }()

	n := notify.With(ctx, m.notifier)
	if m.refreshing.Loading() {
		notify.Warning(n, msgRefreshBusy)
		return ErrActionBusy
	}

	m.refreshing.begin()
	err = m.api.RobotState(ctx, m.robotID)
	m.refreshing.end()
	if err != nil {
		notify.Error(n, err.Error())
		return err
	}

	notify.Success(n, msgRefreshed)
	m.refresh(ctx)
	return nil
}

// RestartClient 重启客户端容器
func (m *ActionMenu) RestartClient(ctx context.Context) error {
	return m.restart(ctx, &m.restartingClient, model.ActionRestartClient, msgRestartClientBsy, promptRestartClient,
		m.api.RestartClient, msgClientRestarted)
}

// RestartServer 重启服务端容器
func (m *ActionMenu) RestartServer(ctx context.Context) error {
	return m.restart(ctx, &m.restartingServer, model.ActionRestartServer, msgRestartServerBsy, promptRestartServer,
		m.api.RestartServer, msgServerRestarted)
}

func (m *ActionMenu) restart(
	ctx context.Context,
	flag *loadingFlag,
	action model.ActionType,
	busyMsg string,
	p Prompt,
	call func(ctx context.Context, id int64) error,
	okMsg string,
) (err error) {
	start := time.Now()
	defer func() { record(ctx, m.recorder, m.robotID, action, start, err) }()

	n := notify.With(ctx, m.notifier)
	if err = m.gate(ctx, n, flag, busyMsg, p); err != nil {
		return err
	}

	flag.begin()
	err = call(ctx, m.robotID)
	flag.end()
	if err != nil {
		notify.Error(n, err.Error())
		return err
	}

	notify.Success(n, okMsg)
	m.refresh(ctx)
	return nil
}

// ActionMenus 按机器人 ID 持有操作菜单，保证同一机器人的加载状态在多次请求间共享
type ActionMenus struct {
	deps      MenuDeps
	onRefresh func(ctx context.Context)

	mu    sync.Mutex
	menus map[int64]*ActionMenu
}

// NewActionMenus 创建菜单集合
func NewActionMenus(deps MenuDeps, onRefresh func(ctx context.Context)) *ActionMenus {
	return &ActionMenus{
		deps:      deps,
		onRefresh: onRefresh,
		menus:     make(map[int64]*ActionMenu),
	}
}

// Menu 返回机器人的菜单，不存在时创建
func (r *ActionMenus) Menu(robotID int64) *ActionMenu {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.menus[robotID]
	if !ok {
		m = NewActionMenu(robotID, r.deps, r.onRefresh)
		r.menus[robotID] = m
	}
	return m
}

// Lookup 返回已存在的菜单，不会创建
func (r *ActionMenus) Lookup(robotID int64) (*ActionMenu, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.menus[robotID]
	return m, ok
}

// Len 当前持有的菜单数量
func (r *ActionMenus) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.menus)
}

// Observe 用最新的机器人记录更新对应菜单
func (r *ActionMenus) Observe(robots []*model.Robot) {
	for _, robot := range robots {
		if robot == nil {
			continue
		}
		r.Menu(robot.ID).SetRobot(robot)
	}
}
