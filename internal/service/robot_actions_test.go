package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"robotconsole/internal/model"
	"robotconsole/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshSuccess(t *testing.T) {
	fx := newMenuFixture(&fakeAPI{}, AutoConfirm)

	require.NoError(t, fx.menu.Refresh(context.Background()))

	assert.Equal(t, 1, fx.api.count("state"))
	assert.Equal(t, int32(1), fx.refreshes.Load())
	assert.Equal(t, notify.Message{Level: notify.LevelSuccess, Text: "刷新成功"}, fx.lastNotice())
	assert.Equal(t, model.ActionSucceeded, fx.recorder.last().Status)
	assert.Equal(t, model.ActionRefreshState, fx.recorder.last().Action)
}

func TestRefreshErrorSkipsParentRefresh(t *testing.T) {
	fx := newMenuFixture(&fakeAPI{stateErr: errors.New("robot offline")}, AutoConfirm)

	require.Error(t, fx.menu.Refresh(context.Background()))

	assert.Zero(t, fx.refreshes.Load())
	assert.Equal(t, notify.Message{Level: notify.LevelError, Text: "robot offline"}, fx.lastNotice())
	assert.Equal(t, model.ActionFailed, fx.recorder.last().Status)
}

func TestRestartClientWhileLoadingWarns(t *testing.T) {
	api := &fakeAPI{restartGate: make(chan struct{})}
	inFlight := make(chan struct{})
	api.onRestart = func() { close(inFlight) }
	fx := newMenuFixture(api, AutoConfirm)

	first := make(chan error, 1)
	go func() { first <- fx.menu.RestartClient(context.Background()) }()
	<-inFlight
	require.True(t, fx.menu.RestartClientLoading())

	err := fx.menu.RestartClient(context.Background())
	assert.ErrorIs(t, err, ErrActionBusy)
	assert.Equal(t, notify.Message{Level: notify.LevelWarning, Text: "正在重启客户端容器，请稍后再试"}, fx.lastNotice())
	assert.Equal(t, 1, api.count("restart_client"), "second invocation must not reach the backend")
	assert.Equal(t, model.ActionBusy, fx.recorder.last().Status)

	close(api.restartGate)
	require.NoError(t, <-first)
	assert.False(t, fx.menu.RestartClientLoading())
	assert.Equal(t, notify.Message{Level: notify.LevelSuccess, Text: "重启客户端成功"}, fx.lastNotice())
	assert.Equal(t, int32(1), fx.refreshes.Load())
}

// 检查与置位之间没有锁：两次调用都在任一方开始请求前通过检查时，会发出两次请求
func TestRestartClientDoubleSubmitGap(t *testing.T) {
	api := &fakeAPI{}
	var passed sync.WaitGroup
	passed.Add(2)
	confirmer := ConfirmFunc(func(context.Context, Prompt) (bool, error) {
		passed.Done()
		passed.Wait()
		return true, nil
	})
	fx := newMenuFixture(api, confirmer)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = fx.menu.RestartClient(context.Background())
		}(i)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, 2, api.count("restart_client"))
}

func TestRestartDismissed(t *testing.T) {
	fx := newMenuFixture(&fakeAPI{}, confirmWith(false))

	err := fx.menu.RestartServer(context.Background())
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, fx.api.count("restart_server"))
	assert.Equal(t, model.ActionCancelled, fx.recorder.last().Status)
}

func TestRestartServerPrompt(t *testing.T) {
	var got Prompt
	fx := newMenuFixture(&fakeAPI{}, ConfirmFunc(func(_ context.Context, p Prompt) (bool, error) {
		got = p
		return true, nil
	}))

	require.NoError(t, fx.menu.RestartServer(context.Background()))
	assert.Equal(t, "重启机器人服务端容器", got.Title)
	assert.Equal(t, "重启", got.OkText)
	assert.Equal(t, notify.Message{Level: notify.LevelSuccess, Text: "重启服务端成功"}, fx.lastNotice())
	assert.Equal(t, int32(1), fx.refreshes.Load())
}

func TestRestartErrorSkipsParentRefresh(t *testing.T) {
	fx := newMenuFixture(&fakeAPI{restartErr: errors.New("container not found")}, AutoConfirm)

	require.Error(t, fx.menu.RestartClient(context.Background()))
	assert.Zero(t, fx.refreshes.Load())
	assert.Equal(t, notify.Message{Level: notify.LevelError, Text: "container not found"}, fx.lastNotice())
}

func TestActionMenusShareState(t *testing.T) {
	menus := NewActionMenus(MenuDeps{API: &fakeAPI{}}, nil)
	a := menus.Menu(3)
	assert.Same(t, a, menus.Menu(3))
	assert.NotSame(t, a, menus.Menu(4))

	robot := &model.Robot{ID: 3, WeChatID: "wxid_abc"}
	menus.Observe([]*model.Robot{robot, nil})
	assert.Same(t, robot, a.Robot())
}

func TestActionMenusLookupDoesNotCreate(t *testing.T) {
	menus := NewActionMenus(MenuDeps{API: &fakeAPI{}}, nil)

	_, ok := menus.Lookup(3)
	assert.False(t, ok)
	assert.Equal(t, 0, menus.Len())

	menus.Observe([]*model.Robot{{ID: 3}})
	m, ok := menus.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, int64(3), m.Robot().ID)
	assert.Equal(t, 1, menus.Len())
}

func TestMenuStatusReportsPendingFile(t *testing.T) {
	fx := newMenuFixture(&fakeAPI{}, AutoConfirm)
	ctx := context.Background()

	assert.False(t, fx.menu.Status(ctx).HasPendingFile)
	require.NoError(t, fx.menu.SelectImportFile(ctx, "a.json", []byte(`{}`)))
	st := fx.menu.Status(ctx)
	assert.True(t, st.HasPendingFile)
	assert.Equal(t, int64(7), st.RobotID)
}
