package service

import (
	"context"
	"time"

	"robotconsole/internal/model"
	"robotconsole/internal/notify"
	"robotconsole/pkg/robotapi"
)

// DefaultCreateSettleDelay 创建成功后等待后端初始化完成的时长
const DefaultCreateSettleDelay = 20 * time.Second

// CreateHooks 创建流程的回调，均可为 nil
type CreateHooks struct {
	// OnSuccess 后端确认创建后立即调用，早于等待结束
	OnSuccess func(robot *model.Robot)
	// OnRefresh 等待结束后刷新上层列表
	OnRefresh func(ctx context.Context)
	// OnClose 流程成功结束后关闭对话框
	OnClose func()
}

// RobotCreator 创建机器人
type RobotCreator struct {
	api      robotapi.API
	notifier notify.Notifier
	recorder ActionRecorder
	delay    time.Duration
	sleep    func(time.Duration)
	loading  loadingFlag
}

// CreatorOption RobotCreator 选项
type CreatorOption func(*RobotCreator)

// WithSettleDelay 覆盖等待时长
func WithSettleDelay(d time.Duration) CreatorOption {
	return func(c *RobotCreator) { c.delay = d }
}

// WithSleeper 替换等待实现
func WithSleeper(sleep func(time.Duration)) CreatorOption {
	return func(c *RobotCreator) { c.sleep = sleep }
}

// NewRobotCreator 创建 RobotCreator；notifier 为 nil 时写日志，recorder 可为 nil
func NewRobotCreator(api robotapi.API, notifier notify.Notifier, recorder ActionRecorder, opts ...CreatorOption) *RobotCreator {
	if notifier == nil {
		notifier = notify.Log{}
	}
	c := &RobotCreator{
		api:      api,
		notifier: notifier,
		recorder: recorder,
		delay:    DefaultCreateSettleDelay,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Loading 创建请求是否仍在进行（包括等待期）
func (c *RobotCreator) Loading() bool {
	return c.loading.Loading()
}

// Create 校验、提交并等待后端初始化。
//
// 校验失败返回 *ValidationError，不发出请求也不提示。后端确认后立即调用 OnSuccess，
// 随后等待固定时长，期间 Loading() 为 true；等待不可取消。
func (c *RobotCreator) Create(ctx context.Context, req *model.RobotCreateRequest, hooks CreateHooks) (*model.Robot, error) {
	start := time.Now()
	if err := ValidateCreate(req); err != nil {
		record(ctx, c.recorder, 0, model.ActionCreate, start, err)
		return nil, err
	}

	n := notify.With(ctx, c.notifier)

	c.loading.begin()
	robot, err := c.api.CreateRobot(ctx, req)
	if err != nil {
		c.loading.end()
		notify.Error(n, err.Error())
		record(ctx, c.recorder, 0, model.ActionCreate, start, err)
		return nil, err
	}

	if hooks.OnSuccess != nil {
		hooks.OnSuccess(robot)
	}
	if c.delay > 0 {
		c.sleep(c.delay)
	}
	c.loading.end()

	notify.Success(n, msgCreated)
	record(ctx, c.recorder, robot.ID, model.ActionCreate, start, nil)

	if hooks.OnRefresh != nil {
		hooks.OnRefresh(ctx)
	}
	if hooks.OnClose != nil {
		hooks.OnClose()
	}
	return robot, nil
}
