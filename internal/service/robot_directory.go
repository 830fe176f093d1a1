package service

import (
	"context"
	"sync"

	"robotconsole/internal/model"
	"robotconsole/pkg/logger"
	"robotconsole/pkg/robotapi"
)

// RobotObserver 接收最新的机器人记录
type RobotObserver interface {
	Observe(robots []*model.Robot)
}

// RobotDirectory 机器人列表，菜单与表单的上层。操作成功后的刷新回调落到这里。
type RobotDirectory struct {
	api robotapi.API

	mu        sync.Mutex
	query     model.RobotListQuery
	observers []RobotObserver
}

// NewRobotDirectory 创建机器人列表
func NewRobotDirectory(api robotapi.API) *RobotDirectory {
	return &RobotDirectory{
		api:   api,
		query: model.RobotListQuery{PageIndex: 1, PageSize: 20},
	}
}

// AddObserver 注册观察者
func (d *RobotDirectory) AddObserver(o RobotObserver) {
	d.mu.Lock()
	d.observers = append(d.observers, o)
	d.mu.Unlock()
}

func (d *RobotDirectory) publish(robots []*model.Robot) {
	d.mu.Lock()
	observers := append([]RobotObserver(nil), d.observers...)
	d.mu.Unlock()
	for _, o := range observers {
		o.Observe(robots)
	}
}

// List 查询列表并记住查询条件，Refresh 会复用它
func (d *RobotDirectory) List(ctx context.Context, q *model.RobotListQuery) (*model.RobotList, error) {
	if q == nil {
		d.mu.Lock()
		cur := d.query
		d.mu.Unlock()
		q = &cur
	}
	list, err := d.api.ListRobots(ctx, q)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.query = *q
	d.mu.Unlock()

	robots := make([]*model.Robot, len(list.Items))
	for i := range list.Items {
		robots[i] = &list.Items[i]
	}
	d.publish(robots)
	return list, nil
}

// View 查询单个机器人
func (d *RobotDirectory) View(ctx context.Context, id int64) (*model.Robot, error) {
	robot, err := d.api.ViewRobot(ctx, id)
	if err != nil {
		return nil, err
	}
	d.publish([]*model.Robot{robot})
	return robot, nil
}

// Refresh 按上次的查询条件重新加载；失败只记录日志
func (d *RobotDirectory) Refresh(ctx context.Context) {
	if _, err := d.List(ctx, nil); err != nil {
		logger.Warn("refresh robot list: %v", err)
	}
}
