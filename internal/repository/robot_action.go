package repository

import (
	"context"

	"robotconsole/internal/model"

	"gorm.io/gorm"
)

// RobotActionRepository 操作历史仓储接口
type RobotActionRepository interface {
	Create(ctx context.Context, action *model.RobotAction) error
	ListByRobot(ctx context.Context, robotID int64, offset, limit int) ([]model.RobotAction, int64, error)
}

// robotActionRepository 操作历史仓储实现
type robotActionRepository struct {
	db *gorm.DB
}

// NewRobotActionRepository 创建操作历史仓储实例
func NewRobotActionRepository(db *gorm.DB) RobotActionRepository {
	return &robotActionRepository{db: db}
}

// Create 写入一条操作记录
func (r *robotActionRepository) Create(ctx context.Context, action *model.RobotAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

// ListByRobot 按时间倒序列出机器人的操作记录
func (r *robotActionRepository) ListByRobot(ctx context.Context, robotID int64, offset, limit int) ([]model.RobotAction, int64, error) {
	var actions []model.RobotAction
	var total int64

	query := r.db.WithContext(ctx).Model(&model.RobotAction{}).Where("robot_id = ?", robotID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&actions).Error; err != nil {
		return nil, 0, err
	}
	return actions, total, nil
}
