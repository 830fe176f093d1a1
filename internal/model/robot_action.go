package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActionType 机器人操作类型
type ActionType string

const (
	ActionCreate          ActionType = "create"
	ActionRefreshState    ActionType = "refresh_state"
	ActionExportLoginData ActionType = "export_login_data"
	ActionImportLoginData ActionType = "import_login_data"
	ActionRestartClient   ActionType = "restart_client"
	ActionRestartServer   ActionType = "restart_server"
	ActionUpdateProxy     ActionType = "update_proxy"
)

// ActionStatus 操作结果
type ActionStatus string

const (
	ActionSucceeded ActionStatus = "succeeded"
	ActionFailed    ActionStatus = "failed"
	ActionRejected  ActionStatus = "rejected" // 本地校验未通过，未发出请求
	ActionBusy      ActionStatus = "busy"
	ActionCancelled ActionStatus = "cancelled"
	ActionExpired   ActionStatus = "expired"
)

// RobotAction 操作历史（PostgreSQL）
type RobotAction struct {
	ID         string       `gorm:"type:uuid;primary_key" json:"id"`
	RobotID    int64        `gorm:"index;not null" json:"robot_id"`
	Action     ActionType   `gorm:"type:varchar(32);not null;index" json:"action"`
	Status     ActionStatus `gorm:"type:varchar(16);not null" json:"status"`
	Message    string       `gorm:"type:text" json:"message"`
	Operator   string       `gorm:"type:varchar(64)" json:"operator"`
	DurationMS int64        `json:"duration_ms"`
	CreatedAt  time.Time    `gorm:"index" json:"created_at"`
}

// BeforeCreate GORM 钩子，补全 UUID
func (a *RobotAction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
