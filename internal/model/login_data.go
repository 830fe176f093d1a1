package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// LoginDataContentType 导出文件的内容类型
	LoginDataContentType = "application/json;charset=utf-8"
	// DefaultLoginDataName 机器人没有 wechat_id 时使用的文件名
	DefaultLoginDataName = "logindata"
)

// LoginDataFile 可下载的登录数据文件
type LoginDataFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// LoginDataFileName 导出文件名：<wechat_id>.json，缺省为 logindata.json
func LoginDataFileName(wechatID string) string {
	if wechatID == "" {
		wechatID = DefaultLoginDataName
	}
	return wechatID + ".json"
}

// PendingFile 已选择、尚未确认导入的登录文件
type PendingFile struct {
	Name       string    `json:"name"`
	Data       []byte    `json:"data"`
	SelectedAt time.Time `json:"selected_at"`
}

// SnapshotDirection 快照来源
type SnapshotDirection string

const (
	SnapshotExport SnapshotDirection = "export"
	SnapshotImport SnapshotDirection = "import"
)

// LoginDataSnapshot 登录数据归档（MongoDB）
type LoginDataSnapshot struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RobotID   int64              `bson:"robot_id" json:"robot_id"`
	WeChatID  string             `bson:"wechat_id" json:"wechat_id"`
	Direction SnapshotDirection  `bson:"direction" json:"direction"`
	Data      string             `bson:"data" json:"-"`
	Size      int                `bson:"size" json:"size"`
	SHA256    string             `bson:"sha256" json:"sha256"`
	Operator  string             `bson:"operator" json:"operator"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
