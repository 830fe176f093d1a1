package journal

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// Kind 日志条目类型
type Kind string

const (
	KindAction Kind = "action" // 机器人操作结果
	KindNotice Kind = "notice" // 推送给控制台的提示
)

// Entry 操作日志条目，按行写入 JSONL 文件并串成哈希链
type Entry struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	Kind       Kind                   `json:"kind"`
	RobotID    int64                  `json:"robot_id,omitempty"`
	Action     string                 `json:"action,omitempty"`
	Status     string                 `json:"status,omitempty"`
	Level      string                 `json:"level,omitempty"`
	Message    string                 `json:"message,omitempty"`
	Operator   string                 `json:"operator,omitempty"`
	DurationMS int64                  `json:"duration_ms,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`

	PrevHash string `json:"prev_hash"`
	Hash     string `json:"hash"`
}

// String 返回 JSON 表示
func (e *Entry) String() string {
	data, _ := json.Marshal(e)
	return string(data)
}

// dayDir 条目所在的日期目录：YYYY/MM/DD
func dayDir(t time.Time) string {
	return filepath.Join(
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", int(t.Month())),
		fmt.Sprintf("%02d", t.Day()),
	)
}

// fileName 新日志文件名
func fileName(t time.Time) string {
	return fmt.Sprintf("journal-%s.log", t.Format("20060102-150405.000"))
}

// StreamMessage WebSocket 推送消息
type StreamMessage struct {
	Type    Kind   `json:"type"`
	Payload *Entry `json:"payload"`
}
