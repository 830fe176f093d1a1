package boot

import (
	"robotconsole/internal/journal"
	"robotconsole/pkg/config"
)

// JournalComponents 操作日志相关组件
type JournalComponents struct {
	Writer *journal.Writer
	Reader *journal.Reader
	Hub    *journal.Hub
}

// InitJournal 初始化操作日志写入、读取与推送
func InitJournal(cfg *config.JournalConfig) (*JournalComponents, error) {
	writer, err := journal.NewWriter(journal.WriterConfig{
		BaseDir:    cfg.Dir,
		RotateSize: cfg.RotationSize,
	})
	if err != nil {
		return nil, err
	}

	hub := journal.NewHub(journal.HubConfig{
		PingInterval:   cfg.WebSocket.PingInterval,
		WriteWait:      cfg.WebSocket.WriteWait,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
	})

	return &JournalComponents{
		Writer: writer,
		Reader: journal.NewReader(cfg.Dir),
		Hub:    hub,
	}, nil
}
