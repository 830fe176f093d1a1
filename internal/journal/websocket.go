package journal

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"robotconsole/internal/notify"
	"robotconsole/pkg/logger"

	"github.com/gorilla/websocket"
)

// HubConfig WebSocket 推送配置
type HubConfig struct {
	PingInterval   time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

type client struct {
	conn    *websocket.Conn
	robotID int64 // 0 表示接收全部机器人的消息
	send    chan []byte
}

// Hub 把日志条目与提示推送给已连接的控制台
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	broadcast chan *Entry
	config    HubConfig
}

// NewHub 创建推送中心
func NewHub(cfg HubConfig) *Hub {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 1024
	}
	return &Hub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan *Entry, 128),
		config:    cfg,
	}
}

// Run 分发广播，直到 ctx 结束
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case e := <-h.broadcast:
			h.dispatch(e)
		}
	}
}

// Broadcast 投递一条日志；队列已满时丢弃并记录警告
func (h *Hub) Broadcast(e *Entry) {
	select {
	case h.broadcast <- e:
	default:
		logger.Warn("journal hub queue full, dropping entry %s", e.ID)
	}
}

// Notify 实现 notify.Notifier，提示以 notice 条目推送
func (h *Hub) Notify(level notify.Level, text string) {
	h.Broadcast(&Entry{
		Timestamp: time.Now(),
		Kind:      KindNotice,
		Level:     string(level),
		Message:   text,
	})
}

func (h *Hub) dispatch(e *Entry) {
	data, err := json.Marshal(StreamMessage{Type: e.Kind, Payload: e})
	if err != nil {
		logger.Error("failed to marshal stream message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.robotID != 0 && e.RobotID != 0 && c.robotID != e.RobotID {
			continue
		}
		select {
		case c.send <- data:
		default:
			// 客户端消费过慢，由 writePump 关闭连接
			go h.remove(c)
		}
	}
}

// Serve 接管已升级的连接，阻塞到连接关闭
func (h *Hub) Serve(conn *websocket.Conn, robotID int64) {
	c := &client{conn: conn, robotID: robotID, send: make(chan []byte, 64)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump 只用于感知连接状态与 pong
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	readWait := h.config.PingInterval * 2
	c.conn.SetReadLimit(h.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket error: %v", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
